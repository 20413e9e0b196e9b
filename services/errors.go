package services

import (
	"errors"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки аутентификации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound         = errors.New("user not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrClubNotFound         = errors.New("club not found")
	ErrClaimRequestNotFound = errors.New("claim request not found")

	// Запись результата матча
	ErrNotAParticipant     = errors.New("current user is not a participant of this match")
	ErrMatchNotCompleted   = errors.New("match is not yet completed")
	ErrResultAlreadyExists = errors.New("result already exists for this match")
	ErrNoWinnerDetermined  = errors.New("could not determine a winner from the given sets")

	// Заявки на профиль игрока
	ErrPlayerAlreadyClaimed  = errors.New("target player profile is already claimed")
	ErrUserAlreadyHasProfile = errors.New("requester already has a player profile")

	// Заявки на владение клубом
	ErrClubAlreadyClaimed   = errors.New("club is already claimed")
	ErrClaimRequestResolved = errors.New("claim request is already resolved")
	ErrAdminRequired        = errors.New("only an admin can perform this action")
	ErrInvalidClaimDecision = errors.New("claim decision must be approved or rejected")

	// Редактирование профилей
	ErrPlayerEditForbidden = errors.New("only the profile owner or creator can modify the profile")

	// Редактирование матчей
	ErrMatchEditForbidden = errors.New("only the match creator can modify the match")
	ErrMatchNotEditable   = errors.New("match can no longer be modified")
	ErrRosterInvalid      = errors.New("match roster is invalid")

	// Клубы
	ErrClubNameConflict = errors.New("club name is already in use")
	ErrClubCityUnknown  = errors.New("club city is not known to the geography service")

	// Загрузка файлов
	ErrUploadsDisabled = errors.New("file uploads are not configured")
)

// ScoreValidationError собирает все посетовые проблемы, чтобы клиент мог
// показать их разом.
type ScoreValidationError struct {
	Problems []string
}

func (e *ScoreValidationError) Error() string {
	return "score validation failed: " + strings.Join(e.Problems, "; ")
}
