package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/repositories"
	"github.com/marcelovidal/padel-v1-sub001/storage"
)

var ErrPlayerNameRequired = errors.New("player first and last name are required")

type PlayerInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}

type PlayerService interface {
	RegisterSelf(ctx context.Context, currentUserID int, input PlayerInput) (*models.Player, error)
	RegisterGuest(ctx context.Context, currentUserID int, input PlayerInput) (*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	ClaimProfile(ctx context.Context, playerID, currentUserID int) (int, error)
	UploadAvatar(ctx context.Context, playerID, currentUserID int, contentType string, file io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader) PlayerService {
	return &playerService{playerRepo: playerRepo, uploader: uploader}
}

// RegisterSelf создаёт профиль, сразу привязанный к текущей учётной записи.
// Правило "один профиль на учётную запись" здесь обеспечивает тот же
// частичный уникальный индекс, что и при заявке на чужой профиль.
func (s *playerService) RegisterSelf(ctx context.Context, currentUserID int, input PlayerInput) (*models.Player, error) {
	player, err := s.newPlayer(currentUserID, input)
	if err != nil {
		return nil, err
	}
	player.UserID = &currentUserID

	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerUserConflict) {
			return nil, ErrUserAlreadyHasProfile
		}
		return nil, fmt.Errorf("failed to create player profile: %w", err)
	}
	return player, nil
}

// RegisterGuest создаёт незаявленный профиль от имени другого пользователя,
// например при заполнении карточки матча.
func (s *playerService) RegisterGuest(ctx context.Context, currentUserID int, input PlayerInput) (*models.Player, error) {
	player, err := s.newPlayer(currentUserID, input)
	if err != nil {
		return nil, err
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create guest player profile: %w", err)
	}
	return player, nil
}

func (s *playerService) newPlayer(createdBy int, input PlayerInput) (*models.Player, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrPlayerNameRequired
	}
	return &models.Player{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     input.Phone,
		CreatedBy: createdBy,
	}, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for _, player := range players {
		populatePlayerAvatarURL(player, s.uploader)
	}
	return players, nil
}

// ClaimProfile необратимо привязывает незаявленный профиль к текущей
// учётной записи. Оба предусловия — профиль свободен, у заявителя нет
// профиля — проверяются атомарно условной записью в репозитории; операции
// unclaim не существует.
func (s *playerService) ClaimProfile(ctx context.Context, playerID, currentUserID int) (int, error) {
	err := s.playerRepo.Claim(ctx, playerID, currentUserID)
	if err == nil {
		return playerID, nil
	}
	if errors.Is(err, repositories.ErrPlayerUserConflict) {
		return 0, ErrUserAlreadyHasProfile
	}
	if !errors.Is(err, repositories.ErrPlayerClaimConflict) {
		return 0, fmt.Errorf("failed to claim player %d: %w", playerID, err)
	}

	// Условная запись не прошла: перечитываем состояние, чтобы вернуть
	// конкретную причину отказа.
	player, getErr := s.playerRepo.GetByID(ctx, playerID)
	if getErr != nil {
		if errors.Is(getErr, repositories.ErrPlayerNotFound) {
			return 0, ErrPlayerNotFound
		}
		return 0, fmt.Errorf("failed to re-read player %d after claim conflict: %w", playerID, getErr)
	}
	if player.Claimed() {
		return 0, ErrPlayerAlreadyClaimed
	}
	return 0, ErrUserAlreadyHasProfile
}

func (s *playerService) UploadAvatar(ctx context.Context, playerID, currentUserID int, contentType string, file io.Reader) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	player, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	// Аватар меняет владелец профиля либо создатель гостевой записи.
	allowed := (player.UserID != nil && *player.UserID == currentUserID) ||
		(player.UserID == nil && player.CreatedBy == currentUserID)
	if !allowed {
		return nil, ErrPlayerEditForbidden
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("players/%d/avatar_%d%s", playerID, time.Now().Unix(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %d: %w", playerID, err)
	}

	if err := s.playerRepo.UpdateAvatarKey(ctx, playerID, key); err != nil {
		return nil, fmt.Errorf("failed to store avatar key for player %d: %w", playerID, err)
	}
	player.AvatarKey = &key
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}
