package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/repositories"
	"github.com/marcelovidal/padel-v1-sub001/scoring"
)

// LiveBroadcaster — узкий срез live-хаба, достаточный сервисам для
// рассылки уведомлений. Может быть nil: рассылка всегда best-effort.
type LiveBroadcaster interface {
	Publish(room string, eventType string, payload interface{})
}

const (
	EventResultRecorded = "MATCH_RESULT_RECORDED"
	EventMatchCanceled  = "MATCH_CANCELED"
	EventClaimResolved  = "CLUB_CLAIM_RESOLVED"
)

type ResultService interface {
	SubmitResult(ctx context.Context, matchID, currentUserID int, sets []scoring.SetScore) (*models.MatchResult, error)
	GetByMatch(ctx context.Context, matchID int) (*models.MatchResult, error)
}

type resultService struct {
	matchRepo  repositories.MatchRepository
	resultRepo repositories.MatchResultRepository
	userRepo   repositories.UserRepository
	email      *EmailService
	hub        LiveBroadcaster
	logger     *slog.Logger
}

func NewResultService(
	matchRepo repositories.MatchRepository,
	resultRepo repositories.MatchResultRepository,
	userRepo repositories.UserRepository,
	email *EmailService,
	hub LiveBroadcaster,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		matchRepo:  matchRepo,
		resultRepo: resultRepo,
		userRepo:   userRepo,
		email:      email,
		hub:        hub,
		logger:     logger,
	}
}

// SubmitResult записывает исход матча ровно один раз. Предусловия
// проверяются по порядку, каждое даёт отдельную ошибку; финальная вставка
// защищена уникальным ограничением на match_id, так что гонка двух
// одновременных отправок заканчивается одной записью и одной ошибкой
// "результат уже существует".
func (s *resultService) SubmitResult(ctx context.Context, matchID, currentUserID int, sets []scoring.SetScore) (*models.MatchResult, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}

	if !isRosterParticipant(match.Roster, currentUserID) {
		return nil, ErrNotAParticipant
	}

	effective := scoring.EffectiveMatchStatus(match.Status, match.ScheduledAt, match.Result != nil, time.Now())
	if effective != models.MatchStatusCompleted {
		return nil, ErrMatchNotCompleted
	}

	if _, err := s.resultRepo.GetByMatchID(ctx, matchID); err == nil {
		return nil, ErrResultAlreadyExists
	} else if !errors.Is(err, repositories.ErrMatchResultNotFound) {
		return nil, fmt.Errorf("failed to check existing result for match %d: %w", matchID, err)
	}

	outcome, problems := scoring.ValidateSets(sets)
	if len(problems) > 0 {
		return nil, &ScoreValidationError{Problems: problems}
	}
	if !outcome.Finished {
		return nil, ErrNoWinnerDetermined
	}

	result := &models.MatchResult{
		MatchID:     matchID,
		WinnerTeam:  outcome.Winner,
		Score:       outcome.ScoreString(),
		SetsWonA:    outcome.SetsWonA,
		SetsWonB:    outcome.SetsWonB,
		SubmittedBy: currentUserID,
	}

	if err := s.resultRepo.Create(ctx, result); err != nil {
		// Проигрыш в гонке между проверкой и записью: уникальное ограничение
		// превращается в ту же доменную ошибку, что и явная проверка выше.
		if errors.Is(err, repositories.ErrMatchResultConflict) {
			return nil, ErrResultAlreadyExists
		}
		if errors.Is(err, repositories.ErrMatchResultMatchInvalid) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to create result for match %d: %w", matchID, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "match result recorded",
			slog.Int("match_id", matchID),
			slog.String("winner_team", string(result.WinnerTeam)),
			slog.String("score", result.Score),
		)
	}

	s.broadcast(match, result)
	s.notifyRoster(ctx, match, result, currentUserID)
	return result, nil
}

func (s *resultService) GetByMatch(ctx context.Context, matchID int) (*models.MatchResult, error) {
	result, err := s.resultRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchResultNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get result for match %d: %w", matchID, err)
	}
	return result, nil
}

func (s *resultService) broadcast(match *models.Match, result *models.MatchResult) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(matchRoom(match), EventResultRecorded, result)
}

// notifyRoster шлёт письма привязанным игрокам состава, кроме автора
// отправки. Best-effort: ошибки почты логируются и не влияют на результат.
func (s *resultService) notifyRoster(ctx context.Context, match *models.Match, result *models.MatchResult, currentUserID int) {
	if s.email == nil || s.userRepo == nil {
		return
	}
	for _, entry := range match.Roster {
		if entry.Player == nil || entry.Player.UserID == nil || *entry.Player.UserID == currentUserID {
			continue
		}
		user, err := s.userRepo.GetByID(ctx, *entry.Player.UserID)
		if err != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "failed to load user for result notification",
					slog.Int("user_id", *entry.Player.UserID), slog.Any("error", err))
			}
			continue
		}
		if err := s.email.SendResultRecorded(user.Email, result.Score, string(result.WinnerTeam)); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to send result notification",
				slog.String("email", user.Email), slog.Any("error", err))
		}
	}
}

// matchRoom выбирает live-комнату матча: клубную, если матч привязан к
// клубу, иначе общую.
func matchRoom(match *models.Match) string {
	if match.ClubID != nil {
		return "club:" + strconv.Itoa(*match.ClubID)
	}
	return "matches"
}
