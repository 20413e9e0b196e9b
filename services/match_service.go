package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/repositories"
	"github.com/marcelovidal/padel-v1-sub001/scoring"
)

const (
	minTeamSize  = 1
	maxTeamSize  = 2
	maxMatchSize = 4
)

type MatchInput struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	ClubID      *int      `json:"club_id,omitempty"`
	ClubName    string    `json:"club_name"`
	TeamA       []int     `json:"team_a"`
	TeamB       []int     `json:"team_b"`
}

// MatchList — матчи, сгруппированные по эффективному состоянию.
type MatchList struct {
	Scheduled []MatchView `json:"scheduled"`
	Completed []MatchView `json:"completed"`
	Canceled  []MatchView `json:"canceled"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, currentUserID int, input MatchInput) (*MatchView, error)
	GetMatch(ctx context.Context, id int) (*MatchView, error)
	ListMatches(ctx context.Context) (*MatchList, error)
	UpdateMatch(ctx context.Context, matchID, currentUserID int, input MatchInput) (*MatchView, error)
	CancelMatch(ctx context.Context, matchID, currentUserID int) error
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	playerRepo repositories.PlayerRepository
	hub        LiveBroadcaster
	logger     *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	hub LiveBroadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		hub:        hub,
		logger:     logger,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, currentUserID int, input MatchInput) (*MatchView, error) {
	roster, err := s.buildRoster(ctx, input)
	if err != nil {
		return nil, err
	}

	match := &models.Match{
		ScheduledAt: input.ScheduledAt,
		ClubID:      input.ClubID,
		ClubName:    strings.TrimSpace(input.ClubName),
		Status:      models.MatchStatusScheduled,
		CreatedBy:   currentUserID,
		Roster:      roster,
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchPlayerInvalid) {
			return nil, fmt.Errorf("%w: unknown or duplicate player", ErrRosterInvalid)
		}
		if errors.Is(err, repositories.ErrMatchClubInvalid) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	view := toMatchView(match, time.Now())
	return &view, nil
}

// buildRoster валидирует состав: по 1–2 игрока в командах A и B, без
// повторов, все профили существуют.
func (s *matchService) buildRoster(ctx context.Context, input MatchInput) ([]models.MatchPlayer, error) {
	if len(input.TeamA) < minTeamSize || len(input.TeamA) > maxTeamSize ||
		len(input.TeamB) < minTeamSize || len(input.TeamB) > maxTeamSize {
		return nil, fmt.Errorf("%w: each team needs %d-%d players", ErrRosterInvalid, minTeamSize, maxTeamSize)
	}
	if len(input.TeamA)+len(input.TeamB) > maxMatchSize {
		return nil, fmt.Errorf("%w: at most %d players per match", ErrRosterInvalid, maxMatchSize)
	}

	seen := make(map[int]bool, maxMatchSize)
	roster := make([]models.MatchPlayer, 0, maxMatchSize)
	appendTeam := func(team models.TeamSide, playerIDs []int) error {
		for _, playerID := range playerIDs {
			if seen[playerID] {
				return fmt.Errorf("%w: player %d listed more than once", ErrRosterInvalid, playerID)
			}
			seen[playerID] = true

			player, err := s.playerRepo.GetByID(ctx, playerID)
			if err != nil {
				if errors.Is(err, repositories.ErrPlayerNotFound) {
					return fmt.Errorf("%w: player %d not found", ErrRosterInvalid, playerID)
				}
				return fmt.Errorf("failed to get player %d: %w", playerID, err)
			}
			roster = append(roster, models.MatchPlayer{PlayerID: playerID, Team: team, Player: player})
		}
		return nil
	}

	if err := appendTeam(models.TeamA, input.TeamA); err != nil {
		return nil, err
	}
	if err := appendTeam(models.TeamB, input.TeamB); err != nil {
		return nil, err
	}
	return roster, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*MatchView, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	view := toMatchView(match, time.Now())
	return &view, nil
}

func (s *matchService) ListMatches(ctx context.Context) (*MatchList, error) {
	matches, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	now := time.Now()
	list := &MatchList{
		Scheduled: make([]MatchView, 0),
		Completed: make([]MatchView, 0),
		Canceled:  make([]MatchView, 0),
	}
	for _, match := range matches {
		view := toMatchView(match, now)
		switch view.EffectiveStatus {
		case models.MatchStatusScheduled:
			list.Scheduled = append(list.Scheduled, view)
		case models.MatchStatusCompleted:
			list.Completed = append(list.Completed, view)
		case models.MatchStatusCanceled:
			list.Canceled = append(list.Canceled, view)
		}
	}
	return list, nil
}

// UpdateMatch меняет время, клуб и состав. Разрешено только создателю и
// только пока эффективное состояние матча — scheduled: матч с результатом
// или отменённый неизменяем.
func (s *matchService) UpdateMatch(ctx context.Context, matchID, currentUserID int, input MatchInput) (*MatchView, error) {
	match, err := s.editableMatch(ctx, matchID, currentUserID)
	if err != nil {
		return nil, err
	}

	roster, err := s.buildRoster(ctx, input)
	if err != nil {
		return nil, err
	}

	match.ScheduledAt = input.ScheduledAt
	match.ClubID = input.ClubID
	match.ClubName = strings.TrimSpace(input.ClubName)
	match.Roster = roster

	if err := s.matchRepo.Update(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchStatusConflict) {
			return nil, ErrMatchNotEditable
		}
		if errors.Is(err, repositories.ErrMatchPlayerInvalid) {
			return nil, fmt.Errorf("%w: unknown or duplicate player", ErrRosterInvalid)
		}
		return nil, fmt.Errorf("failed to update match %d: %w", matchID, err)
	}

	view := toMatchView(match, time.Now())
	return &view, nil
}

func (s *matchService) CancelMatch(ctx context.Context, matchID, currentUserID int) error {
	match, err := s.editableMatch(ctx, matchID, currentUserID)
	if err != nil {
		return err
	}

	if err := s.matchRepo.UpdateStatus(ctx, matchID, models.MatchStatusScheduled, models.MatchStatusCanceled); err != nil {
		if errors.Is(err, repositories.ErrMatchStatusConflict) {
			return ErrMatchNotEditable
		}
		return fmt.Errorf("failed to cancel match %d: %w", matchID, err)
	}

	if s.hub != nil {
		s.hub.Publish(matchRoom(match), EventMatchCanceled, map[string]int{"match_id": matchID})
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "match canceled", slog.Int("match_id", matchID), slog.Int("by_user", currentUserID))
	}
	return nil
}

func (s *matchService) editableMatch(ctx context.Context, matchID, currentUserID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}

	if match.CreatedBy != currentUserID {
		return nil, ErrMatchEditForbidden
	}
	effective := scoring.EffectiveMatchStatus(match.Status, match.ScheduledAt, match.Result != nil, time.Now())
	if effective != models.MatchStatusScheduled {
		return nil, ErrMatchNotEditable
	}
	return match, nil
}
