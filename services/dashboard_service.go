package services

import (
	"context"

	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
	resultRepo repositories.MatchResultRepository
	clubRepo   repositories.ClubRepository
	claimRepo  repositories.ClubClaimRepository
}

func NewDashboardService(
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.MatchResultRepository,
	clubRepo repositories.ClubRepository,
	claimRepo repositories.ClubClaimRepository,
) DashboardService {
	return &dashboardService{
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		resultRepo: resultRepo,
		clubRepo:   clubRepo,
		claimRepo:  claimRepo,
	}
}

// GetStats собирает счётчики для дашборда параллельно: агрегаты независимы,
// а ошибка любого из них отменяет остальные через контекст группы.
func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.PlayersTotal, err = s.playerRepo.Count(gCtx, false)
		return err
	})
	g.Go(func() error {
		var err error
		stats.UnclaimedPlayers, err = s.playerRepo.Count(gCtx, true)
		return err
	})
	g.Go(func() error {
		var err error
		stats.MatchesTotal, err = s.matchRepo.Count(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.CompletedMatches, stats.AvgSetsPerMatch, err = s.resultRepo.CountAndAverageSets(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ClubsTotal, err = s.clubRepo.Count(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.PendingClaimRequests, err = s.claimRepo.CountPending(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
