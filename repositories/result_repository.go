package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/marcelovidal/padel-v1-sub001/models"
)

var (
	ErrMatchResultNotFound = errors.New("match result not found")
	// ErrMatchResultConflict: уникальный индекс match_results_match_id_key —
	// последний рубеж против двух конкурентных записей результата.
	ErrMatchResultConflict     = errors.New("match result already exists")
	ErrMatchResultMatchInvalid = errors.New("match result match invalid")
)

type MatchResultRepository interface {
	Create(ctx context.Context, result *models.MatchResult) error
	GetByMatchID(ctx context.Context, matchID int) (*models.MatchResult, error)
	CountAndAverageSets(ctx context.Context) (int, float64, error)
}

type postgresMatchResultRepository struct {
	db *sql.DB
}

func NewPostgresMatchResultRepository(db *sql.DB) MatchResultRepository {
	return &postgresMatchResultRepository{db: db}
}

func (r *postgresMatchResultRepository) Create(ctx context.Context, result *models.MatchResult) error {
	query := `
		INSERT INTO match_results (match_id, winner_team, score, sets_won_a, sets_won_b, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		result.MatchID,
		result.WinnerTeam,
		result.Score,
		result.SetsWonA,
		result.SetsWonB,
		result.SubmittedBy,
	).Scan(&result.ID, &result.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "match_results_match_id_key" {
					return ErrMatchResultConflict
				}
			case "23503":
				if pqErr.Constraint == "match_results_match_id_fkey" {
					return ErrMatchResultMatchInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresMatchResultRepository) GetByMatchID(ctx context.Context, matchID int) (*models.MatchResult, error) {
	query := `
		SELECT id, match_id, winner_team, score, sets_won_a, sets_won_b, submitted_by, created_at
		FROM match_results
		WHERE match_id = $1`

	result := &models.MatchResult{}
	err := r.db.QueryRowContext(ctx, query, matchID).Scan(
		&result.ID,
		&result.MatchID,
		&result.WinnerTeam,
		&result.Score,
		&result.SetsWonA,
		&result.SetsWonB,
		&result.SubmittedBy,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchResultNotFound
		}
		return nil, fmt.Errorf("failed to scan match result for match %d: %w", matchID, err)
	}
	return result, nil
}

// CountAndAverageSets возвращает число записанных результатов и среднее число
// сетов на матч (простая средняя для дашборда).
func (r *postgresMatchResultRepository) CountAndAverageSets(ctx context.Context) (int, float64, error) {
	query := `SELECT COUNT(*), COALESCE(AVG(sets_won_a + sets_won_b), 0) FROM match_results`
	var count int
	var avg float64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count, &avg); err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate match results: %w", err)
	}
	return count, avg, nil
}
