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
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchStatusConflict: условный переход статуса не прошёл (матч уже не
	// в ожидаемом хранимом состоянии).
	ErrMatchStatusConflict = errors.New("match status conflict")
	ErrMatchPlayerInvalid  = errors.New("match player conflict or invalid")
	ErrMatchClubInvalid    = errors.New("match club conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context) ([]*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	UpdateStatus(ctx context.Context, id int, from, to models.MatchStatus) error
	Count(ctx context.Context) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

// Create вставляет матч вместе с составом в одной транзакции.
func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin match create transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	query := `
		INSERT INTO matches (scheduled_at, club_id, club_name, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		match.ScheduledAt,
		match.ClubID,
		match.ClubName,
		match.Status,
		match.CreatedBy,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		err = r.handleMatchError(err)
		return err
	}

	err = r.insertRoster(ctx, tx, match.ID, match.Roster)
	return err
}

func (r *postgresMatchRepository) insertRoster(ctx context.Context, tx *sql.Tx, matchID int, roster []models.MatchPlayer) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO match_players (match_id, player_id, team) VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("failed to prepare roster insert: %w", err)
	}
	defer stmt.Close()

	for i := range roster {
		roster[i].MatchID = matchID
		if _, err := stmt.ExecContext(ctx, matchID, roster[i].PlayerID, roster[i].Team); err != nil {
			return r.handleMatchError(err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT m.id, m.scheduled_at, m.club_id, m.club_name, m.status, m.created_by, m.created_at,
		       r.id, r.winner_team, r.score, r.sets_won_a, r.sets_won_b, r.submitted_by, r.created_at
		FROM matches m
		LEFT JOIN match_results r ON r.match_id = m.id
		WHERE m.id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	match, err := scanMatchWithResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}

	roster, err := r.loadRosters(ctx, []int{match.ID})
	if err != nil {
		return nil, err
	}
	match.Roster = roster[match.ID]
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context) ([]*models.Match, error) {
	query := `
		SELECT m.id, m.scheduled_at, m.club_id, m.club_name, m.status, m.created_by, m.created_at,
		       r.id, r.winner_team, r.score, r.sets_won_a, r.sets_won_b, r.submitted_by, r.created_at
		FROM matches m
		LEFT JOIN match_results r ON r.match_id = m.id
		ORDER BY m.scheduled_at DESC, m.id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	ids := make([]int, 0)
	for rows.Next() {
		match, scanErr := scanMatchWithResult(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
		ids = append(ids, match.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	rosters, err := r.loadRosters(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		match.Roster = rosters[match.ID]
	}
	return matches, nil
}

// loadRosters подгружает составы с данными игроков одним запросом.
func (r *postgresMatchRepository) loadRosters(ctx context.Context, matchIDs []int) (map[int][]models.MatchPlayer, error) {
	rosters := make(map[int][]models.MatchPlayer, len(matchIDs))
	if len(matchIDs) == 0 {
		return rosters, nil
	}

	query := `
		SELECT mp.match_id, mp.player_id, mp.team,
		       p.id, p.user_id, p.first_name, p.last_name, p.phone, p.created_by, p.avatar_key, p.created_at
		FROM match_players mp
		JOIN players p ON p.id = mp.player_id
		WHERE mp.match_id = ANY($1)
		ORDER BY mp.match_id ASC, mp.team ASC, mp.player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(matchIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load match rosters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.MatchPlayer
		var player models.Player
		if scanErr := rows.Scan(
			&entry.MatchID,
			&entry.PlayerID,
			&entry.Team,
			&player.ID,
			&player.UserID,
			&player.FirstName,
			&player.LastName,
			&player.Phone,
			&player.CreatedBy,
			&player.AvatarKey,
			&player.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entry.Player = &player
		rosters[entry.MatchID] = append(rosters[entry.MatchID], entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rosters, nil
}

// Update перезаписывает время, клуб и состав в одной транзакции. Сервисный
// слой обязан предварительно убедиться, что матч ещё редактируем.
func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin match update transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	query := `
		UPDATE matches SET scheduled_at = $2, club_id = $3, club_name = $4
		WHERE id = $1 AND status = $5`

	result, execErr := tx.ExecContext(ctx, query,
		match.ID,
		match.ScheduledAt,
		match.ClubID,
		match.ClubName,
		models.MatchStatusScheduled,
	)
	if execErr != nil {
		err = r.handleMatchError(execErr)
		return err
	}
	if err = checkAffectedRows(result, ErrMatchStatusConflict); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM match_players WHERE match_id = $1`, match.ID); err != nil {
		return err
	}
	err = r.insertRoster(ctx, tx, match.ID, match.Roster)
	return err
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, from, to models.MatchStatus) error {
	query := `UPDATE matches SET status = $3 WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchStatusConflict)
}

func (r *postgresMatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			switch pqErr.Constraint {
			case "match_players_player_id_fkey":
				return ErrMatchPlayerInvalid
			case "matches_club_id_fkey":
				return ErrMatchClubInvalid
			}
		case "23505": // unique_violation
			if pqErr.Constraint == "match_players_match_id_player_id_key" {
				return ErrMatchPlayerInvalid
			}
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatchWithResult(row rowScanner) (*models.Match, error) {
	var match models.Match
	var resultID sql.NullInt64
	var winnerTeam sql.NullString
	var score sql.NullString
	var setsWonA, setsWonB, submittedBy sql.NullInt64
	var resultCreatedAt sql.NullTime

	err := row.Scan(
		&match.ID,
		&match.ScheduledAt,
		&match.ClubID,
		&match.ClubName,
		&match.Status,
		&match.CreatedBy,
		&match.CreatedAt,
		&resultID,
		&winnerTeam,
		&score,
		&setsWonA,
		&setsWonB,
		&submittedBy,
		&resultCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resultID.Valid {
		match.Result = &models.MatchResult{
			ID:          int(resultID.Int64),
			MatchID:     match.ID,
			WinnerTeam:  models.TeamSide(winnerTeam.String),
			Score:       score.String,
			SetsWonA:    int(setsWonA.Int64),
			SetsWonB:    int(setsWonB.Int64),
			SubmittedBy: int(submittedBy.Int64),
			CreatedAt:   resultCreatedAt.Time,
		}
	}
	return &match, nil
}
