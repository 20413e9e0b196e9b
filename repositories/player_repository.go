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
	ErrPlayerNotFound = errors.New("player not found")
	// ErrPlayerUserConflict: частичный уникальный индекс players_user_id_key
	// не допустил второй профиль для одной учётной записи.
	ErrPlayerUserConflict = errors.New("player user conflict")
	// ErrPlayerClaimConflict: условный UPDATE заявки профиля не прошёл —
	// профиль уже привязан, не существует, либо у заявителя уже есть профиль.
	ErrPlayerClaimConflict = errors.New("player claim condition not met")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByUserID(ctx context.Context, userID int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Claim(ctx context.Context, playerID, userID int) error
	UpdateAvatarKey(ctx context.Context, id int, key string) error
	Count(ctx context.Context, onlyUnclaimed bool) (int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (user_id, first_name, last_name, phone, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.UserID,
		player.FirstName,
		player.LastName,
		player.Phone,
		player.CreatedBy,
	).Scan(&player.ID, &player.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "players_user_id_key" {
			return ErrPlayerUserConflict
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, user_id, first_name, last_name, phone, created_by, avatar_key, created_at
		FROM players
		WHERE id = $1`
	return r.scanPlayer(ctx, query, id)
}

func (r *postgresPlayerRepository) GetByUserID(ctx context.Context, userID int) (*models.Player, error) {
	query := `
		SELECT id, user_id, first_name, last_name, phone, created_by, avatar_key, created_at
		FROM players
		WHERE user_id = $1`
	return r.scanPlayer(ctx, query, userID)
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `
		SELECT id, user_id, first_name, last_name, phone, created_by, avatar_key, created_at
		FROM players
		ORDER BY last_name ASC, first_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var player models.Player
		if scanErr := rows.Scan(
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
		players = append(players, &player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

// Claim атомарно привязывает профиль к учётной записи. Оба предусловия —
// "профиль никем не занят" и "у заявителя ещё нет профиля" — проверяются тем
// же условным UPDATE, которым выполняется запись; гонку двух заявок на один
// профиль или одной учётной записи на два профиля закрывает частичный
// уникальный индекс players_user_id_key.
func (r *postgresPlayerRepository) Claim(ctx context.Context, playerID, userID int) error {
	query := `
		UPDATE players SET user_id = $2
		WHERE id = $1
		  AND user_id IS NULL
		  AND NOT EXISTS (SELECT 1 FROM players WHERE user_id = $2)`

	result, err := r.db.ExecContext(ctx, query, playerID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "players_user_id_key" {
			return ErrPlayerUserConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrPlayerClaimConflict)
}

func (r *postgresPlayerRepository) UpdateAvatarKey(ctx context.Context, id int, key string) error {
	query := `UPDATE players SET avatar_key = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Count(ctx context.Context, onlyUnclaimed bool) (int, error) {
	query := `SELECT COUNT(*) FROM players`
	if onlyUnclaimed {
		query += ` WHERE user_id IS NULL`
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

func (r *postgresPlayerRepository) scanPlayer(ctx context.Context, query string, args ...interface{}) (*models.Player, error) {
	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&player.ID,
		&player.UserID,
		&player.FirstName,
		&player.LastName,
		&player.Phone,
		&player.CreatedBy,
		&player.AvatarKey,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}
