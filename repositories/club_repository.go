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
	ErrClubNotFound     = errors.New("club not found")
	ErrClubNameConflict = errors.New("club name conflict")
	// ErrClubOwnerConflict: клуб уже передан во владение, либо учётная запись
	// уже владеет другим клубом (clubs_owner_user_id_key).
	ErrClubOwnerConflict = errors.New("club owner conflict")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	MarkClaimPending(ctx context.Context, exec SQLExecutor, clubID int) error
	AssignOwner(ctx context.Context, exec SQLExecutor, clubID, userID int) error
	ResetClaimStatus(ctx context.Context, exec SQLExecutor, clubID int) error
	UpdateLogoKey(ctx context.Context, id int, key string) error
	Count(ctx context.Context) (int, error)
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) executor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (name, city, address, phone, email, claim_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		club.Name,
		club.City,
		club.Address,
		club.Phone,
		club.Email,
		club.ClaimStatus,
	).Scan(&club.ID, &club.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "clubs_name_key" {
			return ErrClubNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `
		SELECT id, name, city, address, phone, email, claim_status, owner_user_id, logo_key, created_at
		FROM clubs
		WHERE id = $1`

	club := &models.Club{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&club.ID,
		&club.Name,
		&club.City,
		&club.Address,
		&club.Phone,
		&club.Email,
		&club.ClaimStatus,
		&club.OwnerUserID,
		&club.LogoKey,
		&club.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to scan club by id %d: %w", id, err)
	}
	return club, nil
}

func (r *postgresClubRepository) List(ctx context.Context) ([]*models.Club, error) {
	query := `
		SELECT id, name, city, address, phone, email, claim_status, owner_user_id, logo_key, created_at
		FROM clubs
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	clubs := make([]*models.Club, 0)
	for rows.Next() {
		var club models.Club
		if scanErr := rows.Scan(
			&club.ID,
			&club.Name,
			&club.City,
			&club.Address,
			&club.Phone,
			&club.Email,
			&club.ClaimStatus,
			&club.OwnerUserID,
			&club.LogoKey,
			&club.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		clubs = append(clubs, &club)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return clubs, nil
}

// MarkClaimPending переводит клуб в pending для отображения. Ничего не
// блокирует: несколько заявителей могут сосуществовать, эксклюзивно только
// разрешение. Нулевое число строк — не ошибка.
func (r *postgresClubRepository) MarkClaimPending(ctx context.Context, exec SQLExecutor, clubID int) error {
	query := `UPDATE clubs SET claim_status = $2 WHERE id = $1 AND claim_status = $3`
	_, err := r.executor(exec).ExecContext(ctx, query, clubID, models.ClubClaimPending, models.ClubUnclaimed)
	return err
}

// AssignOwner атомарно передаёт клуб во владение: условие owner_user_id IS NULL
// гарантирует, что из двух одновременных одобрений пройдёт ровно одно.
func (r *postgresClubRepository) AssignOwner(ctx context.Context, exec SQLExecutor, clubID, userID int) error {
	query := `
		UPDATE clubs SET claim_status = $3, owner_user_id = $2
		WHERE id = $1 AND owner_user_id IS NULL`

	result, err := r.executor(exec).ExecContext(ctx, query, clubID, userID, models.ClubClaimed)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "clubs_owner_user_id_key" {
			return ErrClubOwnerConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrClubOwnerConflict)
}

// ResetClaimStatus возвращает клуб в unclaimed после отклонения заявки, но
// только если владелец не назначен и других ожидающих заявок не осталось.
func (r *postgresClubRepository) ResetClaimStatus(ctx context.Context, exec SQLExecutor, clubID int) error {
	query := `
		UPDATE clubs SET claim_status = $2
		WHERE id = $1
		  AND owner_user_id IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM club_claim_requests
			WHERE club_id = $1 AND status = $3
		  )`
	_, err := r.executor(exec).ExecContext(ctx, query, clubID, models.ClubUnclaimed, models.ClaimRequestPending)
	return err
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, id int, key string) error {
	query := `UPDATE clubs SET logo_key = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clubs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count clubs: %w", err)
	}
	return count, nil
}
