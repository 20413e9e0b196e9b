package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/marcelovidal/padel-v1-sub001/models"
)

var (
	ErrClaimRequestNotFound = errors.New("club claim request not found")
	// ErrClaimRequestNotPending: условный UPDATE по status = 'pending' не
	// прошёл — заявка уже разрешена другим администратором.
	ErrClaimRequestNotPending = errors.New("club claim request is not pending")
)

type ClubClaimRepository interface {
	Create(ctx context.Context, request *models.ClubClaimRequest) error
	GetByID(ctx context.Context, id int) (*models.ClubClaimRequest, error)
	ListPending(ctx context.Context) ([]*models.ClubClaimRequest, error)
	Approve(ctx context.Context, requestID, resolverID int, resolvedAt time.Time) error
	Reject(ctx context.Context, requestID, resolverID int, resolvedAt time.Time) error
	CountPending(ctx context.Context) (int, error)
}

type postgresClubClaimRepository struct {
	db       *sql.DB
	clubRepo ClubRepository
}

func NewPostgresClubClaimRepository(db *sql.DB, clubRepo ClubRepository) ClubClaimRepository {
	return &postgresClubClaimRepository{db: db, clubRepo: clubRepo}
}

func (r *postgresClubClaimRepository) Create(ctx context.Context, request *models.ClubClaimRequest) error {
	query := `
		INSERT INTO club_claim_requests (club_id, user_id, contact_info, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		request.ClubID,
		request.UserID,
		request.ContactInfo,
		request.Message,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create club claim request: %w", err)
	}
	return nil
}

func (r *postgresClubClaimRepository) GetByID(ctx context.Context, id int) (*models.ClubClaimRequest, error) {
	query := `
		SELECT id, club_id, user_id, contact_info, message, status, resolved_by, resolved_at, created_at
		FROM club_claim_requests
		WHERE id = $1`

	request := &models.ClubClaimRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.ClubID,
		&request.UserID,
		&request.ContactInfo,
		&request.Message,
		&request.Status,
		&request.ResolvedBy,
		&request.ResolvedAt,
		&request.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimRequestNotFound
		}
		return nil, fmt.Errorf("failed to scan club claim request %d: %w", id, err)
	}
	return request, nil
}

func (r *postgresClubClaimRepository) ListPending(ctx context.Context) ([]*models.ClubClaimRequest, error) {
	query := `
		SELECT id, club_id, user_id, contact_info, message, status, resolved_by, resolved_at, created_at
		FROM club_claim_requests
		WHERE status = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, models.ClaimRequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending club claim requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.ClubClaimRequest, 0)
	for rows.Next() {
		var request models.ClubClaimRequest
		if scanErr := rows.Scan(
			&request.ID,
			&request.ClubID,
			&request.UserID,
			&request.ContactInfo,
			&request.Message,
			&request.Status,
			&request.ResolvedBy,
			&request.ResolvedAt,
			&request.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		requests = append(requests, &request)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// Approve в одной транзакции помечает заявку approved и передаёт клуб её
// автору. Оба UPDATE условные: сорвавшееся условие на заявке означает, что её
// уже разрешили (ErrClaimRequestNotPending), сорвавшееся условие на клубе —
// что клуб успели отдать по другой заявке (ErrClubOwnerConflict). В обоих
// случаях транзакция откатывается целиком, частичных состояний не остаётся.
func (r *postgresClubClaimRepository) Approve(ctx context.Context, requestID, resolverID int, resolvedAt time.Time) error {
	return r.resolve(ctx, requestID, func(ctx context.Context, tx *sql.Tx, request *models.ClubClaimRequest) error {
		if err := r.markResolved(ctx, tx, requestID, models.ClaimRequestApproved, resolverID, resolvedAt); err != nil {
			return err
		}
		return r.clubRepo.AssignOwner(ctx, tx, request.ClubID, request.UserID)
	})
}

// Reject помечает заявку rejected и возвращает клуб в unclaimed, если других
// ожидающих заявок не осталось, открывая дорогу повторным запросам.
func (r *postgresClubClaimRepository) Reject(ctx context.Context, requestID, resolverID int, resolvedAt time.Time) error {
	return r.resolve(ctx, requestID, func(ctx context.Context, tx *sql.Tx, request *models.ClubClaimRequest) error {
		if err := r.markResolved(ctx, tx, requestID, models.ClaimRequestRejected, resolverID, resolvedAt); err != nil {
			return err
		}
		return r.clubRepo.ResetClaimStatus(ctx, tx, request.ClubID)
	})
}

func (r *postgresClubClaimRepository) resolve(ctx context.Context, requestID int, apply func(context.Context, *sql.Tx, *models.ClubClaimRequest) error) (err error) {
	request, err := r.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	var tx *sql.Tx
	tx, err = r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin claim resolution transaction: %w", err)
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

	err = apply(ctx, tx, request)
	return err
}

func (r *postgresClubClaimRepository) markResolved(ctx context.Context, tx *sql.Tx, requestID int, status models.ClaimRequestStatus, resolverID int, resolvedAt time.Time) error {
	query := `
		UPDATE club_claim_requests
		SET status = $2, resolved_by = $3, resolved_at = $4
		WHERE id = $1 AND status = $5`

	result, err := tx.ExecContext(ctx, query, requestID, status, resolverID, resolvedAt, models.ClaimRequestPending)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClaimRequestNotPending)
}

func (r *postgresClubClaimRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM club_claim_requests WHERE status = $1`
	if err := r.db.QueryRowContext(ctx, query, models.ClaimRequestPending).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending club claim requests: %w", err)
	}
	return count, nil
}
