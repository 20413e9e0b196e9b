package models

import "time"

type ClubClaimStatus string

const (
	ClubUnclaimed    ClubClaimStatus = "unclaimed"
	ClubClaimPending ClubClaimStatus = "pending"
	ClubClaimed      ClubClaimStatus = "claimed"
)

type Club struct {
	ID          int             `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	City        string          `json:"city" db:"city"`
	Address     *string         `json:"address,omitempty" db:"address"`
	Phone       *string         `json:"phone,omitempty" db:"phone"`
	Email       *string         `json:"email,omitempty" db:"email"`
	ClaimStatus ClubClaimStatus `json:"claim_status" db:"claim_status"`
	OwnerUserID *int            `json:"owner_user_id,omitempty" db:"owner_user_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

type ClaimRequestStatus string

const (
	ClaimRequestPending  ClaimRequestStatus = "pending"
	ClaimRequestApproved ClaimRequestStatus = "approved"
	ClaimRequestRejected ClaimRequestStatus = "rejected"
)

// ClubClaimRequest — заявка на владение клубом. После разрешения запись
// неизменяема: ResolvedBy и ResolvedAt заполняются ровно один раз.
type ClubClaimRequest struct {
	ID          int                `json:"id" db:"id"`
	ClubID      int                `json:"club_id" db:"club_id"`
	UserID      int                `json:"user_id" db:"user_id"`
	ContactInfo string             `json:"contact_info" db:"contact_info"`
	Message     string             `json:"message" db:"message"`
	Status      ClaimRequestStatus `json:"status" db:"status"`
	ResolvedBy  *int               `json:"resolved_by,omitempty" db:"resolved_by"`
	ResolvedAt  *time.Time         `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`

	Club *Club `json:"club,omitempty" db:"-"`
}
