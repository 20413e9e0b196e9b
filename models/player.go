package models

import "time"

// Player — профиль игрока. UserID == nil означает незаявленный (гостевой)
// профиль, созданный другим пользователем при составлении карточки матча.
type Player struct {
	ID        int       `json:"id" db:"id"`
	UserID    *int      `json:"user_id,omitempty" db:"user_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	CreatedBy int       `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}

// Claimed сообщает, привязан ли профиль к учётной записи.
func (p *Player) Claimed() bool {
	return p.UserID != nil
}
