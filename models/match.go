package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCanceled  MatchStatus = "canceled"
)

type TeamSide string

const (
	TeamA TeamSide = "A"
	TeamB TeamSide = "B"
)

type Match struct {
	ID          int         `json:"id" db:"id"`
	ScheduledAt time.Time   `json:"scheduled_at" db:"scheduled_at"`
	ClubID      *int        `json:"club_id,omitempty" db:"club_id"`
	ClubName    string      `json:"club_name" db:"club_name"`
	Status      MatchStatus `json:"status" db:"status"`
	CreatedBy   int         `json:"created_by" db:"created_by"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	Roster []MatchPlayer `json:"roster,omitempty" db:"-"`
	Result *MatchResult  `json:"result,omitempty" db:"-"`
}

type MatchPlayer struct {
	MatchID  int      `json:"-" db:"match_id"`
	PlayerID int      `json:"player_id" db:"player_id"`
	Team     TeamSide `json:"team" db:"team"`

	Player *Player `json:"player,omitempty" db:"-"`
}

// MatchResult — единственный авторитетный исход матча. Строка Score хранит
// нормализованный счёт по сетам ("6-4,3-6,7-5"); победитель и счёт по сетам
// выводятся валидатором, а не принимаются от клиента.
type MatchResult struct {
	ID          int       `json:"id" db:"id"`
	MatchID     int       `json:"match_id" db:"match_id"`
	WinnerTeam  TeamSide  `json:"winner_team" db:"winner_team"`
	Score       string    `json:"score" db:"score"`
	SetsWonA    int       `json:"sets_won_a" db:"sets_won_a"`
	SetsWonB    int       `json:"sets_won_b" db:"sets_won_b"`
	SubmittedBy int       `json:"submitted_by" db:"submitted_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
