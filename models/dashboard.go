package models

type DashboardStats struct {
	PlayersTotal         int     `json:"players_total"`
	UnclaimedPlayers     int     `json:"unclaimed_players"`
	MatchesTotal         int     `json:"matches_total"`
	CompletedMatches     int     `json:"completed_matches"`
	ClubsTotal           int     `json:"clubs_total"`
	PendingClaimRequests int     `json:"pending_claim_requests"`
	AvgSetsPerMatch      float64 `json:"avg_sets_per_match"`
}
