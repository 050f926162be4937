package models

// LeaderboardEntry is one ranked row of a tournament leaderboard.
// Ranks are 1-indexed and contiguous; ordering is score descending,
// then earlier join time, then participant id.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Score       int64  `json:"score"`
}
