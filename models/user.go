package models

// User is the engine's view of a platform account. The engine never
// creates or deletes users; it only reads and atomically adjusts the
// point balance.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Points      int64  `json:"points"`
}
