package models

import "time"

// Prize is a physical reward from the platform catalog. The catalog is
// maintained elsewhere; the engine only reads it.
type Prize struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	PointsCost  int64     `json:"points_cost"`
	Stock       int       `json:"stock"`
	ImageKey    *string   `json:"-"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
