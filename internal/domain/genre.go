package domain

import "time"

// Genre is a named tag shared by every user's collection.
// Names are stored as first seen and matched case-insensitively.
type Genre struct {
	Name          string    `json:"name"`
	IsSystemGenre bool      `json:"isSystemGenre"`
	CreatedAt     time.Time `json:"createdAt"`
}
