package models

import "time"

// Service categories offered by the studio.
const (
	CategoryBeauty    = "beauty"
	CategoryFitness   = "fitness"
	CategoryLifestyle = "lifestyle"
)

// Service is a bookable offering in the catalogue (e.g. lash lift, PT session).
type Service struct {
	ID              string    `bson:"id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Category        string    `bson:"category" json:"category"` // "beauty", "fitness" or "lifestyle"
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	Price           float64   `bson:"price" json:"price"`
	Currency        string    `bson:"currency" json:"currency"`
	Active          bool      `bson:"active" json:"active"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}
