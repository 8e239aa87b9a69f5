// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"mariiahub/database"
	"mariiahub/models"
)

// Sentinel errors for version-guarded writes. ErrVersionMismatch means the
// slot changed between the caller's read and the write; the caller must
// re-read before retrying.
var (
	ErrNotFound        = errors.New("slot not found")
	ErrVersionMismatch = errors.New("slot version mismatch")
)

// SlotRepository is the only component permitted to write slot availability.
// Every mutation is guarded by the version token read alongside the slot.
type SlotRepository interface {
	CreateMany(ctx context.Context, slots []models.TimeSlot) error
	GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error)
	ListByService(ctx context.Context, serviceID string, from, to time.Time) ([]models.TimeSlot, error)
	// PlaceHold flips the slot unavailable and embeds the hold, guarded by version.
	PlaceHold(ctx context.Context, slotID string, version int64, hold *models.ReservationHold) error
	// ClearHold removes the hold and restores availability, guarded by version.
	ClearHold(ctx context.Context, slotID string, version int64) error
	// UpdateHoldExpiry moves the embedded hold's expiry, guarded by version.
	UpdateHoldExpiry(ctx context.Context, slotID string, version int64, expiresAt time.Time) error
	// FindExpiredHolds returns slots whose embedded hold expired at or before now.
	FindExpiredHolds(ctx context.Context, now time.Time, limit int64) ([]models.TimeSlot, error)
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	db := database.MongoClient.Database("mariiahub")
	repo := &mongoSlotRepo{
		coll: db.Collection("timeslots"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		log.Printf("slot repo: failed to ensure indexes: %v", err)
	}
	return repo
}
