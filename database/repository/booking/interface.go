// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"mariiahub/database"
	"mariiahub/models"
)

var (
	ErrNotFound      = errors.New("booking not found")
	ErrSlotMismatch  = errors.New("slot changed during finalize")
	ErrInvalidStatus = errors.New("invalid booking status transition")
)

// BookingRepository persists confirmed bookings and the reconciliation queue.
type BookingRepository interface {
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	// Finalize writes the booking and consumes the held slot in a single
	// transaction: the slot keeps available=false, drops its hold and gains
	// the booking reference, guarded by the slot version the caller read.
	Finalize(ctx context.Context, booking *models.Booking, slotVersion int64) error
	// Cancel flips a confirmed booking to cancelled. Any other transition fails.
	Cancel(ctx context.Context, bookingID string) error
	// CreateReconciliation records a captured payment with no booking. Never dropped.
	CreateReconciliation(ctx context.Context, rec *models.Reconciliation) error
	ListUnresolvedReconciliations(ctx context.Context) ([]models.Reconciliation, error)
}

type mongoBookingRepo struct {
	bookingColl   *mongo.Collection
	slotColl      *mongo.Collection
	reconcileColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database("mariiahub")
	return &mongoBookingRepo{
		bookingColl:   db.Collection("bookings"),
		slotColl:      db.Collection("timeslots"),
		reconcileColl: db.Collection("reconciliations"),
	}
}
