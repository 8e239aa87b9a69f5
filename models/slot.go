package models

import "time"

// TimeSlot represents a bookable window for a single service.
type TimeSlot struct {
	ID        string           `bson:"id" json:"id"`               // Unique slot identifier (UUID)
	ServiceID string           `bson:"serviceId" json:"serviceId"` // Service offered in this window
	Start     time.Time        `bson:"start" json:"start"`
	End       time.Time        `bson:"end" json:"end"`
	Available bool             `bson:"available" json:"available"` // False while a hold exists or once booked
	Version   int64            `bson:"version" json:"version"`     // Optimistic concurrency token; bumped on every write
	Hold      *ReservationHold `bson:"hold,omitempty" json:"hold,omitempty"`
	BookingID string           `bson:"bookingId,omitempty" json:"bookingId,omitempty"` // Set once the slot is permanently booked
	Price     float64          `bson:"price" json:"price"`
	Currency  string           `bson:"currency" json:"currency"` // e.g. "pln"
}

// Booked reports whether the slot has been permanently consumed by a booking.
func (s *TimeSlot) Booked() bool {
	return s.BookingID != ""
}

// ReservationHold is a time-boxed, exclusive claim on a slot.
// A hold past its expiry is treated as absent by every reader.
type ReservationHold struct {
	SlotID    string    `bson:"slotId" json:"slotId"`
	HolderID  string    `bson:"holderId" json:"holderId"` // Draft that owns the hold
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}

// Live reports whether the hold is still in force at the given instant.
func (h *ReservationHold) Live(now time.Time) bool {
	return h != nil && now.Before(h.ExpiresAt)
}
