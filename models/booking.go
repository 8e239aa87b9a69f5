package models

import "time"

// Booking statuses. A booking is immutable once created except for the
// confirmed -> cancelled transition.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking represents a confirmed, paid booking record.
type Booking struct {
	ID              string    `bson:"id" json:"id"`                             // Unique booking identifier (UUID)
	CustomerID      string    `bson:"customerId" json:"customerId"`             // Customer who booked
	ServiceID       string    `bson:"serviceId" json:"serviceId"`               // Service booked
	SlotID          string    `bson:"slotId" json:"slotId"`                     // Slot consumed by this booking
	Start           time.Time `bson:"start" json:"start"`
	End             time.Time `bson:"end" json:"end"`
	PaymentIntentID string    `bson:"paymentIntentId" json:"paymentIntentId"`   // Processor reference for audit/refund handling
	Amount          float64   `bson:"amount" json:"amount"`
	Currency        string    `bson:"currency" json:"currency"`
	Status          string    `bson:"status" json:"status"`                     // "confirmed" or "cancelled"
	CustomerName    string    `bson:"customerName" json:"customerName"`
	CustomerEmail   string    `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone   string    `bson:"customerPhone" json:"customerPhone"`
	Notes           string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	CancelledAt     time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

// Reconciliation records a payment that was captured without a corresponding
// booking write. These are never dropped; an operator resolves them manually.
type Reconciliation struct {
	ID              string    `bson:"id" json:"id"`
	DraftID         string    `bson:"draftId" json:"draftId"`
	SlotID          string    `bson:"slotId" json:"slotId"`
	PaymentIntentID string    `bson:"paymentIntentId" json:"paymentIntentId"`
	Amount          float64   `bson:"amount" json:"amount"`
	Currency        string    `bson:"currency" json:"currency"`
	Reason          string    `bson:"reason" json:"reason"`
	Resolved        bool      `bson:"resolved" json:"resolved"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}
