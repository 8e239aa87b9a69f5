package models

import "time"

// DraftStep is the wizard step a booking draft has reached.
type DraftStep string

const (
	StepServiceSelected DraftStep = "service_selected"
	StepTimeSelected    DraftStep = "time_selected"
	StepDetailsEntered  DraftStep = "details_entered"
	StepPaymentPending  DraftStep = "payment_pending"
	StepFinalized       DraftStep = "finalized"
	StepAbandoned       DraftStep = "abandoned"
)

// CustomerDetails holds the contact information entered in the details step.
type CustomerDetails struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Notes           string `json:"notes,omitempty"`
	TermsAccepted   bool   `json:"termsAccepted"`
	PrivacyAccepted bool   `json:"privacyAccepted"`
}

// BookingDraft is an in-progress booking moving through the checkout wizard.
// Drafts are persisted as JSON in the draft cache keyed by DraftID so a
// reload resumes at the same step with the same gating.
type BookingDraft struct {
	DraftID         string          `json:"draftId"`
	CustomerID      string          `json:"customerId,omitempty"`
	Step            DraftStep       `json:"step"`
	ServiceID       string          `json:"serviceId,omitempty"`
	SlotID          string          `json:"slotId,omitempty"`
	HoldExpiresAt   time.Time       `json:"holdExpiresAt,omitempty"`
	Details         CustomerDetails `json:"details,omitempty"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	BookingID       string          `json:"bookingId,omitempty"` // Set once finalized
	Amount          float64         `json:"amount,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	NeedsReconcile  bool            `json:"needsReconcile,omitempty"` // Payment captured but finalize failed; parked for manual review
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Terminal reports whether the draft can no longer advance.
func (d *BookingDraft) Terminal() bool {
	return d.Step == StepFinalized || d.Step == StepAbandoned
}
