package models

// Terminal payment statuses reported by the processor.
const (
	PaymentStatusSucceeded      = "succeeded"
	PaymentStatusRequiresAction = "requires_action"
	PaymentStatusFailed         = "failed"
)

// PaymentIntent is the processor-side reference for a draft's payment.
type PaymentIntent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"clientSecret"` // Handed to the client to complete the payment
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
	DeclineCode  string  `json:"declineCode,omitempty"` // e.g. "card_declined"; set when Status is "failed"
}

// PaymentEvent is a terminal status notification keyed by intent id. Polling
// and webhook delivery both produce the same event shape so the orchestrator
// applies them identically.
type PaymentEvent struct {
	IntentID    string `json:"intentId"`
	Status      string `json:"status"`
	DeclineCode string `json:"declineCode,omitempty"`
}
