package payment

import (
	"context"

	"mariiahub/models"
)

// Processor is the external payment collaborator. Intent creation and
// confirmation both carry idempotency keys so caller-driven network retries
// can never produce a second charge.
type Processor interface {
	// CreateIntent registers a payment of amount (major units) with the
	// processor and returns the intent plus its client secret.
	CreateIntent(ctx context.Context, amount float64, currency, idempotencyKey string) (*models.PaymentIntent, error)
	// RetrieveIntent reports the processor-side state of an intent. Callers
	// inspect this before re-attempting a capture instead of trusting local state.
	RetrieveIntent(ctx context.Context, intentID string) (*models.PaymentIntent, error)
}
