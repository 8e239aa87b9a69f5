package payment

import (
	"context"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"

	"mariiahub/models"
	"mariiahub/utils"
)

// StripeProcessor implements Processor against the Stripe API. The global
// stripe.Key is set at startup from configuration.
type StripeProcessor struct{}

// NewStripeProcessor returns the production payment processor.
func NewStripeProcessor() *StripeProcessor {
	return &StripeProcessor{}
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, amount float64, currency, idempotencyKey string) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	pi, err := paymentintent.New(params)
	if err != nil {
		utils.GetLogger().Error("stripe intent creation failed", zap.Error(err))
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return fromStripeIntent(pi), nil
}

func (p *StripeProcessor) RetrieveIntent(ctx context.Context, intentID string) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent %s: %w", intentID, err)
	}
	return fromStripeIntent(pi), nil
}

// fromStripeIntent maps Stripe's intent lifecycle onto the three terminal
// statuses the orchestrator understands.
func fromStripeIntent(pi *stripe.PaymentIntent) *models.PaymentIntent {
	intent := &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       fromMinorUnits(pi.Amount),
		Currency:     string(pi.Currency),
		Status:       MapStatus(pi.Status),
	}
	if pi.LastPaymentError != nil {
		intent.DeclineCode = string(pi.LastPaymentError.DeclineCode)
	}
	return intent
}

// MapStatus collapses Stripe payment-intent statuses into the orchestrator's
// terminal set. Anything still waiting on the customer maps to requires_action;
// a payment needing a new method is a failure the customer retries.
func MapStatus(status stripe.PaymentIntentStatus) string {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return models.PaymentStatusSucceeded
	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation, stripe.PaymentIntentStatusProcessing:
		return models.PaymentStatusRequiresAction
	default:
		return models.PaymentStatusFailed
	}
}

// toMinorUnits converts a price in major units (e.g. 150.00 PLN) to the
// smallest currency unit Stripe expects.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
