package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	stripewebhook "github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"mariiahub/config"
	"mariiahub/models"
	"mariiahub/services/checkout"
	"mariiahub/services/payment"
)

// WebhookHandler receives Stripe's asynchronous payment events. A webhook and
// a client-side poll produce the same terminal-status event, so delivery
// order and duplicates are harmless.
type WebhookHandler struct {
	service checkout.CheckoutService
	logger  *zap.Logger
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(service checkout.CheckoutService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, logger: logger}
}

// HandleStripeEvent verifies and applies a Stripe webhook delivery.
func (h *WebhookHandler) HandleStripeEvent(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 65536))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	event, err := stripewebhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), config.AppConfig.StripeWebhookSecret)
	if err != nil {
		h.logger.Warn("stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.requires_action":
	default:
		// Not a payment-terminal event; acknowledge and move on.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
		return
	}

	paymentEvent := models.PaymentEvent{
		IntentID: intent.ID,
		Status:   payment.MapStatus(intent.Status),
	}
	if intent.LastPaymentError != nil {
		paymentEvent.DeclineCode = string(intent.LastPaymentError.DeclineCode)
	}

	_, err = h.service.ApplyPaymentEvent(c.Request.Context(), paymentEvent)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, checkout.ErrDraftNotFound):
		// Only non-success outcomes land here: a failed or pending charge
		// for a vanished draft leaves nothing owed. A succeeded charge with
		// no draft comes back as ErrFinalizeFailed with the reconciliation
		// already queued. Acknowledge so Stripe stops retrying.
		h.logger.Warn("webhook for unknown draft", zap.String("intentId", intent.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, checkout.ErrFinalizeFailed):
		// Reconciliation is queued; acknowledging prevents a retry storm.
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, checkout.ErrInvalidTransition):
		// A non-success outcome for a draft that moved on; no transition is
		// owed and a redelivery would fare no better.
		h.logger.Warn("webhook event not applicable to draft state", zap.String("intentId", intent.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
	default:
		h.logger.Error("failed to apply payment event", zap.String("intentId", intent.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
	}
}
