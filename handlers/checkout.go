package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mariiahub/middleware"
	"mariiahub/models"
	"mariiahub/services/checkout"
	"mariiahub/services/reservation"
)

// CheckoutHandler exposes the booking wizard's step transitions over HTTP.
type CheckoutHandler struct {
	service checkout.CheckoutService
	logger  *zap.Logger
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(service checkout.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: service, logger: logger}
}

// StartDraft begins a new booking draft for the chosen service.
func (h *CheckoutHandler) StartDraft(c *gin.Context) {
	var input struct {
		ServiceID string `json:"serviceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	customerID := c.GetString(middleware.CustomerIDKey)
	draft, err := h.service.StartDraft(c.Request.Context(), customerID, input.ServiceID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"draft": draft})
}

// GetDraft returns the draft's current step and data.
func (h *CheckoutHandler) GetDraft(c *gin.Context) {
	draft, err := h.service.GetDraft(c.Request.Context(), c.Param("draftID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// SelectTime claims a slot for the draft and advances to the time step.
func (h *CheckoutHandler) SelectTime(c *gin.Context) {
	var input struct {
		SlotID string `json:"slotId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	draft, err := h.service.SelectTime(c.Request.Context(), c.Param("draftID"), input.SlotID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft, "holdExpiresAt": draft.HoldExpiresAt})
}

// EnterDetails records the customer's contact details and consents.
func (h *CheckoutHandler) EnterDetails(c *gin.Context) {
	var input models.CustomerDetails
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	draft, err := h.service.EnterDetails(c.Request.Context(), c.Param("draftID"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// BeginPayment creates the payment intent and moves the draft to the payment step.
func (h *CheckoutHandler) BeginPayment(c *gin.Context) {
	draft, intent, err := h.service.BeginPayment(c.Request.Context(), c.Param("draftID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"draft":        draft,
		"intentId":     intent.ID,
		"clientSecret": intent.ClientSecret,
	})
}

// ConfirmPayment polls the processor and applies whatever terminal status it reports.
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	draft, err := h.service.ConfirmPayment(c.Request.Context(), c.Param("draftID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// Abandon exits the wizard and returns any held slot to the pool.
func (h *CheckoutHandler) Abandon(c *gin.Context) {
	if err := h.service.Abandon(c.Request.Context(), c.Param("draftID")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "abandoned"})
}

// respondError maps domain errors onto HTTP statuses. Recoverable conditions
// carry enough detail for the client to drive a retry or alternate choice.
func (h *CheckoutHandler) respondError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, checkout.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrHoldExpired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "step": models.StepTimeSelected})
	case errors.Is(err, checkout.ErrInvalidTransition), errors.Is(err, checkout.ErrDraftFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrFinalizeFailed):
		h.logger.Error("finalize failed after payment capture", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.logger.Error("checkout request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
