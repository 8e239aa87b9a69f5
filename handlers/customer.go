package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bookingRepo "mariiahub/database/repository/booking"
	customerRepo "mariiahub/database/repository/customer"
	"mariiahub/middleware"
	"mariiahub/services/customer"
)

// CustomerHandler exposes account registration, sign-in and booking management.
type CustomerHandler struct {
	service customer.CustomerService
	logger  *zap.Logger
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(service customer.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{service: service, logger: logger}
}

// Register creates a new customer account.
func (h *CustomerHandler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.service.Register(c.Request.Context(), input.Name, input.Email, input.Phone, input.Password)
	if err != nil {
		if errors.Is(err, customer.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login authenticates a customer and returns a session token.
func (h *CustomerHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.service.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, customer.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the signed-in customer's profile.
func (h *CustomerHandler) Me(c *gin.Context) {
	customerID := c.GetString(middleware.CustomerIDKey)
	cust, err := h.service.GetByID(c.Request.Context(), customerID)
	if err != nil {
		if errors.Is(err, customerRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.logger.Error("failed to fetch customer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch customer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": cust})
}

// ListBookings returns the signed-in customer's booking history.
func (h *CustomerHandler) ListBookings(c *gin.Context) {
	customerID := c.GetString(middleware.CustomerIDKey)
	bookings, err := h.service.ListBookings(c.Request.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to list bookings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CancelBooking flips one of the customer's confirmed bookings to cancelled.
func (h *CustomerHandler) CancelBooking(c *gin.Context) {
	customerID := c.GetString(middleware.CustomerIDKey)
	err := h.service.CancelBooking(c.Request.Context(), customerID, c.Param("bookingID"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
	case errors.Is(err, bookingRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, bookingRepo.ErrInvalidStatus):
		c.JSON(http.StatusConflict, gin.H{"error": "booking is not cancellable"})
	default:
		h.logger.Error("failed to cancel booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
	}
}
