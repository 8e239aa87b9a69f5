package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogRepo "mariiahub/database/repository/catalog"
	"mariiahub/services/catalog"
)

// CatalogHandler serves the service catalogue and slot availability.
type CatalogHandler struct {
	service catalog.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(service catalog.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, logger: logger}
}

// ListServices returns the bookable services, optionally filtered by category.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.service.ListServices(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.logger.Error("failed to list services", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// GetService returns a single catalogue entry.
func (h *CatalogHandler) GetService(c *gin.Context) {
	service, err := h.service.GetService(c.Request.Context(), c.Param("serviceID"))
	if err != nil {
		if errors.Is(err, catalogRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}
		h.logger.Error("failed to fetch service", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch service"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service})
}

// ListSlots returns a service's slots in a date window (default: next 7 days).
// Availability here is advisory; the hold taken at time selection is what
// actually reserves a slot.
func (h *CatalogHandler) ListSlots(c *gin.Context) {
	from := time.Now().UTC()
	to := from.AddDate(0, 0, 7)

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp"})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp"})
			return
		}
		to = parsed
	}

	slots, err := h.service.ListSlots(c.Request.Context(), c.Param("serviceID"), from, to)
	if err != nil {
		h.logger.Error("failed to list slots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list slots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
