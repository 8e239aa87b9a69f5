package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	bookingRepo "mariiahub/database/repository/booking"
	catalogRepo "mariiahub/database/repository/catalog"
	slotRepo "mariiahub/database/repository/slot"
	"mariiahub/models"
	"mariiahub/utils"
)

// AdminHandler encapsulates operator-level operations: catalogue management,
// slot publishing and the reconciliation queue.
type AdminHandler struct {
	catalog  catalogRepo.CatalogRepository
	slots    slotRepo.SlotRepository
	bookings bookingRepo.BookingRepository
	cache    *redis.Client
	logger   *zap.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(catalog catalogRepo.CatalogRepository, slots slotRepo.SlotRepository, bookings bookingRepo.BookingRepository, cache *redis.Client, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, slots: slots, bookings: bookings, cache: cache, logger: logger}
}

type upsertServiceRequest struct {
	ID              string  `json:"id" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Category        string  `json:"category" binding:"required,oneof=beauty fitness lifestyle"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"durationMinutes" binding:"required,gt=0"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	Currency        string  `json:"currency"`
	Active          bool    `json:"active"`
}

// UpsertService creates or updates a catalogue entry and drops the cached
// service lists so the change is visible immediately.
func (h *AdminHandler) UpsertService(c *gin.Context) {
	var req upsertServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := &models.Service{
		ID:              req.ID,
		Name:            req.Name,
		Category:        req.Category,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Currency:        req.Currency,
		Active:          req.Active,
	}
	if err := h.catalog.Upsert(c.Request.Context(), service); err != nil {
		h.logger.Error("failed to upsert service", zap.String("serviceId", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save service"})
		return
	}

	h.invalidateCatalogCache(c, req.Category)
	h.logger.Info("service upserted", zap.String("serviceId", req.ID))
	c.JSON(http.StatusOK, gin.H{"service": service})
}

type publishSlotsRequest struct {
	From  string  `json:"from" binding:"required"`
	To    string  `json:"to" binding:"required"`
	Price float64 `json:"price"` // Overrides the service price when set
}

// PublishSlots opens bookable windows for a service between from and to,
// cut into consecutive slots of the service's duration.
func (h *AdminHandler) PublishSlots(c *gin.Context) {
	serviceID := c.Param("serviceID")

	var req publishSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, err := time.Parse(time.RFC3339, req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp"})
		return
	}
	to, err := time.Parse(time.RFC3339, req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp"})
		return
	}
	if !to.After(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'to' must be after 'from'"})
		return
	}

	service, err := h.catalog.GetByID(c.Request.Context(), serviceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}

	price := service.Price
	if req.Price > 0 {
		price = req.Price
	}
	duration := time.Duration(service.DurationMinutes) * time.Minute

	var slots []models.TimeSlot
	for start := from; !start.Add(duration).After(to); start = start.Add(duration) {
		slots = append(slots, models.TimeSlot{
			ServiceID: serviceID,
			Start:     start,
			End:       start.Add(duration),
			Price:     price,
			Currency:  service.Currency,
		})
	}
	if len(slots) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window shorter than the service duration"})
		return
	}

	if err := h.slots.CreateMany(c.Request.Context(), slots); err != nil {
		h.logger.Error("failed to publish slots", zap.String("serviceId", serviceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish slots"})
		return
	}

	h.logger.Info("slots published",
		zap.String("serviceId", serviceID),
		zap.Int("count", len(slots)),
		zap.Time("from", from),
		zap.Time("to", to))
	c.JSON(http.StatusCreated, gin.H{"published": len(slots)})
}

// ListReconciliations returns the unresolved reconciliation queue: payments
// captured without a booking, awaiting operator action.
func (h *AdminHandler) ListReconciliations(c *gin.Context) {
	recs, err := h.bookings.ListUnresolvedReconciliations(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list reconciliations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reconciliations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reconciliations": recs})
}

func (h *AdminHandler) invalidateCatalogCache(c *gin.Context, category string) {
	if h.cache == nil {
		return
	}
	keys := []string{
		utils.CatalogKeyPrefix + "services:",
		utils.CatalogKeyPrefix + "services:" + category,
	}
	if err := h.cache.Del(c.Request.Context(), keys...).Err(); err != nil {
		h.logger.Warn("failed to invalidate catalogue cache", zap.Error(err))
	}
}
