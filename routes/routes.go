package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mariiahub/handlers"
	"mariiahub/middleware"
)

// HandlerBundle aggregates the handlers the router wires up.
type HandlerBundle struct {
	Checkout *handlers.CheckoutHandler
	Catalog  *handlers.CatalogHandler
	Customer *handlers.CustomerHandler
	Webhook  *handlers.WebhookHandler
	Admin    *handlers.AdminHandler
}

// RegisterRoutes wires all endpoints onto the router.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.Health)

	// Catalogue: public browse endpoints backing the wizard's first two steps.
	services := r.Group("/api/services")
	{
		services.GET("", hb.Catalog.ListServices)
		services.GET("/:serviceID", hb.Catalog.GetService)
		services.GET("/:serviceID/slots", hb.Catalog.ListSlots)
	}

	// Checkout wizard: drafts are claimed by opaque draft id, so the flow
	// works for guests as well as signed-in customers.
	drafts := r.Group("/api/drafts")
	{
		drafts.POST("", hb.Checkout.StartDraft)
		drafts.GET("/:draftID", hb.Checkout.GetDraft)
		drafts.PUT("/:draftID/time", hb.Checkout.SelectTime)
		drafts.PUT("/:draftID/details", hb.Checkout.EnterDetails)
		drafts.POST("/:draftID/payment", hb.Checkout.BeginPayment)
		drafts.POST("/:draftID/payment/confirm", hb.Checkout.ConfirmPayment)
		drafts.DELETE("/:draftID", hb.Checkout.Abandon)
	}

	// Payment processor callbacks.
	r.POST("/api/webhooks/stripe", hb.Webhook.HandleStripeEvent)

	// Accounts and booking management.
	customers := r.Group("/api/customers")
	{
		customers.POST("/register", hb.Customer.Register)
		customers.POST("/login", hb.Customer.Login)

		protected := customers.Group("")
		protected.Use(middleware.JWTAuthCustomerMiddleware())
		protected.GET("/me", hb.Customer.Me)
		protected.GET("/me/bookings", hb.Customer.ListBookings)
		protected.DELETE("/me/bookings/:bookingID", hb.Customer.CancelBooking)
	}

	// Operator endpoints: catalogue management, slot publishing, and the
	// reconciliation queue.
	admin := r.Group("/api/admin")
	{
		admin.Use(middleware.AdminAuthMiddleware())
		admin.PUT("/services", hb.Admin.UpsertService)
		admin.POST("/services/:serviceID/slots", hb.Admin.PublishSlots)
		admin.GET("/reconciliations", hb.Admin.ListReconciliations)
	}
}
