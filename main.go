// File: mariiahub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mariiahub/clock"
	"mariiahub/config"
	"mariiahub/cron"
	"mariiahub/database"
	bookingRepo "mariiahub/database/repository/booking"
	catalogRepo "mariiahub/database/repository/catalog"
	customerRepo "mariiahub/database/repository/customer"
	slotRepo "mariiahub/database/repository/slot"
	"mariiahub/handlers"
	"mariiahub/middleware"
	"mariiahub/routes"
	"mariiahub/services/catalog"
	"mariiahub/services/checkout"
	"mariiahub/services/customer"
	"mariiahub/services/payment"
	"mariiahub/services/reservation"
	"mariiahub/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitDraftCache()
	utils.InitCatalogCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	slots := slotRepo.NewMongoSlotRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	customers := customerRepo.NewMongoCustomerRepo()
	services := catalogRepo.NewMongoCatalogRepo()

	// services.
	sysClock := clock.NewSystem()
	reservationService := reservation.NewReservationService(slots, sysClock, config.HoldTTL())

	checkoutService := &checkout.DefaultCheckoutService{
		Drafts:       checkout.NewRedisDraftStore(utils.GetDraftCacheClient(), config.DraftTTL()),
		Reservations: reservationService,
		Payments:     payment.NewStripeProcessor(),
		Bookings:     bookings,
		Catalog:      services,
		Slots:        slots,
		Clock:        sysClock,
		Currency:     config.AppConfig.DefaultCurrency,
	}

	catalogService := &catalog.DefaultCatalogService{
		Repo:     services,
		Slots:    slots,
		Cache:    utils.GetCatalogCacheClient(),
		CacheTTL: utils.CatalogCacheTTL,
	}

	customerService := &customer.DefaultCustomerService{
		Repo:     customers,
		Bookings: bookings,
	}

	// Background sweep for expired holds and reconciliation alerts.
	cron.InitSweepWorker(reservationService, bookings)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Checkout: handlers.NewCheckoutHandler(checkoutService, logger),
		Catalog:  handlers.NewCatalogHandler(catalogService, logger),
		Customer: handlers.NewCustomerHandler(customerService, logger),
		Webhook:  handlers.NewWebhookHandler(checkoutService, logger),
		Admin:    handlers.NewAdminHandler(services, slots, bookings, utils.GetCatalogCacheClient(), logger),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
