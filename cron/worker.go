package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"mariiahub/config"
	bookingRepo "mariiahub/database/repository/booking"
	"mariiahub/services/reservation"
	"mariiahub/utils"
)

const (
	TypeHoldSweep      = "holds:sweep"
	TypeReconcileAlert = "reconcile:alert"
)

// InitSweepWorker runs the background maintenance loop: a periodic sweep that
// reclaims expired holds, and a slower pass that surfaces unresolved
// reconciliations so captured-but-unbooked payments are never forgotten.
func InitSweepWorker(resSvc reservation.ReservationService, bookings bookingRepo.BookingRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeHoldSweep, handleHoldSweep(resSvc))
	mux.HandleFunc(TypeReconcileAlert, handleReconcileAlert(bookings))

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
	sweepSpec := fmt.Sprintf("@every %s", config.SweepInterval())
	if _, err := scheduler.Register(sweepSpec, asynq.NewTask(TypeHoldSweep, nil)); err != nil {
		log.Fatalf("[SweepWorker] failed to register sweep task: %v", err)
	}
	if _, err := scheduler.Register("@every 5m", asynq.NewTask(TypeReconcileAlert, nil)); err != nil {
		log.Fatalf("[SweepWorker] failed to register reconcile task: %v", err)
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[SweepWorker] scheduler stopped: %v", err)
		}
	}()

	// Start async worker with retry logic
	go func() {
		log.Println("[SweepWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SweepWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SweepWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleHoldSweep(resSvc reservation.ReservationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		released, err := resSvc.SweepExpired(ctx)
		if err != nil {
			utils.GetLogger().Error("hold sweep failed", zap.Error(err))
			return err
		}
		if released > 0 {
			utils.GetLogger().Info("hold sweep completed", zap.Int("released", released))
		}
		return nil
	}
}

func handleReconcileAlert(bookings bookingRepo.BookingRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		recs, err := bookings.ListUnresolvedReconciliations(ctx)
		if err != nil {
			utils.GetLogger().Error("reconciliation scan failed", zap.Error(err))
			return err
		}
		for _, rec := range recs {
			utils.GetLogger().Error("unresolved reconciliation: payment captured without booking",
				zap.String("reconciliationId", rec.ID),
				zap.String("draftId", rec.DraftID),
				zap.String("intentId", rec.PaymentIntentID),
				zap.Float64("amount", rec.Amount),
				zap.String("currency", rec.Currency),
				zap.Time("since", rec.CreatedAt))
		}
		return nil
	}
}
