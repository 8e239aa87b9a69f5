package reservation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	slotRepo "mariiahub/database/repository/slot"
	"mariiahub/utils"
)

// sweepBatchSize bounds a single sweep pass so the worker never holds a
// cursor over the whole collection.
const sweepBatchSize = 500

// SweepExpired reclaims capacity blocked by abandoned sessions. Each release
// goes through the same version guard as TryHold, so the sweep is safe to run
// concurrently with itself and with live traffic: a conflict just means
// another writer (a booker or a parallel sweep) got to the slot first.
func (s *DefaultReservationService) SweepExpired(ctx context.Context) (int, error) {
	logger := utils.GetLogger()

	expired, err := s.Repo.FindExpiredHolds(ctx, s.Clock.Now(), sweepBatchSize)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, slot := range expired {
		err := s.Repo.ClearHold(ctx, slot.ID, slot.Version)
		if err == nil {
			released++
			continue
		}
		if errors.Is(err, slotRepo.ErrVersionMismatch) || errors.Is(err, slotRepo.ErrNotFound) {
			continue
		}
		logger.Warn("sweep failed to release hold", zap.String("slotId", slot.ID), zap.Error(err))
	}

	if released > 0 {
		logger.Info("expired holds swept", zap.Int("released", released))
	}
	return released, nil
}
