package reservation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"mariiahub/clock"
	slotRepo "mariiahub/database/repository/slot"
	"mariiahub/models"
	"mariiahub/utils"
)

// ReservationService grants exclusive, time-boxed holds on time slots so two
// concurrent bookers cannot both finalize the same slot.
type ReservationService interface {
	// TryHold claims the slot for holderID. Exactly one of N concurrent
	// callers wins; losers receive ErrSlotUnavailable or ErrConflict.
	TryHold(ctx context.Context, slotID, holderID string) (*models.ReservationHold, error)
	// ReleaseHold clears holderID's hold and restores availability. Idempotent:
	// a missing, expired or foreign hold is a no-op, never an error.
	ReleaseHold(ctx context.Context, slotID, holderID string) error
	// ExtendHold pushes the expiry of holderID's own hold out by the hold TTL.
	ExtendHold(ctx context.Context, slotID, holderID string) (*models.ReservationHold, error)
	// SweepExpired releases all expired holds and returns how many it reclaimed.
	SweepExpired(ctx context.Context) (int, error)
}

// DefaultReservationService implements ReservationService over the slot store.
// All mutation goes through version-guarded writes; a lost race surfaces as
// ErrConflict rather than a silent overwrite.
type DefaultReservationService struct {
	Repo    slotRepo.SlotRepository
	Clock   clock.Clock
	HoldTTL time.Duration
}

// NewReservationService constructs the service with the given hold lifetime.
func NewReservationService(repo slotRepo.SlotRepository, clk clock.Clock, holdTTL time.Duration) *DefaultReservationService {
	return &DefaultReservationService{
		Repo:    repo,
		Clock:   clk,
		HoldTTL: holdTTL,
	}
}

func (s *DefaultReservationService) TryHold(ctx context.Context, slotID, holderID string) (*models.ReservationHold, error) {
	logger := utils.GetLogger()

	slot, err := s.Repo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	now := s.Clock.Now()
	if slot.Booked() {
		return nil, ErrSlotUnavailable
	}
	if slot.Hold.Live(now) {
		if slot.Hold.HolderID == holderID {
			// The holder already owns a live hold; hand it back unchanged.
			return slot.Hold, nil
		}
		return nil, ErrSlotUnavailable
	}

	// Either the slot is free or its hold has lapsed. An expired hold is
	// absent to readers, so claiming it does not need a prior sweep; the
	// version guard still arbitrates racing claimers.
	hold := &models.ReservationHold{
		SlotID:    slotID,
		HolderID:  holderID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.HoldTTL),
	}
	if err := s.Repo.PlaceHold(ctx, slotID, slot.Version, hold); err != nil {
		if errors.Is(err, slotRepo.ErrVersionMismatch) {
			logger.Debug("TryHold lost CAS race", zap.String("slotId", slotID), zap.String("holderId", holderID))
			return nil, ErrConflict
		}
		if errors.Is(err, slotRepo.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	logger.Info("hold placed",
		zap.String("slotId", slotID),
		zap.String("holderId", holderID),
		zap.Time("expiresAt", hold.ExpiresAt))
	return hold, nil
}

func (s *DefaultReservationService) ReleaseHold(ctx context.Context, slotID, holderID string) error {
	slot, err := s.Repo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNotFound) {
			return nil
		}
		return err
	}

	if slot.Booked() || slot.Hold == nil || slot.Hold.HolderID != holderID {
		// Nothing of ours to release. A foreign hold is never touched.
		return nil
	}

	err = s.Repo.ClearHold(ctx, slotID, slot.Version)
	if err == nil {
		utils.GetLogger().Info("hold released", zap.String("slotId", slotID), zap.String("holderId", holderID))
		return nil
	}
	if errors.Is(err, slotRepo.ErrNotFound) {
		return nil
	}
	if errors.Is(err, slotRepo.ErrVersionMismatch) {
		// Someone else moved the slot on; if our hold is gone the release
		// already happened from the caller's point of view.
		current, rerr := s.Repo.GetByID(ctx, slotID)
		if rerr != nil || current.Hold == nil || current.Hold.HolderID != holderID {
			return nil
		}
		return ErrConflict
	}
	return err
}

func (s *DefaultReservationService) ExtendHold(ctx context.Context, slotID, holderID string) (*models.ReservationHold, error) {
	slot, err := s.Repo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	if slot.Booked() || slot.Hold == nil {
		return nil, ErrSlotUnavailable
	}
	if slot.Hold.HolderID != holderID {
		return nil, ErrNotHolder
	}

	expiresAt := s.Clock.Now().Add(s.HoldTTL)
	if err := s.Repo.UpdateHoldExpiry(ctx, slotID, slot.Version, expiresAt); err != nil {
		if errors.Is(err, slotRepo.ErrVersionMismatch) {
			return nil, ErrConflict
		}
		if errors.Is(err, slotRepo.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	extended := *slot.Hold
	extended.ExpiresAt = expiresAt
	return &extended, nil
}
