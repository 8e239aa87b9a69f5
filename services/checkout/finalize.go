package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "mariiahub/database/repository/booking"
	slotRepo "mariiahub/database/repository/slot"
	"mariiahub/models"
	"mariiahub/utils"
)

// finalize converts a paid draft into a permanent booking. The hold becomes a
// booking in a single transaction; if that transaction cannot be made to
// succeed, the captured payment is escalated to the reconciliation queue.
// The draft never reads Finalized unless the booking record exists.
func (s *DefaultCheckoutService) finalize(ctx context.Context, draft *models.BookingDraft) (*models.BookingDraft, error) {
	slot, err := s.Slots.GetByID(ctx, draft.SlotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNotFound) {
			return s.reconcile(ctx, draft, "slot disappeared before finalize")
		}
		return nil, err
	}

	if slot.Booked() {
		// The committed booking, not the draft, is the source of truth here:
		// a finalize whose draft save was lost leaves the draft with no
		// booking id to compare. The payment intent identifies our write.
		prior, perr := s.Bookings.GetByID(ctx, slot.BookingID)
		if perr == nil && prior.PaymentIntentID == draft.PaymentIntentID {
			draft.BookingID = prior.ID
			draft.Step = models.StepFinalized
			draft.NeedsReconcile = false
			draft.UpdatedAt = s.Clock.Now()
			if err := s.Drafts.Save(ctx, draft); err != nil {
				return nil, err
			}
			return draft, nil
		}
		return s.reconcile(ctx, draft, "slot booked by a different payment")
	}
	if slot.Hold == nil || slot.Hold.HolderID != draft.DraftID {
		// Paid, but the slot was claimed by someone else after our hold
		// lapsed. Money without a service is strictly an operator problem.
		return s.reconcile(ctx, draft, "hold lost before finalize")
	}

	booking := &models.Booking{
		ID:              uuid.New().String(),
		CustomerID:      draft.CustomerID,
		ServiceID:       draft.ServiceID,
		SlotID:          draft.SlotID,
		Start:           slot.Start,
		End:             slot.End,
		PaymentIntentID: draft.PaymentIntentID,
		Amount:          draft.Amount,
		Currency:        draft.Currency,
		Status:          models.BookingStatusConfirmed,
		CustomerName:    draft.Details.Name,
		CustomerEmail:   draft.Details.Email,
		CustomerPhone:   draft.Details.Phone,
		Notes:           draft.Details.Notes,
		CreatedAt:       s.Clock.Now(),
	}

	err = s.Bookings.Finalize(ctx, booking, slot.Version)
	if errors.Is(err, bookingRepo.ErrSlotMismatch) {
		// One concurrent bump (a sweep race, an expiry extension) is worth a
		// single retry with fresh state; anything further goes to reconciliation.
		current, rerr := s.Slots.GetByID(ctx, draft.SlotID)
		if rerr == nil && current.Hold != nil && current.Hold.HolderID == draft.DraftID {
			err = s.Bookings.Finalize(ctx, booking, current.Version)
		}
	}
	if err != nil {
		return s.reconcile(ctx, draft, "booking write failed: "+err.Error())
	}

	draft.BookingID = booking.ID
	draft.Step = models.StepFinalized
	draft.NeedsReconcile = false
	draft.UpdatedAt = s.Clock.Now()
	if err := s.Drafts.Save(ctx, draft); err != nil {
		// The booking exists; the draft copy is stale at worst. Log and move on.
		utils.GetLogger().Warn("failed to persist finalized draft",
			zap.String("draftId", draft.DraftID), zap.Error(err))
	}

	utils.GetLogger().Info("booking finalized",
		zap.String("draftId", draft.DraftID),
		zap.String("bookingId", booking.ID),
		zap.String("intentId", draft.PaymentIntentID))
	return draft, nil
}

// reconcile records a captured payment that could not be converted into a
// booking. This is the one state the system refuses to lose track of.
func (s *DefaultCheckoutService) reconcile(ctx context.Context, draft *models.BookingDraft, reason string) (*models.BookingDraft, error) {
	logger := utils.GetLogger()
	logger.Error("payment captured without booking; queuing reconciliation",
		zap.String("draftId", draft.DraftID),
		zap.String("slotId", draft.SlotID),
		zap.String("intentId", draft.PaymentIntentID),
		zap.String("reason", reason))

	rec := &models.Reconciliation{
		DraftID:         draft.DraftID,
		SlotID:          draft.SlotID,
		PaymentIntentID: draft.PaymentIntentID,
		Amount:          draft.Amount,
		Currency:        draft.Currency,
		Reason:          reason,
	}
	if err := s.Bookings.CreateReconciliation(ctx, rec); err != nil {
		// Even the queue write failed. The structured log line above is now
		// the only trace; make absolutely sure it cannot be missed.
		logger.Error("RECONCILIATION WRITE FAILED; manual intervention required",
			zap.String("draftId", draft.DraftID),
			zap.String("intentId", draft.PaymentIntentID),
			zap.Float64("amount", draft.Amount),
			zap.String("currency", draft.Currency),
			zap.Error(err))
	}

	draft.NeedsReconcile = true
	draft.UpdatedAt = s.Clock.Now()
	if err := s.Drafts.Save(ctx, draft); err != nil {
		logger.Warn("failed to mark draft for reconciliation", zap.String("draftId", draft.DraftID), zap.Error(err))
	}
	return draft, ErrFinalizeFailed
}

// reconcileOrphanIntent records a captured payment whose draft no longer
// exists, so not even the draft's fields are recoverable. The processor is
// asked for the amount; the intent id alone is enough for an operator to act.
func (s *DefaultCheckoutService) reconcileOrphanIntent(ctx context.Context, intentID, reason string) error {
	logger := utils.GetLogger()
	logger.Error("payment captured without booking; queuing reconciliation",
		zap.String("intentId", intentID),
		zap.String("reason", reason))

	rec := &models.Reconciliation{
		PaymentIntentID: intentID,
		Reason:          reason,
	}
	if intent, err := s.Payments.RetrieveIntent(ctx, intentID); err == nil {
		rec.Amount = intent.Amount
		rec.Currency = intent.Currency
	}
	if err := s.Bookings.CreateReconciliation(ctx, rec); err != nil {
		logger.Error("RECONCILIATION WRITE FAILED; manual intervention required",
			zap.String("intentId", intentID),
			zap.Error(err))
	}
	return ErrFinalizeFailed
}
