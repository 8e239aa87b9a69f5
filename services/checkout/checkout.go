package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mariiahub/clock"
	bookingRepo "mariiahub/database/repository/booking"
	catalogRepo "mariiahub/database/repository/catalog"
	slotRepo "mariiahub/database/repository/slot"
	"mariiahub/models"
	"mariiahub/services/payment"
	"mariiahub/services/reservation"
	"mariiahub/utils"
)

// CheckoutService drives a booking draft through the wizard's step state
// machine: service -> time -> details -> payment -> finalized. Forward
// progress is gated on step validity and on a live slot hold.
type CheckoutService interface {
	StartDraft(ctx context.Context, customerID, serviceID string) (*models.BookingDraft, error)
	GetDraft(ctx context.Context, draftID string) (*models.BookingDraft, error)
	SelectTime(ctx context.Context, draftID, slotID string) (*models.BookingDraft, error)
	EnterDetails(ctx context.Context, draftID string, details models.CustomerDetails) (*models.BookingDraft, error)
	BeginPayment(ctx context.Context, draftID string) (*models.BookingDraft, *models.PaymentIntent, error)
	// ConfirmPayment polls the processor for the draft's intent and applies
	// the terminal status it finds.
	ConfirmPayment(ctx context.Context, draftID string) (*models.BookingDraft, error)
	// ApplyPaymentEvent applies a webhook-delivered terminal status. Polling
	// and webhooks converge on the same transition logic.
	ApplyPaymentEvent(ctx context.Context, event models.PaymentEvent) (*models.BookingDraft, error)
	Abandon(ctx context.Context, draftID string) error
}

// DefaultCheckoutService implements CheckoutService.
type DefaultCheckoutService struct {
	Drafts       DraftStore
	Reservations reservation.ReservationService
	Payments     payment.Processor
	Bookings     bookingRepo.BookingRepository
	Catalog      catalogRepo.CatalogRepository
	Slots        slotRepo.SlotRepository
	Clock        clock.Clock
	Currency     string
}

func (s *DefaultCheckoutService) StartDraft(ctx context.Context, customerID, serviceID string) (*models.BookingDraft, error) {
	service, err := s.Catalog.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrNotFound) {
			return nil, fmt.Errorf("unknown service %s", serviceID)
		}
		return nil, err
	}
	if !service.Active {
		return nil, fmt.Errorf("service %s is not bookable", serviceID)
	}

	now := s.Clock.Now()
	draft := &models.BookingDraft{
		DraftID:    uuid.New().String(),
		CustomerID: customerID,
		Step:       models.StepServiceSelected,
		ServiceID:  serviceID,
		Currency:   service.Currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if draft.Currency == "" {
		draft.Currency = s.Currency
	}

	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to store booking draft: %w", err)
	}

	utils.GetLogger().Info("draft started", zap.String("draftId", draft.DraftID), zap.String("serviceId", serviceID))
	return draft, nil
}

// GetDraft loads a draft and applies the re-entry rule: a draft whose hold
// lapsed while it sat between time selection and payment is pushed back to
// the time step before the client sees it.
func (s *DefaultCheckoutService) GetDraft(ctx context.Context, draftID string) (*models.BookingDraft, error) {
	draft, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if s.revertIfHoldLapsed(draft) {
		if err := s.Drafts.Save(ctx, draft); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

func (s *DefaultCheckoutService) SelectTime(ctx context.Context, draftID, slotID string) (*models.BookingDraft, error) {
	draft, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	switch draft.Step {
	case models.StepServiceSelected, models.StepTimeSelected, models.StepDetailsEntered:
	default:
		return nil, ErrInvalidTransition
	}

	slot, err := s.Slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNotFound) {
			return nil, reservation.ErrSlotNotFound
		}
		return nil, err
	}
	if slot.ServiceID != draft.ServiceID {
		return nil, fmt.Errorf("slot %s does not offer service %s", slotID, draft.ServiceID)
	}

	// Re-selection drops any previous claim before taking the new one.
	if draft.SlotID != "" && draft.SlotID != slotID {
		if err := s.Reservations.ReleaseHold(ctx, draft.SlotID, draft.DraftID); err != nil {
			utils.GetLogger().Warn("failed to release previous hold",
				zap.String("draftId", draft.DraftID), zap.String("slotId", draft.SlotID), zap.Error(err))
		}
	}

	hold, err := s.Reservations.TryHold(ctx, slotID, draft.DraftID)
	if err != nil {
		// The draft stays where it is; the caller picks another time.
		return nil, err
	}

	draft.SlotID = slotID
	draft.HoldExpiresAt = hold.ExpiresAt
	draft.Amount = slot.Price
	if slot.Currency != "" {
		draft.Currency = slot.Currency
	}
	draft.Step = models.StepTimeSelected
	draft.UpdatedAt = s.Clock.Now()

	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DefaultCheckoutService) EnterDetails(ctx context.Context, draftID string, details models.CustomerDetails) (*models.BookingDraft, error) {
	draft, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if s.revertIfHoldLapsed(draft) {
		_ = s.Drafts.Save(ctx, draft)
		return nil, ErrHoldExpired
	}
	switch draft.Step {
	case models.StepTimeSelected, models.StepDetailsEntered:
	default:
		return nil, ErrInvalidTransition
	}

	if verr := validateDetails(details); verr != nil {
		return nil, verr
	}

	draft.Details = details
	draft.Step = models.StepDetailsEntered
	draft.UpdatedAt = s.Clock.Now()

	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DefaultCheckoutService) BeginPayment(ctx context.Context, draftID string) (*models.BookingDraft, *models.PaymentIntent, error) {
	draft, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return nil, nil, err
	}

	// Never let the user pay for an expired hold.
	if draft.SlotID != "" && !s.Clock.Now().Before(draft.HoldExpiresAt) {
		s.forceReselection(ctx, draft)
		_ = s.Drafts.Save(ctx, draft)
		return nil, nil, ErrHoldExpired
	}

	switch draft.Step {
	case models.StepDetailsEntered:
	case models.StepPaymentPending:
		// Idempotent re-entry: hand back the existing intent.
		if draft.PaymentIntentID != "" {
			intent, err := s.Payments.RetrieveIntent(ctx, draft.PaymentIntentID)
			if err != nil {
				return nil, nil, err
			}
			return draft, intent, nil
		}
		return nil, nil, ErrInvalidTransition
	default:
		return nil, nil, ErrInvalidTransition
	}

	// The idempotency key is derived from the draft, so a network-level retry
	// of this call reuses the same processor-side intent.
	intent, err := s.Payments.CreateIntent(ctx, draft.Amount, draft.Currency, "draft-"+draft.DraftID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	draft.PaymentIntentID = intent.ID
	draft.Step = models.StepPaymentPending
	draft.UpdatedAt = s.Clock.Now()

	if err := s.Drafts.Save(ctx, draft); err != nil {
		return nil, nil, err
	}
	if err := s.Drafts.MapIntent(ctx, intent.ID, draft.DraftID); err != nil {
		return nil, nil, err
	}

	utils.GetLogger().Info("payment pending",
		zap.String("draftId", draft.DraftID), zap.String("intentId", intent.ID))
	return draft, intent, nil
}

func (s *DefaultCheckoutService) ConfirmPayment(ctx context.Context, draftID string) (*models.BookingDraft, error) {
	draft, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Terminal() {
		return draft, nil
	}
	if draft.Step != models.StepPaymentPending || draft.PaymentIntentID == "" {
		if draft.PaymentIntentID != "" {
			// The draft was pushed off the payment step while a charge was in
			// flight. If that charge went through, the money must not vanish
			// with the step.
			intent, rerr := s.Payments.RetrieveIntent(ctx, draft.PaymentIntentID)
			if rerr == nil && intent.Status == models.PaymentStatusSucceeded {
				return s.reconcile(ctx, draft, "payment succeeded for draft no longer awaiting payment")
			}
		}
		return nil, ErrInvalidTransition
	}

	// Ask the processor, never local state, before acting on a retry.
	intent, err := s.Payments.RetrieveIntent(ctx, draft.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	return s.applyTerminalStatus(ctx, draft, intent.Status)
}

func (s *DefaultCheckoutService) ApplyPaymentEvent(ctx context.Context, event models.PaymentEvent) (*models.BookingDraft, error) {
	draftID, err := s.Drafts.DraftIDForIntent(ctx, event.IntentID)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) && event.Status == models.PaymentStatusSucceeded {
			return nil, s.reconcileOrphanIntent(ctx, event.IntentID, "payment succeeded but intent mapping is gone")
		}
		return nil, err
	}
	draft, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) && event.Status == models.PaymentStatusSucceeded {
			// Abandoned mid-payment, or the draft TTL lapsed while the
			// customer sat on a bank challenge. The money is captured; queue
			// it before the processor stops redelivering.
			return nil, s.reconcileOrphanIntent(ctx, event.IntentID, "payment succeeded but draft is gone")
		}
		return nil, err
	}
	if draft.PaymentIntentID != event.IntentID {
		return nil, ErrIntentMismatch
	}
	if draft.Terminal() {
		// Replayed event for a completed draft; nothing to do.
		return draft, nil
	}
	if draft.Step != models.StepPaymentPending {
		if event.Status == models.PaymentStatusSucceeded {
			// Forced re-selection moved the draft off the payment step while
			// the charge went through.
			return s.reconcile(ctx, draft, "payment succeeded for draft no longer awaiting payment")
		}
		return nil, ErrInvalidTransition
	}
	return s.applyTerminalStatus(ctx, draft, event.Status)
}

func (s *DefaultCheckoutService) Abandon(ctx context.Context, draftID string) error {
	draft, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return err
	}
	if draft.Step == models.StepFinalized {
		return ErrDraftFinalized
	}

	if draft.SlotID != "" {
		if err := s.Reservations.ReleaseHold(ctx, draft.SlotID, draft.DraftID); err != nil {
			utils.GetLogger().Warn("failed to release hold on abandon",
				zap.String("draftId", draft.DraftID), zap.String("slotId", draft.SlotID), zap.Error(err))
		}
	}

	draft.Step = models.StepAbandoned
	draft.UpdatedAt = s.Clock.Now()
	utils.GetLogger().Info("draft abandoned", zap.String("draftId", draft.DraftID))
	return s.Drafts.Delete(ctx, draftID)
}

// applyTerminalStatus maps a processor terminal status onto the draft's
// transitions. A declined payment is not an abandonment: the draft stays in
// the payment step so the customer can retry with another card.
func (s *DefaultCheckoutService) applyTerminalStatus(ctx context.Context, draft *models.BookingDraft, status string) (*models.BookingDraft, error) {
	switch status {
	case models.PaymentStatusSucceeded:
		return s.finalize(ctx, draft)

	case models.PaymentStatusFailed:
		if !s.Clock.Now().Before(draft.HoldExpiresAt) {
			// The hold lapsed while the payment was in flight. Extend it so
			// the retry stays valid; if the slot is already gone, force
			// re-selection instead of letting the user pay for nothing.
			extended, err := s.Reservations.ExtendHold(ctx, draft.SlotID, draft.DraftID)
			if err != nil {
				s.forceReselection(ctx, draft)
				if serr := s.Drafts.Save(ctx, draft); serr != nil {
					return nil, serr
				}
				return draft, ErrHoldExpired
			}
			draft.HoldExpiresAt = extended.ExpiresAt
		}
		draft.UpdatedAt = s.Clock.Now()
		if err := s.Drafts.Save(ctx, draft); err != nil {
			return nil, err
		}
		return draft, nil

	case models.PaymentStatusRequiresAction:
		// Still waiting on the customer; no transition.
		return draft, nil

	default:
		return nil, fmt.Errorf("unknown payment status %q for intent %s", status, draft.PaymentIntentID)
	}
}

// revertIfHoldLapsed pushes a pre-payment draft back to the time step when
// its hold has expired. Reports whether the draft changed.
func (s *DefaultCheckoutService) revertIfHoldLapsed(draft *models.BookingDraft) bool {
	switch draft.Step {
	case models.StepTimeSelected, models.StepDetailsEntered:
	default:
		return false
	}
	if draft.SlotID == "" || s.Clock.Now().Before(draft.HoldExpiresAt) {
		return false
	}
	draft.Step = models.StepTimeSelected
	draft.SlotID = ""
	draft.HoldExpiresAt = time.Time{}
	draft.UpdatedAt = s.Clock.Now()
	return true
}

// forceReselection strips the draft's claim and returns it to the time step.
// The expired hold is released best-effort; the sweep reclaims it otherwise.
func (s *DefaultCheckoutService) forceReselection(ctx context.Context, draft *models.BookingDraft) {
	if draft.SlotID != "" {
		if err := s.Reservations.ReleaseHold(ctx, draft.SlotID, draft.DraftID); err != nil {
			utils.GetLogger().Warn("failed to release expired hold",
				zap.String("draftId", draft.DraftID), zap.String("slotId", draft.SlotID), zap.Error(err))
		}
	}
	draft.SlotID = ""
	draft.HoldExpiresAt = time.Time{}
	draft.Step = models.StepTimeSelected
	draft.UpdatedAt = s.Clock.Now()
}
