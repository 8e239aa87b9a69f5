package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mariiahub/clock"
	slotRepo "mariiahub/database/repository/slot"
	"mariiahub/models"
)

// fakeSlotRepo is an in-memory SlotRepository with the same version-guard
// semantics as the Mongo implementation: every guarded write checks the
// caller's version and bumps it on success.
type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.TimeSlot

	clearHoldErr error
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[string]*models.TimeSlot)}
}

func (r *fakeSlotRepo) put(slot *models.TimeSlot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *slot
	r.slots[slot.ID] = &cp
}

func (r *fakeSlotRepo) CreateMany(ctx context.Context, slots []models.TimeSlot) error {
	for i := range slots {
		r.put(&slots[i])
	}
	return nil
}

func (r *fakeSlotRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[slotID]
	if !ok {
		return nil, slotRepo.ErrNotFound
	}
	cp := *slot
	if slot.Hold != nil {
		hold := *slot.Hold
		cp.Hold = &hold
	}
	return &cp, nil
}

func (r *fakeSlotRepo) ListByService(ctx context.Context, serviceID string, from, to time.Time) ([]models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TimeSlot
	for _, slot := range r.slots {
		if slot.ServiceID == serviceID {
			out = append(out, *slot)
		}
	}
	return out, nil
}

func (r *fakeSlotRepo) guarded(slotID string, version int64, mutate func(*models.TimeSlot)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[slotID]
	if !ok {
		return slotRepo.ErrNotFound
	}
	if slot.Version != version {
		return slotRepo.ErrVersionMismatch
	}
	mutate(slot)
	slot.Version++
	return nil
}

func (r *fakeSlotRepo) PlaceHold(ctx context.Context, slotID string, version int64, hold *models.ReservationHold) error {
	return r.guarded(slotID, version, func(slot *models.TimeSlot) {
		slot.Available = false
		slot.Hold = hold
	})
}

func (r *fakeSlotRepo) ClearHold(ctx context.Context, slotID string, version int64) error {
	if r.clearHoldErr != nil {
		return r.clearHoldErr
	}
	return r.guarded(slotID, version, func(slot *models.TimeSlot) {
		slot.Available = true
		slot.Hold = nil
	})
}

func (r *fakeSlotRepo) UpdateHoldExpiry(ctx context.Context, slotID string, version int64, expiresAt time.Time) error {
	return r.guarded(slotID, version, func(slot *models.TimeSlot) {
		if slot.Hold != nil {
			slot.Hold.ExpiresAt = expiresAt
		}
	})
}

func (r *fakeSlotRepo) FindExpiredHolds(ctx context.Context, now time.Time, limit int64) ([]models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TimeSlot
	for _, slot := range r.slots {
		if slot.BookingID != "" || slot.Hold == nil {
			continue
		}
		if !slot.Hold.ExpiresAt.After(now) {
			out = append(out, *slot)
		}
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func testSlot(id string) *models.TimeSlot {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	return &models.TimeSlot{
		ID:        id,
		ServiceID: "svc-lashes",
		Start:     base,
		End:       base.Add(time.Hour),
		Available: true,
		Version:   1,
		Price:     250,
		Currency:  "pln",
	}
}

func newTestService(repo *fakeSlotRepo, clk clock.Clock) *DefaultReservationService {
	return NewReservationService(repo, clk, 10*time.Minute)
}

func TestTryHold(t *testing.T) {
	ctx := context.Background()

	t.Run("places hold on free slot", func(t *testing.T) {
		repo := newFakeSlotRepo()
		repo.put(testSlot("slot-1"))
		clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		svc := newTestService(repo, clk)

		hold, err := svc.TryHold(ctx, "slot-1", "draft-a")
		if err != nil {
			t.Fatalf("TryHold failed: %v", err)
		}
		if hold.HolderID != "draft-a" {
			t.Errorf("holder = %q, want draft-a", hold.HolderID)
		}
		if want := clk.Now().Add(10 * time.Minute); !hold.ExpiresAt.Equal(want) {
			t.Errorf("expiresAt = %v, want %v", hold.ExpiresAt, want)
		}

		stored, _ := repo.GetByID(ctx, "slot-1")
		if stored.Available {
			t.Error("slot still marked available after hold")
		}
		if stored.Version != 2 {
			t.Errorf("version = %d, want 2 after guarded write", stored.Version)
		}
	})

	t.Run("rejects slot with live foreign hold", func(t *testing.T) {
		repo := newFakeSlotRepo()
		repo.put(testSlot("slot-1"))
		clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		svc := newTestService(repo, clk)

		if _, err := svc.TryHold(ctx, "slot-1", "draft-a"); err != nil {
			t.Fatalf("first TryHold failed: %v", err)
		}
		if _, err := svc.TryHold(ctx, "slot-1", "draft-b"); !errors.Is(err, ErrSlotUnavailable) {
			t.Errorf("second TryHold err = %v, want ErrSlotUnavailable", err)
		}
	})

	t.Run("re-hold by same holder returns existing hold", func(t *testing.T) {
		repo := newFakeSlotRepo()
		repo.put(testSlot("slot-1"))
		clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		svc := newTestService(repo, clk)

		first, err := svc.TryHold(ctx, "slot-1", "draft-a")
		if err != nil {
			t.Fatalf("first TryHold failed: %v", err)
		}
		clk.Advance(time.Minute)
		second, err := svc.TryHold(ctx, "slot-1", "draft-a")
		if err != nil {
			t.Fatalf("re-hold failed: %v", err)
		}
		if !second.ExpiresAt.Equal(first.ExpiresAt) {
			t.Errorf("re-hold changed expiry: got %v, want %v", second.ExpiresAt, first.ExpiresAt)
		}
	})

	t.Run("expired hold is claimable without a sweep", func(t *testing.T) {
		repo := newFakeSlotRepo()
		repo.put(testSlot("slot-1"))
		clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		svc := newTestService(repo, clk)

		if _, err := svc.TryHold(ctx, "slot-1", "draft-a"); err != nil {
			t.Fatalf("first TryHold failed: %v", err)
		}
		clk.Advance(11 * time.Minute)

		hold, err := svc.TryHold(ctx, "slot-1", "draft-b")
		if err != nil {
			t.Fatalf("claim of expired hold failed: %v", err)
		}
		if hold.HolderID != "draft-b" {
			t.Errorf("holder = %q, want draft-b", hold.HolderID)
		}
	})

	t.Run("booked slot is never holdable", func(t *testing.T) {
		repo := newFakeSlotRepo()
		slot := testSlot("slot-1")
		slot.Available = false
		slot.BookingID = "booking-1"
		repo.put(slot)
		svc := newTestService(repo, clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))

		if _, err := svc.TryHold(ctx, "slot-1", "draft-a"); !errors.Is(err, ErrSlotUnavailable) {
			t.Errorf("err = %v, want ErrSlotUnavailable", err)
		}
	})

	t.Run("unknown slot", func(t *testing.T) {
		svc := newTestService(newFakeSlotRepo(), clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
		if _, err := svc.TryHold(ctx, "missing", "draft-a"); !errors.Is(err, ErrSlotNotFound) {
			t.Errorf("err = %v, want ErrSlotNotFound", err)
		}
	})
}

// TestTryHoldConcurrent hammers one slot with parallel claimers; the version
// guard must let exactly one through.
func TestTryHoldConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSlotRepo()
	repo.put(testSlot("slot-1"))
	svc := newTestService(repo, clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))

	const claimers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := make([]string, 0, 1)

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			holder := fmt.Sprintf("draft-%d", n)
			hold, err := svc.TryHold(ctx, "slot-1", holder)
			if err == nil {
				mu.Lock()
				winners = append(winners, hold.HolderID)
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrSlotUnavailable) && !errors.Is(err, ErrConflict) {
				t.Errorf("unexpected loser error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("winners = %d, want exactly 1 (%v)", len(winners), winners)
	}
	stored, _ := repo.GetByID(ctx, "slot-1")
	if stored.Hold == nil || stored.Hold.HolderID != winners[0] {
		t.Errorf("stored hold does not belong to the winner %q", winners[0])
	}
}

func TestReleaseHold(t *testing.T) {
	ctx := context.Background()

	t.Run("releases own hold and restores availability", func(t *testing.T) {
		repo := newFakeSlotRepo()
		repo.put(testSlot("slot-1"))
		svc := newTestService(repo, clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))

		if _, err := svc.TryHold(ctx, "slot-1", "draft-a"); err != nil {
			t.Fatalf("TryHold failed: %v", err)
		}
		if err := svc.ReleaseHold(ctx, "slot-1", "draft-a"); err != nil {
			t.Fatalf("ReleaseHold failed: %v", err)
		}
		stored, _ := repo.GetByID(ctx, "slot-1")
		if !stored.Available || stored.Hold != nil {
			t.Error("slot not restored to available after release")
		}
	})

	t.Run("release is idempotent", func(t *testing.T) {
		repo := newFakeSlotRepo()
		repo.put(testSlot("slot-1"))
		svc := newTestService(repo, clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))

		if _, err := svc.TryHold(ctx, "slot-1", "draft-a"); err != nil {
			t.Fatalf("TryHold failed: %v", err)
		}
		for i := 0; i < 3; i++ {
			if err := svc.ReleaseHold(ctx, "slot-1", "draft-a"); err != nil {
				t.Fatalf("release #%d failed: %v", i+1, err)
			}
		}
	})

	t.Run("never touches a foreign hold", func(t *testing.T) {
		repo := newFakeSlotRepo()
		repo.put(testSlot("slot-1"))
		svc := newTestService(repo, clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))

		if _, err := svc.TryHold(ctx, "slot-1", "draft-a"); err != nil {
			t.Fatalf("TryHold failed: %v", err)
		}
		if err := svc.ReleaseHold(ctx, "slot-1", "draft-b"); err != nil {
			t.Fatalf("foreign release should be a no-op, got %v", err)
		}
		stored, _ := repo.GetByID(ctx, "slot-1")
		if stored.Hold == nil || stored.Hold.HolderID != "draft-a" {
			t.Error("foreign release removed the owner's hold")
		}
	})

	t.Run("unknown slot is a no-op", func(t *testing.T) {
		svc := newTestService(newFakeSlotRepo(), clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
		if err := svc.ReleaseHold(ctx, "missing", "draft-a"); err != nil {
			t.Errorf("err = %v, want nil", err)
		}
	})
}

func TestExtendHold(t *testing.T) {
	ctx := context.Background()

	t.Run("extends own hold from now", func(t *testing.T) {
		repo := newFakeSlotRepo()
		repo.put(testSlot("slot-1"))
		clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		svc := newTestService(repo, clk)

		if _, err := svc.TryHold(ctx, "slot-1", "draft-a"); err != nil {
			t.Fatalf("TryHold failed: %v", err)
		}
		clk.Advance(8 * time.Minute)

		extended, err := svc.ExtendHold(ctx, "slot-1", "draft-a")
		if err != nil {
			t.Fatalf("ExtendHold failed: %v", err)
		}
		if want := clk.Now().Add(10 * time.Minute); !extended.ExpiresAt.Equal(want) {
			t.Errorf("expiresAt = %v, want %v", extended.ExpiresAt, want)
		}
	})

	t.Run("rejects extension by non-holder", func(t *testing.T) {
		repo := newFakeSlotRepo()
		repo.put(testSlot("slot-1"))
		svc := newTestService(repo, clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))

		if _, err := svc.TryHold(ctx, "slot-1", "draft-a"); err != nil {
			t.Fatalf("TryHold failed: %v", err)
		}
		if _, err := svc.ExtendHold(ctx, "slot-1", "draft-b"); !errors.Is(err, ErrNotHolder) {
			t.Errorf("err = %v, want ErrNotHolder", err)
		}
	})
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSlotRepo()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestService(repo, clk)

	for _, id := range []string{"slot-1", "slot-2", "slot-3"} {
		repo.put(testSlot(id))
	}
	for _, id := range []string{"slot-1", "slot-2"} {
		if _, err := svc.TryHold(ctx, id, "draft-"+id); err != nil {
			t.Fatalf("TryHold(%s) failed: %v", id, err)
		}
	}
	clk.Advance(11 * time.Minute)
	// slot-3 holds a still-live claim and must survive the sweep.
	if _, err := svc.TryHold(ctx, "slot-3", "draft-live"); err != nil {
		t.Fatalf("TryHold(slot-3) failed: %v", err)
	}

	released, err := svc.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if released != 2 {
		t.Errorf("released = %d, want 2", released)
	}

	for _, id := range []string{"slot-1", "slot-2"} {
		slot, _ := repo.GetByID(ctx, id)
		if !slot.Available || slot.Hold != nil {
			t.Errorf("%s not reclaimed by sweep", id)
		}
	}
	live, _ := repo.GetByID(ctx, "slot-3")
	if live.Hold == nil || live.Hold.HolderID != "draft-live" {
		t.Error("sweep removed a live hold")
	}
}
