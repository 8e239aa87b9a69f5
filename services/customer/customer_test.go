package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingRepo "mariiahub/database/repository/booking"
	customerRepo "mariiahub/database/repository/customer"
	"mariiahub/models"
)

type fakeCustomerRepo struct {
	byEmail map[string]*models.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{byEmail: make(map[string]*models.Customer)}
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	if _, ok := r.byEmail[customer.Email]; ok {
		return customerRepo.ErrEmailTaken
	}
	cp := *customer
	r.byEmail[customer.Email] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, customerID string) (*models.Customer, error) {
	for _, c := range r.byEmail {
		if c.ID == customerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, customerRepo.ErrNotFound
}

func (r *fakeCustomerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	c, ok := r.byEmail[email]
	if !ok {
		return nil, customerRepo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type fakeBookingRepo struct {
	bookings  map[string]*models.Booking
	cancelled []string
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) Finalize(ctx context.Context, booking *models.Booking, slotVersion int64) error {
	return nil
}

func (r *fakeBookingRepo) Cancel(ctx context.Context, bookingID string) error {
	r.cancelled = append(r.cancelled, bookingID)
	return nil
}

func (r *fakeBookingRepo) CreateReconciliation(ctx context.Context, rec *models.Reconciliation) error {
	return nil
}

func (r *fakeBookingRepo) ListUnresolvedReconciliations(ctx context.Context) ([]models.Reconciliation, error) {
	return nil, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := &DefaultCustomerService{Repo: newFakeCustomerRepo(), Bookings: &fakeBookingRepo{}}

	resp, err := svc.Register(ctx, "Anna Kowalska", "anna@example.com", "+48601234567", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("registration did not issue a token")
	}
	if resp.Customer.PasswordHash == "s3cret-pass" {
		t.Error("password stored in clear text")
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "Other", "anna@example.com", "", "another-pass")
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("err = %v, want ErrEmailTaken", err)
		}
	})

	t.Run("correct password", func(t *testing.T) {
		auth, err := svc.Authenticate(ctx, "anna@example.com", "s3cret-pass")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if auth.Customer.ID != resp.Customer.ID {
			t.Error("authenticated as a different customer")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, "anna@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	bookings := &fakeBookingRepo{bookings: map[string]*models.Booking{
		"booking-1": {
			ID:         "booking-1",
			CustomerID: "cust-1",
			Status:     models.BookingStatusConfirmed,
			Start:      time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		},
	}}
	svc := &DefaultCustomerService{Repo: newFakeCustomerRepo(), Bookings: bookings}

	t.Run("owner cancels", func(t *testing.T) {
		if err := svc.CancelBooking(ctx, "cust-1", "booking-1"); err != nil {
			t.Fatalf("CancelBooking failed: %v", err)
		}
		if len(bookings.cancelled) != 1 || bookings.cancelled[0] != "booking-1" {
			t.Errorf("cancelled = %v, want [booking-1]", bookings.cancelled)
		}
	})

	t.Run("foreign booking looks like not found", func(t *testing.T) {
		err := svc.CancelBooking(ctx, "cust-2", "booking-1")
		if !errors.Is(err, bookingRepo.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}
