package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	bookingRepo "mariiahub/database/repository/booking"
	customerRepo "mariiahub/database/repository/customer"
	"mariiahub/models"
	"mariiahub/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("a customer with this email already exists")
)

// CustomerService handles account registration, sign-in and the customer's
// booking history.
type CustomerService interface {
	Register(ctx context.Context, name, email, phone, password string) (*models.CustomerAuthResponse, error)
	Authenticate(ctx context.Context, email, password string) (*models.CustomerAuthResponse, error)
	GetByID(ctx context.Context, customerID string) (*models.Customer, error)
	ListBookings(ctx context.Context, customerID string) ([]models.Booking, error)
	CancelBooking(ctx context.Context, customerID, bookingID string) error
}

// DefaultCustomerService implements CustomerService.
type DefaultCustomerService struct {
	Repo     customerRepo.CustomerRepository
	Bookings bookingRepo.BookingRepository
}

func (s *DefaultCustomerService) Register(ctx context.Context, name, email, phone, password string) (*models.CustomerAuthResponse, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("name, email and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	customer := &models.Customer{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Repo.Create(ctx, customer); err != nil {
		if errors.Is(err, customerRepo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		utils.GetLogger().Error("customer registration failed", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	token, err := utils.GenerateToken(customer.ID, customer.Email, utils.AuthTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.CustomerAuthResponse{Customer: *customer, Token: token}, nil
}

func (s *DefaultCustomerService) Authenticate(ctx context.Context, email, password string) (*models.CustomerAuthResponse, error) {
	customer, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, customerRepo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(customer.ID, customer.Email, utils.AuthTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.CustomerAuthResponse{Customer: *customer, Token: token}, nil
}

func (s *DefaultCustomerService) GetByID(ctx context.Context, customerID string) (*models.Customer, error) {
	return s.Repo.GetByID(ctx, customerID)
}

func (s *DefaultCustomerService) ListBookings(ctx context.Context, customerID string) ([]models.Booking, error) {
	return s.Bookings.ListByCustomer(ctx, customerID)
}

func (s *DefaultCustomerService) CancelBooking(ctx context.Context, customerID, bookingID string) error {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.CustomerID != customerID {
		return bookingRepo.ErrNotFound
	}
	return s.Bookings.Cancel(ctx, bookingID)
}
