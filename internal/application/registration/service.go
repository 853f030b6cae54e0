package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-otp-redis/internal/domain"
	"github.com/go-otp-redis/internal/pkg/id"
	"github.com/go-otp-redis/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

// Service issues one-time passcodes. It owns the registration and resend
// paths: both end with a fresh OTP in the transient store and an issuance
// event on the channel, and neither ever blocks on delivery.
type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, string, error)
	Resend(ctx context.Context, email string) (*domain.User, string, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type otpStore interface {
	Put(ctx context.Context, identity, code string) error
	Delete(ctx context.Context, identity string) error
}

type publisher interface {
	PublishOTPIssued(ctx context.Context, ev domain.OTPIssued) error
}

type service struct {
	users     userStore
	otps      otpStore
	channel   publisher
	otpLength int
}

type ServiceDeps struct {
	UserRepo  userStore
	OTPStore  otpStore
	Channel   publisher
	OTPLength int
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:     deps.UserRepo,
		otps:      deps.OTPStore,
		channel:   deps.Channel,
		otpLength: deps.OTPLength,
	}
}

// Register creates an unverified account and issues its first OTP.
// The OTP reaches the store before the account record is written: a store
// failure aborts the registration entirely, so no account ever exists
// without a verifiable OTP slot.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, string, error) {
	// Only a definitive not-found clears an identity. A store failure must
	// not be mistaken for availability, or an outage silently admits
	// duplicate accounts.
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, "", fmt.Errorf("please use a unique username: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("check username availability: %w", err)
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", fmt.Errorf("please use a unique email: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("check email availability: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	code, err := otp.Generate(s.otpLength)
	if err != nil {
		return nil, "", err
	}
	if err := s.otps.Put(ctx, req.Email, code); err != nil {
		return nil, "", fmt.Errorf("store otp: %w", err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		// The slot was already written; clear it so no OTP outlives a
		// registration that never happened. Best effort.
		if delErr := s.otps.Delete(ctx, req.Email); delErr != nil {
			slog.Warn("failed to clear otp slot after aborted registration", "email", req.Email, "err", delErr)
		}
		return nil, "", err
	}

	s.publish(ctx, u, code)
	return u, code, nil
}

// Resend invalidates the current OTP for an unverified account and issues a
// fresh one. The previous value is gone the moment the new put lands; a
// verification racing with a resend sees one value or the other, never both.
func (s *service) Resend(ctx context.Context, email string) (*domain.User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("invalid credentials, check the mail you provided: %w", domain.ErrNotFound)
	}
	if u.Verified {
		return nil, "", fmt.Errorf("user already verified, please log in: %w", domain.ErrAlreadyVerified)
	}

	if err := s.otps.Delete(ctx, email); err != nil {
		return nil, "", fmt.Errorf("clear otp slot: %w", err)
	}
	code, err := otp.Generate(s.otpLength)
	if err != nil {
		return nil, "", err
	}
	if err := s.otps.Put(ctx, email, code); err != nil {
		return nil, "", fmt.Errorf("store otp: %w", err)
	}

	s.publish(ctx, u, code)
	return u, code, nil
}

// publish broadcasts the issuance event. Failures are logged, never
// surfaced: the durable side effect is the store write, and the caller's
// response must not depend on delivery.
func (s *service) publish(ctx context.Context, u *domain.User, code string) {
	ev := domain.OTPIssued{PhoneNumber: u.PhoneNumber, OTP: code}
	if err := s.channel.PublishOTPIssued(ctx, ev); err != nil {
		slog.Warn("failed to publish otp issuance event", "email", u.Email, "err", err)
	}
}
