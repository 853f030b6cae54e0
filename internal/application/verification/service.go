package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-otp-redis/internal/domain"
)

const fieldVerified = "verified"

// Service performs single-attempt OTP verification. A stored OTP is read,
// compared exactly, and consumed on match; a mismatch mutates nothing.
type Service interface {
	Verify(ctx context.Context, email, code string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type otpStore interface {
	Get(ctx context.Context, identity string) (string, error)
	Delete(ctx context.Context, identity string) error
}

type service struct {
	users userStore
	otps  otpStore
}

func NewService(users userStore, otps otpStore) Service {
	return &service{users: users, otps: otps}
}

func (s *service) Verify(ctx context.Context, email, code string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("can't find user: %w", domain.ErrNotFound)
	}
	if u.Verified {
		return fmt.Errorf("account already verified: %w", domain.ErrAlreadyVerified)
	}

	stored, err := s.otps.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		// No active slot: consumed, expired, or never issued.
		return fmt.Errorf("no otp to verify against: %w", domain.ErrInvalidOTP)
	}
	if err != nil {
		return err
	}

	// Exact string comparison; OTPs are digit strings, no normalization.
	if stored != code {
		return fmt.Errorf("otp mismatch: %w", domain.ErrInvalidOTP)
	}

	// Clear the slot before flipping the flag so a concurrent duplicate
	// verification sees an absent slot and fails instead of racing on the flag.
	if err := s.otps.Delete(ctx, email); err != nil {
		slog.Warn("failed to clear otp slot after successful match", "email", email, "err", err)
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{fieldVerified: true}); err != nil {
		return err
	}
	return nil
}
