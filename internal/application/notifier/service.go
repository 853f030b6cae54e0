package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-otp-redis/internal/domain"
)

// Service bridges issuance events to the SMS gateway. It holds no state of
// its own; every event is self-contained, so it never reads the store.
type Service interface {
	HandleIssued(ctx context.Context, payload []byte) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	sender smsSender
}

func NewService(sender smsSender) Service {
	return &service{sender: sender}
}

// HandleIssued delivers one SMS per event. Malformed payloads are logged
// and dropped since there is no redelivery. Gateway failures wrap
// domain.ErrDeliveryFailed so the subscribe loop can log them; they are
// never retried.
func (s *service) HandleIssued(ctx context.Context, payload []byte) error {
	var ev domain.OTPIssued
	if err := json.Unmarshal(payload, &ev); err != nil {
		slog.Error("failed to parse otp issuance event", "payload", string(payload), "err", err)
		return nil
	}
	if ev.PhoneNumber == "" || ev.OTP == "" {
		slog.Error("otp issuance event missing fields", "payload", string(payload))
		return nil
	}

	msg := fmt.Sprintf("Your OTP is %s", ev.OTP)
	if err := s.sender.SendSMS(ctx, ev.PhoneNumber, msg); err != nil {
		return fmt.Errorf("send otp sms to %s: %v: %w", ev.PhoneNumber, err, domain.ErrDeliveryFailed)
	}

	slog.Info("otp notification sent", "phone", ev.PhoneNumber)
	return nil
}
