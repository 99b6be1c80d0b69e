package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/agrimitra/agrimitra-auth/internal/logger"
	"github.com/agrimitra/agrimitra-auth/internal/model"
)

// Outcome classifies a verification attempt.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeExpired
	OutcomeMismatch
	OutcomeValid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeExpired:
		return "expired"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Service manages the OTP lifecycle over an injected record store.
//
// Verification and consumption are separate steps: Verify marks a matching
// record used but leaves it in place, so a caller can verify, run its
// dependent operation (account creation, sign-in), and only then Consume.
// A dependent failure leaves the code retryable until expiry.
type Service struct {
	store       model.OTPRecordStore
	ttl         time.Duration
	resendFloor time.Duration
	now         func() time.Time
	logger      *logger.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithTTL overrides the validity window of issued codes.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithResendFloor enforces a minimum interval between issues for one phone.
// Zero disables the floor.
func WithResendFloor(d time.Duration) Option {
	return func(s *Service) { s.resendFloor = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an OTP Service over the given record store.
func NewService(store model.OTPRecordStore, logger *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		ttl:    model.OTPDuration,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue generates a fresh 6-digit code for phone, replacing any prior
// record. The code is returned to the caller for delivery; the store never
// transmits it.
func (s *Service) Issue(ctx context.Context, phone string) (string, error) {
	now := s.now()

	if s.resendFloor > 0 {
		prior, err := s.store.GetByPhone(ctx, phone)
		if err == nil && now.Sub(prior.IssuedAt) < s.resendFloor {
			return "", fmt.Errorf("OTP for %s reissued too soon", phone)
		}
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	record := model.OTPRecord{
		Phone:     phone,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
		Used:      false,
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	s.logger.Debug("OTP service: code issued", "phone", phone, "expires_at", record.ExpiresAt)
	return code, nil
}

// Verify checks candidate against the stored code for phone. An expired
// record is purged. A mismatch preserves the record so the user can retry.
// A valid match marks the record used but does not consume it.
func (s *Service) Verify(ctx context.Context, phone, candidate string) (Outcome, error) {
	record, err := s.store.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, model.ErrOTPNotFound) {
			return OutcomeNotFound, nil
		}
		return OutcomeNotFound, fmt.Errorf("failed to get OTP record: %w", err)
	}

	if s.now().After(record.ExpiresAt) {
		if err := s.store.Delete(ctx, phone); err != nil {
			return OutcomeExpired, fmt.Errorf("failed to purge expired OTP: %w", err)
		}
		return OutcomeExpired, nil
	}

	if record.Code != candidate {
		return OutcomeMismatch, nil
	}

	if err := s.store.MarkUsed(ctx, phone); err != nil {
		return OutcomeValid, fmt.Errorf("failed to mark OTP used: %w", err)
	}
	return OutcomeValid, nil
}

// Consume removes the record for phone after its dependent operation has
// fully succeeded.
func (s *Service) Consume(ctx context.Context, phone string) error {
	if err := s.store.Delete(ctx, phone); err != nil {
		return fmt.Errorf("failed to consume OTP: %w", err)
	}
	s.logger.Debug("OTP service: code consumed", "phone", phone)
	return nil
}

const (
	codeMin = 100000
	codeMax = 999999
)

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", codeMin+n.Int64()), nil
}
