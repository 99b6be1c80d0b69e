package sms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/agrimitra/agrimitra-auth/internal/config"
	"github.com/agrimitra/agrimitra-auth/internal/logger"
)

// Result reports the outcome of one delivery attempt. Delivery failure is
// an expected, recoverable condition, so it is carried in the result rather
// than as a Go error; callers check Delivered and let the user retry.
type Result struct {
	Delivered         bool
	ProviderMessageID string
	Err               string
}

// Provider transmits a message to a phone number. Providers differ only in
// endpoint and auth-header shape.
type Provider interface {
	Name() string
	Send(ctx context.Context, phone, message string) (messageID string, err error)
}

// Sender delivers OTP codes through exactly one configured provider.
type Sender struct {
	provider Provider
	timeout  time.Duration
	logger   *logger.Logger
}

// NewSender selects a provider from configuration. The console provider is
// the development channel: it surfaces codes through in-process
// notifications instead of a network transmission.
func NewSender(cfg config.SMS, logger *logger.Logger) (*Sender, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	var provider Provider
	switch cfg.Provider {
	case "console", "":
		provider = NewConsole(logger)
	case "fast2sms":
		provider = NewFast2SMS(client, cfg.APIKey, cfg.SenderID)
	case "msg91":
		provider = NewMSG91(client, cfg.APIKey, cfg.SenderID)
	case "twilio":
		provider = NewTwilio(client, cfg.AccountSID, cfg.APIKey, cfg.From)
	default:
		return nil, fmt.Errorf("unknown SMS provider %q", cfg.Provider)
	}

	return &Sender{provider: provider, timeout: cfg.Timeout, logger: logger}, nil
}

// NewSenderWithProvider creates a Sender over an explicit provider.
func NewSenderWithProvider(provider Provider, timeout time.Duration, logger *logger.Logger) *Sender {
	return &Sender{provider: provider, timeout: timeout, logger: logger}
}

// Console returns the console provider when it is the configured channel,
// so callers can subscribe to development notifications.
func (s *Sender) Console() (*Console, bool) {
	c, ok := s.provider.(*Console)
	return c, ok
}

// SendOTP delivers code to phone. Provider errors never propagate as Go
// errors; they come back as Result{Delivered: false}.
func (s *Sender) SendOTP(ctx context.Context, phone, code string) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	message := fmt.Sprintf("Your AgriMitra verification code is %s. It expires in 5 minutes.", code)

	id, err := s.provider.Send(ctx, phone, message)
	if err != nil {
		s.logger.Error("SMS sender: delivery failed",
			"provider", s.provider.Name(),
			"phone", phone,
			"error", err.Error())
		return Result{Delivered: false, Err: err.Error()}
	}

	s.logger.Info("SMS sender: delivered",
		"provider", s.provider.Name(),
		"phone", phone,
		"message_id", id)
	return Result{Delivered: true, ProviderMessageID: id}
}
