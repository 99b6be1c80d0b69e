package sms

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agrimitra/agrimitra-auth/internal/logger"
)

// displayWindow is how long a development notification stays dismissible
// before the UI should drop it on its own.
const displayWindow = 30 * time.Second

// Notification is a development-mode OTP surfaced in-process instead of
// over a carrier network. DismissAt tells the UI when to auto-dismiss.
type Notification struct {
	Phone     string
	Code      string
	Message   string
	DismissAt time.Time
}

// Console is the development delivery channel. It reports delivered: the
// code does reach the user, just through a notification instead of a
// carrier, so upstream flow logic stays identical between dev and prod.
type Console struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Notification)
	logger *logger.Logger
	now    func() time.Time
}

// NewConsole creates the development delivery channel.
func NewConsole(logger *logger.Logger) *Console {
	return &Console{
		subs:   make(map[int]func(Notification)),
		logger: logger,
		now:    time.Now,
	}
}

func (c *Console) Name() string { return "console" }

// Subscribe registers fn to receive every development notification. The
// returned function removes the registration.
func (c *Console) Subscribe(fn func(Notification)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// Send logs the message and fans it out to subscribers.
func (c *Console) Send(_ context.Context, phone, message string) (string, error) {
	n := Notification{
		Phone:     phone,
		Code:      codePattern.FindString(message),
		Message:   message,
		DismissAt: c.now().Add(displayWindow),
	}

	c.logger.Info("SMS console: development OTP",
		"phone", phone,
		"code", n.Code)

	c.mu.Lock()
	subs := make([]func(Notification), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}

	return "console-" + uuid.NewString(), nil
}
