package backend

import (
	"sync"

	"github.com/agrimitra/agrimitra-auth/internal/model"
)

// Notifier fans auth-state changes out to registered callbacks. Both
// backend implementations publish the current user (nil after sign-out)
// whenever their session changes.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(*model.UserProfile)
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(*model.UserProfile))}
}

// Subscribe registers fn. The returned function removes the registration.
func (n *Notifier) Subscribe(fn func(*model.UserProfile)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Publish invokes every registered callback with user.
func (n *Notifier) Publish(user *model.UserProfile) {
	n.mu.Lock()
	subs := make([]func(*model.UserProfile), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}
