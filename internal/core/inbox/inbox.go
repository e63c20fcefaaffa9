// Package inbox is the in-process notification list owned by one session.
package inbox

import (
	"sync"

	"github.com/clikenova/storefront/internal/core/domain"
)

// Inbox holds notifications newest-first. It is safe for concurrent use.
type Inbox struct {
	mu    sync.Mutex
	items []domain.Notification
}

// New returns an empty inbox.
func New() *Inbox {
	return &Inbox{}
}

// Prepend adds n at the head of the list.
func (b *Inbox) Prepend(n domain.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append([]domain.Notification{n}, b.items...)
}

// MarkRead flags the notification with id as read. It reports whether the id
// was found.
func (b *Inbox) MarkRead(id string) bool {
	_, found := b.SetRead(id, true)
	return found
}

// SetRead sets the read flag of id and returns its previous value.
func (b *Inbox) SetRead(id string, read bool) (was, found bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == id {
			was = b.items[i].Read
			b.items[i].Read = read
			return was, true
		}
	}
	return false, false
}

// Clear empties the list.
func (b *Inbox) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = nil
}

// Replace swaps the list for items, keeping at most domain.NotificationLimit.
func (b *Inbox) Replace(items []domain.Notification) {
	if len(items) > domain.NotificationLimit {
		items = items[:domain.NotificationLimit]
	}
	cp := make([]domain.Notification, len(items))
	copy(cp, items)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = cp
}

// Items returns a copy of the list.
func (b *Inbox) Items() []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Notification, len(b.items))
	copy(out, b.items)
	return out
}

// Len reports how many notifications the list holds.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// UnreadCount is derived from the current list on every call.
func (b *Inbox) UnreadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, it := range b.items {
		if !it.Read {
			n++
		}
	}
	return n
}
