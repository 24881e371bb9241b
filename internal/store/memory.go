package store

import "sync"

// Slot holds the last known-good [Snapshot].
//
// The slot starts empty, is populated on the first successful scrape, and
// is replaced on every subsequent success. Reads and replacements may race
// benignly between concurrent requests; the last writer wins, and the only
// risk is serving a momentarily stale snapshot.
//
// Subscribers receive replacements via buffered channels (buffer size 16).
// Sends are non-blocking; a slow subscriber misses updates rather than
// blocking the refresh path.
type Slot struct {
	mu     sync.RWMutex
	latest *Snapshot

	subMu       sync.RWMutex
	subscribers map[chan Snapshot]struct{}
}

// NewSlot creates an empty [Slot], immediately ready for use.
func NewSlot() *Slot {
	return &Slot{
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Replace stores a new snapshot and notifies all subscribers.
func (s *Slot) Replace(snap Snapshot) {
	s.mu.Lock()
	s.latest = &snap
	s.mu.Unlock()

	s.notifySubscribers(snap)
}

// Latest returns the stored snapshot, if any.
//
// The returned value is a copy; modifications do not affect the slot.
func (s *Slot) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return Snapshot{}, false
	}
	return *s.latest, true
}

// Subscribe creates a subscription and returns its channel.
//
// Caller must call [Slot.Unsubscribe] when done to prevent resource leaks.
func (s *Slot) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 16)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (s *Slot) Unsubscribe(ch <-chan Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for subCh := range s.subscribers {
		if subCh == ch {
			delete(s.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the snapshot to all active subscribers without
// blocking on slow consumers.
func (s *Slot) notifySubscribers(snap Snapshot) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// subscriber is slow, drop the update
		}
	}
}
