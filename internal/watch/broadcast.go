package watch

import "sync"

// Broadcaster fans change signals out to subscribers. It implements
// store.Notifier, covering the drive mode where the application itself
// announces mutations instead of watching the database files.
//
// Signals carry no payload: the response to any notification is a full
// re-fetch, so subscribers only need to know that something changed.
// Each subscriber channel holds at most one pending signal; signals
// arriving while one is already pending are dropped, which coalesces
// bursts the same way the debounced watcher does.
type Broadcaster struct {
	mu   sync.Mutex
	subs []chan struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers a new subscriber and returns its signal channel.
func (b *Broadcaster) Subscribe() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan struct{}, 1)
	b.subs = append(b.subs, ch)
	return ch
}

// Notify signals every subscriber without blocking.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default: // a signal is already pending
		}
	}
}
