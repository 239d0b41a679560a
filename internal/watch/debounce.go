package watch

import (
	"sync"
	"time"
)

// DefaultWindow is the debounce window for change notifications. Bursts of
// notifications inside one window collapse into a single re-fetch.
const DefaultWindow = 300 * time.Millisecond

// Debouncer coalesces rapid triggers into a single trailing-edge call.
// Each new trigger resets the pending timer rather than queueing another
// call, so a burst fires exactly once, after the burst ends.
type Debouncer struct {
	mu     sync.Mutex
	timer  *time.Timer
	window time.Duration
}

// NewDebouncer creates a debouncer with the given window. A non-positive
// window falls back to DefaultWindow.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{window: window}
}

// Trigger schedules fn to run once the window elapses without another
// trigger. A pending timer is reset, not accumulated.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
