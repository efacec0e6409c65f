package realtime

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid calls per key: only the latest call within the
// delay window runs. A superseded call never fires, even if its timer has
// already popped, because each call carries a generation number checked
// under the mutex before running.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	gen     uint64
	pending map[string]uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]uint64),
	}
}

// Call schedules fn to run after the delay, cancelling any pending call for
// the same key. Last write wins.
func (d *Debouncer) Call(key string, fn func()) {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.pending[key] = gen
	d.mu.Unlock()

	time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current, ok := d.pending[key]
		if !ok || current != gen {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops any pending call for the key without running it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	delete(d.pending, key)
	d.mu.Unlock()
}

// CancelAll drops every pending call, e.g. on disconnect.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	d.pending = make(map[string]uint64)
	d.mu.Unlock()
}

// Pending reports whether a call is waiting for the key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.pending[key]
	return ok
}
