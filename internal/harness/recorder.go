package harness

import (
	"sync"
	"sync/atomic"
)

// Recorder collects listener firings stamped with a monotonic logical tick.
//
// Ticks are strictly increasing across all listeners of a run, so a
// recorded firing carries its global position even when inspected in
// isolation. No wall-clock time is involved.
//
// Thread-safety: listeners produced by Listener may run concurrently.
type Recorder struct {
	tick atomic.Int64

	mu      sync.Mutex
	firings []Firing
}

// NewRecorder creates an empty recorder. The first recorded firing gets
// tick 1.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Listener returns a niladic listener that records one firing under the
// given phase and label each time it is invoked.
func (r *Recorder) Listener(phase, label string) func() {
	return func() {
		r.mu.Lock()
		r.firings = append(r.firings, Firing{
			Phase:    phase,
			Listener: label,
			Tick:     r.tick.Add(1),
		})
		r.mu.Unlock()
	}
}

// Firings returns a copy of the recorded firings in recording order.
func (r *Recorder) Firings() []Firing {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Firing, len(r.firings))
	copy(out, r.firings)
	return out
}

// Current returns the tick of the most recent firing, or 0 if none.
func (r *Recorder) Current() int64 {
	return r.tick.Load()
}

// Reset clears recorded firings and rewinds the tick to 0.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.firings = nil
	r.tick.Store(0)
}
