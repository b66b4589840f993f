// Package trigger turns raw hotkey presses into a double-press signal.
//
// A signal fires when a press arrives strictly less than the window after the
// previous press. The reference time moves on every press, fired or not, so
// three presses 0.3s apart fire on the second and third, while presses at
// 0, 0.3 and 0.9 fire only on the second.
package trigger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"markestedt/clipslate/platform"
)

// DefaultWindow is the maximum gap between two presses of a double-press
const DefaultWindow = 500 * time.Millisecond

// Trigger detects double presses of a single hotkey
type Trigger struct {
	mu       sync.Mutex
	now      func() time.Time
	window   time.Duration
	last     time.Time
	onDouble func()
	release  context.CancelFunc
	stopped  bool
}

// Option customizes a Trigger
type Option func(*Trigger)

// WithClock replaces time.Now as the source of press timestamps
func WithClock(now func() time.Time) Option {
	return func(t *Trigger) {
		t.now = now
	}
}

// WithWindow sets the double-press window. Non-positive values are ignored.
func WithWindow(window time.Duration) Option {
	return func(t *Trigger) {
		if window > 0 {
			t.window = window
		}
	}
}

// New creates a Trigger that calls onDouble on every detected double press.
// onDouble runs synchronously on the goroutine delivering the press, so it
// should hand work off rather than block, and it must not call Stop.
func New(onDouble func(), opts ...Option) *Trigger {
	t := &Trigger{
		now:      time.Now,
		window:   DefaultWindow,
		onDouble: onDouble,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnRawEvent records one press of the hotkey
func (t *Trigger) OnRawEvent() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	now := t.now()
	// The zero time is far enough in the past that the first press never fires
	if !t.last.IsZero() && now.Sub(t.last) < t.window {
		slog.Info("Double press detected", "gap", now.Sub(t.last))
		t.onDouble()
	}
	t.last = now
}

// Listen installs the OS hotkey and feeds its presses into the trigger until
// ctx is done or Stop is called. A failure to install the hook is returned.
func (t *Trigger) Listen(ctx context.Context, hk platform.Hotkey, combo platform.KeyCombo) error {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		cancel()
		return nil
	}
	t.release = cancel
	t.mu.Unlock()

	events, err := hk.Listen(ctx, combo)
	if err != nil {
		cancel()
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					slog.Debug("Hotkey event channel closed")
					return
				}
				if evt.Type == platform.Pressed {
					t.OnRawEvent()
				}
			}
		}
	}()

	return nil
}

// Stop releases the hotkey registration. No callback runs after Stop
// returns. Calling Stop more than once is safe.
func (t *Trigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	if t.release != nil {
		t.release()
	}
}
