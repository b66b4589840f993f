package trigger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"markestedt/clipslate/platform"
)

// fakeClock returns the times set by the test
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Set(seconds float64) {
	c.now = time.Unix(1_700_000_000, 0).Add(time.Duration(seconds * float64(time.Second)))
}

// press feeds presses at the given offsets (seconds) and reports which fired
func press(t *testing.T, offsets ...float64) []bool {
	t.Helper()

	clock := &fakeClock{}
	fired := 0
	trig := New(func() { fired++ }, WithClock(clock.Now))

	result := make([]bool, len(offsets))
	for i, off := range offsets {
		before := fired
		clock.Set(off)
		trig.OnRawEvent()
		result[i] = fired > before
	}
	return result
}

func TestTrigger_Sequences(t *testing.T) {
	tests := []struct {
		name    string
		offsets []float64
		want    []bool
	}{
		{
			name:    "single press",
			offsets: []float64{0},
			want:    []bool{false},
		},
		{
			name:    "two presses 0.3s apart",
			offsets: []float64{0, 0.3},
			want:    []bool{false, true},
		},
		{
			name:    "two presses exactly at the window",
			offsets: []float64{0, 0.5},
			want:    []bool{false, false},
		},
		{
			name:    "two presses just inside the window",
			offsets: []float64{0, 0.499},
			want:    []bool{false, true},
		},
		{
			name:    "presses at 0, 0.3, 0.9",
			offsets: []float64{0, 0.3, 0.9},
			want:    []bool{false, true, false},
		},
		{
			name:    "reference resets on a press that did not fire",
			offsets: []float64{0, 1.0, 1.2},
			want:    []bool{false, false, true},
		},
		{
			name:    "reference resets on a press that fired",
			offsets: []float64{0, 0.3, 0.6},
			want:    []bool{false, true, true},
		},
		{
			name:    "slow presses never fire",
			offsets: []float64{0, 1, 2, 3},
			want:    []bool{false, false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := press(t, tt.offsets...)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("press %d at %.3fs: fired = %v, want %v", i, tt.offsets[i], got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTrigger_FirstPressAfterZeroTime(t *testing.T) {
	// A clock that starts at the zero time must not make the first press fire
	fired := 0
	trig := New(func() { fired++ }, WithClock(func() time.Time { return time.Time{} }))
	trig.OnRawEvent()
	if fired != 0 {
		t.Errorf("expected no signal on the first press, got %d", fired)
	}
}

func TestTrigger_WithWindow(t *testing.T) {
	clock := &fakeClock{}
	fired := 0
	trig := New(func() { fired++ }, WithClock(clock.Now), WithWindow(time.Second))

	clock.Set(0)
	trig.OnRawEvent()
	clock.Set(0.8)
	trig.OnRawEvent()

	if fired != 1 {
		t.Errorf("expected 1 signal with a 1s window, got %d", fired)
	}
}

func TestTrigger_WithWindow_IgnoresNonPositive(t *testing.T) {
	trig := New(func() {}, WithWindow(0))
	if trig.window != DefaultWindow {
		t.Errorf("expected default window, got %v", trig.window)
	}
}

func TestTrigger_StopSuppressesCallbacks(t *testing.T) {
	clock := &fakeClock{}
	fired := 0
	trig := New(func() { fired++ }, WithClock(clock.Now))

	clock.Set(0)
	trig.OnRawEvent()
	trig.Stop()
	clock.Set(0.1)
	trig.OnRawEvent()

	if fired != 0 {
		t.Errorf("expected no signal after Stop, got %d", fired)
	}
}

func TestTrigger_StopIsIdempotent(t *testing.T) {
	trig := New(func() {})
	trig.Stop()
	trig.Stop()
}

// fakeHotkey hands out a channel the test drives
type fakeHotkey struct {
	events chan platform.Event
	ctx    context.Context
	err    error
}

func (h *fakeHotkey) Listen(ctx context.Context, combo platform.KeyCombo) (<-chan platform.Event, error) {
	if h.err != nil {
		return nil, h.err
	}
	h.ctx = ctx
	return h.events, nil
}

func TestTrigger_Listen(t *testing.T) {
	clock := &fakeClock{}
	clock.Set(0)
	fired := make(chan struct{}, 1)
	trig := New(func() { fired <- struct{}{} }, WithClock(clock.Now))

	hk := &fakeHotkey{events: make(chan platform.Event)}
	if err := trig.Listen(context.Background(), hk, platform.KeyCombo{Ctrl: true, Key: "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unbuffered sends return only once the listener goroutine has taken the event
	hk.events <- platform.Event{Type: platform.Pressed}
	hk.events <- platform.Event{Type: platform.Released}
	hk.events <- platform.Event{Type: platform.Pressed}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected a double-press signal")
	}

	trig.Stop()

	select {
	case <-hk.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected Stop to release the hotkey")
	}
}

func TestTrigger_Listen_HookFailure(t *testing.T) {
	trig := New(func() {})
	hookErr := errors.New("hook unavailable")

	err := trig.Listen(context.Background(), &fakeHotkey{err: hookErr}, platform.KeyCombo{Ctrl: true, Key: "c"})
	if !errors.Is(err, hookErr) {
		t.Errorf("expected hook error, got %v", err)
	}
}

func TestTrigger_Listen_ClosedChannel(t *testing.T) {
	clock := &fakeClock{}
	clock.Set(0)
	var fired atomic.Int32
	trig := New(func() { fired.Add(1) }, WithClock(clock.Now))
	defer trig.Stop()

	hk := &fakeHotkey{events: make(chan platform.Event)}
	if err := trig.Listen(context.Background(), hk, platform.KeyCombo{Ctrl: true, Key: "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A closed channel yields zero events, which read as presses
	close(hk.events)
	time.Sleep(50 * time.Millisecond)

	if n := fired.Load(); n != 0 {
		t.Errorf("expected no signal from a closed channel, got %d", n)
	}
}
