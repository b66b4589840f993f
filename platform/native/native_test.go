package native

import (
	"testing"

	"markestedt/clipslate/platform"
)

func TestSend_DropsWhenFull(t *testing.T) {
	events := make(chan platform.Event, 1)

	send(events, platform.Event{Type: platform.Pressed})
	// A full channel must not block the OS callback
	send(events, platform.Event{Type: platform.Released})

	if len(events) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(events))
	}
	if evt := <-events; evt.Type != platform.Pressed {
		t.Errorf("expected the first event to be kept, got %v", evt.Type)
	}
}
