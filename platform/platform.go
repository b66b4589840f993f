// Package platform defines the hotkey and clipboard capabilities the agent
// needs. The OS implementations live in platform/native, so packages that only
// need these types do not link any windowing system library.
package platform

import (
	"context"
	"errors"
	"fmt"
)

// KeyCombo represents a keyboard key combination
type KeyCombo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   string // Key name such as "c" or "f8"; empty for a modifier-only combo
}

func (k KeyCombo) String() string {
	var s string
	if k.Ctrl {
		s += "ctrl+"
	}
	if k.Shift {
		s += "shift+"
	}
	if k.Alt {
		s += "alt+"
	}
	if k.Win {
		s += "win+"
	}
	if k.Key == "" && s != "" {
		return s[:len(s)-1]
	}
	return s + k.Key
}

// EventType represents the type of hotkey event
type EventType int

const (
	Pressed EventType = iota
	Released
)

// Event represents a hotkey event
type Event struct {
	Type EventType
}

// Hotkey provides global hotkey detection. The returned channel stops
// receiving events and the OS registration is released once ctx is done.
type Hotkey interface {
	Listen(ctx context.Context, combo KeyCombo) (<-chan Event, error)
}

// Clipboard provides clipboard access
type Clipboard interface {
	Get() (string, error)
	Set(text string) error
}

// ErrCopyShortcutGrabbed is returned for a combo that would stop the copy
// shortcut from reaching applications
var ErrCopyShortcutGrabbed = errors.New("hotkey would swallow the copy shortcut")

// copyShortcuts lists the copy shortcuts of the platforms whose hotkey service
// grabs the registered keystroke. The Windows hook passes keys through.
var copyShortcuts = map[string][]KeyCombo{
	"linux": {
		{Ctrl: true, Key: "c"},
		{Ctrl: true, Shift: true, Key: "c"},
		{Ctrl: true, Key: "insert"},
	},
	"darwin": {
		{Win: true, Key: "c"},
	},
}

// CheckCopyConflict returns ErrCopyShortcutGrabbed when registering combo on
// goos would grab the copy shortcut, so a double press would translate stale
// clipboard contents.
func CheckCopyConflict(goos string, combo KeyCombo) error {
	for _, c := range copyShortcuts[goos] {
		if c == combo {
			return fmt.Errorf("%w: %s on %s, choose another combo such as ctrl+alt+c", ErrCopyShortcutGrabbed, combo, goos)
		}
	}
	return nil
}
