//go:build !windows && !darwin && !linux

package native

import (
	"context"
	"fmt"
	"runtime"

	"markestedt/clipslate/platform"
)

type unsupportedHotkey struct{}

// NewHotkey returns a listener that always fails on this platform
func NewHotkey() platform.Hotkey {
	return unsupportedHotkey{}
}

func (unsupportedHotkey) Listen(ctx context.Context, combo platform.KeyCombo) (<-chan platform.Event, error) {
	return nil, fmt.Errorf("global hotkeys are not supported on %s", runtime.GOOS)
}
