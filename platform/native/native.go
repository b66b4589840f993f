// Package native implements the platform capabilities on the host OS.
//
// Windows uses a low-level keyboard hook and the Win32 clipboard. Linux and
// macOS register the hotkey through golang.design/x/hotkey and use
// atotto/clipboard. On Linux the hotkey library needs an X11 display as soon
// as this package is linked, so only the agent binary imports it.
package native

import "markestedt/clipslate/platform"

// send delivers an event without blocking the OS callback thread
func send(events chan<- platform.Event, evt platform.Event) {
	select {
	case events <- evt:
	default:
	}
}
