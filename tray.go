package main

import (
	_ "embed"
	"unicode/utf8"

	"markestedt/clipslate/storage"
	"markestedt/clipslate/systray"
)

//go:embed assets/icon.ico
var iconData []byte

// tooltipLimit caps the translation preview shown in the tray tooltip
const tooltipLimit = 60

// trayOverlay mirrors statuses and results in the tray tooltip
type trayOverlay struct {
	tray *systray.Manager
}

func (t trayOverlay) BroadcastStatus(status string) {
	t.tray.SetStatus(status)
}

func (t trayOverlay) BroadcastTranslation(_ *storage.Translation, text string) {
	t.tray.SetStatus(truncate(text, tooltipLimit))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
