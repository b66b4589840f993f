//go:build !windows

package native

import (
	"fmt"

	"github.com/atotto/clipboard"

	"markestedt/clipslate/platform"
)

// SystemClipboard reads and writes the clipboard through xclip, xsel,
// wl-clipboard or pbcopy, whichever the host provides
type SystemClipboard struct{}

// NewClipboard creates a clipboard backed by the host's clipboard tools
func NewClipboard() platform.Clipboard {
	return &SystemClipboard{}
}

// Get returns the clipboard text
func (c *SystemClipboard) Get() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("no clipboard utility available")
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}

// Set replaces the clipboard contents with text
func (c *SystemClipboard) Set(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}
