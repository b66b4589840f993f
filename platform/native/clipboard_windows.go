//go:build windows

package native

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"markestedt/clipslate/platform"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	kernel32         = windows.NewLazySystemDLL("kernel32.dll")
	openClipboard    = user32.NewProc("OpenClipboard")
	closeClipboard   = user32.NewProc("CloseClipboard")
	emptyClipboard   = user32.NewProc("EmptyClipboard")
	getClipboardData = user32.NewProc("GetClipboardData")
	setClipboardData = user32.NewProc("SetClipboardData")
	globalAlloc      = kernel32.NewProc("GlobalAlloc")
	globalLock       = kernel32.NewProc("GlobalLock")
	globalUnlock     = kernel32.NewProc("GlobalUnlock")
)

const (
	cfUnicodeText = 13
	gmemMoveable  = 0x0002
)

// WindowsClipboard implements platform.Clipboard with the Win32 clipboard API
type WindowsClipboard struct{}

// NewClipboard creates a new Windows clipboard instance
func NewClipboard() platform.Clipboard {
	return &WindowsClipboard{}
}

// Get returns the clipboard text, or "" when it holds no text
func (c *WindowsClipboard) Get() (string, error) {
	var text string
	err := withClipboard(func() error {
		h, _, err := getClipboardData.Call(cfUnicodeText)
		if h == 0 {
			if err != nil && err != syscall.Errno(0) {
				return fmt.Errorf("GetClipboardData failed: %w", err)
			}
			return nil
		}

		l, _, err := globalLock.Call(h)
		if l == 0 {
			return fmt.Errorf("GlobalLock failed: %w", err)
		}
		defer globalUnlock.Call(h)

		text = windows.UTF16PtrToString((*uint16)(unsafe.Pointer(l)))
		return nil
	})
	return text, err
}

// Set replaces the clipboard contents with text
func (c *WindowsClipboard) Set(text string) error {
	utf16, err := windows.UTF16FromString(text)
	if err != nil {
		return fmt.Errorf("UTF16 conversion failed: %w", err)
	}

	return withClipboard(func() error {
		emptyClipboard.Call()

		h, _, err := globalAlloc.Call(gmemMoveable, uintptr(len(utf16)*2))
		if h == 0 {
			return fmt.Errorf("GlobalAlloc failed: %w", err)
		}

		l, _, err := globalLock.Call(h)
		if l == 0 {
			return fmt.Errorf("GlobalLock failed: %w", err)
		}
		copy(unsafe.Slice((*uint16)(unsafe.Pointer(l)), len(utf16)), utf16)
		globalUnlock.Call(h)

		// The system owns h once SetClipboardData succeeds
		r, _, err := setClipboardData.Call(cfUnicodeText, h)
		if r == 0 {
			return fmt.Errorf("SetClipboardData failed: %w", err)
		}
		return nil
	})
}

// withClipboard opens the clipboard, runs fn and closes it again. Another
// process may hold the clipboard briefly right after a copy, so opening is
// retried for up to 100ms.
func withClipboard(fn func() error) error {
	opened := false
	for i := 0; i < 10; i++ {
		if r, _, _ := openClipboard.Call(0); r != 0 {
			opened = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !opened {
		return fmt.Errorf("failed to open clipboard after retries")
	}
	defer closeClipboard.Call()

	return fn()
}
