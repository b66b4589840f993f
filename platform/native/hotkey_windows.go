//go:build windows

package native

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"markestedt/clipslate/platform"
)

var (
	setWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	callNextHookEx      = user32.NewProc("CallNextHookEx")
	unhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	getMessage          = user32.NewProc("GetMessageW")
	postThreadMessage   = user32.NewProc("PostThreadMessageW")
	getAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
)

const (
	whKeyboardLL = 13
	wmKeydown    = 0x0100
	wmSyskeydown = 0x0104
	wmQuit       = 0x0012
)

const (
	vkShift = 0x10
	vkCtrl  = 0x11
	vkAlt   = 0x12
	vkLwin  = 0x5B // Left Windows key
	vkRwin  = 0x5C // Right Windows key
)

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// WindowsHotkey observes the combo through a low-level keyboard hook.
// Every key is passed on to the next hook, so a combo such as Ctrl+C keeps
// copying in the foreground application.
type WindowsHotkey struct {
	mu       sync.Mutex
	combo    platform.KeyCombo
	vk       uint32
	pressed  bool
	events   chan platform.Event
	threadID uint32
}

// NewHotkey creates a new Windows hotkey listener
func NewHotkey() platform.Hotkey {
	return &WindowsHotkey{}
}

// Listen installs the keyboard hook and reports combo presses until ctx is done
func (h *WindowsHotkey) Listen(ctx context.Context, combo platform.KeyCombo) (<-chan platform.Event, error) {
	vk, err := vkCode(combo.Key)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.combo = combo
	h.vk = vk
	h.pressed = false
	h.events = make(chan platform.Event, 10)
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go h.runHook(errCh)

	select {
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		tid := h.threadID
		h.mu.Unlock()
		postThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
	}()

	return h.events, nil
}

func (h *WindowsHotkey) runHook(errCh chan<- error) {
	// The hook is bound to the installing thread, which must also pump messages
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hookProc := func(nCode int32, wParam uintptr, lParam uintptr) uintptr {
		if nCode >= 0 {
			kbInfo := (*kbdllhookstruct)(unsafe.Pointer(lParam))
			h.handleKeyEvent(wParam, kbInfo)
		}
		r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return r
	}

	hook, _, err := setWindowsHookEx.Call(
		whKeyboardLL,
		windows.NewCallback(hookProc),
		0,
		0,
	)
	if hook == 0 {
		errCh <- fmt.Errorf("SetWindowsHookEx failed: %w", err)
		return
	}
	defer unhookWindowsHookEx.Call(hook)

	h.mu.Lock()
	h.threadID = windows.GetCurrentThreadId()
	h.mu.Unlock()

	errCh <- nil

	// GetMessage returns 0 on WM_QUIT and -1 on error
	var m msg
	for {
		r, _, _ := getMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			return
		}
	}
}

func (h *WindowsHotkey) handleKeyEvent(wParam uintptr, kbInfo *kbdllhookstruct) {
	if !h.isComboKey(kbInfo.vkCode) {
		return
	}

	isKeyDown := wParam == wmKeydown || wParam == wmSyskeydown

	h.mu.Lock()
	defer h.mu.Unlock()

	if isKeyDown {
		// Auto-repeat delivers repeated key-downs; only the first one counts
		if h.pressed || !h.checkModifiers() {
			return
		}
		h.pressed = true
		send(h.events, platform.Event{Type: platform.Pressed})
		return
	}

	if h.pressed {
		h.pressed = false
		send(h.events, platform.Event{Type: platform.Released})
	}
}

// isComboKey reports whether vk is the combo's trigger key. For a
// modifier-only combo any of its modifiers is the trigger.
func (h *WindowsHotkey) isComboKey(vk uint32) bool {
	if h.vk != 0 {
		return vk == h.vk
	}
	switch {
	case h.combo.Ctrl && vk == vkCtrl:
		return true
	case h.combo.Shift && vk == vkShift:
		return true
	case h.combo.Alt && vk == vkAlt:
		return true
	case h.combo.Win && (vk == vkLwin || vk == vkRwin):
		return true
	}
	return false
}

func (h *WindowsHotkey) checkModifiers() bool {
	ctrl := isKeyPressed(vkCtrl)
	shift := isKeyPressed(vkShift)
	alt := isKeyPressed(vkAlt)
	win := isKeyPressed(vkLwin) || isKeyPressed(vkRwin)

	return ctrl == h.combo.Ctrl &&
		shift == h.combo.Shift &&
		alt == h.combo.Alt &&
		win == h.combo.Win
}

func isKeyPressed(vk int) bool {
	r, _, _ := getAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}

// vkCode returns the Windows virtual key code for a key name.
// Returns 0 for an empty name (modifier-only hotkey).
func vkCode(key string) (uint32, error) {
	if key == "" {
		return 0, nil
	}

	if len(key) == 1 {
		c := key[0]
		switch {
		case c >= 'a' && c <= 'z':
			return uint32(c - 'a' + 0x41), nil
		case c >= '0' && c <= '9':
			return uint32(c - '0' + 0x30), nil
		}
	}

	codes := map[string]uint32{
		"f1": 0x70, "f2": 0x71, "f3": 0x72, "f4": 0x73,
		"f5": 0x74, "f6": 0x75, "f7": 0x76, "f8": 0x77,
		"f9": 0x78, "f10": 0x79, "f11": 0x7A, "f12": 0x7B,
		"space": 0x20, "enter": 0x0D, "esc": 0x1B,
		"tab": 0x09, "backspace": 0x08, "insert": 0x2D,
	}

	if code, ok := codes[key]; ok {
		return code, nil
	}

	return 0, fmt.Errorf("unknown key: %s", key)
}
