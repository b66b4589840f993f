//go:build darwin || linux

package native

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.design/x/hotkey"

	"markestedt/clipslate/platform"
)

// DesignHotkey registers the combo with the OS hotkey service.
// Unlike the Windows hook, a registered combo is grabbed and no longer
// reaches the focused application.
type DesignHotkey struct{}

// NewHotkey creates a hotkey listener backed by golang.design/x/hotkey
func NewHotkey() platform.Hotkey {
	return &DesignHotkey{}
}

// Listen registers the combo and reports presses until ctx is done
func (h *DesignHotkey) Listen(ctx context.Context, combo platform.KeyCombo) (<-chan platform.Event, error) {
	mods, key, err := designCombo(combo)
	if err != nil {
		return nil, err
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("failed to register hotkey: %w", err)
	}

	events := make(chan platform.Event, 10)
	go func() {
		defer func() {
			if err := hk.Unregister(); err != nil {
				slog.Warn("Failed to unregister hotkey", "error", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-hk.Keydown():
				send(events, platform.Event{Type: platform.Pressed})
			case <-hk.Keyup():
				send(events, platform.Event{Type: platform.Released})
			}
		}
	}()

	return events, nil
}

func designCombo(combo platform.KeyCombo) ([]hotkey.Modifier, hotkey.Key, error) {
	if err := platform.CheckCopyConflict(runtime.GOOS, combo); err != nil {
		return nil, 0, err
	}

	var mods []hotkey.Modifier
	if combo.Ctrl {
		mods = append(mods, modifierMap[modCtrl])
	}
	if combo.Shift {
		mods = append(mods, modifierMap[modShift])
	}
	if combo.Alt {
		mods = append(mods, modifierMap[modAlt])
	}
	if combo.Win {
		mods = append(mods, modifierMap[modSuper])
	}

	if combo.Key == "" {
		return nil, 0, fmt.Errorf("modifier-only hotkeys are only supported on Windows")
	}
	key, ok := designKeys[combo.Key]
	if !ok {
		return nil, 0, fmt.Errorf("unknown key: %s", combo.Key)
	}

	return mods, key, nil
}

type modifier int

const (
	modCtrl modifier = iota
	modShift
	modAlt
	modSuper
)

var designKeys = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
	"space": hotkey.KeySpace, "enter": hotkey.KeyReturn, "esc": hotkey.KeyEscape,
	"tab": hotkey.KeyTab,
}
