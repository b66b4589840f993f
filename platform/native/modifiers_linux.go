//go:build linux

package native

import "golang.design/x/hotkey"

// On X11 Alt is Mod1 and Super is Mod4
var modifierMap = map[modifier]hotkey.Modifier{
	modCtrl:  hotkey.ModCtrl,
	modShift: hotkey.ModShift,
	modAlt:   hotkey.Mod1,
	modSuper: hotkey.Mod4,
}
