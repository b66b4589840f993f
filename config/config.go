package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"markestedt/clipslate/platform"
)

const appName = "clipslate"

// Settings holds the application settings stored in settings.toml
type Settings struct {
	Hotkey      HotkeyConfig      `toml:"hotkey" json:"hotkey"`
	Translation TranslationConfig `toml:"translation" json:"translation"`
	Web         WebConfig         `toml:"web" json:"web"`
	UI          UIConfig          `toml:"ui" json:"ui"`
	History     HistoryConfig     `toml:"history" json:"history"`
}

type HotkeyConfig struct {
	Combo string `toml:"combo" json:"combo"`
	// WindowMs is the maximum gap between the two presses of a double press
	WindowMs int `toml:"window_ms" json:"window_ms"`
}

// Window returns the double-press window as a duration
func (h HotkeyConfig) Window() time.Duration {
	return time.Duration(h.WindowMs) * time.Millisecond
}

type TranslationConfig struct {
	SourceLang string `toml:"source_lang" json:"source_lang"`
	TargetLang string `toml:"target_lang" json:"target_lang"`
	CopyResult bool   `toml:"copy_result" json:"copy_result"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	Port    int  `toml:"port" json:"port"`
}

type UIConfig struct {
	Locale  string `toml:"locale" json:"locale"`
	Tray    bool   `toml:"tray" json:"tray"`
	Opacity int    `toml:"opacity" json:"opacity"` // overlay opacity in percent, 20 to 100
}

type HistoryConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
}

// DefaultSettings returns the settings written on first start
func DefaultSettings() *Settings {
	return &Settings{
		Hotkey: HotkeyConfig{
			Combo:    DefaultCombo(runtime.GOOS),
			WindowMs: 500,
		},
		Translation: TranslationConfig{
			SourceLang: "auto",
			TargetLang: "zh",
			CopyResult: false,
		},
		Web: WebConfig{
			Enabled: true,
			Port:    7723,
		},
		UI: UIConfig{
			Locale:  "en",
			Tray:    true,
			Opacity: 100,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// DefaultCombo returns the default hotkey on goos. Only the Windows hook lets
// the copy shortcut through to the focused application; elsewhere the hotkey
// is grabbed, so it defaults to a combo that leaves Ctrl+C alone.
func DefaultCombo(goos string) string {
	if goos == "windows" {
		return "ctrl+c"
	}
	return "ctrl+alt+c"
}

// Dir returns the application config directory, creating it if needed
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}

	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

// SettingsPath returns the path to settings.toml
func SettingsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.toml"), nil
}

// CredentialsPath returns the path to config.json
func CredentialsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadSettings loads settings from path.
// If the file doesn't exist, it creates it with default values
func LoadSettings(path string) (*Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s := DefaultSettings()
		if err := SaveSettings(path, s); err != nil {
			return nil, fmt.Errorf("failed to create default settings: %w", err)
		}
		return s, nil
	}

	// Keys missing from the file keep their defaults
	s := DefaultSettings()
	if _, err := toml.DecodeFile(path, s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	s.normalize()
	return s, nil
}

// SaveSettings writes settings to path as TOML
func SaveSettings(path string, s *Settings) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(s)
}

const (
	minOpacity = 20
	maxOpacity = 100
)

// normalize replaces out-of-range values with defaults and clamps the opacity
func (s *Settings) normalize() {
	d := DefaultSettings()
	if s.Hotkey.WindowMs <= 0 {
		s.Hotkey.WindowMs = d.Hotkey.WindowMs
	}
	if s.Translation.SourceLang == "" {
		s.Translation.SourceLang = d.Translation.SourceLang
	}
	if s.Translation.TargetLang == "" {
		s.Translation.TargetLang = d.Translation.TargetLang
	}
	if s.Web.Port <= 0 || s.Web.Port > 65535 {
		s.Web.Port = d.Web.Port
	}
	s.UI.Opacity = max(minOpacity, min(s.UI.Opacity, maxOpacity))
}

// ParseHotkey parses a hotkey combo string like "ctrl+c" or "ctrl+shift+f8"
func ParseHotkey(combo string) (platform.KeyCombo, error) {
	var kc platform.KeyCombo
	if strings.TrimSpace(combo) == "" {
		return kc, fmt.Errorf("empty hotkey combo")
	}
	parts := strings.Split(strings.ToLower(combo), "+")

	for i, part := range parts {
		part = strings.TrimSpace(part)

		isModifier := false
		switch part {
		case "ctrl", "control":
			kc.Ctrl = true
			isModifier = true
		case "shift":
			kc.Shift = true
			isModifier = true
		case "alt":
			kc.Alt = true
			isModifier = true
		case "win", "windows", "cmd", "super":
			kc.Win = true
			isModifier = true
		}

		// If it's not a modifier and it's the last part, it's the key
		if !isModifier {
			if part == "" {
				return kc, fmt.Errorf("empty key in combo %q", combo)
			}
			if i == len(parts)-1 {
				kc.Key = part
			} else {
				return kc, fmt.Errorf("unknown modifier: %s", part)
			}
		}
	}

	// Key is optional, but a modifier-only combo needs at least one modifier
	if !kc.Ctrl && !kc.Shift && !kc.Alt && !kc.Win {
		return kc, fmt.Errorf("no modifiers specified in combo")
	}

	return kc, nil
}
