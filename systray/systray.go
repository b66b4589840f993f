package systray

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/getlantern/systray"
)

// Manager manages the system tray icon and menu
type Manager struct {
	overlayURL string
	iconData   []byte
	quit       chan struct{}
	quitOnce   sync.Once

	// ready is closed once the tray window exists and can process Quit
	ready     chan struct{}
	readyOnce sync.Once
	shown     atomic.Bool
	exit      func()
}

// NewManager creates a tray manager whose "Open overlay" item opens
// overlayURL in the default browser
func NewManager(overlayURL string, iconData []byte) *Manager {
	return &Manager{
		overlayURL: overlayURL,
		iconData:   iconData,
		quit:       make(chan struct{}),
		ready:      make(chan struct{}),
		exit:       systray.Quit,
	}
}

// Run starts the system tray (blocking call)
func (m *Manager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop removes the tray icon and makes Run return. A quit requested before
// the tray window exists would be lost, so Stop first waits for the tray to
// become ready.
func (m *Manager) Stop() {
	<-m.ready
	m.exit()
}

// markReady records that the tray can take status updates and quit requests
func (m *Manager) markReady() {
	m.shown.Store(true)
	m.readyOnce.Do(func() { close(m.ready) })
}

// WaitForQuit returns a channel that will be closed when user clicks Quit
func (m *Manager) WaitForQuit() <-chan struct{} {
	return m.quit
}

// SetStatus shows text in the tooltip. Calls before the tray is ready are
// dropped.
func (m *Manager) SetStatus(text string) {
	if !m.shown.Load() {
		return
	}
	systray.SetTooltip("clipslate - " + text)
}

func (m *Manager) onReady() {
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}

	systray.SetTitle("clipslate")
	systray.SetTooltip("clipslate - Clipboard translation")

	mOpen := systray.AddMenuItem("Open overlay", "Show the latest translation")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit clipslate")
	m.markReady()

	go func() {
		for {
			select {
			case <-mOpen.ClickedCh:
				if err := OpenBrowser(m.overlayURL); err != nil {
					slog.Error("Failed to open overlay", "error", err)
				}
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				m.quitOnce.Do(func() { close(m.quit) })
				m.exit()
				return
			}
		}
	}()
}

func (m *Manager) onExit() {
	m.shown.Store(false)
	slog.Info("System tray exited")
}

// browserCommand returns the command that opens url on goos
func browserCommand(goos, url string) (string, []string, bool) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, true
	case "darwin":
		return "open", []string{url}, true
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, true
	default:
		return "", nil, false
	}
}

// OpenBrowser opens url in the default browser
func OpenBrowser(url string) error {
	name, args, ok := browserCommand(runtime.GOOS, url)
	if !ok {
		return fmt.Errorf("opening a browser is not supported on %s", runtime.GOOS)
	}

	slog.Info("Opening overlay", "url", url)
	return exec.Command(name, args...).Start()
}
