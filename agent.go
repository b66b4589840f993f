package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"markestedt/clipslate/config"
	"markestedt/clipslate/messages"
	"markestedt/clipslate/platform"
	"markestedt/clipslate/postprocess"
	"markestedt/clipslate/storage"
	"markestedt/clipslate/translate"
	"markestedt/clipslate/trigger"
)

// Translator is the part of translate.Client the agent uses
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (*translate.Result, error)
	Backend() translate.Backend
}

// History records translation attempts
type History interface {
	SaveTranslation(t *storage.Translation) error
}

// Overlay shows results to the user
type Overlay interface {
	BroadcastStatus(status string)
	BroadcastTranslation(t *storage.Translation, text string)
}

// Agent coordinates hotkey detection, clipboard access and translation
type Agent struct {
	settings   *config.Settings
	clipboard  platform.Clipboard
	cleaner    *postprocess.Pipeline
	catalog    *messages.Catalog
	history    History
	overlays   []Overlay
	clientOpts []translate.Option

	mu     sync.RWMutex
	client Translator

	// activations holds at most one pending double press
	activations chan struct{}
}

// AgentOption customizes an Agent
type AgentOption func(*Agent)

// WithHistory records every translation attempt in h
func WithHistory(h History) AgentOption {
	return func(a *Agent) {
		a.history = h
	}
}

// WithOverlay sends statuses and results to o
func WithOverlay(o Overlay) AgentOption {
	return func(a *Agent) {
		a.overlays = append(a.overlays, o)
	}
}

// WithClientOptions applies opts to every translation client the agent builds
func WithClientOptions(opts ...translate.Option) AgentOption {
	return func(a *Agent) {
		a.clientOpts = append(a.clientOpts, opts...)
	}
}

// NewAgent creates a new agent instance
func NewAgent(settings *config.Settings, creds config.Credentials, clipboard platform.Clipboard, opts ...AgentOption) *Agent {
	a := &Agent{
		settings:    settings,
		clipboard:   clipboard,
		cleaner:     postprocess.CleanClipboard(),
		catalog:     messages.New(settings.UI.Locale),
		activations: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.SetCredentials(creds)
	return a
}

// SetCredentials replaces the translation client. Calls in flight finish on
// the client they started with.
func (a *Agent) SetCredentials(creds config.Credentials) {
	tc := creds.Translate()
	if !tc.Backend.Valid() {
		slog.Warn("Unsupported translation service, translations will fail", "service", creds.TranslationService)
	}

	client := translate.NewClient(tc, a.clientOpts...)

	a.mu.Lock()
	a.client = client
	a.mu.Unlock()

	slog.Info("Translation client configured", "backend", tc.Backend)
}

func (a *Agent) translator() Translator {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client
}

// Activate queues a translation of the clipboard. It never blocks; a press
// while one activation is already pending is dropped.
func (a *Agent) Activate() {
	select {
	case a.activations <- struct{}{}:
	default:
		slog.Debug("Activation already pending, ignoring")
	}
}

// Run starts the agent's main event loop. A failure to install the hotkey
// hook is returned immediately.
func (a *Agent) Run(ctx context.Context, hk platform.Hotkey) error {
	combo, err := config.ParseHotkey(a.settings.Hotkey.Combo)
	if err != nil {
		return fmt.Errorf("failed to parse hotkey: %w", err)
	}

	trig := trigger.New(a.Activate, trigger.WithWindow(a.settings.Hotkey.Window()))
	if err := trig.Listen(ctx, hk, combo); err != nil {
		return fmt.Errorf("failed to start hotkey listener: %w", err)
	}
	defer trig.Stop()

	slog.Info("clipslate started",
		"hotkey", a.settings.Hotkey.Combo,
		"window", a.settings.Hotkey.Window(),
		"backend", a.translator().Backend(),
		"from", a.settings.Translation.SourceLang,
		"to", a.settings.Translation.TargetLang,
		"locale", a.catalog.Locale(),
	)
	a.broadcastReady()

	// Main event loop
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.activations:
			a.HandleActivation(ctx)
		}
	}
}

// HandleActivation translates the clipboard text and shows the result.
// It returns the recorded attempt, or nil when nothing was translated.
func (a *Agent) HandleActivation(ctx context.Context) *storage.Translation {
	a.broadcastStatus(a.catalog.T(messages.Translating))

	raw, err := a.clipboard.Get()
	if err != nil {
		slog.Error("Failed to read clipboard", "error", err)
		a.broadcastStatus(a.catalog.T(messages.ClipboardError))
		return nil
	}

	text, err := a.cleaner.Process(ctx, raw)
	if err != nil {
		slog.Error("Failed to clean clipboard text", "error", err)
	}
	if text == "" {
		slog.Info("Clipboard empty, nothing to translate")
		a.broadcastStatus(a.catalog.T(messages.ClipboardEmpty))
		return nil
	}

	record := a.translate(ctx, text)
	a.broadcastReady()
	return record
}

// translate runs one translation and delivers the outcome everywhere it goes
func (a *Agent) translate(ctx context.Context, text string) *storage.Translation {
	client := a.translator()
	src := a.settings.Translation.SourceLang
	dst := a.settings.Translation.TargetLang

	record := &storage.Translation{
		RequestID:  uuid.NewString(),
		Timestamp:  time.Now(),
		Backend:    string(client.Backend()),
		SourceLang: src,
		TargetLang: dst,
		SourceText: text,
	}

	start := time.Now()
	res, err := client.Translate(translate.WithRequestID(ctx, record.RequestID), text, src, dst)
	record.LatencyMs = time.Since(start).Milliseconds()

	var display string
	if err != nil {
		record.ErrorMessage = err.Error()
		display = a.catalog.T(placeholderFor(err))
	} else {
		record.Success = true
		record.TranslatedText = res.Text
		display = res.Text
		slog.Info("Translated", "request_id", record.RequestID, "backend", res.Backend, "latency", res.Latency)

		if a.settings.Translation.CopyResult {
			if err := a.clipboard.Set(res.Text); err != nil {
				slog.Error("Failed to copy translation to clipboard", "error", err)
			}
		}
	}

	if a.history != nil {
		if err := a.history.SaveTranslation(record); err != nil {
			slog.Error("Failed to save translation", "error", err)
		}
	}

	for _, o := range a.overlays {
		o.BroadcastTranslation(record, display)
	}

	return record
}

// placeholderFor picks the message shown instead of a translation
func placeholderFor(err error) string {
	switch {
	case errors.Is(err, translate.ErrUnsupportedBackend):
		return messages.UnsupportedConfig
	case errors.Is(err, translate.ErrNoTranslation), errors.Is(err, translate.ErrBackend):
		return messages.NoTranslation
	default:
		return messages.TranslationError
	}
}

// broadcastReady shows the idle prompt naming the configured hotkey
func (a *Agent) broadcastReady() {
	a.broadcastStatus(a.catalog.Format(messages.Ready, map[string]any{"Combo": a.settings.Hotkey.Combo}))
}

func (a *Agent) broadcastStatus(status string) {
	for _, o := range a.overlays {
		o.BroadcastStatus(status)
	}
}
