package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"markestedt/clipslate/config"
	"markestedt/clipslate/storage"
)

//go:embed static/*
var staticFiles embed.FS


// Status values reported to the overlay
const (
	StatusIdle        = "idle"
	StatusTranslating = "translating"
)

// Options configures a Server
type Options struct {
	// DB is the history store. Nil disables the history and stats endpoints.
	DB       *storage.DB
	Settings *config.Settings
	// CredentialsPath is where PUT /api/config saves credentials
	CredentialsPath string
	Credentials     config.Credentials
	// OnCredentials is called after new credentials have been saved
	OnCredentials func(config.Credentials)
}

// Server serves the overlay page, its websocket and the settings API
type Server struct {
	db            *storage.DB
	settings      *config.Settings
	credsPath     string
	onCredentials func(config.Credentials)
	hub           *Hub
	upgrader      websocket.Upgrader

	mu     sync.RWMutex
	creds  config.Credentials
	status string
}

// NewServer creates a new web server and starts its hub
func NewServer(opts Options) *Server {
	hub := NewHub()
	go hub.Run()

	settings := opts.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}

	s := &Server{
		db:            opts.DB,
		settings:      settings,
		credsPath:     opts.CredentialsPath,
		onCredentials: opts.OnCredentials,
		hub:           hub,
		creds:         opts.Credentials,
		status:        StatusIdle,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin admits only the overlay page itself. Any site the user visits
// can reach the loopback port, and the socket carries clipboard text.
// Requests without an Origin header do not come from a browser page.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "http" {
		slog.Warn("Rejected WebSocket origin", "origin", origin)
		return false
	}

	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
	default:
		slog.Warn("Rejected WebSocket origin", "origin", origin)
		return false
	}
	if u.Port() != strconv.Itoa(s.settings.Web.Port) {
		slog.Warn("Rejected WebSocket origin", "origin", origin)
		return false
	}
	return true
}

// Handler returns the HTTP handler for all routes
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/", s.handleHistory)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return mux, nil
}

// URL returns the overlay address
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.settings.Web.Port)
}

// Start serves on the configured port until ctx is done
func (s *Server) Start(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort("127.0.0.1", fmt.Sprint(s.settings.Web.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.hub.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Starting web server", "port", s.settings.Web.Port, "url", s.URL())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Credentials returns the current credentials (thread-safe)
func (s *Server) Credentials() config.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// UpdateCredentials replaces the credentials shown by the settings API
func (s *Server) UpdateCredentials(creds config.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
}

// Status returns the last broadcast status
func (s *Server) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// BroadcastStatus broadcasts a status update to all connected clients
func (s *Server) BroadcastStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: StatusMessage{Status: status},
	})
}

// BroadcastTranslation broadcasts a translation result. text is what the
// overlay shows, which is a placeholder when the translation failed.
func (s *Server) BroadcastTranslation(t *storage.Translation, text string) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeTranslation,
		Data: TranslationMessage{
			ID:         t.ID,
			RequestID:  t.RequestID,
			Backend:    t.Backend,
			SourceText: t.SourceText,
			Text:       text,
			Success:    t.Success,
			Timestamp:  t.Timestamp.UTC().Format(time.RFC3339),
		},
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case client.hub.register <- client:
	case <-client.hub.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}
