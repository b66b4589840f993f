package translate

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Backend identifies one of the supported translation services
type Backend string

const (
	Baidu  Backend = "baidu"
	Google Backend = "google"
)

// Valid reports whether b names a supported backend
func (b Backend) Valid() bool {
	return b == Baidu || b == Google
}

// Credentials authenticate a client against its backend
type Credentials struct {
	AppID     string
	SecretKey string
	Backend   Backend
}

// Result is a normalized translation
type Result struct {
	Text       string
	Backend    Backend
	SourceLang string
	TargetLang string
	RequestID  string
	Latency    time.Duration
}

// request carries a single translation call through a backend
type request struct {
	id         string
	text       string
	sourceLang string
	targetLang string
}

// backend is implemented once per supported service
type backend interface {
	translate(ctx context.Context, req request) (string, error)
}

// Client translates text through the backend named in its credentials
type Client struct {
	creds          Credentials
	httpClient     *http.Client
	baiduEndpoint  string
	googleEndpoint string
	salt           func() int
	impl           backend
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaiduEndpoint overrides the Baidu API URL
func WithBaiduEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.baiduEndpoint = endpoint
	}
}

// WithGoogleEndpoint overrides the Google API URL
func WithGoogleEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.googleEndpoint = endpoint
	}
}

// WithSalt replaces the salt generator used to sign Baidu requests
func WithSalt(salt func() int) Option {
	return func(c *Client) {
		c.salt = salt
	}
}

// NewClient creates a client for the given credentials.
// An unsupported backend is accepted here and reported by Translate.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:          creds,
		httpClient:     &http.Client{},
		baiduEndpoint:  DefaultBaiduEndpoint,
		googleEndpoint: DefaultGoogleEndpoint,
		salt:           RandomSalt,
	}
	for _, opt := range opts {
		opt(c)
	}

	switch creds.Backend {
	case Baidu:
		c.impl = &baiduBackend{
			appID:    creds.AppID,
			secret:   creds.SecretKey,
			endpoint: c.baiduEndpoint,
			client:   c.httpClient,
			salt:     c.salt,
		}
	case Google:
		c.impl = &googleBackend{
			apiKey:   creds.SecretKey,
			endpoint: c.googleEndpoint,
			client:   c.httpClient,
		}
	}

	return c
}

// Backend returns the configured backend name
func (c *Client) Backend() Backend {
	return c.creds.Backend
}

// Translate sends text to the configured backend. It makes a single attempt
// and never retries; every failure is logged and returned as an error.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (*Result, error) {
	req := request{
		id:         RequestID(ctx),
		text:       text,
		sourceLang: sourceLang,
		targetLang: targetLang,
	}

	if c.impl == nil {
		err := fmt.Errorf("%w: %q", ErrUnsupportedBackend, c.creds.Backend)
		slog.Error("Unsupported translation service", "backend", c.creds.Backend, "request_id", req.id)
		return nil, err
	}

	start := time.Now()
	translated, err := c.impl.translate(ctx, req)
	latency := time.Since(start)
	if err != nil {
		slog.Error("Translation error", "backend", c.creds.Backend, "request_id", req.id, "error", err)
		return nil, err
	}

	return &Result{
		Text:       translated,
		Backend:    c.creds.Backend,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		RequestID:  req.id,
		Latency:    latency,
	}, nil
}

type requestIDKey struct{}

// WithRequestID returns a context whose translations are logged under id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or a new one
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// RandomSalt returns a Baidu request salt in [32768, 65536)
func RandomSalt() int {
	return saltMin + rand.Intn(saltMax-saltMin)
}
