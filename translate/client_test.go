package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
)

func TestBackend_Valid(t *testing.T) {
	tests := []struct {
		backend Backend
		want    bool
	}{
		{Baidu, true},
		{Google, true},
		{"deepl", false},
		{"", false},
		{"Baidu", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			if got := tt.backend.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_UnsupportedBackend_NoNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"trans_result":[{"dst":"x"}]}`))
	}))
	defer server.Close()

	client := NewClient(
		Credentials{AppID: "X", SecretKey: "Y", Backend: "deepl"},
		WithHTTPClient(server.Client()),
		WithBaiduEndpoint(server.URL),
		WithGoogleEndpoint(server.URL),
	)

	result, err := client.Translate(context.Background(), "hello", "auto", "zh")
	if !errors.Is(err, ErrUnsupportedBackend) {
		t.Errorf("expected ErrUnsupportedBackend, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no network calls, got %d", hits.Load())
	}
}

func TestClient_Backend(t *testing.T) {
	client := NewClient(Credentials{Backend: Google})
	if client.Backend() != Google {
		t.Errorf("expected google, got %q", client.Backend())
	}
}

func TestClient_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trans_result":[{"dst":"x"}]}`))
	}))
	defer server.Close()

	client := NewClient(
		Credentials{AppID: "X", SecretKey: "Y", Backend: Baidu},
		WithHTTPClient(server.Client()),
		WithBaiduEndpoint(server.URL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Translate(ctx, "hello", "auto", "zh")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func TestClient_RequestIDFromContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"translations":[{"translatedText":"你好"}]}}`))
	}))
	defer server.Close()

	client := NewClient(
		Credentials{SecretKey: "K", Backend: Google},
		WithHTTPClient(server.Client()),
		WithGoogleEndpoint(server.URL),
	)

	res, err := client.Translate(WithRequestID(context.Background(), "req-42"), "hello", "en", "zh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RequestID != "req-42" {
		t.Errorf("expected request ID from context, got %q", res.RequestID)
	}

	res, err = client.Translate(context.Background(), "hello", "en", "zh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RequestID == "" || res.RequestID == "req-42" {
		t.Errorf("expected a fresh request ID, got %q", res.RequestID)
	}
}

func TestErrNoTranslation_IsResponseParse(t *testing.T) {
	if !errors.Is(ErrNoTranslation, ErrResponseParse) {
		t.Error("ErrNoTranslation must match ErrResponseParse")
	}
}

func TestClient_TransportErrorHidesCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	tests := []struct {
		name    string
		creds   Credentials
		secrets []string
	}{
		{
			name:    "google key",
			creds:   Credentials{SecretKey: "AIzaSECRETKEY123", Backend: Google},
			secrets: []string{"AIzaSECRETKEY123", "key="},
		},
		{
			name:    "baidu appid and sign",
			creds:   Credentials{AppID: "20240101APPID", SecretKey: "topsecret", Backend: Baidu},
			secrets: []string{"20240101APPID", "topsecret", Sign("20240101APPID", "hello", 40000, "topsecret")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.creds,
				WithBaiduEndpoint(endpoint),
				WithGoogleEndpoint(endpoint),
				WithSalt(func() int { return 40000 }),
			)

			_, err := client.Translate(context.Background(), "hello", "en", "zh")
			if !errors.Is(err, ErrTransport) {
				t.Fatalf("expected ErrTransport, got %v", err)
			}
			for _, secret := range tt.secrets {
				if strings.Contains(err.Error(), secret) {
					t.Errorf("error leaks %q: %v", secret, err)
				}
			}
		})
	}
}

func TestRedact(t *testing.T) {
	err := redact(&url.Error{Op: "Get", URL: "http://host/?key=secret", Err: errors.New("connection refused")})
	if got, want := err.Error(), "Get request: connection refused"; got != want {
		t.Errorf("redact() = %q, want %q", got, want)
	}

	plain := errors.New("unexpected EOF")
	if redact(plain) != plain {
		t.Error("expected non-URL errors to pass through")
	}
}
