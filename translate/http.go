package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// get issues a single GET and returns the status code and raw body.
// The body is logged for every response that was read.
func get(ctx context.Context, client *http.Client, backend Backend, requestID, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to create request: %v", ErrTransport, redact(err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to send request: %v", ErrTransport, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: failed to read response: %v", ErrTransport, redact(err))
	}

	slog.Info("Translation response",
		"backend", backend,
		"request_id", requestID,
		"status", resp.StatusCode,
		"body", string(body),
	)

	return resp.StatusCode, body, nil
}

// redact strips the request URL from err. The query string carries the
// API key or the signed appid, and errors end up in logs and history.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request: %w", uerr.Op, uerr.Err)
	}
	return err
}
