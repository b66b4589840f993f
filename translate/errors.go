package translate

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedBackend is returned when the credentials name no known service
	ErrUnsupportedBackend = errors.New("unsupported translation service")
	// ErrTransport covers failures to reach the service or a non-OK status
	ErrTransport = errors.New("translation transport failed")
	// ErrResponseParse is returned when the response body has no usable translation
	ErrResponseParse = errors.New("failed to parse translation response")
	// ErrBackend is returned when the service answers with an error payload
	ErrBackend = errors.New("translation service returned an error")
)

// ErrNoTranslation is returned when a well-formed response holds no
// translation entries. It wraps ErrResponseParse.
var ErrNoTranslation = fmt.Errorf("%w: no translation entries", ErrResponseParse)
