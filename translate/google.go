package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"

	"golang.org/x/text/language"
)

// DefaultGoogleEndpoint is the Cloud Translation v2 REST API
const DefaultGoogleEndpoint = "https://translation.googleapis.com/language/translate/v2"

// googleBackend authenticates with an API key passed as a query parameter
type googleBackend struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage"`
		} `json:"translations"`
	} `json:"data"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// canonicalLang normalizes a language code to its BCP 47 form.
// Codes the parser rejects are passed through for the service to judge.
func canonicalLang(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}

func (g *googleBackend) requestURL(req request) (string, error) {
	u, err := url.Parse(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: invalid endpoint %q: %v", ErrTransport, g.endpoint, err)
	}

	q := url.Values{}
	q.Set("q", req.text)
	// Google detects the source language when it is omitted
	if req.sourceLang != "" && req.sourceLang != "auto" {
		q.Set("source", canonicalLang(req.sourceLang))
	}
	q.Set("target", canonicalLang(req.targetLang))
	q.Set("key", g.apiKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (g *googleBackend) translate(ctx context.Context, req request) (string, error) {
	rawURL, err := g.requestURL(req)
	if err != nil {
		return "", err
	}

	status, body, err := get(ctx, g.client, Google, req.id, rawURL)
	if err != nil {
		return "", err
	}

	var result googleResponse
	if err := json.Unmarshal(body, &result); err != nil {
		if status != http.StatusOK {
			return "", fmt.Errorf("%w: status %d", ErrTransport, status)
		}
		return "", fmt.Errorf("%w: %v", ErrResponseParse, err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("%w: google %d: %s", ErrBackend, result.Error.Code, result.Error.Message)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrTransport, status)
	}

	if len(result.Data.Translations) == 0 {
		return "", ErrNoTranslation
	}

	// The v2 API returns HTML-escaped text unless format=text is requested
	return html.UnescapeString(result.Data.Translations[0].TranslatedText), nil
}
