package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"markestedt/clipslate/translate"
)

var (
	// ErrConfigMissing means config.json does not exist
	ErrConfigMissing = errors.New("config file missing")
	// ErrConfigCorrupt means config.json exists but is not valid JSON
	ErrConfigCorrupt = errors.New("config file corrupt")
)

// Credentials are the translation service credentials kept in config.json
type Credentials struct {
	AppID              string `json:"appid"`
	SecretKey          string `json:"secret_key"`
	TranslationService string `json:"translation_service"`
}

// DefaultCredentials returns the credentials used when config.json is
// missing or unreadable
func DefaultCredentials() Credentials {
	return Credentials{
		TranslationService: string(translate.Baidu),
	}
}

// Translate converts the stored credentials into client credentials
func (c Credentials) Translate() translate.Credentials {
	return translate.Credentials{
		AppID:     c.AppID,
		SecretKey: c.SecretKey,
		Backend:   translate.Backend(c.TranslationService),
	}
}

// Validate reports whether the credentials are complete enough to save.
// Google only needs the API key, stored as the secret key.
func (c Credentials) Validate() error {
	backend := translate.Backend(c.TranslationService)
	if !backend.Valid() {
		return fmt.Errorf("unsupported translation service %q", c.TranslationService)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required")
	}
	if backend == translate.Baidu && c.AppID == "" {
		return fmt.Errorf("app ID is required for %s", backend)
	}
	return nil
}

// LoadCredentials reads config.json from path. The returned credentials
// are always usable: on a missing or malformed file the defaults come back
// together with an error wrapping ErrConfigMissing or ErrConfigCorrupt.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultCredentials(), fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return DefaultCredentials(), fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return DefaultCredentials(), fmt.Errorf("%w: %s: %v", ErrConfigCorrupt, path, err)
	}

	// Files written before Google support have no service field
	if creds.TranslationService == "" {
		creds.TranslationService = string(translate.Baidu)
	}

	return creds, nil
}

// SaveCredentials writes creds to path as JSON
func SaveCredentials(path string, creds Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// envCredentials mirrors Credentials for environment overrides
type envCredentials struct {
	AppID              string `env:"CLIPSLATE_APPID"`
	SecretKey          string `env:"CLIPSLATE_SECRET_KEY"`
	TranslationService string `env:"CLIPSLATE_TRANSLATION_SERVICE"`
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set are left alone.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields of creds with the non-empty CLIPSLATE_*
// environment variables
func ApplyEnv(creds Credentials) (Credentials, error) {
	var e envCredentials
	if err := env.Parse(&e); err != nil {
		return creds, fmt.Errorf("failed to parse environment: %w", err)
	}

	if e.AppID != "" {
		creds.AppID = e.AppID
	}
	if e.SecretKey != "" {
		creds.SecretKey = e.SecretKey
	}
	if e.TranslationService != "" {
		creds.TranslationService = e.TranslationService
	}
	return creds, nil
}
