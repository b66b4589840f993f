package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// timestampLayout matches SQLite's CURRENT_TIMESTAMP so the date functions
// used by the stats queries understand stored values
const timestampLayout = "2006-01-02 15:04:05"

// ErrNotFound is returned when a translation ID does not exist
var ErrNotFound = errors.New("translation not found")

// Translation is one translation attempt, successful or not
type Translation struct {
	ID             int64     `json:"id" yaml:"id"`
	RequestID      string    `json:"request_id" yaml:"request_id"`
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`
	Backend        string    `json:"backend" yaml:"backend"`
	SourceLang     string    `json:"source_lang" yaml:"source_lang"`
	TargetLang     string    `json:"target_lang" yaml:"target_lang"`
	SourceText     string    `json:"source_text" yaml:"source_text"`
	TranslatedText string    `json:"translated_text" yaml:"translated_text"`
	LatencyMs      int64     `json:"latency_ms" yaml:"latency_ms"`
	Success        bool      `json:"success" yaml:"success"`
	ErrorMessage   string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// SaveTranslation saves a translation and sets its ID
func (db *DB) SaveTranslation(t *Translation) error {
	query := `
		INSERT INTO translations (
			request_id, timestamp, backend, source_lang, target_lang,
			source_text, translated_text, character_count,
			latency_ms, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	var errorMessage sql.NullString
	if t.ErrorMessage != "" {
		errorMessage = sql.NullString{String: t.ErrorMessage, Valid: true}
	}

	result, err := db.conn.Exec(query,
		t.RequestID, t.Timestamp.UTC().Format(timestampLayout), t.Backend, t.SourceLang, t.TargetLang,
		t.SourceText, t.TranslatedText, utf8.RuneCountInString(t.SourceText),
		t.LatencyMs, t.Success, errorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save translation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	t.ID = id
	return nil
}

// GetTranslations retrieves translations newest first with pagination
func (db *DB) GetTranslations(limit, offset int) ([]Translation, error) {
	query := `
		SELECT
			id, request_id, timestamp, backend, source_lang, target_lang,
			source_text, translated_text, latency_ms, success, error_message
		FROM translations
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query translations: %w", err)
	}
	defer rows.Close()

	translations := []Translation{}
	for rows.Next() {
		var t Translation
		var errorMessage sql.NullString

		err := rows.Scan(
			&t.ID, &t.RequestID, &t.Timestamp, &t.Backend, &t.SourceLang, &t.TargetLang,
			&t.SourceText, &t.TranslatedText, &t.LatencyMs, &t.Success, &errorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}

		if errorMessage.Valid {
			t.ErrorMessage = errorMessage.String
		}

		translations = append(translations, t)
	}

	return translations, rows.Err()
}

// DeleteTranslation deletes a translation by ID
func (db *DB) DeleteTranslation(id int64) error {
	result, err := db.conn.Exec(`DELETE FROM translations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete translation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	return nil
}

// GetTranslationCount returns the total number of translations
func (db *DB) GetTranslationCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM translations").Scan(&count)
	return count, err
}
