package storage

import (
	"fmt"
)

// DailyStats represents statistics for a single day
type DailyStats struct {
	Date              string `json:"date"`
	TotalTranslations int    `json:"total_translations"`
	TotalCharacters   int    `json:"total_characters"`
	SuccessCount      int    `json:"success_count"`
	FailureCount      int    `json:"failure_count"`
}

// BackendStats represents statistics grouped by translation backend
type BackendStats struct {
	Backend           string  `json:"backend"`
	TotalTranslations int     `json:"total_translations"`
	TotalCharacters   int     `json:"total_characters"`
	SuccessCount      int     `json:"success_count"`
	FailureCount      int     `json:"failure_count"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
}

// OverallStats represents overall statistics
type OverallStats struct {
	TotalTranslations int     `json:"total_translations"`
	TotalCharacters   int     `json:"total_characters"`
	SuccessCount      int     `json:"success_count"`
	FailureCount      int     `json:"failure_count"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
	MaxLatencyMs      int64   `json:"max_latency_ms"`
}

// GetDailyStats retrieves statistics grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT
			DATE(timestamp) as date,
			COUNT(*) as total_translations,
			COALESCE(SUM(character_count), 0) as total_characters,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count
		FROM translations
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
		ORDER BY date DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	stats := []DailyStats{}
	for rows.Next() {
		var s DailyStats
		err := rows.Scan(&s.Date, &s.TotalTranslations, &s.TotalCharacters, &s.SuccessCount, &s.FailureCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetBackendStats retrieves statistics grouped by backend for the last N days
func (db *DB) GetBackendStats(days int) ([]BackendStats, error) {
	query := `
		SELECT
			backend,
			COUNT(*) as total_translations,
			COALESCE(SUM(character_count), 0) as total_characters,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count,
			AVG(latency_ms) as avg_latency_ms
		FROM translations
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY backend
		ORDER BY total_translations DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query backend stats: %w", err)
	}
	defer rows.Close()

	stats := []BackendStats{}
	for rows.Next() {
		var s BackendStats
		err := rows.Scan(&s.Backend, &s.TotalTranslations, &s.TotalCharacters, &s.SuccessCount, &s.FailureCount, &s.AvgLatencyMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backend stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOverallStats retrieves overall statistics for the last N days
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_translations,
			COALESCE(SUM(character_count), 0) as total_characters,
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) as success_count,
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) as failure_count,
			COALESCE(AVG(latency_ms), 0) as avg_latency_ms,
			COALESCE(MAX(latency_ms), 0) as max_latency_ms
		FROM translations
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`

	var stats OverallStats
	err := db.conn.QueryRow(query, days).Scan(
		&stats.TotalTranslations,
		&stats.TotalCharacters,
		&stats.SuccessCount,
		&stats.FailureCount,
		&stats.AvgLatencyMs,
		&stats.MaxLatencyMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	return &stats, nil
}
