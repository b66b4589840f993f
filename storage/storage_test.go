package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGetTranslations(t *testing.T) {
	db := openTestDB(t)

	ok := &Translation{
		RequestID:      "req-1",
		Backend:        "baidu",
		SourceLang:     "auto",
		TargetLang:     "zh",
		SourceText:     "hello",
		TranslatedText: "你好",
		LatencyMs:      120,
		Success:        true,
	}
	failed := &Translation{
		RequestID:    "req-2",
		Backend:      "google",
		SourceLang:   "en",
		TargetLang:   "ja",
		SourceText:   "world",
		LatencyMs:    40,
		Success:      false,
		ErrorMessage: "transport error",
	}

	for _, tr := range []*Translation{ok, failed} {
		if err := db.SaveTranslation(tr); err != nil {
			t.Fatalf("SaveTranslation: %v", err)
		}
		if tr.ID == 0 {
			t.Error("expected ID to be set")
		}
	}

	got, err := db.GetTranslations(10, 0)
	if err != nil {
		t.Fatalf("GetTranslations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 translations, got %d", len(got))
	}

	// Newest first
	if got[0].RequestID != "req-2" || got[1].RequestID != "req-1" {
		t.Errorf("unexpected order: %s, %s", got[0].RequestID, got[1].RequestID)
	}
	if got[0].ErrorMessage != "transport error" || got[0].Success {
		t.Errorf("failed record not preserved: %+v", got[0])
	}
	if got[1].TranslatedText != "你好" || !got[1].Success || got[1].LatencyMs != 120 {
		t.Errorf("successful record not preserved: %+v", got[1])
	}
	if got[1].ErrorMessage != "" {
		t.Errorf("expected empty error message, got %q", got[1].ErrorMessage)
	}
	if time.Since(got[1].Timestamp) > time.Hour {
		t.Errorf("unexpected timestamp %v", got[1].Timestamp)
	}
}

func TestSaveTranslation_KeepsTimestamp(t *testing.T) {
	db := openTestDB(t)

	when := time.Date(2026, 3, 14, 9, 26, 53, 0, time.FixedZone("CST", 8*3600))
	tr := &Translation{RequestID: "req-ts", Timestamp: when, Backend: "baidu", SourceText: "hi", Success: true}
	if err := db.SaveTranslation(tr); err != nil {
		t.Fatalf("SaveTranslation: %v", err)
	}

	got, err := db.GetTranslations(1, 0)
	if err != nil {
		t.Fatalf("GetTranslations: %v", err)
	}
	if len(got) != 1 || !got[0].Timestamp.Equal(when) {
		t.Errorf("expected timestamp %v, got %+v", when, got)
	}

	// A record without a timestamp is stamped on save
	untimed := &Translation{RequestID: "req-now", Backend: "baidu", SourceText: "hi"}
	before := time.Now().Add(-time.Second)
	if err := db.SaveTranslation(untimed); err != nil {
		t.Fatalf("SaveTranslation: %v", err)
	}
	if untimed.Timestamp.Before(before) {
		t.Errorf("expected a fresh timestamp, got %v", untimed.Timestamp)
	}
}

func TestGetTranslations_Pagination(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		tr := &Translation{
			RequestID:  fmt.Sprintf("req-%d", i),
			Backend:    "baidu",
			SourceLang: "auto",
			TargetLang: "zh",
			SourceText: "text",
			Success:    true,
		}
		if err := db.SaveTranslation(tr); err != nil {
			t.Fatal(err)
		}
	}

	page, err := db.GetTranslations(2, 2)
	if err != nil {
		t.Fatalf("GetTranslations: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page))
	}
	if page[0].RequestID != "req-2" || page[1].RequestID != "req-1" {
		t.Errorf("unexpected page: %s, %s", page[0].RequestID, page[1].RequestID)
	}

	count, err := db.GetTranslationCount()
	if err != nil {
		t.Fatalf("GetTranslationCount: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5, got %d", count)
	}
}

func TestGetTranslations_Empty(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetTranslations(10, 0)
	if err != nil {
		t.Fatalf("GetTranslations: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestDeleteTranslation(t *testing.T) {
	db := openTestDB(t)

	tr := &Translation{RequestID: "req", Backend: "baidu", SourceLang: "auto", TargetLang: "zh", SourceText: "x", Success: true}
	if err := db.SaveTranslation(tr); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteTranslation(tr.ID); err != nil {
		t.Fatalf("DeleteTranslation: %v", err)
	}

	err := db.DeleteTranslation(tr.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	count, err := db.GetTranslationCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected 0 rows, got %d", count)
	}
}

func TestStats(t *testing.T) {
	db := openTestDB(t)

	records := []Translation{
		{RequestID: "1", Backend: "baidu", SourceLang: "auto", TargetLang: "zh", SourceText: "abc", TranslatedText: "x", LatencyMs: 100, Success: true},
		{RequestID: "2", Backend: "baidu", SourceLang: "auto", TargetLang: "zh", SourceText: "你好", LatencyMs: 300, Success: false, ErrorMessage: "e"},
		{RequestID: "3", Backend: "google", SourceLang: "en", TargetLang: "zh", SourceText: "hello", TranslatedText: "y", LatencyMs: 50, Success: true},
	}
	for i := range records {
		if err := db.SaveTranslation(&records[i]); err != nil {
			t.Fatal(err)
		}
	}

	overall, err := db.GetOverallStats(7)
	if err != nil {
		t.Fatalf("GetOverallStats: %v", err)
	}
	if overall.TotalTranslations != 3 || overall.SuccessCount != 2 || overall.FailureCount != 1 {
		t.Errorf("unexpected overall counts: %+v", overall)
	}
	// Characters, not bytes
	if overall.TotalCharacters != 10 {
		t.Errorf("expected 10 characters, got %d", overall.TotalCharacters)
	}
	if overall.AvgLatencyMs != 150 || overall.MaxLatencyMs != 300 {
		t.Errorf("unexpected latency stats: %+v", overall)
	}

	backends, err := db.GetBackendStats(7)
	if err != nil {
		t.Fatalf("GetBackendStats: %v", err)
	}
	if len(backends) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(backends))
	}
	if backends[0].Backend != "baidu" || backends[0].TotalTranslations != 2 || backends[0].AvgLatencyMs != 200 {
		t.Errorf("unexpected baidu stats: %+v", backends[0])
	}

	daily, err := db.GetDailyStats(7)
	if err != nil {
		t.Fatalf("GetDailyStats: %v", err)
	}
	if len(daily) != 1 || daily[0].TotalTranslations != 3 {
		t.Errorf("unexpected daily stats: %+v", daily)
	}
}

func TestOverallStats_Empty(t *testing.T) {
	db := openTestDB(t)

	overall, err := db.GetOverallStats(30)
	if err != nil {
		t.Fatalf("GetOverallStats: %v", err)
	}
	if overall.TotalTranslations != 0 || overall.AvgLatencyMs != 0 {
		t.Errorf("expected zero stats, got %+v", overall)
	}
}
