package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"markestedt/clipslate/config"
	"markestedt/clipslate/storage"
)

// credentialsResponse is the credentials view sent to the settings page.
// The secret key never leaves the process unmasked.
type credentialsResponse struct {
	AppID              string `json:"appid"`
	SecretKey          string `json:"secret_key"`
	HasSecretKey       bool   `json:"has_secret_key"`
	TranslationService string `json:"translation_service"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// maskSecret keeps the last four characters of long secrets
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "********"
	}
	return "********" + secret[len(secret)-4:]
}

// handleConfig handles GET and PUT requests for credentials
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetConfig(w, r)
	case http.MethodPut:
		s.handlePutConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetConfig returns the current credentials with the secret masked
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	creds := s.Credentials()

	writeJSON(w, http.StatusOK, credentialsResponse{
		AppID:              creds.AppID,
		SecretKey:          maskSecret(creds.SecretKey),
		HasSecretKey:       creds.SecretKey != "",
		TranslationService: creds.TranslationService,
	})
}

// handlePutConfig validates, saves and applies new credentials
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AppID              *string `json:"appid"`
		SecretKey          *string `json:"secret_key"`
		TranslationService *string `json:"translation_service"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	creds := s.Credentials()

	// Update fields if provided
	if req.AppID != nil {
		creds.AppID = strings.TrimSpace(*req.AppID)
	}
	// An empty or still-masked secret keeps the stored one
	if req.SecretKey != nil && *req.SecretKey != "" && !strings.HasPrefix(*req.SecretKey, "********") {
		creds.SecretKey = strings.TrimSpace(*req.SecretKey)
	}
	if req.TranslationService != nil {
		creds.TranslationService = strings.TrimSpace(*req.TranslationService)
	}

	if err := creds.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.credsPath != "" {
		if err := config.SaveCredentials(s.credsPath, creds); err != nil {
			slog.Error("Failed to save credentials", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save configuration")
			return
		}
	}

	s.UpdateCredentials(creds)
	if s.onCredentials != nil {
		s.onCredentials(creds)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleSettings returns the application settings
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.settings)
}

// handleStats returns statistics for the specified time range
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "History is disabled")
		return
	}

	daysStr := r.URL.Query().Get("days")
	days := 7 // default to 7 days
	if daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	overall, err := s.db.GetOverallStats(days)
	if err != nil {
		slog.Error("Failed to get overall stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	daily, err := s.db.GetDailyStats(days)
	if err != nil {
		slog.Error("Failed to get daily stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	backends, err := s.db.GetBackendStats(days)
	if err != nil {
		slog.Error("Failed to get backend stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":     days,
		"overall":  overall,
		"daily":    daily,
		"backends": backends,
	})
}

// handleHistory handles GET and DELETE requests for translation history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "History is disabled")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetHistory(w, r)
	case http.MethodDelete:
		s.handleDeleteHistory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetHistory returns paginated translation history
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	limit := 50 // default
	offset := 0

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	translations, err := s.db.GetTranslations(limit, offset)
	if err != nil {
		slog.Error("Failed to get translations", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}

	total, err := s.db.GetTranslationCount()
	if err != nil {
		slog.Error("Failed to get translation count", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"translations": translations,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

// handleDeleteHistory deletes a translation by ID (e.g., /api/history/123)
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if idStr == r.URL.Path || idStr == "" {
		writeError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := s.db.DeleteTranslation(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Translation not found")
			return
		}
		slog.Error("Failed to delete translation", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete translation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleStatus returns the current agent status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  s.Status(),
		"backend": s.Credentials().TranslationService,
		"clients": s.hub.ClientCount(),
	})
}
