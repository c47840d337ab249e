package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	msgConfigFailed = "Failed to load configuration"
	msgMoviesFailed = "Failed to fetch movies"
	msgInternal     = "Internal server error"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
