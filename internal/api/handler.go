package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/marco/movieFetcher/internal/gateway"
)

// MovieService is the part of gateway.Service the handlers use.
type MovieService interface {
	Configuration(ctx context.Context) (*gateway.ConfigurationResponse, error)
	Movies(ctx context.Context, q gateway.MovieQuery) (*gateway.MovieList, error)
}

type moviesResponse struct {
	Movies *gateway.MovieList `json:"movies"`
}

// Handler serves the gateway's JSON endpoints.
type Handler struct {
	service MovieService
	logger  *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(service MovieService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Config handles GET /api/config/.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.Configuration(r.Context())
	if err != nil {
		h.logger.Error("configuration request failed", "request_id", RequestIDFrom(r), "error", err)
		writeError(w, http.StatusInternalServerError, msgConfigFailed)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// Movies handles GET /api/movies/.
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	q := gateway.ParseMovieQuery(r.URL.Query())

	list, err := h.service.Movies(r.Context(), q)
	if err != nil {
		h.logger.Error("movie request failed",
			"request_id", RequestIDFrom(r),
			"source", q.Source(),
			"error", err)
		writeError(w, http.StatusInternalServerError, msgMoviesFailed)
		return
	}

	h.logger.Debug("movies fetched", "request_id", RequestIDFrom(r), "source", list.Source, "count", list.Len())
	writeJSON(w, http.StatusOK, moviesResponse{Movies: list})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
