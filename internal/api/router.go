package api

import (
	"log/slog"
	"net/http"
	"time"
)

// ServerOptions configures NewServer.
type ServerOptions struct {
	Addr               string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	Logger             *slog.Logger
}

// NewRouter registers the routes and wraps them in the middleware chain:
// recovery, request ID, access log, CORS.
func NewRouter(h *Handler, corsOrigins []string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/config/{$}", h.Config)
	mux.HandleFunc("GET /api/config", h.Config)
	mux.HandleFunc("GET /api/movies/{$}", h.Movies)
	mux.HandleFunc("GET /api/movies", h.Movies)
	mux.HandleFunc("GET /healthz", h.Health)

	return Chain(mux,
		RecoveryMiddleware(logger),
		RequestIDMiddleware,
		AccessLogMiddleware(logger),
		CORSMiddleware(corsOrigins),
	)
}

// NewServer returns an http.Server serving h.
func NewServer(h *Handler, opts ServerOptions) *http.Server {
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           NewRouter(h, opts.CORSAllowedOrigins, opts.Logger),
		ReadHeaderTimeout: opts.ReadTimeout,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}
}
