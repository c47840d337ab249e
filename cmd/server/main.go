package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/marco/movieFetcher/internal/api"
	"github.com/marco/movieFetcher/internal/config"
	"github.com/marco/movieFetcher/internal/gateway"
	"github.com/marco/movieFetcher/internal/logging"
	"github.com/marco/movieFetcher/internal/omdb"
	"github.com/marco/movieFetcher/internal/tmdb"
	"github.com/marco/movieFetcher/internal/upstream"
	"github.com/marco/movieFetcher/internal/upstream/cache"
)

var (
	configPath = flag.String("config", config.DefaultPath, "Path to configuration file")
	envFile    = flag.String("env-file", ".env", "Optional dotenv file loaded before the config")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
	watch      = flag.Bool("watch", true, "Reload provider settings when the config file changes")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Log.Level
	if *verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"path", *configPath,
		"addr", cfg.Server.Addr,
		"cache_enabled", cfg.Cache.Enabled,
		"max_attempts", cfg.Upstream.MaxAttempts,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := config.NewStore(*configPath, cfg, logger)
	if *watch {
		go func() {
			if err := store.Watch(ctx, config.DefaultDebounce); err != nil {
				slog.Error("config watcher failed", "error", err)
			}
		}()
	}

	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		responseCache, err = cache.New(cache.Options{
			Backend: cfg.Cache.Backend,
			Path:    cfg.Cache.Path,
			Size:    cfg.Cache.Size,
		})
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer responseCache.Close()

		go startCacheJanitor(ctx, responseCache, cfg.Cache.PruneInterval())
	}

	tmdbClient := tmdb.NewClient(newUpstream(cfg, "tmdb", responseCache, logger), func() tmdb.Settings {
		c := store.Current()
		return tmdb.Settings{BaseURL: c.TMDB.BaseURL, APIKey: c.TMDB.APIKey}
	})
	omdbClient := omdb.NewClient(newUpstream(cfg, "omdb", responseCache, logger), func() omdb.Settings {
		c := store.Current()
		return omdb.Settings{BaseURL: c.OMDb.BaseURL, APIKey: c.OMDb.APIKey}
	})

	service := gateway.NewService(tmdbClient, omdbClient, logger)
	server := api.NewServer(api.NewHandler(service, logger), api.ServerOptions{
		Addr:               cfg.Server.Addr,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		ReadTimeout:        cfg.Server.ReadTimeout(),
		WriteTimeout:       cfg.Server.WriteTimeout(),
		Logger:             logger,
	})

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// newUpstream builds the HTTP client for one provider. Listener, retry and
// cache settings are read once at startup.
func newUpstream(cfg *config.Config, provider string, c cache.Cache, logger *slog.Logger) *upstream.Client {
	return upstream.New(upstream.Options{
		Provider:       provider,
		Timeout:        cfg.Upstream.Timeout(),
		MaxAttempts:    cfg.Upstream.MaxAttempts,
		InitialBackoff: cfg.Upstream.InitialBackoff(),
		RateLimitRPS:   cfg.Upstream.RateLimitRPS,
		Cache:          c,
		CacheTTL:       cfg.Cache.TTL(),
		Logger:         logger,
	})
}
