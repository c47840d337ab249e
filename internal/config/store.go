package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last file event before
// reloading.
const DefaultDebounce = 500 * time.Millisecond

// Store holds the active configuration and swaps it when the file changes.
type Store struct {
	path    string
	current atomic.Pointer[Config]
	logger  *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewStore creates a Store serving cfg, loaded from path.
func NewStore(path string, cfg *Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger}
	s.current.Store(cfg)
	return s
}

// Current returns the active configuration. Callers must not modify it.
func (s *Store) Current() *Config {
	return s.current.Load()
}

// Reload re-reads the file. An invalid file leaves the active config in place.
func (s *Store) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}
	s.current.Store(cfg)
	return nil
}

// Watch reloads the configuration whenever its file is written, created or
// renamed into place, until ctx is done. The parent directory is watched so
// that editors replacing the file atomically are seen.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	path, err := expandHome(s.path)
	if err != nil {
		return err
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	s.logger.Info("config watcher started", "path", path, "debounce_ms", debounce.Milliseconds())

	for {
		select {
		case <-ctx.Done():
			s.stopTimer()
			s.logger.Info("config watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				s.logger.Debug("config file event", "event", event.Op.String())
				s.scheduleReload(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("config watcher error", "error", err)
		}
	}
}

// scheduleReload (re)starts the debounce timer.
func (s *Store) scheduleReload(debounce time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(debounce, s.reloadAndLog)
}

func (s *Store) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Store) reloadAndLog() {
	if err := s.Reload(); err != nil {
		s.logger.Error("config reload failed, keeping previous config", "path", s.path, "error", err)
		return
	}
	s.logger.Info("config reloaded", "path", s.path)
}
