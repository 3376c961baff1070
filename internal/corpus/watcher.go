// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// =============================================================================
// WATCHER
// =============================================================================

// Watcher reloads a Source when its corpus file changes on disk. A reload
// that fails keeps the previous snapshot.
type Watcher struct {
	path     string
	source   *Source
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
	limiter  *rate.Limiter

	mu       sync.Mutex
	onReload func(*Corpus, error)

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewWatcher creates a watcher for the corpus file at path. debounce <= 0
// selects DefaultDebounce.
func NewWatcher(path string, source *Source, logger *slog.Logger, debounce time.Duration) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve corpus path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     abs,
		source:   source,
		logger:   logger,
		watcher:  fw,
		debounce: debounce,
		// At most one reload per debounce window, bursts of one.
		limiter: rate.NewLimiter(rate.Every(debounce), 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}, nil
}

// OnReload registers a callback invoked after every reload attempt.
func (w *Watcher) OnReload(fn func(*Corpus, error)) {
	w.mu.Lock()
	w.onReload = fn
	w.mu.Unlock()
}

// Start begins watching. The parent directory is watched so that editors
// replacing the file through a rename are noticed.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.run()
	return nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()

	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}
	return err
}

// Reload loads the corpus file now and swaps it into the source.
func (w *Watcher) Reload() error {
	c, err := Load(w.path, w.logger)
	if err != nil {
		w.logger.Error("CORPUS_RELOAD failed, keeping previous snapshot", "path", w.path, "error", err)
	} else {
		w.source.Swap(c)
		w.logger.Info("CORPUS_RELOAD", "path", w.path, "pairs", c.Len(), "skipped", c.Skipped)
	}

	w.mu.Lock()
	fn := w.onReload
	w.mu.Unlock()
	if fn != nil {
		fn(c, err)
	}
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("CORPUS_WATCH panic", "panic", r)
		}
	}()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("CORPUS_WATCH error", "error", err)

		case <-timer.C:
			if err := w.limiter.Wait(w.ctx); err != nil {
				return
			}
			_ = w.Reload()
		}
	}
}
