// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce applies when Config.Debounce is zero or negative.
const defaultDebounce = 300 * time.Millisecond

// ErrWatcherBroken is wrapped by Run when the operating system stops
// delivering events, for example because the inotify watch limit is reached.
var ErrWatcherBroken = errors.New("file watcher broken")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Root is the directory to watch recursively.
		Root string

		// Patterns are doublestar globs relative to Root (e.g. "**/*.yaml")
		// that select which files trigger callbacks. An empty slice selects
		// every non-ignored file.
		Patterns []string

		// Ignore are additional doublestar globs for paths that never trigger
		// callbacks. Ignored directories are not watched at all.
		Ignore []string

		// Debounce is the quiet period after the last event before the
		// callback fires.
		Debounce time.Duration

		// OnChange receives the sorted, deduplicated list of changed paths
		// relative to Root. An error is logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives diagnostics. nil discards them.
		Logger *slog.Logger
	}

	// Watcher monitors Root and fires a debounced callback when selected
	// files change. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		filter   *filter
		root     string
		debounce time.Duration
		logger   *slog.Logger
		dirs     map[string]struct{}
		started  atomic.Bool
	}
)

// New validates cfg and registers every non-ignored directory under Root.
func New(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, errors.New("watch: root directory is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root directory: %w", err)
	}

	f, err := newFilter(cfg.Patterns, cfg.Ignore)
	if err != nil {
		return nil, err
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		filter:   f,
		root:     root,
		debounce: debounce,
		logger:   logger,
		dirs:     make(map[string]struct{}),
	}

	if _, err := w.addTree(root); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close watcher after init failure", "err", closeErr)
		}
		return nil, err
	}

	return w, nil
}

// Run processes events until ctx is canceled. It returns nil on
// cancellation and an error wrapping ErrWatcherBroken when the event
// source fails for good.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "err", err)
		}
	}()

	var (
		pending = make(map[string]struct{})
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: %w: event channel closed", ErrWatcherBroken)
			}
			changed := w.handle(evt)
			if len(changed) == 0 {
				continue
			}
			for _, rel := range changed {
				pending[rel] = struct{}{}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.dispatch(ctx, changed)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: %w: error channel closed", ErrWatcherBroken)
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: %w: %w", ErrWatcherBroken, err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, changed []string) {
	if ctx.Err() != nil || len(changed) == 0 {
		return
	}
	w.logger.Debug("change detected", "paths", changed)
	if w.cfg.OnChange == nil {
		return
	}
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.logger.Error("change callback failed", "err", err)
	}
}

// handle turns one fsnotify event into the root-relative paths it changed.
// New directories are registered on the spot, and any selected files they
// already hold count as changed.
func (w *Watcher) handle(evt fsnotify.Event) []string {
	if evt.Op == fsnotify.Chmod {
		return nil
	}

	rel := w.rel(evt.Name)

	if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
		if _, wasDir := w.dirs[evt.Name]; wasDir {
			delete(w.dirs, evt.Name)
			return []string{rel}
		}
	}

	if evt.Has(fsnotify.Create) {
		added, err := w.addTree(evt.Name)
		if err != nil {
			w.logger.Warn("watch new directory", "path", evt.Name, "err", err)
		}
		if added != nil {
			return added
		}
	}

	if !w.filter.selected(rel) {
		return nil
	}
	return []string{rel}
}

// addTree registers dir and every non-ignored directory below it. It
// returns nil when dir is not a directory, otherwise the selected files
// found inside (possibly empty).
func (w *Watcher) addTree(dir string) ([]string, error) {
	var files []string
	isDir := false

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			w.logger.Warn("skipping inaccessible path", "path", path, "err", walkErr)
			return nil
		}
		rel := w.rel(path)
		if !d.IsDir() {
			if path != dir && w.filter.selected(rel) {
				files = append(files, rel)
			}
			return nil
		}
		if path == dir {
			isDir = true
		}
		if path != w.root && w.filter.ignored(rel, true) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		w.dirs[path] = struct{}{}
		return nil
	})

	if errors.Is(err, fs.ErrNotExist) && dir != w.root {
		// Created and removed again before we got to it.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("watch: walk %q: %w", dir, err)
	}
	if !isDir {
		return nil, nil
	}
	if files == nil {
		files = []string{}
	}
	return files, nil
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
