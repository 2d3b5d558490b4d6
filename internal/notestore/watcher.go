package notestore

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lfroes/notas/internal/checksum"
	"github.com/lfroes/notas/internal/codec"
	"github.com/lfroes/notas/internal/storage"
)

// debounceWindow coalesces the burst of write events editors and atomic
// renames produce for a single logical save.
const debounceWindow = 200 * time.Millisecond

// Watch observes the snapshot file for external modification and reloads
// the store when another process rewrites it, until ctx is cancelled.
// Rapid successive events are debounced; snapshots whose checksum matches
// the store's own last write are ignored.
//
// Only the file backend is watchable; callers skip this for SQLite.
func Watch(ctx context.Context, store *Store, file *storage.File, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the file: atomic rename replaces the inode.
	if err := w.Add(filepath.Dir(file.Path())); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("snapshot", file.Path()))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(debounceWindow)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(debounceWindow)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			reload(store, file, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != file.Path() {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			scheduleReload()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reload re-reads the snapshot and replaces the store's state when the
// content is both external (checksum differs from our last write) and
// well-formed. Malformed external snapshots are logged and skipped.
func reload(store *Store, file *storage.File, logger *slog.Logger) {
	blob, err := file.Load()
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("error", err.Error()))
		return
	}
	if len(blob) == 0 {
		return
	}
	sum := checksum.Sum(blob)
	if sum == store.PersistedChecksum() {
		// Our own write-through landing on disk.
		return
	}
	state, _, err := codec.Decode(blob)
	if err != nil {
		logger.Warn("watcher: external snapshot malformed", slog.String("error", err.Error()))
		return
	}
	store.replaceFromSnapshot(state, sum)
	logger.Debug("watcher: reloaded external snapshot",
		slog.Int("notes", len(state.Notes)),
		slog.Int("categories", len(state.Categories)))
}
