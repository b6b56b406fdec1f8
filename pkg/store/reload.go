package store

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/marmos91/htstore/internal/logger"
	"github.com/marmos91/htstore/pkg/htpasswd"
)

// Reload brings the in-memory index up to date with the configured files.
//
// Files are visited in configured order. A file whose modification time
// equals the last observed one is skipped; a changed file is re-read and its
// entries merged into the index. Merging is strictly additive: entries from
// files that did not change keep their prior contribution, a username seen
// in several files keeps the union of their groups, and the hash from the
// file merged last wins.
//
// A missing or unreadable file fails the whole reload with a *FileError for
// that file. Reload is safe to call repeatedly and concurrently; interleaved
// merges only add or overwrite entries, never remove.
//
// The staleness check is exact timestamp equality, not "newer than": a file
// whose modification time moves backward is still re-read, but a rewrite
// that lands within the filesystem's timestamp granularity goes unnoticed
// until the timestamp changes again.
func (s *Store) Reload(ctx context.Context) error {
	start := time.Now()
	reparsed := 0

	for _, f := range s.files {
		if err := ctx.Err(); err != nil {
			s.metrics.RecordReload("canceled", reparsed, time.Since(start).Seconds())
			return err
		}

		stale, err := s.reloadFile(f)
		if err != nil {
			s.metrics.RecordReload("error", reparsed, time.Since(start).Seconds())
			return err
		}
		if stale {
			reparsed++
		}
	}

	s.metrics.RecordReload("ok", reparsed, time.Since(start).Seconds())
	s.metrics.SetUsers(s.UserCount())

	logger.Debug("index reloaded",
		logger.Op("reload"),
		slog.Int(logger.KeyFiles, len(s.files)),
		slog.Int("stale_files", reparsed),
		logger.Users(s.UserCount()),
		logger.DurationMs(start),
	)
	return nil
}

// reloadFile re-reads one configured file if its modification time changed
// since the last observation. It reports whether the file was re-parsed.
func (s *Store) reloadFile(f *fileState) (bool, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return false, &FileError{Path: f.path, Group: f.group, Default: f.isDefault, Err: err}
	}
	mod := info.ModTime()

	s.mu.RLock()
	fresh := f.loaded && mod.Equal(f.lastMod)
	s.mu.RUnlock()
	if fresh {
		return false, nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return false, &FileError{Path: f.path, Group: f.group, Default: f.isDefault, Err: err}
	}

	s.mu.Lock()
	entries := s.mergeLocked(data, f.group)
	f.lastMod = mod
	f.loaded = true
	s.mu.Unlock()

	logger.Debug("credential file parsed",
		logger.Op("reload"),
		logger.Path(f.path),
		logger.Group(f.group),
		logger.Stale(true),
		logger.ModTime(mod),
		logger.Entries(entries),
	)
	return true, nil
}

// mergeLocked folds parsed entries into the index under the write lock. The
// incoming hash always replaces the stored one; the file's group is added to
// the user's set if not already present. Existing entries are never removed.
// Callers must hold s.mu.
func (s *Store) mergeLocked(data []byte, group string) int {
	entries := htpasswd.Parse(data)
	for _, e := range entries {
		rec, ok := s.index[e.Name]
		if !ok {
			s.index[e.Name] = Record{Hash: e.Hash, Groups: []string{group}}
			continue
		}
		rec.Hash = e.Hash
		if !slices.Contains(rec.Groups, group) {
			rec.Groups = append(rec.Groups, group)
		}
		s.index[e.Name] = rec
	}
	return len(entries)
}
