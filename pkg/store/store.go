// Package store implements a credential store backed by one or more flat
// files in htpasswd format, each contributing a named access group.
//
// The store authenticates a username/password pair against the union of all
// configured files, supports adding users and changing passwords on the
// single file marked as default, and tolerates concurrent readers and
// writers across independent processes: mutations run under an advisory
// file lock (pkg/lockfile) and reads pick up external changes lazily via
// modification-time tracking.
//
// Thread safety: all methods are safe for concurrent use. The in-memory
// index is guarded by an RWMutex; mutations are additionally serialized
// within the process by a dedicated mutex, because the advisory file lock
// only excludes other processes.
package store

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// FileConfig describes one configured credential file.
type FileConfig struct {
	// Path is the location of the htpasswd file.
	Path string

	// Group is the access group granted to every user parsed from this
	// file. A username appearing in several files is a member of all their
	// groups.
	Group string

	// Default marks this file as the write target for AddUser and
	// ChangePassword. Exactly one configured file must be the default.
	Default bool
}

// Config carries the construction-time configuration for a Store.
type Config struct {
	// Files is the ordered list of credential files. Order matters: when a
	// username appears in several files, the hash from the file merged last
	// wins.
	Files []FileConfig

	// MaxUsers bounds registration. Zero means unbounded; a negative value
	// disables AddUser entirely.
	MaxUsers int
}

// Validate checks the configuration invariants New relies on.
func (c Config) Validate() error {
	if len(c.Files) == 0 {
		return fmt.Errorf("store config: no credential files configured")
	}

	seen := make(map[string]struct{}, len(c.Files))
	defaults := 0
	for i, f := range c.Files {
		if f.Path == "" {
			return fmt.Errorf("store config: file %d has an empty path", i)
		}
		clean := filepath.Clean(f.Path)
		if _, dup := seen[clean]; dup {
			return fmt.Errorf("store config: path %s configured twice", clean)
		}
		seen[clean] = struct{}{}
		if f.Default {
			defaults++
		}
	}

	if defaults != 1 {
		return fmt.Errorf("store config: exactly one file must be marked default, got %d", defaults)
	}
	return nil
}

// Record is the stored view of one user: the password hash from the file
// merged most recently, plus every group collected across files in merge
// order.
type Record struct {
	Hash   string
	Groups []string
}

// User is the hash-free view of an index entry returned by Users.
type User struct {
	Username string   `json:"username" yaml:"username"`
	Groups   []string `json:"groups"   yaml:"groups"`
}

// fileState tracks per-file reload state. lastMod is only meaningful once
// loaded is set; both are guarded by the store's index mutex.
type fileState struct {
	path      string
	group     string
	isDefault bool

	lastMod time.Time
	loaded  bool
}

// Store is a multi-file htpasswd credential store.
type Store struct {
	// mu guards index and the per-file reload state.
	mu    sync.RWMutex
	index map[string]Record
	files []*fileState

	// writeMu serializes AddUser/ChangePassword within this process. The
	// advisory file lock handles cross-process exclusion.
	writeMu sync.Mutex

	defaultPath  string
	defaultGroup string
	maxUsers     int

	metrics *Metrics
}

// New creates a Store from cfg. It fails if the file list is empty, any
// path is empty or duplicated, or the default file is not marked exactly
// once. No file I/O happens here; files are first read on Reload or on the
// first operation.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		index:    make(map[string]Record),
		files:    make([]*fileState, 0, len(cfg.Files)),
		maxUsers: cfg.MaxUsers,
	}
	for _, f := range cfg.Files {
		clean := filepath.Clean(f.Path)
		s.files = append(s.files, &fileState{
			path:      clean,
			group:     f.Group,
			isDefault: f.Default,
		})
		if f.Default {
			s.defaultPath = clean
			s.defaultGroup = f.Group
		}
	}
	return s, nil
}

// SetMetrics attaches Prometheus metrics to the store. Passing nil detaches
// them; all recording is nil-safe. Call before the store is shared between
// goroutines.
func (s *Store) SetMetrics(m *Metrics) {
	s.metrics = m
}

// UserCount returns the current size of the merged index. Call Reload first
// for a fresh view.
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// Users returns the merged index as hash-free views, sorted by username.
// Group slices are copies; mutating them does not affect the store. Call
// Reload first for a fresh view.
func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(s.index))
	for name, rec := range s.index {
		users = append(users, User{
			Username: name,
			Groups:   slices.Clone(rec.Groups),
		})
	}
	slices.SortFunc(users, func(a, b User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users
}

// lookup returns a copy of the record for username, if present.
func (s *Store) lookup(username string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.index[username]
	if !ok {
		return Record{}, false
	}
	rec.Groups = slices.Clone(rec.Groups)
	return rec, true
}
