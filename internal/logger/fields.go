package logger

import (
	"log/slog"
	"time"
)

// Standard field keys for structured logging. Use these consistently across
// all log statements so aggregated logs stay queryable.
const (
	// Operation
	KeyOp         = "op"          // store operation: authenticate, add_user, change_password, reload
	KeyDurationMs = "duration_ms" // elapsed time in milliseconds
	KeyError      = "error"       // error message

	// Credential files
	KeyPath    = "path"     // credential file path
	KeyGroup   = "group"    // access group attached to a file
	KeyDefault = "default"  // whether the file is the mutation target
	KeyStale   = "stale"    // whether a file needed re-parsing
	KeyModTime = "mod_time" // observed file modification time
	KeyFiles   = "files"    // number of configured files
	KeyEntries = "entries"  // entries parsed from a file
	KeyUsers   = "users"    // merged index size

	// Subjects
	KeyUsername = "username"  // subject username
	KeyGroups   = "groups"    // group memberships
	KeyClientIP = "client_ip" // originating client address

	// Locking
	KeyLockID   = "lock_id"   // per-acquisition token for correlating lock lines
	KeyLockPath = "lock_path" // sidecar lock file path
)

// Op returns a slog.Attr for the store operation name.
func Op(name string) slog.Attr {
	return slog.String(KeyOp, name)
}

// Path returns a slog.Attr for a credential file path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Group returns a slog.Attr for a file's access group.
func Group(name string) slog.Attr {
	return slog.String(KeyGroup, name)
}

// Username returns a slog.Attr for the subject username.
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// Users returns a slog.Attr for the merged index size.
func Users(n int) slog.Attr {
	return slog.Int(KeyUsers, n)
}

// Entries returns a slog.Attr for the number of entries parsed from a file.
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// Stale returns a slog.Attr marking whether a file needed re-parsing.
func Stale(stale bool) slog.Attr {
	return slog.Bool(KeyStale, stale)
}

// ModTime returns a slog.Attr for an observed modification time.
func ModTime(t time.Time) slog.Attr {
	return slog.Time(KeyModTime, t)
}

// DurationMs returns a slog.Attr for elapsed milliseconds since start.
func DurationMs(start time.Time) slog.Attr {
	return slog.Float64(KeyDurationMs, Duration(start))
}

// Err returns a slog.Attr for an error, safe to call with nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
