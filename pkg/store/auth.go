package store

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/marmos91/htstore/internal/logger"
	"github.com/marmos91/htstore/pkg/htpasswd"
)

// Authenticator is the narrow contract hosts use to verify credentials.
// On success it returns the user's group memberships and true; a wrong
// password or unknown username returns false with a nil error.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) ([]string, bool, error)
}

// Manager extends Authenticator with the mutating operations. Hosts that
// embed the store only ever need one of these two interfaces; neither leaks
// file formats or locking.
type Manager interface {
	Authenticator
	AddUser(ctx context.Context, username, password string) error
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
}

// Authenticate checks a username/password pair against the merged index.
//
// It reloads first so externally written changes are visible. A default
// file that does not exist yet is treated as an empty store — the login is
// rejected quietly instead of surfacing an error — while a missing
// non-default file is a real reload failure, since that file can never
// self-heal by being written. No file lock is taken: this is a pure read
// path, safe against in-flight mutations because reload is idempotent and
// merging is additive.
func (s *Store) Authenticate(ctx context.Context, username, password string) ([]string, bool, error) {
	start := time.Now()

	if err := s.Reload(ctx); err != nil {
		var fe *FileError
		if errors.As(err, &fe) && fe.Default && errors.Is(fe.Err, fs.ErrNotExist) {
			s.metrics.RecordAuth("denied", time.Since(start).Seconds())
			logger.Debug("authentication rejected, store has no users yet",
				logger.Op("authenticate"),
				logger.Username(username),
				logger.Path(fe.Path),
			)
			return nil, false, nil
		}
		s.metrics.RecordAuth("error", time.Since(start).Seconds())
		return nil, false, err
	}

	rec, ok := s.lookup(username)
	if !ok {
		s.metrics.RecordAuth("denied", time.Since(start).Seconds())
		logger.Debug("authentication failed, unknown user",
			logger.Op("authenticate"),
			logger.Username(username),
			logger.DurationMs(start),
		)
		return nil, false, nil
	}

	if !htpasswd.Verify(password, rec.Hash) {
		s.metrics.RecordAuth("denied", time.Since(start).Seconds())
		logger.Debug("authentication failed, wrong password",
			logger.Op("authenticate"),
			logger.Username(username),
			logger.DurationMs(start),
		)
		return nil, false, nil
	}

	if htpasswd.NeedsRehash(rec.Hash) {
		logger.Warn("stored hash uses a below-default bcrypt cost, change the password to upgrade it",
			logger.Op("authenticate"),
			logger.Username(username),
		)
	}

	s.metrics.RecordAuth("granted", time.Since(start).Seconds())
	logger.Debug("authentication succeeded",
		logger.Op("authenticate"),
		logger.Username(username),
		slog.Any(logger.KeyGroups, rec.Groups),
		logger.DurationMs(start),
	)
	return rec.Groups, true, nil
}
