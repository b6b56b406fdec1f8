package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/marmos91/htstore/internal/logger"
	"github.com/marmos91/htstore/pkg/htpasswd"
	"github.com/marmos91/htstore/pkg/lockfile"
)

// AddUser registers a new user in the default file.
//
// Validation runs twice: once against the cached index before any I/O, and
// again under the file lock after the default file's current content has
// been merged, so a user added concurrently by another process is caught.
// Returns ErrInvalidUsername, ErrEmptyPassword, ErrUserExists or
// ErrMaxUsersReached on validation failure, a lock or file error otherwise.
func (s *Store) AddUser(ctx context.Context, username, password string) error {
	start := time.Now()

	err := func() error {
		// Cheap pre-check on the cached index. Skips the lock and the file
		// I/O when the call is doomed anyway; the authoritative check runs
		// again under the lock.
		if err := s.checkNewUser(username, password); err != nil {
			return err
		}

		return s.mutate(ctx, func(current []byte) ([]byte, error) {
			if err := s.checkNewUser(username, password); err != nil {
				return nil, err
			}
			hash, err := htpasswd.Hash(password)
			if err != nil {
				return nil, err
			}
			return htpasswd.Append(current, username, hash), nil
		})
	}()

	s.metrics.RecordMutation("add_user", outcome(err), time.Since(start).Seconds())
	if err != nil {
		logger.Error("add user failed",
			logger.Op("add_user"),
			logger.Username(username),
			logger.Err(err),
		)
		return err
	}

	logger.Info("user added",
		logger.Op("add_user"),
		logger.Username(username),
		logger.Group(s.defaultGroup),
		logger.DurationMs(start),
	)
	return nil
}

// ChangePassword replaces the password of an existing user in the default
// file.
//
// When oldPassword is non-empty it must verify against the user's current
// hash (ErrPasswordMismatch otherwise); an empty oldPassword skips the
// check, covering administrative resets. The target user must exist in the
// merged index, and the rewrite happens in the default file only — a user
// whose entry lives solely in a non-default file cannot be rewritten and
// fails with ErrUserNotFound.
func (s *Store) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	start := time.Now()

	err := func() error {
		if err := htpasswd.ValidateName(username); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidUsername, err)
		}
		if newPassword == "" {
			return ErrEmptyPassword
		}

		return s.mutate(ctx, func(current []byte) ([]byte, error) {
			rec, ok := s.lookup(username)
			if !ok {
				return nil, fmt.Errorf("user %q: %w", username, ErrUserNotFound)
			}
			if oldPassword != "" && !htpasswd.Verify(oldPassword, rec.Hash) {
				return nil, ErrPasswordMismatch
			}

			next, err := htpasswd.SetPassword(current, username, newPassword)
			if err != nil {
				if errors.Is(err, htpasswd.ErrEntryNotFound) {
					return nil, fmt.Errorf("user %q: %w", username, ErrUserNotFound)
				}
				return nil, err
			}
			return next, nil
		})
	}()

	s.metrics.RecordMutation("change_password", outcome(err), time.Since(start).Seconds())
	if err != nil {
		logger.Error("change password failed",
			logger.Op("change_password"),
			logger.Username(username),
			logger.Err(err),
		)
		return err
	}

	logger.Info("password changed",
		logger.Op("change_password"),
		logger.Username(username),
		logger.DurationMs(start),
	)
	return nil
}

// mutate runs one read-modify-write cycle against the default file.
//
// The sequence is fixed: take the in-process mutex, acquire the advisory
// lock, read the current content (a missing file reads as empty), merge
// that content into the index so rewrite validates against the latest
// truth, call rewrite for the replacement content, write it, reload so the
// cache reflects the written state, and release the lock. Release runs on
// every exit path; a release failure never masks the operation's error
// because errors.Join keeps the earlier error first.
func (s *Store) mutate(ctx context.Context, rewrite func(current []byte) ([]byte, error)) (err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	lk, err := lockfile.Acquire(ctx, s.defaultPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, lk.Release())
	}()

	current, err := lk.Read()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return &FileError{Path: s.defaultPath, Group: s.defaultGroup, Default: true, Err: err}
		}
		// Missing default file means an empty store: AddUser bootstraps it.
		current = nil
	}

	s.mu.Lock()
	s.mergeLocked(current, s.defaultGroup)
	s.mu.Unlock()

	next, err := rewrite(current)
	if err != nil {
		return err
	}

	if err := lk.Write(next); err != nil {
		return &FileError{Path: s.defaultPath, Group: s.defaultGroup, Default: true, Err: err}
	}

	// Refresh the index before the lock is released so operations queued
	// behind us observe the write.
	return s.Reload(ctx)
}

// checkNewUser validates an AddUser request against the current index:
// name shape, non-empty password, duplicates, then the registration cap.
func (s *Store) checkNewUser(username, password string) error {
	if err := htpasswd.ValidateName(username); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUsername, err)
	}
	if password == "" {
		return ErrEmptyPassword
	}

	s.mu.RLock()
	_, exists := s.index[username]
	count := len(s.index)
	s.mu.RUnlock()

	if exists {
		return fmt.Errorf("user %q: %w", username, ErrUserExists)
	}
	if s.maxUsers < 0 {
		// Negative cap disables registration outright.
		return ErrMaxUsersReached
	}
	if s.maxUsers > 0 && count >= s.maxUsers {
		return fmt.Errorf("%w: limit %d", ErrMaxUsersReached, s.maxUsers)
	}
	return nil
}

// outcome maps an operation error to a metrics result label.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
