package store

import (
	"errors"
	"fmt"
)

// Common errors returned by store operations. Compare with errors.Is; the
// store wraps them with per-call context.
var (
	ErrUserExists       = errors.New("user already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrMaxUsersReached  = errors.New("maximum number of users reached")
	ErrInvalidUsername  = errors.New("invalid username")
	ErrEmptyPassword    = errors.New("password must not be empty")
	ErrPasswordMismatch = errors.New("old password does not match")
)

// FileError reports a failure on one configured credential file. It carries
// the file's path, its access group, and whether it is the default (write
// target) file, so callers can distinguish a missing default file from a
// missing secondary one. Unwrap exposes the underlying cause, so
// errors.Is(err, fs.ErrNotExist) sees through it.
type FileError struct {
	Path    string
	Group   string
	Default bool
	Err     error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("users file %s (group %s): %v", e.Path, e.Group, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FileError) Unwrap() error {
	return e.Err
}
