// Package lockfile provides exclusive advisory locking for credential files.
//
// The lock is an flock(2) on a sidecar file next to the target
// ("<path>.lock"), so locking works even when the target does not exist yet.
// It is cooperative: only other users of the same discipline are excluded;
// nothing stops an unrelated process from writing the target directly.
package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/marmos91/htstore/internal/logger"
)

var (
	// ErrLock is the error when acquiring the file lock fails.
	ErrLock = errors.New("failed to lock credential file")

	// ErrUnlock is the error when releasing the file lock fails.
	ErrUnlock = errors.New("failed to unlock credential file")

	// ErrLockTimeout is the error when acquisition gives up because the
	// caller's context expired while another holder kept the lock.
	ErrLockTimeout = fmt.Errorf("%w: timed out", ErrLock)
)

// lockSuffix is appended to the target path to form the sidecar lock file.
const lockSuffix = ".lock"

// Lock is an acquired exclusive advisory lock on a credential file path.
// It must be released exactly once; Release tolerates extra calls so a
// deferred release can coexist with an explicit one.
type Lock struct {
	path string   // target credential file
	f    *os.File // sidecar holding the flock
	id   string   // per-acquisition token for log correlation

	mu       sync.Mutex
	released bool
}

// Acquire takes the exclusive advisory lock for path, blocking until the
// lock is granted or ctx expires. The target file itself does not need to
// exist: the flock is held on the "<path>.lock" sidecar.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	f, err := os.OpenFile(path+lockSuffix, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLock, err)
	}

	// flock has no deadline of its own, so run it in a goroutine and race
	// it against the context.
	done := make(chan error, 1)
	go func() {
		done <- unix.Flock(int(f.Fd()), unix.LOCK_EX)
	}()

	select {
	case <-ctx.Done():
		// The kernel may still grant the flock after we give up. Release it
		// as soon as that happens so nothing stays held by a dead caller.
		go func() {
			if err := <-done; err == nil {
				_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
			}
			_ = f.Close()
		}()
		return nil, fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
	case err := <-done:
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %w", ErrLock, err)
		}
	}

	l := &Lock{path: path, f: f, id: uuid.NewString()}
	logger.Debug("lock acquired", logger.KeyLockID, l.id, logger.KeyLockPath, f.Name())
	return l, nil
}

// ID returns the per-acquisition correlation token.
func (l *Lock) ID() string {
	return l.id
}

// Read returns the target file's current bytes. A missing target reports an
// error satisfying errors.Is(err, fs.ErrNotExist), which callers treat as
// empty-file semantics. The lock stays held regardless of the outcome.
func (l *Lock) Read() ([]byte, error) {
	return os.ReadFile(l.path)
}

// Write replaces the target file's contents in full. The file is created
// with mode 0600 when it does not exist yet.
func (l *Lock) Write(data []byte) error {
	return os.WriteFile(l.path, data, 0600)
}

// Release drops the lock and closes the sidecar. Only the first call touches
// the descriptor; later calls return nil.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return nil
	}
	l.released = true

	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		_ = l.f.Close()
		return fmt.Errorf("%w: %w", ErrUnlock, err)
	}
	if err := l.f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnlock, err)
	}
	logger.Debug("lock released", logger.KeyLockID, l.id)
	return nil
}
