package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the repository lock.
var ErrLocked = errors.New("repository is locked by another process")

const lockRetryDelay = 50 * time.Millisecond

// Lock takes the exclusive repository lock at .clony/clony.lock, retrying until ctx is done.
// The returned function releases it.
func Lock(ctx context.Context, repoPath string) (func() error, error) {
	fileLock := flock.New(filepath.Join(repoPath, constants.Clony, constants.LockFile))

	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %w", ErrLocked, err)
		}
		return nil, fmt.Errorf("failed to lock repository: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	return fileLock.Unlock, nil
}
