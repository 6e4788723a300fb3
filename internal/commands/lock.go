package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/tjun/sortenv/internal/sorter"
)

const lockRetryDelay = 50 * time.Millisecond

// sortFileLocked sorts path in place while holding an advisory lock on it.
// The file is read, sorted and rewritten inside the locked section, so a
// change made by another lock holder before we acquire the lock is never
// overwritten with stale content. It returns the content read under the lock
// and its sorted form; the file is only written when the two differ.
func sortFileLocked(ctx context.Context, path string) (content, sorted []byte, err error) {
	lock := flock.New(path)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, nil, fmt.Errorf("failed to lock %s", path)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("failed to unlock %s: %w", path, unlockErr)
		}
	}()

	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	content, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	sorted = []byte(sorter.Sort(string(content)))
	if bytes.Equal(content, sorted) {
		return content, sorted, nil
	}

	if err := os.WriteFile(path, sorted, info.Mode().Perm()); err != nil {
		return nil, nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return content, sorted, nil
}
