package preflight

import (
	"fmt"

	"github.com/gofrs/flock"

	"mediaranker/internal/config"
)

const storeLockName = "Board store"

// CheckStoreLock reports whether the board store is free. Only one process
// may hold it; a running serve or tui session makes board commands fail.
func CheckStoreLock(cfg *config.Config) Result {
	if cfg == nil {
		return Result{Name: storeLockName, Detail: "Unknown"}
	}
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Result{Name: storeLockName, Detail: fmt.Sprintf("%s (error: %v)", cfg.LockPath(), err)}
	}
	if !locked {
		return Result{Name: storeLockName, Detail: "in use by another mediaranker process"}
	}
	_ = lock.Unlock()
	return Result{Name: storeLockName, Passed: true, Detail: cfg.DatabasePath()}
}
