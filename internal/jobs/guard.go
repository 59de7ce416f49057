package job

import (
	"errors"
	"sync"
)

var ErrJobRunning = errors.New("job is already running")

// runGuard keeps two invocations of the same job from overlapping inside one
// process. Cross-process overlap is handled by the row-level claim.
type runGuard struct {
	mu sync.Mutex
}

func (g *runGuard) acquire() (release func(), err error) {
	if !g.mu.TryLock() {
		return nil, ErrJobRunning
	}
	return g.mu.Unlock, nil
}
