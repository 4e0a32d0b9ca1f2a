package arena

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// readers is the maximum number of concurrent readers of a single component
const readers = 1 << 10

// boundedRWLock is a read/write lock with a bounded wait.
//
// Readers acquire one unit of the semaphore, writers acquire all of them.
type boundedRWLock struct {
	sem *semaphore.Weighted
}

func newBoundedRWLock() *boundedRWLock {
	return &boundedRWLock{sem: semaphore.NewWeighted(readers)}
}

func (l *boundedRWLock) rlock(id fmt.Stringer, timeout time.Duration) {
	l.acquire(id, 1, timeout, "read")
}

func (l *boundedRWLock) runlock() {
	l.sem.Release(1)
}

func (l *boundedRWLock) lock(id fmt.Stringer, timeout time.Duration) {
	l.acquire(id, readers, timeout, "write")
}

func (l *boundedRWLock) unlock() {
	l.sem.Release(readers)
}

func (l *boundedRWLock) acquire(id fmt.Stringer, n int64, timeout time.Duration, mode string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := l.sem.Acquire(ctx, n); err != nil {
		panic(fmt.Sprintf("arena: timed out after %v waiting for %s lock on component %v", timeout, mode, id))
	}
}
