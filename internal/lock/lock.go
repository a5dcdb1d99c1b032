package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrLocked is returned when another pass already holds the lock
var ErrLocked = errors.New("sync pass already running")

// Locker guards a sync pass so at most one runs at a time
type Locker interface {
	// Acquire takes the lock or returns ErrLocked without blocking.
	// The returned func releases it.
	Acquire(ctx context.Context) (release func(), err error)
}

// Local is an in-process Locker
type Local struct {
	mu sync.Mutex
}

// NewLocal creates an in-process lock
func NewLocal() *Local {
	return &Local{}
}

// Acquire implements Locker
func (l *Local) Acquire(ctx context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrLocked
	}
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}
