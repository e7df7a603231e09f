package i

import (
	"context"
	"errors"
)

var (
	ErrRobotBusy     = errors.New("robot is already running")
	ErrRobotLockLost = errors.New("robot lock lost")
)

// Lease is a held robot lock.
type Lease interface {
	// Lost is closed if the lock expires or is taken over before Release.
	Lost() <-chan struct{}

	// Release gives the lock up. It is safe to call more than once.
	Release() error
}

// RobotLock guarantees that a single run drives a robot at a time.
type RobotLock interface {
	// Acquire takes the lock for robotID without waiting and returns
	// ErrRobotBusy if it is held.
	Acquire(ctx context.Context, robotID string) (Lease, error)
}
