// Package lock keeps a robot to a single run at a time.
package lock

import (
	"context"
	"sync"

	"github.com/beka-birhanu/mazebot/service/i"
)

// LocalRobotLock is an in-process i.RobotLock for single instance
// deployments.
type LocalRobotLock struct {
	held map[string]uint64
	next uint64
	sync.Mutex
}

// NewLocalRobotLock returns a lock with no robot held.
func NewLocalRobotLock() *LocalRobotLock {
	return &LocalRobotLock{held: make(map[string]uint64)}
}

// Acquire takes the lock for robotID or returns i.ErrRobotBusy.
func (l *LocalRobotLock) Acquire(ctx context.Context, robotID string) (i.Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.Lock()
	defer l.Unlock()
	if _, ok := l.held[robotID]; ok {
		return nil, i.ErrRobotBusy
	}

	l.next++
	l.held[robotID] = l.next
	return &localLease{lock: l, robotID: robotID, token: l.next}, nil
}

// localLease is never lost; only its owner releases it.
type localLease struct {
	lock    *LocalRobotLock
	robotID string
	token   uint64
}

func (*localLease) Lost() <-chan struct{} { return nil }

func (ll *localLease) Release() error {
	ll.lock.Lock()
	defer ll.lock.Unlock()
	// A stale release must not free a lock taken after it.
	if ll.lock.held[ll.robotID] == ll.token {
		delete(ll.lock.held, ll.robotID)
	}
	return nil
}
