package lock

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/beka-birhanu/mazebot/config"
	"github.com/beka-birhanu/mazebot/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 10 * time.Second

// mutex is the part of *redsync.Mutex the lock uses.
type mutex interface {
	Name() string
	TryLockContext(ctx context.Context) error
	ExtendContext(ctx context.Context) (bool, error)
	UnlockContext(ctx context.Context) (bool, error)
}

// RedisRobotLock shares robot ownership between service instances with a
// redsync mutex. The mutex is extended while it is held; if an extension
// fails the lease reports the lock lost, and a crashed owner frees the
// robot after one TTL.
type RedisRobotLock struct {
	newMutex func(name string) mutex
	prefix   string
	ttl      time.Duration
	logger   *log.Logger
}

// NewRedisRobotLock creates a lock stored under "<prefix>:robots:<id>:lock".
func NewRedisRobotLock(client *redis.Client, prefix string, ttl time.Duration, logger *log.Logger) *RedisRobotLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	locker := redsync.New(goredis.NewPool(client))
	newMutex := func(name string) mutex {
		return locker.NewMutex(name, redsync.WithExpiry(ttl), redsync.WithTries(1))
	}
	return newRobotLock(newMutex, prefix, ttl, logger)
}

func newRobotLock(newMutex func(string) mutex, prefix string, ttl time.Duration, logger *log.Logger) *RedisRobotLock {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &RedisRobotLock{newMutex: newMutex, prefix: prefix, ttl: ttl, logger: logger}
}

// Acquire takes the lock without retrying.
func (l *RedisRobotLock) Acquire(ctx context.Context, robotID string) (i.Lease, error) {
	m := l.newMutex(fmt.Sprintf("%s:robots:%s:lock", l.prefix, robotID))
	if err := m.TryLockContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", i.ErrRobotBusy, err)
	}

	lease := &redisLease{
		mutex:  m,
		ttl:    l.ttl,
		logger: l.logger,
		stop:   make(chan struct{}),
		lost:   make(chan struct{}),
	}
	lease.wg.Add(1)
	go lease.keepAlive()
	return lease, nil
}

type redisLease struct {
	mutex  mutex
	ttl    time.Duration
	logger *log.Logger

	stop      chan struct{}
	lost      chan struct{}
	wg        sync.WaitGroup
	once      sync.Once
	unlockErr error
}

func (rl *redisLease) Lost() <-chan struct{} { return rl.lost }

func (rl *redisLease) Release() error {
	rl.once.Do(func() {
		close(rl.stop)
		rl.wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), rl.ttl)
		defer cancel()
		if _, err := rl.mutex.UnlockContext(ctx); err != nil {
			rl.unlockErr = fmt.Errorf("unlocking %s: %w", rl.mutex.Name(), err)
		}
	})
	return rl.unlockErr
}

// keepAlive extends the mutex every third of its TTL. The first failed
// extension closes lost; the robot may already belong to someone else.
func (rl *redisLease) keepAlive() {
	defer rl.wg.Done()
	ticker := time.NewTicker(rl.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), rl.ttl/3)
		ok, err := rl.mutex.ExtendContext(ctx)
		cancel()
		if err == nil && ok {
			continue
		}

		rl.logger.Printf("%s[ERROR]%s extending %s failed, lock lost: %v", config.LogErrorColor, config.LogColorReset, rl.mutex.Name(), err)
		close(rl.lost)
		return
	}
}
