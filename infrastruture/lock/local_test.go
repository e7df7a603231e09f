package lock

import (
	"context"
	"testing"

	"github.com/beka-birhanu/mazebot/service/i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRobotLock(t *testing.T) {
	ctx := context.Background()

	t.Run("Second acquire is busy", func(t *testing.T) {
		l := NewLocalRobotLock()
		lease, err := l.Acquire(ctx, "r1")
		require.NoError(t, err)
		assert.Nil(t, lease.Lost())

		_, err = l.Acquire(ctx, "r1")
		assert.ErrorIs(t, err, i.ErrRobotBusy)

		other, err := l.Acquire(ctx, "r2")
		require.NoError(t, err)
		require.NoError(t, other.Release())

		require.NoError(t, lease.Release())
		again, err := l.Acquire(ctx, "r1")
		require.NoError(t, err)
		require.NoError(t, again.Release())
	})

	t.Run("Stale release keeps newer holder", func(t *testing.T) {
		l := NewLocalRobotLock()
		first, err := l.Acquire(ctx, "r1")
		require.NoError(t, err)
		require.NoError(t, first.Release())

		second, err := l.Acquire(ctx, "r1")
		require.NoError(t, err)
		require.NoError(t, first.Release())

		_, err = l.Acquire(ctx, "r1")
		assert.ErrorIs(t, err, i.ErrRobotBusy)
		require.NoError(t, second.Release())
	})

	t.Run("Cancelled context", func(t *testing.T) {
		l := NewLocalRobotLock()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := l.Acquire(cctx, "r1")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
