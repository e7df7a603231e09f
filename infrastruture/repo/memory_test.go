package repo

import (
	"context"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/mazebot/domain"
	"github.com/beka-birhanu/mazebot/service/i"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRunRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRunRepo()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var ids []uuid.UUID
	for n := 0; n < 3; n++ {
		run := &dmn.Run{ID: uuid.New(), Status: dmn.StatusRunning, StartedAt: base.Add(time.Duration(n) * time.Minute)}
		require.NoError(t, repo.Save(ctx, run))
		ids = append(ids, run.ID)
	}

	t.Run("ByID returns a copy", func(t *testing.T) {
		run, err := repo.ByID(ctx, ids[0])
		require.NoError(t, err)
		run.Status = dmn.StatusReached

		again, err := repo.ByID(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, dmn.StatusRunning, again.Status)
	})

	t.Run("Save replaces", func(t *testing.T) {
		run, err := repo.ByID(ctx, ids[1])
		require.NoError(t, err)
		run.Status = dmn.StatusUnsolvable
		require.NoError(t, repo.Save(ctx, run))

		again, err := repo.ByID(ctx, ids[1])
		require.NoError(t, err)
		assert.Equal(t, dmn.StatusUnsolvable, again.Status)
	})

	t.Run("Unknown ID", func(t *testing.T) {
		_, err := repo.ByID(ctx, uuid.New())
		assert.ErrorIs(t, err, i.ErrRunNotFound)
	})

	t.Run("List is newest first and limited", func(t *testing.T) {
		runs, err := repo.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, ids[2], runs[0].ID)
		assert.Equal(t, ids[1], runs[1].ID)

		all, err := repo.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
