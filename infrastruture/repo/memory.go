package repo

import (
	"context"
	"slices"
	"sync"

	dmn "github.com/beka-birhanu/mazebot/domain"
	"github.com/beka-birhanu/mazebot/service/i"
	"github.com/google/uuid"
)

// MemoryRunRepo keeps run records in process. It is used when no database
// is configured.
type MemoryRunRepo struct {
	runs map[uuid.UUID]dmn.Run
	sync.RWMutex
}

// NewMemoryRunRepo returns an empty repository.
func NewMemoryRunRepo() *MemoryRunRepo {
	return &MemoryRunRepo{runs: make(map[uuid.UUID]dmn.Run)}
}

// Save stores a copy of run.
func (m *MemoryRunRepo) Save(_ context.Context, run *dmn.Run) error {
	m.Lock()
	defer m.Unlock()
	m.runs[run.ID] = *run
	return nil
}

// ByID returns a copy of the stored run.
func (m *MemoryRunRepo) ByID(_ context.Context, id uuid.UUID) (*dmn.Run, error) {
	m.RLock()
	defer m.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, i.ErrRunNotFound
	}
	return &run, nil
}

// List returns up to limit runs, most recently started first.
func (m *MemoryRunRepo) List(_ context.Context, limit int) ([]*dmn.Run, error) {
	m.RLock()
	defer m.RUnlock()

	runs := make([]*dmn.Run, 0, len(m.runs))
	for _, run := range m.runs {
		run := run
		runs = append(runs, &run)
	}
	slices.SortFunc(runs, func(a, b *dmn.Run) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	if n := clampLimit(limit); len(runs) > n {
		runs = runs[:n]
	}
	return runs, nil
}
