package i

import (
	"context"
	"errors"

	dmn "github.com/beka-birhanu/mazebot/domain"
	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("run not found")

// RunRepo defines the interface for run record persistence.
type RunRepo interface {
	// Save inserts or updates a run record.
	Save(ctx context.Context, run *dmn.Run) error

	// ByID retrieves a run by its ID.
	// Returns ErrRunNotFound if there is no such run.
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Run, error)

	// List returns up to limit runs, most recent first.
	List(ctx context.Context, limit int) ([]*dmn.Run, error)
}
