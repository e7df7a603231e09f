package i

import (
	"context"
	"errors"

	dmn "github.com/beka-birhanu/mazebot/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidRunRequest = errors.New("invalid run request")
	ErrRunNotActive      = errors.New("run is not active")
)

// RunManager starts, observes and stops navigation runs.
type RunManager interface {
	// Start begins a run in the background and returns its ID.
	Start(ctx context.Context, req dmn.RunRequest) (uuid.UUID, error)

	// Run returns a live or persisted run.
	Run(ctx context.Context, id uuid.UUID) (*dmn.Run, error)

	// List returns recent runs.
	List(ctx context.Context, limit int) ([]*dmn.Run, error)

	// Stop cancels an active run. The robot is halted before the run ends.
	Stop(id uuid.UUID) error
}
