package i

import (
	"context"

	"github.com/beka-birhanu/mazebot/navigator"
	"github.com/google/uuid"
)

// StatusPublisher forwards run progress to external telemetry consumers.
type StatusPublisher interface {
	Publish(ctx context.Context, runID uuid.UUID, s navigator.Status) error
}
