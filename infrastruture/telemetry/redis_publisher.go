package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/beka-birhanu/mazebot/navigator"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StatusEvent is the JSON payload published for every status line.
type StatusEvent struct {
	RunID         uuid.UUID `json:"run_id"`
	Cycle         int       `json:"cycle"`
	Row           int       `json:"row"`
	Col           int       `json:"col"`
	Heading       string    `json:"heading"`
	WallLeft      bool      `json:"wall_left"`
	WallFront     bool      `json:"wall_front"`
	WallRight     bool      `json:"wall_right"`
	Decision      string    `json:"decision"`
	FrontierDepth int       `json:"frontier_depth"`
	Outcome       string    `json:"outcome"`
	Message       string    `json:"message,omitempty"`
	At            time.Time `json:"at"`
}

// NewStatusEvent converts a status line of run id.
func NewStatusEvent(id uuid.UUID, s navigator.Status) StatusEvent {
	return StatusEvent{
		RunID:         id,
		Cycle:         s.Cycle,
		Row:           s.Pose.Row,
		Col:           s.Pose.Col,
		Heading:       s.Pose.Heading.String(),
		WallLeft:      s.Walls.Left,
		WallFront:     s.Walls.Front,
		WallRight:     s.Walls.Right,
		Decision:      s.Decision.String(),
		FrontierDepth: s.FrontierDepth,
		Outcome:       s.Outcome.String(),
		Message:       s.Message,
		At:            s.At,
	}
}

// RedisPublisher publishes status events on "<prefix>:runs:<id>".
// Implements i.StatusPublisher.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher creates a RedisPublisher.
func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

// Channel returns the channel status lines of run id are published on.
func (p *RedisPublisher) Channel(id uuid.UUID) string {
	return fmt.Sprintf("%s:runs:%s", p.prefix, id)
}

// Publish sends s to subscribers of the run's channel.
func (p *RedisPublisher) Publish(ctx context.Context, id uuid.UUID, s navigator.Status) error {
	payload, err := json.Marshal(NewStatusEvent(id, s))
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	return p.client.Publish(ctx, p.Channel(id), payload).Err()
}
