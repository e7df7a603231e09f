// Package runapi exposes navigation runs over HTTP.
package runapi

import (
	dmn "github.com/beka-birhanu/mazebot/domain"
	"github.com/google/uuid"
)

// StartRequest is the body of a run start. Empty fields keep the configured
// defaults.
type StartRequest struct {
	Priority      string    `json:"priority"`
	BacktrackTurn string    `json:"backtrack_turn"`
	Target        *dmn.Cell `json:"target"`
	Seed          int64     `json:"seed"`
}

// StartResponse identifies a started run.
type StartResponse struct {
	ID uuid.UUID `json:"id"`
}

// ListResponse wraps a page of runs.
type ListResponse struct {
	Runs []*dmn.Run `json:"runs"`
}

func (r StartRequest) toDomain() dmn.RunRequest {
	return dmn.RunRequest{
		Priority:      r.Priority,
		BacktrackTurn: r.BacktrackTurn,
		Target:        r.Target,
		Seed:          r.Seed,
	}
}
