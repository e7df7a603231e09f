package navigator

import (
	"context"
	"errors"
)

// ErrSensorTimeout is returned by Perception implementations when a range
// reading did not complete in time.
var ErrSensorTimeout = errors.New("sensor read timed out")

// Perception reads the robot's sensors. Readings are only taken while the
// robot is stationary.
type Perception interface {
	// ReadFrontDistanceCM returns the distance to the nearest obstacle
	// ahead. A timed out or otherwise failed reading returns an error.
	ReadFrontDistanceCM(ctx context.Context) (float64, error)

	// ReadSideContacts reports whether the left and right sides are blocked.
	ReadSideContacts(ctx context.Context) (left, right bool, err error)
}

// Actuator drives the robot. Every call blocks for the pre-calibrated
// duration of the motion and returns once the robot is stationary again.
//
// Motions are open loop: a forward drive is assumed to cover exactly one
// cell and a rotation exactly 90 or 180 degrees. Drift accumulates over a
// run and is not corrected.
type Actuator interface {
	DriveForwardOneCell(ctx context.Context) error
	RotateLeft90(ctx context.Context) error
	RotateRight90(ctx context.Context) error
	Rotate180(ctx context.Context) error
	Halt(ctx context.Context) error
}

// Reporter receives human readable progress. It carries no control
// semantics and must not block for long.
type Reporter interface {
	Report(Status)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Status)

// Report calls f(s).
func (f ReporterFunc) Report(s Status) { f(s) }

type nopReporter struct{}

func (nopReporter) Report(Status) {}

// MultiReporter fans a status out to several reporters in order.
func MultiReporter(reporters ...Reporter) Reporter {
	return ReporterFunc(func(s Status) {
		for _, r := range reporters {
			if r != nil {
				r.Report(s)
			}
		}
	})
}
