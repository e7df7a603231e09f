package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/mazebot/maze"
	"github.com/beka-birhanu/mazebot/navigator"
)

const (
	defaultCellSizeCM = 20.0
	defaultMaxRangeCM = 400.0
)

var (
	ErrCollision     = errors.New("robot drove into a wall")
	ErrMotorFault    = errors.New("simulated motor fault")
	ErrSideSensorBus = errors.New("simulated side sensor fault")
)

// Motion is a command received by the simulated robot.
type Motion uint8

const (
	MotionForward Motion = iota
	MotionLeft
	MotionRight
	MotionTurn180
	MotionHalt
)

func (m Motion) String() string {
	switch m {
	case MotionForward:
		return "forward"
	case MotionLeft:
		return "left"
	case MotionRight:
		return "right"
	case MotionTurn180:
		return "turn180"
	case MotionHalt:
		return "halt"
	default:
		return fmt.Sprintf("Motion(%d)", uint8(m))
	}
}

// RobotOption configures a Robot.
type RobotOption func(*Robot)

// WithCellSize sets the cell edge length used for range readings.
func WithCellSize(cm float64) RobotOption {
	return func(r *Robot) { r.cellSizeCM = cm }
}

// WithMotionDurations makes every motion block like real hardware would.
func WithMotionDurations(forward, turn time.Duration) RobotOption {
	return func(r *Robot) {
		r.forwardDuration = forward
		r.turnDuration = turn
	}
}

// WithFrontTimeouts makes the next n front readings time out.
func WithFrontTimeouts(n int) RobotOption {
	return func(r *Robot) { r.frontTimeouts = n }
}

// WithSideFaults makes the next n side readings fail.
func WithSideFaults(n int) RobotOption {
	return func(r *Robot) { r.sideFaults = n }
}

// WithMotorFaultAfter makes every motion after the first n fail.
func WithMotorFaultAfter(n int) RobotOption {
	return func(r *Robot) { r.motorFaultAfter = n }
}

// Robot is a simulated robot in a WallMaze. It senses and moves according
// to its true pose, which only matches the navigator's dead-reckoned pose
// as long as no motion fails.
type Robot struct {
	world           *WallMaze
	pose            maze.Pose
	cellSizeCM      float64
	forwardDuration time.Duration
	turnDuration    time.Duration
	frontTimeouts   int
	sideFaults      int
	motorFaultAfter int
	motions         []Motion
	halts           int
	sync.Mutex
}

var (
	_ navigator.Perception = (*Robot)(nil)
	_ navigator.Actuator   = (*Robot)(nil)
)

// NewRobot places a robot in world at start.
func NewRobot(world *WallMaze, start maze.Pose, opts ...RobotOption) *Robot {
	r := &Robot{
		world:           world,
		pose:            start,
		cellSizeCM:      defaultCellSizeCM,
		motorFaultAfter: -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pose returns the robot's true pose.
func (r *Robot) Pose() maze.Pose {
	r.Lock()
	defer r.Unlock()
	return r.pose
}

// Motions returns every motion command received so far, halts included.
func (r *Robot) Motions() []Motion {
	r.Lock()
	defer r.Unlock()
	return append([]Motion(nil), r.motions...)
}

// Count returns how many times motion m was commanded.
func (r *Robot) Count(m Motion) int {
	r.Lock()
	defer r.Unlock()
	n := 0
	for _, got := range r.motions {
		if got == m {
			n++
		}
	}
	return n
}

// Halts returns how many times Halt was called.
func (r *Robot) Halts() int {
	r.Lock()
	defer r.Unlock()
	return r.halts
}

// ReadFrontDistanceCM measures the open corridor ahead, from the robot's
// center to the first wall.
func (r *Robot) ReadFrontDistanceCM(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.Lock()
	defer r.Unlock()
	if r.frontTimeouts > 0 {
		r.frontTimeouts--
		return 0, navigator.ErrSensorTimeout
	}

	open := 0
	pos := r.pose.Position()
	for !r.world.HasWall(pos, r.pose.Heading) {
		pos = pos.Step(r.pose.Heading)
		open++
	}

	return min((float64(open)+0.5)*r.cellSizeCM, defaultMaxRangeCM), nil
}

// ReadSideContacts reports walls on the robot's left and right.
func (r *Robot) ReadSideContacts(ctx context.Context) (bool, bool, error) {
	if err := ctx.Err(); err != nil {
		return false, false, err
	}

	r.Lock()
	defer r.Unlock()
	if r.sideFaults > 0 {
		r.sideFaults--
		return false, false, ErrSideSensorBus
	}

	pos := r.pose.Position()
	return r.world.HasWall(pos, r.pose.Heading.Left()), r.world.HasWall(pos, r.pose.Heading.Right()), nil
}

// DriveForwardOneCell moves the robot one cell ahead.
func (r *Robot) DriveForwardOneCell(ctx context.Context) error {
	return r.motion(ctx, MotionForward, r.forwardDuration, func() error {
		if r.world.HasWall(r.pose.Position(), r.pose.Heading) {
			return fmt.Errorf("%w: at %s", ErrCollision, r.pose)
		}
		r.pose.Advance()
		return nil
	})
}

// RotateLeft90 pivots the robot counter-clockwise.
func (r *Robot) RotateLeft90(ctx context.Context) error {
	return r.motion(ctx, MotionLeft, r.turnDuration, func() error {
		r.pose.TurnLeft()
		return nil
	})
}

// RotateRight90 pivots the robot clockwise.
func (r *Robot) RotateRight90(ctx context.Context) error {
	return r.motion(ctx, MotionRight, r.turnDuration, func() error {
		r.pose.TurnRight()
		return nil
	})
}

// Rotate180 turns the robot around.
func (r *Robot) Rotate180(ctx context.Context) error {
	return r.motion(ctx, MotionTurn180, 2*r.turnDuration, func() error {
		r.pose.Turn180()
		return nil
	})
}

// Halt stops all motion. It always succeeds.
func (r *Robot) Halt(context.Context) error {
	r.Lock()
	defer r.Unlock()
	r.halts++
	r.motions = append(r.motions, MotionHalt)
	return nil
}

// motion records m, waits d, then applies the pose change.
func (r *Robot) motion(ctx context.Context, m Motion, d time.Duration, apply func() error) error {
	r.Lock()
	r.motions = append(r.motions, m)
	if r.motorFaultAfter == 0 {
		r.Unlock()
		return ErrMotorFault
	}
	if r.motorFaultAfter > 0 {
		r.motorFaultAfter--
	}
	r.Unlock()

	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()
	return apply()
}
