package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/beka-birhanu/mazebot/maze"
	"github.com/beka-birhanu/mazebot/navigator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotSensing(t *testing.T) {
	ctx := context.Background()
	world, err := NewOpenMaze(4, 3)
	require.NoError(t, err)

	t.Run("Front distance counts open cells ahead", func(t *testing.T) {
		r := NewRobot(world, maze.NewPose(maze.CellPosition{Row: 1, Col: 0}, maze.East))
		d, err := r.ReadFrontDistanceCM(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 3.5*defaultCellSizeCM, d, 1e-9)
	})

	t.Run("Wall directly ahead reads under a cell", func(t *testing.T) {
		r := NewRobot(world, maze.NewPose(maze.CellPosition{Row: 0, Col: 0}, maze.North))
		d, err := r.ReadFrontDistanceCM(ctx)
		require.NoError(t, err)
		assert.Less(t, d, navigator.DefaultFrontThresholdCM)
	})

	t.Run("Sides follow the heading", func(t *testing.T) {
		r := NewRobot(world, maze.NewPose(maze.CellPosition{Row: 0, Col: 0}, maze.East))
		left, right, err := r.ReadSideContacts(ctx)
		require.NoError(t, err)
		assert.True(t, left, "north boundary on the left")
		assert.False(t, right)
	})

	t.Run("Injected faults are consumed", func(t *testing.T) {
		r := NewRobot(world, maze.NewPose(maze.CellPosition{}, maze.East), WithFrontTimeouts(1), WithSideFaults(1))
		_, err := r.ReadFrontDistanceCM(ctx)
		assert.ErrorIs(t, err, navigator.ErrSensorTimeout)
		_, err = r.ReadFrontDistanceCM(ctx)
		assert.NoError(t, err)

		_, _, err = r.ReadSideContacts(ctx)
		assert.ErrorIs(t, err, ErrSideSensorBus)
		_, _, err = r.ReadSideContacts(ctx)
		assert.NoError(t, err)
	})
}

func TestRobotMotion(t *testing.T) {
	ctx := context.Background()
	world, err := NewOpenMaze(2, 2)
	require.NoError(t, err)

	t.Run("Motions move the true pose", func(t *testing.T) {
		r := NewRobot(world, maze.NewPose(maze.CellPosition{}, maze.East))
		require.NoError(t, r.DriveForwardOneCell(ctx))
		require.NoError(t, r.RotateRight90(ctx))
		require.NoError(t, r.DriveForwardOneCell(ctx))
		require.NoError(t, r.Rotate180(ctx))
		require.NoError(t, r.RotateLeft90(ctx))
		require.NoError(t, r.Halt(ctx))

		assert.Equal(t, maze.NewPose(maze.CellPosition{Row: 1, Col: 1}, maze.West), r.Pose())
		assert.Equal(t, []Motion{MotionForward, MotionRight, MotionForward, MotionTurn180, MotionLeft, MotionHalt}, r.Motions())
		assert.Equal(t, 1, r.Halts())
		assert.Equal(t, 2, r.Count(MotionForward))
	})

	t.Run("Driving into a wall fails", func(t *testing.T) {
		r := NewRobot(world, maze.NewPose(maze.CellPosition{}, maze.North))
		assert.ErrorIs(t, r.DriveForwardOneCell(ctx), ErrCollision)
		pose := r.Pose()
		assert.Equal(t, maze.CellPosition{}, pose.Position())
	})

	t.Run("Motor fault after n motions", func(t *testing.T) {
		r := NewRobot(world, maze.NewPose(maze.CellPosition{}, maze.East), WithMotorFaultAfter(1))
		require.NoError(t, r.RotateRight90(ctx))
		assert.ErrorIs(t, r.RotateRight90(ctx), ErrMotorFault)
		assert.Equal(t, maze.South, r.Pose().Heading)
	})

	t.Run("Blocking motion honours cancellation", func(t *testing.T) {
		r := NewRobot(world, maze.NewPose(maze.CellPosition{}, maze.East), WithMotionDurations(time.Hour, time.Hour))
		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, r.DriveForwardOneCell(cctx), context.DeadlineExceeded)
		pose := r.Pose()
		assert.Equal(t, maze.CellPosition{}, pose.Position())
	})
}
