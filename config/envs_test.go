package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 6, cfg.MazeRows)
		assert.Equal(t, 8, cfg.MazeCols)
		assert.Equal(t, 5, cfg.TargetRow)
		assert.Equal(t, 7, cfg.TargetCol)
		assert.Equal(t, 15.0, cfg.FrontThresholdCM)
		assert.Equal(t, "left,front,right", cfg.Priority)
		assert.Equal(t, BackendSim, cfg.RobotBackend)
		assert.Equal(t, 0, cfg.RESTPort)
		assert.Equal(t, "south", cfg.StartHeading)
		assert.Equal(t, "robot-0", cfg.RobotID)
		assert.Equal(t, "mazebot", cfg.RedisPrefix)
		assert.Empty(t, cfg.OperatorKeyHash)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("MAZE_ROWS", "3")
		t.Setenv("MAZE_COLS", "4")
		t.Setenv("FRONT_THRESHOLD_CM", "18.5")
		t.Setenv("PRIORITY", "right,front,left")
		t.Setenv("ROBOT_BACKEND", BackendSerial)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.MazeRows)
		assert.Equal(t, 2, cfg.TargetRow)
		assert.Equal(t, 3, cfg.TargetCol)
		assert.Equal(t, 18.5, cfg.FrontThresholdCM)
		assert.Equal(t, "right,front,left", cfg.Priority)
		assert.Equal(t, BackendSerial, cfg.RobotBackend)
	})

	t.Run("Malformed integer", func(t *testing.T) {
		t.Setenv("MAZE_ROWS", "six")
		_, err := Load()
		assert.ErrorContains(t, err, "MAZE_ROWS")
	})

	t.Run("Unknown backend", func(t *testing.T) {
		t.Setenv("ROBOT_BACKEND", "bluetooth")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("REST requires a JWT secret", func(t *testing.T) {
		t.Setenv("REST_PORT", "8080")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingEnv)
	})
}
