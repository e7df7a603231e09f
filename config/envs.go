package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Robot backends.
const (
	BackendSim    = "sim"
	BackendSerial = "serial"
)

var ErrMissingEnv = errors.New("environment variable is not set")

// Config holds the application's configuration values.
type Config struct {
	MazeRows         int     // Number of grid rows
	MazeCols         int     // Number of grid columns
	StartRow         int     // Row of the start cell
	StartCol         int     // Column of the start cell
	StartHeading     string  // Initial heading (north, east, south, west)
	TargetRow        int     // Row of the exit cell
	TargetCol        int     // Column of the exit cell
	FrontThresholdCM float64 // Front readings closer than this are walls
	Priority         string  // Exploration order, e.g. "left,front,right"
	BacktrackTurn    string  // "right" or "shortest"
	ForwardMS        int     // Calibrated duration of a one cell drive
	TurnMS           int     // Calibrated duration of a 90 degree pivot
	SettleMS         int     // Pause after each motion before sensing
	CyclePauseMS     int     // Pause between decision cycles
	RobotBackend     string  // "sim" or "serial"
	SerialPort       string  // Serial device of the motor/sensor controller
	SerialBaud       int     // Serial baud rate
	SimSeed          int64   // Seed for the simulated maze
	RedisAddr        string  // Redis address for telemetry and locking; empty disables
	DBURI            string  // MongoDB URI for run records; empty disables
	DBName           string  // Name of the database
	HostIP           string  // Host IP for the server
	RESTPort         int     // Port for the REST API; 0 runs once and exits
	GinMode          string  // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret        string  // Secret key for JWT signing
	JWTIssuer        string  // Issuer claim for JWTs
	OperatorKeyHash  string  // bcrypt hash of the operator key; empty disables token sign in
	RobotID          string  // Name of the robot this instance drives
	RedisPrefix      string  // Prefix of Redis keys and channels
}

// Envs holds the application's configuration once Init has run.
var Envs Config

// Init loads the configuration into Envs or exits the process.
func Init() {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		log.Fatalf("[APP] [FATAL] %v", err)
	}
	Envs = cfg
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	r := &envReader{}

	rows := r.intWithDefault("MAZE_ROWS", 6)
	cols := r.intWithDefault("MAZE_COLS", 8)

	cfg := Config{
		MazeRows:         rows,
		MazeCols:         cols,
		StartRow:         r.intWithDefault("START_ROW", 0),
		StartCol:         r.intWithDefault("START_COL", 0),
		StartHeading:     getEnvWithDefault("START_HEADING", "south"),
		TargetRow:        r.intWithDefault("TARGET_ROW", rows-1),
		TargetCol:        r.intWithDefault("TARGET_COL", cols-1),
		FrontThresholdCM: r.floatWithDefault("FRONT_THRESHOLD_CM", 15),
		Priority:         getEnvWithDefault("PRIORITY", "left,front,right"),
		BacktrackTurn:    getEnvWithDefault("BACKTRACK_TURN", "right"),
		ForwardMS:        r.intWithDefault("FORWARD_MS", 1000),
		TurnMS:           r.intWithDefault("TURN_MS", 450),
		SettleMS:         r.intWithDefault("SETTLE_MS", 100),
		CyclePauseMS:     r.intWithDefault("CYCLE_PAUSE_MS", 50),
		RobotBackend:     getEnvWithDefault("ROBOT_BACKEND", BackendSim),
		SerialPort:       getEnvWithDefault("SERIAL_PORT", "/dev/ttyUSB0"),
		SerialBaud:       r.intWithDefault("SERIAL_BAUD", 115200),
		SimSeed:          int64(r.intWithDefault("SIM_SEED", 1)),
		RedisAddr:        getEnvWithDefault("REDIS_ADDR", ""),
		DBURI:            getEnvWithDefault("DB_URI", ""),
		DBName:           getEnvWithDefault("DB_NAME", "mazebot"),
		HostIP:           getEnvWithDefault("HOST_IP", "127.0.0.1"),
		RESTPort:         r.intWithDefault("REST_PORT", 0),
		GinMode:          getEnvWithDefault("GIN_MODE", "release"),
		JWTSecret:        getEnvWithDefault("JWT_SECRET", ""),
		JWTIssuer:        getEnvWithDefault("JWT_ISSUER", "mazebot"),
		OperatorKeyHash:  getEnvWithDefault("OPERATOR_KEY_HASH", ""),
		RobotID:          getEnvWithDefault("ROBOT_ID", "robot-0"),
		RedisPrefix:      getEnvWithDefault("REDIS_PREFIX", "mazebot"),
	}

	if cfg.RobotBackend != BackendSim && cfg.RobotBackend != BackendSerial {
		r.fail(fmt.Errorf("ROBOT_BACKEND must be %q or %q, got %q", BackendSim, BackendSerial, cfg.RobotBackend))
	}
	if cfg.RESTPort != 0 && cfg.JWTSecret == "" {
		r.fail(fmt.Errorf("JWT_SECRET: %w (required when REST_PORT is set)", ErrMissingEnv))
	}

	return cfg, r.err
}

// envReader collects the first parse error so Load can report it once.
type envReader struct {
	err error
}

func (r *envReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// intWithDefault retrieves an environment variable as an integer or returns defaultValue if not set.
func (r *envReader) intWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		r.fail(fmt.Errorf("environment variable %s must be an integer: %w", key, err))
		return defaultValue
	}
	return value
}

// floatWithDefault retrieves an environment variable as a float or returns defaultValue if not set.
func (r *envReader) floatWithDefault(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		r.fail(fmt.Errorf("environment variable %s must be a number: %w", key, err))
		return defaultValue
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
