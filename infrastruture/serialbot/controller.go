/*
Package serialbot drives a motor and sensor controller board over a serial
link. The board speaks a line protocol, one command per line:

	DIST           -> DIST <cm> | DIST TIMEOUT
	SIDES          -> SIDES <left> <right>   (1 = blocked)
	FWD <ms>       -> OK
	LEFT <ms>      -> OK
	RIGHT <ms>     -> OK
	HALT           -> OK

Any command may be answered with "ERR <reason>". Motion commands are
answered only after the motors have stopped.
*/
package serialbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/beka-birhanu/mazebot/config"
	"github.com/beka-birhanu/mazebot/navigator"
	"go.bug.st/serial"
)

const (
	sensorReplyTimeout = 200 * time.Millisecond
	motionReplyMargin  = 500 * time.Millisecond
	pollInterval       = 50 * time.Millisecond
	maxLineLength      = 128
)

var (
	ErrWriteFailed   = errors.New("failed to write to serial port")
	ErrReplyTimeout  = errors.New("controller did not reply in time")
	ErrController    = errors.New("controller reported an error")
	ErrUnexpected    = errors.New("unexpected controller reply")
	ErrLineTooLong   = errors.New("controller reply too long")
	ErrInvalidTiming = errors.New("invalid motion timing")
)

// Port is the minimal interface needed from a serial port, so tests can run
// without hardware.
type Port interface {
	io.ReadWriter
	io.Closer
}

// timeoutPort is implemented by ports that support bounded reads.
type timeoutPort interface {
	SetReadTimeout(time.Duration) error
}

// resettablePort is implemented by ports that can discard unread input.
type resettablePort interface {
	ResetInputBuffer() error
}

// Controller implements navigator.Perception and navigator.Actuator on top
// of a serial port.
type Controller struct {
	port      Port
	timing    Timing
	logger    *log.Logger
	buf       []byte
	commandMu sync.Mutex
}

var (
	_ navigator.Perception = (*Controller)(nil)
	_ navigator.Actuator   = (*Controller)(nil)
)

// Open opens the serial device at path.
func Open(path string, opts PortOptions, timing Timing, logger *log.Logger) (*Controller, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	c, err := New(port, timing, logger)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return c, nil
}

// New wraps an already open port.
func New(port Port, timing Timing, logger *log.Logger) (*Controller, error) {
	if timing.Forward <= 0 || timing.Turn <= 0 || timing.Settle < 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidTiming, timing)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if tp, ok := port.(timeoutPort); ok {
		if err := tp.SetReadTimeout(pollInterval); err != nil {
			return nil, fmt.Errorf("setting read timeout: %w", err)
		}
	}

	return &Controller{port: port, timing: timing, logger: logger}, nil
}

// Close halts the robot and closes the port.
func (c *Controller) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), sensorReplyTimeout)
	defer cancel()
	haltErr := c.Halt(ctx)
	return errors.Join(haltErr, c.port.Close())
}

// ReadFrontDistanceCM queries the ultrasonic range finder.
func (c *Controller) ReadFrontDistanceCM(ctx context.Context) (float64, error) {
	fields, err := c.query(ctx, "DIST", "DIST", sensorReplyTimeout)
	if err != nil {
		return 0, err
	}
	if len(fields) != 1 {
		return 0, fmt.Errorf("%w: DIST %v", ErrUnexpected, fields)
	}
	if fields[0] == "TIMEOUT" {
		return 0, navigator.ErrSensorTimeout
	}

	dist, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: distance %q", ErrUnexpected, fields[0])
	}
	return dist, nil
}

// ReadSideContacts queries the two side sensors.
func (c *Controller) ReadSideContacts(ctx context.Context) (bool, bool, error) {
	fields, err := c.query(ctx, "SIDES", "SIDES", sensorReplyTimeout)
	if err != nil {
		return false, false, err
	}
	if len(fields) != 2 {
		return false, false, fmt.Errorf("%w: SIDES %v", ErrUnexpected, fields)
	}

	left, lerr := strconv.ParseBool(fields[0])
	right, rerr := strconv.ParseBool(fields[1])
	if lerr != nil || rerr != nil {
		return false, false, fmt.Errorf("%w: SIDES %v", ErrUnexpected, fields)
	}
	return left, right, nil
}

// DriveForwardOneCell drives straight for the calibrated cell duration.
func (c *Controller) DriveForwardOneCell(ctx context.Context) error {
	return c.motion(ctx, "FWD", c.timing.Forward)
}

// RotateLeft90 pivots counter-clockwise.
func (c *Controller) RotateLeft90(ctx context.Context) error {
	return c.motion(ctx, "LEFT", c.timing.Turn)
}

// RotateRight90 pivots clockwise.
func (c *Controller) RotateRight90(ctx context.Context) error {
	return c.motion(ctx, "RIGHT", c.timing.Turn)
}

// Rotate180 pivots clockwise for twice the quarter turn duration.
func (c *Controller) Rotate180(ctx context.Context) error {
	return c.motion(ctx, "RIGHT", 2*c.timing.Turn)
}

// Halt stops both motors immediately.
func (c *Controller) Halt(ctx context.Context) error {
	_, err := c.query(ctx, "HALT", "OK", sensorReplyTimeout)
	return err
}

// motion runs a timed motion and waits for the robot to settle.
func (c *Controller) motion(ctx context.Context, verb string, d time.Duration) error {
	cmd := fmt.Sprintf("%s %d", verb, d.Milliseconds())
	if _, err := c.query(ctx, cmd, "OK", d+motionReplyMargin); err != nil {
		return err
	}

	if c.timing.Settle <= 0 {
		return nil
	}
	t := time.NewTimer(c.timing.Settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// query sends cmd and returns the fields following the expected reply
// keyword. Input left over from an abandoned command is discarded first,
// and lines that are neither the expected reply nor ERR are skipped.
func (c *Controller) query(ctx context.Context, cmd, want string, timeout time.Duration) ([]string, error) {
	c.commandMu.Lock()
	defer c.commandMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.discardInput()
	if _, err := c.port.Write([]byte(cmd + "\n")); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWriteFailed, cmd, err)
	}

	deadline := time.Now().Add(timeout)
	for {
		line, err := c.readLine(ctx, deadline)
		if err != nil {
			c.logger.Printf("%s[ERROR]%s %s: %s", config.LogErrorColor, config.LogColorReset, cmd, err)
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}

		fields := strings.Fields(line)
		switch {
		case len(fields) == 0:
			continue
		case fields[0] == "ERR":
			return nil, fmt.Errorf("%w: %s: %s", ErrController, cmd, strings.Join(fields[1:], " "))
		case fields[0] == want:
			return fields[1:], nil
		}
		c.logger.Printf("%s[WARN]%s skipping stale reply %q while waiting for %s", config.LogWarnColor, config.LogColorReset, line, cmd)
	}
}

// discardInput drops buffered bytes and, where supported, the port's
// unread input.
func (c *Controller) discardInput() {
	c.buf = c.buf[:0]
	rp, ok := c.port.(resettablePort)
	if !ok {
		return
	}
	if err := rp.ResetInputBuffer(); err != nil {
		c.logger.Printf("%s[WARN]%s resetting input buffer: %s", config.LogWarnColor, config.LogColorReset, err)
	}
}

// readLine reads up to the next newline. Ports configured with a read
// timeout return zero bytes when idle, which lets the loop observe the
// deadline and ctx.
func (c *Controller) readLine(ctx context.Context, deadline time.Time) (string, error) {
	chunk := make([]byte, 32)
	for {
		if i := strings.IndexByte(string(c.buf), '\n'); i >= 0 {
			line := strings.TrimSpace(string(c.buf[:i]))
			c.buf = c.buf[i+1:]
			return line, nil
		}
		if len(c.buf) > maxLineLength {
			c.buf = c.buf[:0]
			return "", ErrLineTooLong
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if time.Now().After(deadline) {
			return "", ErrReplyTimeout
		}

		n, err := c.port.Read(chunk)
		c.buf = append(c.buf, chunk[:n]...)
		if err != nil {
			return "", err
		}
	}
}
