// Package adb drives an Android device through the adb command line: screen
// capture, tap injection and the connectivity check.
package adb

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Not-Dhanraj/Star-Scout/internal/config"
	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

// Runner executes a command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Client issues adb commands against one device.
type Client struct {
	bin    string
	serial string
	runner Runner
}

// New creates a client. An empty serial lets adb pick the only attached device.
func New(bin, serial string) *Client {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Client{bin: bin, serial: serial, runner: execRunner{}}
}

// WithRunner replaces the command runner.
func (c *Client) WithRunner(r Runner) *Client {
	c.runner = r
	return c
}

func (c *Client) args(extra ...string) []string {
	if c.serial == "" {
		return extra
	}
	return append([]string{"-s", c.serial}, extra...)
}

// Devices lists the serials adb reports in the "device" state.
func (c *Client) Devices(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, DevicesTimeout)
	defer cancel()

	out, err := c.runner.Run(ctx, c.bin, "devices")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "adb devices")
	}

	var serials []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 2 && fields[1] == "device" {
			serials = append(serials, fields[0])
		}
	}
	return serials, nil
}

// Screencap returns the device's current screen as PNG bytes.
func (c *Client) Screencap(ctx context.Context) ([]byte, error) {
	out, err := c.runner.Run(ctx, c.bin, c.args("exec-out", "screencap", "-p")...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCaptureFailed, "adb screencap").
			WithMetadata("serial", c.serial)
	}
	if !bytes.HasPrefix(out, []byte(pngMagic)) {
		return nil, apperrors.Newf(apperrors.CodeCaptureFailed, "screencap returned %d bytes without a PNG header", len(out))
	}
	return out, nil
}

// Tap injects a tap at (x, y) in device pixels.
func (c *Client) Tap(ctx context.Context, x, y int) error {
	_, err := c.runner.Run(ctx, c.bin, c.args("shell", "input", "tap", strconv.Itoa(x), strconv.Itoa(y))...)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.CodeTransportFailed, "adb tap %d,%d", x, y)
	}
	return nil
}

// Tapper taps and then blocks for the UI to register the touch.
type Tapper struct {
	client *Client
	settle time.Duration
}

func NewTapper(client *Client, settle time.Duration) *Tapper {
	return &Tapper{client: client, settle: settle}
}

// Tap issues the tap and waits out the settle delay.
func (t *Tapper) Tap(ctx context.Context, p config.Point) error {
	if err := t.client.Tap(ctx, p.X, p.Y); err != nil {
		return err
	}
	if t.settle <= 0 {
		return nil
	}
	timer := time.NewTimer(t.settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
