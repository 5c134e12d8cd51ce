package screen

import (
	"context"
	"time"
)

// Screencapper is the part of the adb client the capturer needs.
type Screencapper interface {
	Screencap(ctx context.Context) ([]byte, error)
}

type adbBackend struct{ client Screencapper }

func (a *adbBackend) captureRaw(ctx context.Context) ([]byte, error) {
	return a.client.Screencap(ctx)
}

func (a *adbBackend) cleanup() {}

// NewADB captures the device screen over adb, pausing delay after each capture.
func NewADB(client Screencapper, delay time.Duration) Capturer {
	return newBase(&adbBackend{client: client}, delay)
}
