package screen

import (
	"context"
	"os"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

type fileBackend struct{ path string }

func (f *fileBackend) captureRaw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCaptureFailed, "read screenshot").WithMetadata("path", f.path)
	}
	return data, nil
}

func (f *fileBackend) cleanup() {}

// NewFile replays a saved screenshot on every capture.
func NewFile(path string) Capturer {
	return newBase(&fileBackend{path: path}, 0)
}
