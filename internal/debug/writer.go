// Package debug writes diagnostic artifacts when debugging is enabled.
package debug

import (
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

// Writer saves images and text under one directory. A nil Writer is a no-op.
type Writer struct {
	dir  string
	once sync.Once
	err  error
}

// New returns nil when enabled is false.
func New(dir string, enabled bool) *Writer {
	if !enabled || dir == "" {
		return nil
	}
	return &Writer{dir: dir}
}

func (w *Writer) Dir() string {
	if w == nil {
		return ""
	}
	return w.dir
}

func (w *Writer) ensure() error {
	w.once.Do(func() {
		if err := os.MkdirAll(w.dir, 0o755); err != nil {
			w.err = apperrors.Wrap(err, apperrors.CodeInternal, "create debug dir").
				WithMetadata("dir", w.dir)
		}
	})
	return w.err
}

// SaveImage encodes img by the extension of name and returns the written path.
func (w *Writer) SaveImage(name string, img image.Image) (string, error) {
	if w == nil || img == nil {
		return "", nil
	}
	if err := w.ensure(); err != nil {
		return "", err
	}
	path := filepath.Join(w.dir, filepath.Base(name))
	if err := imaging.Save(img, path); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "save debug image").
			WithMetadata("path", path)
	}
	return path, nil
}

func (w *Writer) SaveText(name, text string) (string, error) {
	if w == nil {
		return "", nil
	}
	if err := w.ensure(); err != nil {
		return "", err
	}
	path := filepath.Join(w.dir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "save debug text").
			WithMetadata("path", path)
	}
	return path, nil
}
