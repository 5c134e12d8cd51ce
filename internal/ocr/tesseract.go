package ocr

import (
	"bytes"
	"context"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

// Tesseract recognizes text with a single reused gosseract client.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates an engine for the given languages (default "eng").
func NewTesseract(languages ...string) (*Tesseract, error) {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(languages...); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "tesseract language")
	}
	return &Tesseract{client: client}, nil
}

// Recognize runs one pass. The image is handed to Tesseract as PNG.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeRecognitionFailed, "encode image")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return "", apperrors.Wrapf(err, apperrors.CodeRecognitionFailed, "set page seg mode %d", mode)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeRecognitionFailed, "load image")
	}
	text, err := t.client.Text()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeRecognitionFailed, "tesseract").
			WithMetadata("mode", mode.String())
	}
	return text, nil
}

// Version reports the linked Tesseract version.
func (t *Tesseract) Version() string {
	return t.client.Version()
}

func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
