// Package ocr turns screen images into text.
package ocr

import (
	"context"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/Not-Dhanraj/Star-Scout/internal/trace"
)

// Mode is a page segmentation assumption. Values match Tesseract's PSM numbers.
type Mode int

const (
	ModeAuto   Mode = 3  // fully automatic page segmentation
	ModeBlock  Mode = 6  // a single uniform block of text
	ModeSparse Mode = 11 // sparse text in no particular order
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeBlock:
		return "block"
	case ModeSparse:
		return "sparse"
	default:
		return "psm"
	}
}

// Recognizer transcribes one image under one segmentation mode.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, mode Mode) (string, error)
}

// screenPasses are run in this order; their outputs are joined in the same order.
var screenPasses = []Mode{ModeBlock, ModeSparse}

// ReadScreen transcribes a whole frame for classification. The frame is
// converted to grayscale, read once as a text block and once as sparse text,
// and the two upper-cased outputs are joined with a space. A nil frame or a
// failed pass contributes nothing; ReadScreen never fails.
func ReadScreen(ctx context.Context, r Recognizer, img image.Image) string {
	if img == nil || img.Bounds().Empty() {
		return ""
	}
	gray := imaging.Grayscale(img)

	parts := make([]string, 0, len(screenPasses))
	for _, mode := range screenPasses {
		text, err := r.Recognize(ctx, gray, mode)
		if err != nil {
			trace.Logger(ctx).Debug("recognition pass failed", "mode", mode, "error", err)
			text = ""
		}
		parts = append(parts, strings.ToUpper(text))
	}
	return strings.Join(parts, " ")
}
