// Package attribute reads a card's OVR rating from a result screen.
package attribute

import (
	"context"
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/Not-Dhanraj/Star-Scout/internal/ocr"
	"github.com/Not-Dhanraj/Star-Scout/internal/trace"
)

// Extractor runs several thresholded passes over the card and one pass over
// the whole frame, then votes on the numbers found.
type Extractor struct {
	recognizer ocr.Recognizer
	lo, hi     int
}

func NewExtractor(r ocr.Recognizer, lo, hi int) *Extractor {
	if lo <= 0 && hi <= 0 {
		lo, hi = DefaultMin, DefaultMax
	}
	return &Extractor{recognizer: r, lo: lo, hi: hi}
}

// Extract returns the voted attribute, or false when nothing plausible was read.
func (e *Extractor) Extract(ctx context.Context, img image.Image) (int, bool) {
	if img == nil || img.Bounds().Empty() {
		return 0, false
	}
	ctx, span := trace.StartSpan(ctx, "extract")
	defer span.End()

	candidates := e.Candidates(ctx, img)
	value, ok := Vote(candidates, e.lo, e.hi)
	span.SetAttr("candidates", len(candidates))
	span.SetAttr("value", value)
	trace.Logger(ctx).Debug("attribute vote", "candidates", candidates, "value", value, "ok", ok)
	return value, ok
}

// Candidates lists every two or three digit number read, in pass order.
func (e *Extractor) Candidates(ctx context.Context, img image.Image) []int {
	card := PrepareCard(img)

	var out []int
	for _, t := range thresholds {
		out = append(out, e.read(ctx, Binarize(card, t), ocr.ModeBlock)...)
	}
	return append(out, e.read(ctx, img, ocr.ModeAuto)...)
}

func (e *Extractor) read(ctx context.Context, img image.Image, mode ocr.Mode) []int {
	text, err := e.recognizer.Recognize(ctx, img, mode)
	if err != nil {
		trace.Logger(ctx).Debug("attribute pass failed", "mode", mode, "error", err)
		return nil
	}
	return parseNumbers(text)
}

// PrepareCard crops the card area, upscales it with a cubic filter and
// converts it to grayscale.
func PrepareCard(img image.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rect := image.Rect(
		b.Min.X+int(float64(w)*cropLeft), b.Min.Y+int(float64(h)*cropTop),
		b.Min.X+int(float64(w)*cropRight), b.Min.Y+int(float64(h)*cropBottom),
	)
	card := imaging.Crop(img, rect)
	cb := card.Bounds()
	card = imaging.Resize(card, cb.Dx()*upscale, cb.Dy()*upscale, imaging.CatmullRom)
	return imaging.Grayscale(card)
}

// Binarize maps gray levels above t to white and the rest to black.
func Binarize(gray image.Image, t uint8) *image.NRGBA {
	return imaging.AdjustFunc(gray, func(c color.NRGBA) color.NRGBA {
		v := uint8(0)
		if c.R > t {
			v = 255
		}
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}

func parseNumbers(text string) []int {
	tokens := numberRe.FindAllString(text, -1)
	nums := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err == nil {
			nums = append(nums, n)
		}
	}
	return nums
}
