// Package match finds reference images inside a fixed region of a frame
// using normalized cross-correlation over a range of template scales.
package match

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

// Result describes the best match seen. Location is relative to the region.
type Result struct {
	Found      bool
	Confidence float64
	Name       string
	Scale      float64
	Location   image.Rectangle
}

// Matcher compares assets against a frame region.
type Matcher struct {
	threshold float64
	debugDir  string
	scales    []float64
}

func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{
		threshold: threshold,
		scales:    floats.Span(make([]float64, scaleSteps), scaleLow, scaleHigh),
	}
}

// WithDebugDir writes the region and one annotated image per asset to dir.
func (m *Matcher) WithDebugDir(dir string) *Matcher {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Warn("debug dir unavailable", "dir", dir, "error", err)
			return m
		}
	}
	m.debugDir = dir
	return m
}

func (m *Matcher) Threshold() float64 { return m.threshold }

// Match returns on the first score at or above the threshold. Otherwise it
// reports the best score across all assets with Found unset. A region that
// does not fit the frame yields the zero Result.
func (m *Matcher) Match(frame image.Image, assets Assets, region Region) Result {
	if frame == nil {
		return Result{}
	}
	if err := region.Validate(frame.Bounds()); err != nil {
		slog.Warn("template check skipped", "error", err)
		return Result{}
	}

	full, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		slog.Warn("frame conversion failed", "error", err)
		return Result{}
	}
	defer full.Close()

	b := frame.Bounds()
	crop := full.Region(region.Rect().Sub(b.Min))
	defer crop.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(crop, &gray, gocv.ColorBGRToGray)
	m.saveDebug("region.png", gray)

	var best Result
	for _, asset := range assets {
		r := m.matchAsset(gray, asset)
		if r.Confidence > best.Confidence || best.Name == "" {
			best = r
		}
		if m.debugDir != "" {
			m.annotate(crop, r)
		}
		if r.Found {
			slog.Info("template found", "name", r.Name, "confidence", fmt.Sprintf("%.2f", r.Confidence), "scale", r.Scale)
			return r
		}
		slog.Debug("template best", "name", r.Name, "confidence", fmt.Sprintf("%.2f", r.Confidence))
	}
	best.Found = false
	return best
}

func (m *Matcher) matchAsset(region gocv.Mat, asset Asset) Result {
	res := Result{Name: asset.Name}
	th, tw := asset.Image.Rows(), asset.Image.Cols()
	if th == 0 || tw == 0 {
		return res
	}
	base := float64(region.Rows()) / float64(th)
	baseW, baseH := int(float64(tw)*base), int(float64(th)*base)

	resized := gocv.NewMat()
	defer resized.Close()
	scores := gocv.NewMat()
	defer scores.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	for _, s := range m.scales {
		w, h := int(float64(baseW)*s), int(float64(baseH)*s)
		if w > region.Cols() || h > region.Rows() || w < minSide || h < minSide {
			continue
		}
		gocv.Resize(asset.Image, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
		gocv.MatchTemplate(region, resized, &scores, gocv.TmCcoeffNormed, mask)
		_, peak, _, loc := gocv.MinMaxLoc(scores)

		score := clamp(float64(peak))
		if score > res.Confidence || res.Scale == 0 {
			res.Confidence = score
			res.Scale = s
			res.Location = image.Rect(loc.X, loc.Y, loc.X+w, loc.Y+h)
		}
		if score >= m.threshold {
			res.Found = true
			return res
		}
	}
	return res
}

func (m *Matcher) annotate(region gocv.Mat, r Result) {
	out := region.Clone()
	defer out.Close()
	if !r.Location.Empty() {
		gocv.Rectangle(&out, r.Location, annotateColor, 2)
		label := image.Pt(r.Location.Min.X, max(r.Location.Min.Y-5, 12))
		gocv.PutText(&out, fmt.Sprintf("%.2f", r.Confidence), label, gocv.FontHersheySimplex, 0.5, annotateColor, 1)
	}
	m.saveDebug("match_"+r.Name+".png", out)
}

func (m *Matcher) saveDebug(name string, img gocv.Mat) {
	if m.debugDir == "" {
		return
	}
	path := filepath.Join(m.debugDir, name)
	if ok := gocv.IMWrite(path, img); !ok {
		slog.Warn("debug image not written", "path", path)
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
