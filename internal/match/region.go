package match

import (
	"fmt"
	"image"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

// Region is a search rectangle in full-frame pixels, X2 and Y2 exclusive.
type Region struct {
	X1, Y1, X2, Y2 int
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

func (r Region) Dx() int { return r.X2 - r.X1 }
func (r Region) Dy() int { return r.Y2 - r.Y1 }

// Validate checks that r is non-empty and lies inside bounds.
func (r Region) Validate(bounds image.Rectangle) error {
	if r.X2 <= r.X1 || r.Y2 <= r.Y1 {
		return apperrors.New(apperrors.CodeRegionInvalid, "region is empty").
			WithMetadata("region", r.String())
	}
	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return apperrors.New(apperrors.CodeRegionInvalid, "region outside frame").
			WithMetadata("region", r.String()).
			WithMetadata("frame", bounds.String())
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}
