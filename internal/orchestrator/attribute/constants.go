package attribute

import "regexp"

// Card crop as fractions of the frame.
const (
	cropTop    = 0.22
	cropBottom = 0.9
	cropLeft   = 0.25
	cropRight  = 0.72

	upscale = 3
)

// Plausible OVR bounds.
const (
	DefaultMin = 80
	DefaultMax = 150
)

var (
	thresholds = []uint8{100, 120, 140}
	numberRe   = regexp.MustCompile(`\d{2,3}`)
)
