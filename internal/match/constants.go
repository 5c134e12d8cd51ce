package match

import "image/color"

const (
	DefaultThreshold = 0.49

	scaleLow   = 0.6
	scaleHigh  = 1.4
	scaleSteps = 40
	minSide    = 5
)

var (
	assetExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

	annotateColor = color.RGBA{R: 255, A: 255}
)
