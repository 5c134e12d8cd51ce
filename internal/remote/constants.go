package remote

import "time"

const (
	ServiceName     = "scout.ocr.v1.Recognizer"
	recognizeMethod = "/" + ServiceName + "/Recognize"

	// ModeKey carries the segmentation mode as request metadata.
	ModeKey = "x-scout-psm"

	DefaultCallTimeout = 10 * time.Second
	MaxImageBytes      = 32 << 20

	// Keepalive configuration
	DefaultKeepaliveTime    = 10 * time.Second
	DefaultKeepaliveTimeout = 3 * time.Second
)
