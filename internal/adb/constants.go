package adb

import "time"

const (
	// DefaultBinary is resolved through PATH.
	DefaultBinary = "adb"

	// DevicesTimeout bounds the connectivity check.
	DevicesTimeout = 5 * time.Second

	// pngMagic prefixes every screencap -p payload.
	pngMagic = "\x89PNG\r\n\x1a\n"
)
