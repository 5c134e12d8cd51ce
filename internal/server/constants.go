package server

import "time"

// Server configuration constants
const (
	// Default and maximum number of events returned by /api/events
	DefaultEventLimit = 50
	MaxEventLimit     = 500

	// Per-connection request limiting on the websocket
	RateLimitMessages = 10
	RateLimitWindow   = time.Second

	WriteTimeout      = 2 * time.Second
	ReadHeaderTimeout = 5 * time.Second
	ShutdownTimeout   = 5 * time.Second
)
