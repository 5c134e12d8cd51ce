package resilience

import "time"

// Circuit breaker configuration constants
const (
	DefaultThreshold         = 5
	DefaultResetTimeout      = 30 * time.Second
	DefaultHalfOpenSuccesses = 2

	// Remote recognizer: a few failed calls are enough to stop hammering a dead host.
	RemoteThreshold         = 3
	RemoteResetTimeout      = 10 * time.Second
	RemoteHalfOpenSuccesses = 1
)

// Config holds circuit breaker settings.
type Config struct {
	Name              string        // used in log lines
	Threshold         int           // consecutive failures before opening
	ResetTimeout      time.Duration // wait before half-open attempt
	HalfOpenSuccesses int           // successes needed to close
}

// DefaultConfig returns general-purpose defaults.
func DefaultConfig() Config {
	return Config{
		Name:              "default",
		Threshold:         DefaultThreshold,
		ResetTimeout:      DefaultResetTimeout,
		HalfOpenSuccesses: DefaultHalfOpenSuccesses,
	}
}

// RemoteConfig returns settings for calls to a remote recognizer.
func RemoteConfig() Config {
	return Config{
		Name:              "remote-ocr",
		Threshold:         RemoteThreshold,
		ResetTimeout:      RemoteResetTimeout,
		HalfOpenSuccesses: RemoteHalfOpenSuccesses,
	}
}

// StreakConfig returns a breaker that opens after limit consecutive failures
// and is only ever closed again by an explicit Reset.
func StreakConfig(name string, limit int) Config {
	return Config{
		Name:              name,
		Threshold:         limit,
		ResetTimeout:      time.Duration(1<<63 - 1),
		HalfOpenSuccesses: 1,
	}
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = DefaultResetTimeout
	}
	if c.HalfOpenSuccesses <= 0 {
		c.HalfOpenSuccesses = DefaultHalfOpenSuccesses
	}
	return c
}
