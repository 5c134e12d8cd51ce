package alert

import "time"

const (
	sampleRate   = 44100
	framesPerBuf = 1024 // ~23ms at 44100Hz
	amplitude    = 0.4

	DefaultFrequency = 880.0
	DefaultBeeps     = 3
	beepLength       = 250 * time.Millisecond
	beepGap          = 150 * time.Millisecond
)

// External players tried in order, with the flags each needs to play and exit.
var players = []struct {
	bin  string
	args []string
}{
	{"paplay", nil},
	{"aplay", []string{"-q"}},
	{"mpv", []string{"--no-video", "--really-quiet"}},
	{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
}
