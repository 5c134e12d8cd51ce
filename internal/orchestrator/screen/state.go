// Package screen classifies captured frames into Star Scout workflow states.
package screen

// State is one phase of the Star Scout workflow.
type State string

const (
	StateMain           State = "MAIN"
	StateConfirm        State = "CONFIRM"
	StateTileSelect     State = "TILE_SELECT"
	StateSkip           State = "SKIP"
	StateResult         State = "RESULT"
	StateRefreshConfirm State = "REFRESH_CONFIRM"
	StateUnknown        State = "UNKNOWN"
)

func (s State) String() string { return string(s) }

// Known reports whether s is anything but UNKNOWN.
func (s State) Known() bool { return s != StateUnknown && s != "" }
