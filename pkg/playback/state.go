package playback

// State is a step in the lifecycle of one playback.
type State int

const (
	StateBuilt State = iota
	StateImmediateSent
	StateReleasesSettled
	StatePartialFailure
	StateDone
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateImmediateSent:
		return "immediate_sent"
	case StateReleasesSettled:
		return "releases_settled"
	case StatePartialFailure:
		return "partial_failure"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
