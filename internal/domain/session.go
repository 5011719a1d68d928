package domain

// ClipState is the lifecycle state of a clip session.
type ClipState string

const (
	StateIdle       ClipState = "idle"
	StateSelecting  ClipState = "selecting"
	StateComposing  ClipState = "composing"
	StateEncoding   ClipState = "encoding"
	StatePublishing ClipState = "publishing"
	StateReady      ClipState = "ready"
	StateFailed     ClipState = "failed"
)

// InFlight reports whether a Share is running.
func (s ClipState) InFlight() bool {
	return s == StateComposing || s == StateEncoding || s == StatePublishing
}

// CanShare reports whether Share may start from this state.
func (s ClipState) CanShare() bool {
	return s == StateSelecting || s == StateReady || s == StateFailed
}

// AcceptsGestures reports whether the selection may be edited.
func (s ClipState) AcceptsGestures() bool {
	return s == StateSelecting || s == StateReady || s == StateFailed
}

var transitions = map[ClipState][]ClipState{
	StateIdle:       {StateSelecting},
	StateSelecting:  {StateComposing, StateIdle},
	StateComposing:  {StateEncoding, StateFailed},
	StateEncoding:   {StatePublishing, StateFailed},
	StatePublishing: {StateReady, StateFailed},
	StateReady:      {StateSelecting, StateComposing, StateIdle},
	StateFailed:     {StateSelecting, StateComposing, StateIdle},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to ClipState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
