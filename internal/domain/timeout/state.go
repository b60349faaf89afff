package timeout

// State is the timeout controller's position in the inactivity state machine.
type State int

const (
	// StateActive is the initial state: the user is within the idle allowance.
	StateActive State = iota
	// StateWarned means the warning threshold was crossed and logout has not fired yet.
	StateWarned
	// StateExpired is terminal: logout has been fired for this controller.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWarned:
		return "warned"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions can happen.
func (s State) IsTerminal() bool {
	return s == StateExpired
}
