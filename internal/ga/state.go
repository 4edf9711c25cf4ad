package ga

// State is the lifecycle position of a GeneticAlgorithm.
type State int

const (
	StateNotStarted State = iota
	StateStarted
	StateStopped
	StateResumed
	StateTerminationReached
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateResumed:
		return "resumed"
	case StateTerminationReached:
		return "termination-reached"
	default:
		return "unknown"
	}
}

// Running reports whether the state belongs to an evolving run.
func (s State) Running() bool {
	return s == StateStarted || s == StateResumed
}
