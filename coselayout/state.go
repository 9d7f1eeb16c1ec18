package coselayout

type State int

const (
	NotStarted State = iota
	Initializing
	Iterating
	Converged
	MaxIterations
	Done
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Initializing:
		return "initializing"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case MaxIterations:
		return "max iterations"
	case Done:
		return "done"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Strategy int

const (
	Classic Strategy = iota
	MultiLevel
)

func (s Strategy) String() string {
	if s == MultiLevel {
		return "multilevel"
	}
	return "classic"
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
