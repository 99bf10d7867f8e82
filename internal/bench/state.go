package bench

import "fmt"

// State is the phase of the benchmark an activation belongs to.
type State int

const (
	// Warming covers iterations 0 through Warmup-1.
	Warming State = iota

	// Measuring covers iterations Warmup through Total-2.
	Measuring

	// Done is the final iteration, Total-1. Nothing runs after it.
	Done
)

func (s State) String() string {
	switch s {
	case Warming:
		return "warming-up"
	case Measuring:
		return "measuring"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds the iteration counts.
type Config struct {
	Warmup int
	Count  int
}

// Total returns the number of activations in a run.
func (c Config) Total() int {
	return c.Warmup + c.Count
}

// Validate checks that both phases run at least once.
func (c Config) Validate() error {
	if c.Warmup < 1 {
		return fmt.Errorf("bench: warmup must be at least 1, got %d", c.Warmup)
	}
	if c.Count < 1 {
		return fmt.Errorf("bench: count must be at least 1, got %d", c.Count)
	}
	return nil
}

// StateAt returns the state of activation i.
func (c Config) StateAt(i int) State {
	switch {
	case i < c.Warmup:
		return Warming
	case i < c.Total()-1:
		return Measuring
	default:
		return Done
	}
}
