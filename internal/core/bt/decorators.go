package bt

import "fmt"

// Invert swaps Success and Failure. Running and Error pass through.
type Invert[C any] struct{}

func (Invert[C]) Type() string { return "invert" }

func (Invert[C]) Update(c C, ch Children[C]) Status {
	switch st := ch.Tick(c, 0); st {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	default:
		return st
	}
}

// AlwaysSucceed ticks its child once and reports Success whatever happened.
type AlwaysSucceed[C any] struct{}

func (AlwaysSucceed[C]) Type() string { return "always_succeed" }

func (AlwaysSucceed[C]) Update(c C, ch Children[C]) Status {
	ch.Tick(c, 0)
	return StatusSuccess
}

// AlwaysFail ticks its child once and reports Failure whatever happened.
type AlwaysFail[C any] struct{}

func (AlwaysFail[C]) Type() string { return "always_fail" }

func (AlwaysFail[C]) Update(c C, ch Children[C]) Status {
	ch.Tick(c, 0)
	return StatusFailure
}

type RepeatMode uint8

const (
	// RepeatPerTick ticks the child once per external tick and succeeds
	// after Times completed runs.
	RepeatPerTick RepeatMode = iota
	// RepeatBlocking ticks the child up to Times times within one external
	// tick, stopping early while the child is Running.
	RepeatBlocking
)

func (m RepeatMode) String() string {
	if m == RepeatBlocking {
		return "blocking"
	}
	return "per_tick"
}

// ParseRepeatMode accepts the values produced by RepeatMode.String.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch s {
	case "", "per_tick":
		return RepeatPerTick, nil
	case "blocking":
		return RepeatBlocking, nil
	default:
		return RepeatPerTick, fmt.Errorf("repeat mode %q: %w", s, ErrInvalidParam)
	}
}

// Repeat counts completed runs of its child, whatever their outcome.
// The count restarts on every fresh activation. Running and Error from the
// child are passed through.
type Repeat[C any] struct {
	Times int
	Mode  RepeatMode

	done int
}

func (*Repeat[C]) Type() string { return "repeat" }

func (r *Repeat[C]) ValidateChildren(int) error {
	if r.Times < 1 {
		return fmt.Errorf("repeat times %d: %w", r.Times, ErrInvalidParam)
	}
	return nil
}

func (r *Repeat[C]) OnEnter(C) { r.done = 0 }

func (r *Repeat[C]) Update(c C, ch Children[C]) Status {
	if r.Mode == RepeatPerTick {
		switch st := ch.Tick(c, 0); st {
		case StatusRunning, StatusError:
			return st
		}
		r.done++
		if r.done >= r.Times {
			return StatusSuccess
		}
		return StatusRunning
	}

	for r.done < r.Times {
		switch st := ch.Tick(c, 0); st {
		case StatusRunning, StatusError:
			return st
		}
		r.done++
	}
	// completion is checked once the loop has run out
	return StatusSuccess
}

// Completed is the number of child runs counted in the current activation.
func (r *Repeat[C]) Completed() int { return r.done }
