package bt

import "fmt"

// Selector ticks children in order and returns the first status that is not
// Failure. Failure if every child fails.
type Selector[C any] struct{}

func (Selector[C]) Type() string { return "selector" }

func (Selector[C]) Update(c C, ch Children[C]) Status {
	for i := 0; i < ch.Len(); i++ {
		if st := ch.Tick(c, i); st != StatusFailure {
			return st
		}
	}
	return StatusFailure
}

// Sequence ticks children in order and returns the first status that is not
// Success. Success if every child succeeds.
type Sequence[C any] struct{}

func (Sequence[C]) Type() string { return "sequence" }

func (Sequence[C]) Update(c C, ch Children[C]) Status {
	for i := 0; i < ch.Len(); i++ {
		if st := ch.Tick(c, i); st != StatusSuccess {
			return st
		}
	}
	return StatusSuccess
}

// Parallel ticks every child on every call. Error wins over the thresholds;
// then Success once Success children reach the Success threshold, Failure
// once Failure children reach the Failure threshold, else Running. Children
// still Running when it resolves are aborted.
type Parallel[C any] struct {
	Success int
	Failure int
}

func (*Parallel[C]) Type() string { return "parallel" }

func (p *Parallel[C]) ValidateChildren(n int) error {
	if p.Success < 1 || p.Success > n {
		return fmt.Errorf("parallel success threshold %d with %d children: %w", p.Success, n, ErrInvalidParam)
	}
	if p.Failure < 1 || p.Failure > n {
		return fmt.Errorf("parallel failure threshold %d with %d children: %w", p.Failure, n, ErrInvalidParam)
	}
	return nil
}

func (p *Parallel[C]) Update(c C, ch Children[C]) Status {
	var successes, failures int
	var errored bool
	for i := 0; i < ch.Len(); i++ {
		switch ch.Tick(c, i) {
		case StatusSuccess:
			successes++
		case StatusFailure:
			failures++
		case StatusError:
			errored = true
		}
	}

	var st Status
	switch {
	case errored:
		st = StatusError
	case successes >= p.Success:
		st = StatusSuccess
	case failures >= p.Failure:
		st = StatusFailure
	default:
		return StatusRunning
	}
	for i := 0; i < ch.Len(); i++ {
		if ch.Status(i) == StatusRunning {
			ch.Abort(c, i)
		}
	}
	return st
}
