package bt

import "fmt"

// Status is the result of ticking a node. The zero value is the recorded
// status of a node that is not running and has not been ticked since its
// last abort.
type Status uint8

const (
	StatusInvalid Status = iota
	StatusSuccess
	StatusFailure
	StatusRunning
	// StatusError means the node is not implemented or broke its contract.
	// It is never a business outcome; use StatusFailure for those.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusInvalid:
		return "Invalid"
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Done reports whether s terminates a span of Running.
func (s Status) Done() bool {
	return s == StatusSuccess || s == StatusFailure || s == StatusError
}

// FromBool maps a condition result to Success or Failure.
func FromBool(ok bool) Status {
	if ok {
		return StatusSuccess
	}
	return StatusFailure
}
