package bt

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = errors.New("bt: node not implemented")
	ErrInvalidStatus  = errors.New("bt: node returned an invalid status")
	ErrSharedChild    = errors.New("bt: child already owned by another node")
	ErrInvalidArity   = errors.New("bt: invalid number of children")
	ErrUnknownNode    = errors.New("bt: unknown node")
	ErrUnreachable    = errors.New("bt: node not reachable from root")
	ErrInvalidParam   = errors.New("bt: invalid node parameter")
	ErrBuilt          = errors.New("bt: builder already used")
)

// NodeError names the node that originated an Error status during a tick.
type NodeError struct {
	Node  string
	ID    NodeID
	Frame uint64
	Err   error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q (#%d) frame %d: %v", e.Node, e.ID, e.Frame, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// NodeErrors flattens an error returned by Tree.Tick into its origins.
func NodeErrors(err error) []*NodeError {
	if err == nil {
		return nil
	}
	var out []*NodeError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, NodeErrors(e)...)
		}
		return out
	}
	var ne *NodeError
	if errors.As(err, &ne) {
		out = append(out, ne)
	}
	return out
}
