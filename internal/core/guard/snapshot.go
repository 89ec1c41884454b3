package guard

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/guardai/internal/core/observability/log"
)

var ErrTreeMismatch = errors.New("guard: snapshot was taken with a different tree")

// snapshot is the persisted part of a guard. Node runtime state is not kept:
// a restored guard starts every node fresh.
type snapshot struct {
	ID          uuid.UUID
	Name        string
	Params      Params
	Blackboard  Blackboard
	Cooldown    int
	Seen        bool
	Fingerprint uint64
}

// Snapshot serializes the guard's parameters and memory.
func (g *Guard) Snapshot() ([]byte, error) {
	s := snapshot{
		ID:          g.ID,
		Name:        g.Name,
		Params:      g.Params,
		Blackboard:  g.Blackboard,
		Cooldown:    g.cooldown,
		Seen:        g.seen,
		Fingerprint: g.tree.Fingerprint(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("encode guard snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore loads a snapshot taken from a guard with the same tree topology.
// Running nodes are aborted first. It must not be called during a tick.
func (g *Guard) Restore(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("decode guard snapshot: %w", err)
	}
	if fp := g.tree.Fingerprint(); s.Fingerprint != fp {
		return fmt.Errorf("%w: %016x, tree is %016x", ErrTreeMismatch, s.Fingerprint, fp)
	}
	if err := s.Params.Validate(); err != nil {
		return err
	}

	g.tree.Reset(g)
	g.ID = s.ID
	g.Name = s.Name
	g.Params = s.Params
	g.Blackboard = s.Blackboard
	g.cooldown = s.Cooldown
	g.seen = s.Seen
	g.logger.Info("guard restored", log.Stringer("id", g.ID))
	return nil
}
