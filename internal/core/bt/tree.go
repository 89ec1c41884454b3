package bt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/guardai/internal/core/observability/log"
)

type options struct {
	logger     log.Log
	staleAbort bool
	trace      *Trace
}

type Option func(*options)

func WithLogger(l log.Log) Option {
	return func(o *options) { o.logger = l }
}

// WithStaleAbort controls whether nodes left Running by a branch that was
// not revisited are aborted at the end of each tick. It is on by default;
// turning it off leaves such nodes Running until they are reached again.
func WithStaleAbort(on bool) Option {
	return func(o *options) { o.staleAbort = on }
}

func WithTrace(t *Trace) Option {
	return func(o *options) { o.trace = t }
}

// Tree is an immutable topology with per-node runtime state. A Tree is
// driven by one goroutine; give every agent its own Tree.
type Tree[C any] struct {
	nodes []node[C]
	root  NodeID
	frame uint64
	opts  options

	// per-tick scratch
	origins []error
	visited []NodeID
}

func newTree[C any](nodes []node[C], root NodeID, opts ...Option) *Tree[C] {
	o := options{logger: log.NewNop(), staleAbort: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tree[C]{nodes: nodes, root: root, opts: o}
}

// Tick runs one frame: the root is ticked once, stale Running nodes are
// aborted and a trace record is kept. The error is non-nil iff at least one
// node originated StatusError in this frame, even when an ancestor masked it.
func (t *Tree[C]) Tick(c C) (Status, error) {
	t.frame++
	t.origins = t.origins[:0]
	t.visited = t.visited[:0]
	start := time.Now()

	st := t.tick(c, t.root)
	if t.opts.staleAbort {
		t.abortStale(c)
	}

	var err error
	if len(t.origins) > 0 {
		err = errors.Join(t.origins...)
	}
	if t.opts.trace != nil {
		path := make([]string, len(t.visited))
		for i, id := range t.visited {
			path[i] = t.nodes[id].name
		}
		t.opts.trace.add(&Record{
			Frame:    t.frame,
			Status:   st,
			Duration: time.Since(start),
			Path:     path,
			Err:      err,
		})
	}
	return st, err
}

func (t *Tree[C]) tick(c C, id NodeID) Status {
	n := &t.nodes[id]
	t.visited = append(t.visited, id)
	if n.status != StatusRunning {
		if e, ok := n.behavior.(Enterer[C]); ok {
			e.OnEnter(c)
		}
	}

	before := len(t.origins)
	st := n.behavior.Update(c, Children[C]{tree: t, ids: n.children})
	switch {
	case st == StatusInvalid || st > StatusError:
		st = StatusError
		t.originate(id, ErrInvalidStatus)
	case st == StatusError && len(t.origins) == before:
		t.originate(id, ErrNotImplemented)
	}

	if st != StatusRunning {
		if e, ok := n.behavior.(Exiter[C]); ok {
			e.OnExit(c, st)
		}
	}
	n.status = st
	n.lastFrame = t.frame
	return st
}

func (t *Tree[C]) originate(id NodeID, cause error) {
	n := &t.nodes[id]
	t.origins = append(t.origins, &NodeError{Node: n.name, ID: id, Frame: t.frame, Err: cause})
	t.opts.logger.Error("node returned error status",
		log.String("node", n.name),
		log.String("type", n.typ),
		log.Uint64("frame", t.frame),
		log.Error(cause),
	)
}

// abort stops a node and its Running descendants, children first.
func (t *Tree[C]) abort(c C, id NodeID) {
	n := &t.nodes[id]
	for _, ch := range n.children {
		t.abort(c, ch)
	}
	if n.status != StatusRunning {
		return
	}
	if e, ok := n.behavior.(Exiter[C]); ok {
		e.OnExit(c, StatusFailure)
	}
	n.status = StatusInvalid
}

// abortStale relies on children having smaller ids than their parents, so
// ascending order visits children first.
func (t *Tree[C]) abortStale(c C) {
	for id := range t.nodes {
		n := &t.nodes[id]
		if n.status == StatusRunning && n.lastFrame != t.frame {
			t.opts.logger.Debug("aborting stale node",
				log.String("node", n.name),
				log.Uint64("frame", t.frame),
			)
			t.abort(c, NodeID(id))
		}
	}
}

// Reset aborts every Running node.
func (t *Tree[C]) Reset(c C) {
	t.abort(c, t.root)
}

func (t *Tree[C]) Root() NodeID  { return t.root }
func (t *Tree[C]) Len() int      { return len(t.nodes) }
func (t *Tree[C]) Frame() uint64 { return t.frame }

func (t *Tree[C]) Status(id NodeID) Status { return t.nodes[id].status }
func (t *Tree[C]) Name(id NodeID) string   { return t.nodes[id].name }

// Find returns the first node with the given name in id order.
func (t *Tree[C]) Find(name string) (NodeID, bool) {
	for id := range t.nodes {
		if t.nodes[id].name == name {
			return NodeID(id), true
		}
	}
	return NoNode, false
}

// NodeInfo is what Walk reports about a node.
type NodeInfo struct {
	ID       NodeID
	Name     string
	Type     string
	Kind     Kind
	Depth    int
	Children []NodeID
	Status   Status
}

// Walk visits the tree depth-first in child order. Returning false from fn
// skips the node's subtree.
func (t *Tree[C]) Walk(fn func(NodeInfo) bool) {
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		n := &t.nodes[id]
		info := NodeInfo{
			ID:       id,
			Name:     n.name,
			Type:     n.typ,
			Kind:     n.kind,
			Depth:    depth,
			Children: append([]NodeID(nil), n.children...),
			Status:   n.status,
		}
		if !fn(info) {
			return
		}
		for _, ch := range n.children {
			walk(ch, depth+1)
		}
	}
	walk(t.root, 0)
}

// Fingerprint hashes the topology: names, types and ownership, but not
// runtime state. Two trees built from the same definition agree.
func (t *Tree[C]) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [4]byte
	writeID := func(id NodeID) {
		buf[0], buf[1], buf[2], buf[3] = byte(id), byte(id>>8), byte(id>>16), byte(id>>24)
		_, _ = d.Write(buf[:])
	}
	writeID(t.root)
	for id := range t.nodes {
		n := &t.nodes[id]
		_, _ = d.WriteString(n.name)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(n.typ)
		_, _ = d.WriteString("\x00")
		for _, ch := range n.children {
			writeID(ch)
		}
		writeID(NoNode)
	}
	return d.Sum64()
}

func (t *Tree[C]) String() string {
	var sb strings.Builder
	t.Walk(func(n NodeInfo) bool {
		fmt.Fprintf(&sb, "%s%s [%s]\n", strings.Repeat("  ", n.Depth), n.Name, n.Type)
		return true
	})
	return sb.String()
}
