package bt

// NodeID addresses a node inside the arena of one Builder or Tree.
type NodeID int32

const NoNode NodeID = -1

// Behavior is the node-specific update logic. Composites and decorators
// reach their children through ch; leaves ignore it.
type Behavior[C any] interface {
	Update(c C, ch Children[C]) Status
}

// Enterer is called before Update whenever the recorded status of the node
// is not Running, i.e. on every fresh activation.
type Enterer[C any] interface {
	OnEnter(c C)
}

// Exiter is called after Update whenever the new status is not Running,
// and when a Running node is aborted (with StatusFailure).
type Exiter[C any] interface {
	OnExit(c C, s Status)
}

// Validator lets a behavior reject its child count at Build time.
type Validator interface {
	ValidateChildren(n int) error
}

// Typer names the kind of a behavior in Walk output and fingerprints.
type Typer interface {
	Type() string
}

type Kind uint8

const (
	KindLeaf Kind = iota
	KindDecorator
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindDecorator:
		return "decorator"
	default:
		return "composite"
	}
}

type node[C any] struct {
	name      string
	typ       string
	kind      Kind
	behavior  Behavior[C]
	children  []NodeID
	parent    NodeID
	status    Status
	lastFrame uint64
}

// Children is the view a behavior gets of the nodes it owns.
type Children[C any] struct {
	tree *Tree[C]
	ids  []NodeID
}

func (ch Children[C]) Len() int { return len(ch.ids) }

// Tick runs the lifecycle protocol on the i-th child and returns its status.
func (ch Children[C]) Tick(c C, i int) Status {
	return ch.tree.tick(c, ch.ids[i])
}

// Status is the recorded status of the i-th child.
func (ch Children[C]) Status(i int) Status {
	return ch.tree.nodes[ch.ids[i]].status
}

// Abort stops the i-th child and its Running descendants.
func (ch Children[C]) Abort(c C, i int) {
	ch.tree.abort(c, ch.ids[i])
}
