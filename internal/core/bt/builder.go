package bt

import (
	"errors"
	"fmt"
)

// Builder allocates nodes in an arena. Children must be created before the
// node that owns them, so a child always has a smaller id than its parent
// and cycles cannot be expressed. Problems are collected and reported by
// Build.
type Builder[C any] struct {
	nodes []node[C]
	errs  []error
	built bool
}

func NewBuilder[C any]() *Builder[C] {
	return &Builder[C]{}
}

func (b *Builder[C]) Leaf(name string, beh Behavior[C]) NodeID {
	return b.add(KindLeaf, typeOf(beh, "leaf"), name, beh)
}

func (b *Builder[C]) Decorator(name string, beh Behavior[C], child NodeID) NodeID {
	return b.add(KindDecorator, typeOf(beh, "decorator"), name, beh, child)
}

func (b *Builder[C]) Composite(name string, beh Behavior[C], children ...NodeID) NodeID {
	return b.add(KindComposite, typeOf(beh, "composite"), name, beh, children...)
}

func (b *Builder[C]) Selector(name string, children ...NodeID) NodeID {
	return b.Composite(name, Selector[C]{}, children...)
}

func (b *Builder[C]) Sequence(name string, children ...NodeID) NodeID {
	return b.Composite(name, Sequence[C]{}, children...)
}

func (b *Builder[C]) Parallel(name string, success, failure int, children ...NodeID) NodeID {
	return b.Composite(name, &Parallel[C]{Success: success, Failure: failure}, children...)
}

func (b *Builder[C]) Invert(name string, child NodeID) NodeID {
	return b.Decorator(name, Invert[C]{}, child)
}

func (b *Builder[C]) AlwaysSucceed(name string, child NodeID) NodeID {
	return b.Decorator(name, AlwaysSucceed[C]{}, child)
}

func (b *Builder[C]) AlwaysFail(name string, child NodeID) NodeID {
	return b.Decorator(name, AlwaysFail[C]{}, child)
}

func (b *Builder[C]) Repeat(name string, times int, mode RepeatMode, child NodeID) NodeID {
	return b.Decorator(name, &Repeat[C]{Times: times, Mode: mode}, child)
}

func (b *Builder[C]) add(kind Kind, typ, name string, beh Behavior[C], children ...NodeID) NodeID {
	id := NodeID(len(b.nodes))
	if b.built {
		b.errs = append(b.errs, ErrBuilt)
	}
	if beh == nil {
		b.errs = append(b.errs, fmt.Errorf("node %q: nil behavior", name))
		beh = Unimplemented[C]{}
	}

	want := -1
	switch kind {
	case KindLeaf:
		want = 0
	case KindDecorator:
		want = 1
	}
	if want >= 0 && len(children) != want {
		b.errs = append(b.errs, fmt.Errorf("%s %q has %d children: %w", kind, name, len(children), ErrInvalidArity))
	}

	owned := make([]NodeID, 0, len(children))
	for _, ch := range children {
		if ch < 0 || int(ch) >= len(b.nodes) {
			b.errs = append(b.errs, fmt.Errorf("node %q: child #%d: %w", name, ch, ErrUnknownNode))
			continue
		}
		if p := b.nodes[ch].parent; p != NoNode {
			b.errs = append(b.errs, fmt.Errorf("node %q: child %q already owned by %q: %w",
				name, b.nodes[ch].name, b.nodes[p].name, ErrSharedChild))
			continue
		}
		b.nodes[ch].parent = id
		owned = append(owned, ch)
	}

	if v, ok := beh.(Validator); ok {
		if err := v.ValidateChildren(len(children)); err != nil {
			b.errs = append(b.errs, fmt.Errorf("node %q: %w", name, err))
		}
	}

	b.nodes = append(b.nodes, node[C]{
		name:     name,
		typ:      typ,
		kind:     kind,
		behavior: beh,
		children: owned,
		parent:   NoNode,
	})
	return id
}

// Build freezes the arena into a Tree rooted at root. The builder cannot be
// reused afterwards.
func (b *Builder[C]) Build(root NodeID, opts ...Option) (*Tree[C], error) {
	if b.built {
		return nil, ErrBuilt
	}
	errs := append([]error(nil), b.errs...)
	if root < 0 || int(root) >= len(b.nodes) {
		errs = append(errs, fmt.Errorf("root #%d: %w", root, ErrUnknownNode))
		return nil, errors.Join(errs...)
	}
	if p := b.nodes[root].parent; p != NoNode {
		errs = append(errs, fmt.Errorf("root %q is a child of %q: %w", b.nodes[root].name, b.nodes[p].name, ErrSharedChild))
	}

	reached := make([]bool, len(b.nodes))
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached[id] = true
		stack = append(stack, b.nodes[id].children...)
	}
	for id, ok := range reached {
		if !ok {
			errs = append(errs, fmt.Errorf("node %q (#%d): %w", b.nodes[id].name, id, ErrUnreachable))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	b.built = true
	return newTree(b.nodes, root, opts...), nil
}

func typeOf(beh any, fallback string) string {
	if t, ok := beh.(Typer); ok {
		return t.Type()
	}
	return fallback
}
