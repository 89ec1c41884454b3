package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idle() Behavior[*env] {
	return ActionFunc[*env](func(*env) Status { return StatusSuccess })
}

func TestBuilderRejectsSharedChild(t *testing.T) {
	b := NewBuilder[*env]()
	leaf := b.Leaf("leaf", idle())
	left := b.Sequence("left", leaf)
	right := b.Sequence("right", leaf)
	_, err := b.Build(b.Selector("root", left, right))
	assert.ErrorIs(t, err, ErrSharedChild)
}

func TestBuilderRejectsUnknownChildAndRoot(t *testing.T) {
	b := NewBuilder[*env]()
	_, err := b.Build(b.Sequence("root", NodeID(42)))
	assert.ErrorIs(t, err, ErrUnknownNode)

	b = NewBuilder[*env]()
	b.Leaf("leaf", idle())
	_, err = b.Build(NodeID(7))
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestBuilderRejectsUnreachableNode(t *testing.T) {
	b := NewBuilder[*env]()
	b.Leaf("orphan", idle())
	_, err := b.Build(b.Sequence("root", b.Leaf("leaf", idle())))
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestBuilderRejectsChildAsRoot(t *testing.T) {
	b := NewBuilder[*env]()
	leaf := b.Leaf("leaf", idle())
	b.Sequence("root", leaf)
	_, err := b.Build(leaf)
	assert.ErrorIs(t, err, ErrSharedChild)
}

func TestBuilderValidatesThresholds(t *testing.T) {
	cases := []struct {
		name  string
		build func(b *Builder[*env]) NodeID
	}{
		{"parallel success above n", func(b *Builder[*env]) NodeID {
			return b.Parallel("p", 3, 1, b.Leaf("a", idle()), b.Leaf("b", idle()))
		}},
		{"parallel failure zero", func(b *Builder[*env]) NodeID {
			return b.Parallel("p", 1, 0, b.Leaf("a", idle()))
		}},
		{"parallel without children", func(b *Builder[*env]) NodeID {
			return b.Parallel("p", 1, 1)
		}},
		{"repeat zero", func(b *Builder[*env]) NodeID {
			return b.Repeat("r", 0, RepeatPerTick, b.Leaf("a", idle()))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder[*env]()
			_, err := b.Build(tc.build(b))
			assert.ErrorIs(t, err, ErrInvalidParam)
		})
	}
}

func TestBuilderDecoratorArity(t *testing.T) {
	b := NewBuilder[*env]()
	_, err := b.Build(b.add(KindDecorator, "invert", "inv", Invert[*env]{}))
	assert.ErrorIs(t, err, ErrInvalidArity)

	b = NewBuilder[*env]()
	_, err = b.Build(b.add(KindLeaf, "leaf", "leaf", idle(), b.Leaf("x", idle())))
	assert.ErrorIs(t, err, ErrInvalidArity)
}

func TestBuilderNilBehaviorAndReuse(t *testing.T) {
	b := NewBuilder[*env]()
	_, err := b.Build(b.Leaf("nil", nil))
	assert.Error(t, err)

	b = NewBuilder[*env]()
	root := b.Leaf("ok", idle())
	_, err = b.Build(root)
	require.NoError(t, err)
	_, err = b.Build(root)
	assert.ErrorIs(t, err, ErrBuilt)
}
