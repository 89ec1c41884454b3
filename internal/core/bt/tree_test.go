package bt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/guardai/internal/core/observability/log"
)

func TestLifecycleHooksOncePerRunningSpan(t *testing.T) {
	p := newProbe("walk", StatusRunning, StatusRunning, StatusRunning, StatusSuccess, StatusFailure)
	tree := buildWith(t, func(b *Builder[*env]) NodeID {
		return b.Leaf("walk", p)
	})

	for range 4 {
		_, err := tree.Tick(&env{})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, p.enters)
	assert.Equal(t, []Status{StatusSuccess}, p.exits)

	// a finished node starts fresh on its next tick
	_, _ = tree.Tick(&env{})
	assert.Equal(t, 2, p.enters)
	assert.Equal(t, []Status{StatusSuccess, StatusFailure}, p.exits)
}

func TestStaleRunningNodeIsAborted(t *testing.T) {
	gate := newProbe("gate", StatusFailure, StatusSuccess, StatusFailure)
	work := newProbe("work", StatusRunning)
	tree := buildWith(t, func(b *Builder[*env]) NodeID {
		return b.Selector("root", b.Leaf("gate", gate), b.Leaf("work", work))
	})
	workID, ok := tree.Find("work")
	require.True(t, ok)

	_, _ = tree.Tick(&env{})
	assert.Equal(t, StatusRunning, tree.Status(workID))

	e := &env{}
	st, _ := tree.Tick(e)
	assert.Equal(t, StatusSuccess, st)
	assert.Equal(t, []string{"gate"}, e.ticks)
	assert.Equal(t, []Status{StatusFailure}, work.exits)
	assert.Equal(t, StatusInvalid, tree.Status(workID))

	_, _ = tree.Tick(&env{})
	assert.Equal(t, 2, work.enters, "aborted node re-enters on its next activation")
}

func TestStaleAbortDisabledKeepsRunningState(t *testing.T) {
	gate := newProbe("gate", StatusFailure, StatusSuccess, StatusFailure)
	work := newProbe("work", StatusRunning)
	tree := buildWith(t, func(b *Builder[*env]) NodeID {
		return b.Selector("root", b.Leaf("gate", gate), b.Leaf("work", work))
	}, WithStaleAbort(false))
	workID, _ := tree.Find("work")

	_, _ = tree.Tick(&env{})
	_, _ = tree.Tick(&env{})
	assert.Equal(t, StatusRunning, tree.Status(workID))
	assert.Empty(t, work.exits)

	_, _ = tree.Tick(&env{})
	assert.Equal(t, 1, work.enters, "leaked Running state skips the enter hook")
}

func TestStaleAbortIsChildrenFirst(t *testing.T) {
	var order []string
	hook := func(name string) *hookLeaf { return &hookLeaf{name: name, order: &order} }
	gate := newProbe("gate", StatusFailure, StatusSuccess)
	inner := hook("inner")
	tree := buildWith(t, func(b *Builder[*env]) NodeID {
		outer := b.Composite("outer", &hookComposite{name: "outer", order: &order}, b.Leaf("inner", inner))
		return b.Selector("root", b.Leaf("gate", gate), outer)
	})

	_, _ = tree.Tick(&env{})
	_, _ = tree.Tick(&env{})
	assert.Equal(t, []string{"inner", "outer"}, order)
}

func TestResetAbortsRunningNodes(t *testing.T) {
	work := newProbe("work", StatusRunning)
	tree := buildWith(t, func(b *Builder[*env]) NodeID {
		return b.Sequence("root", b.Leaf("work", work))
	})
	_, _ = tree.Tick(&env{})
	tree.Reset(&env{})
	assert.Equal(t, StatusInvalid, tree.Status(tree.Root()))
	assert.Equal(t, []Status{StatusFailure}, work.exits)
}

func TestErrorOriginIsReportedEvenWhenMasked(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tree := buildWith(t, func(b *Builder[*env]) NodeID {
		return b.AlwaysSucceed("mask", b.Sequence("seq", b.Leaf("todo", Unimplemented[*env]{})))
	}, WithLogger(log.FromZap(zap.New(core), log.LevelDebug)))

	st, err := tree.Tick(&env{})
	assert.Equal(t, StatusSuccess, st)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotImplemented)

	origins := NodeErrors(err)
	require.Len(t, origins, 1, "sequence propagates, it does not originate")
	assert.Equal(t, "todo", origins[0].Node)
	assert.Equal(t, uint64(1), origins[0].Frame)

	entries := logs.FilterMessage("node returned error status").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "todo", entries[0].ContextMap()["node"])
}

func TestInvalidStatusBecomesError(t *testing.T) {
	tree := buildWith(t, func(b *Builder[*env]) NodeID {
		return b.Leaf("bad", ActionFunc[*env](func(*env) Status { return StatusInvalid }))
	})
	st, err := tree.Tick(&env{})
	assert.Equal(t, StatusError, st)
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestTraceKeepsRecentFrames(t *testing.T) {
	trace := NewTrace(2)
	tree := buildWith(t, func(b *Builder[*env]) NodeID {
		return b.Sequence("root",
			b.Leaf("see", ConditionFunc[*env](func(*env) bool { return true })),
			b.Leaf("act", ActionFunc[*env](func(*env) Status { return StatusRunning })),
		)
	}, WithTrace(trace))

	for range 3 {
		_, _ = tree.Tick(&env{})
	}
	records := trace.Records()
	require.Len(t, records, 2)
	assert.Equal(t, uint64(2), records[0].Frame)
	assert.Equal(t, uint64(3), records[1].Frame)
	assert.Equal(t, []string{"root", "see", "act"}, records[1].Path)
	assert.Equal(t, StatusRunning, records[1].Status)

	last, ok := trace.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(3), last.Frame)
	trace.Clear()
	assert.Zero(t, trace.Len())
}

func TestWalkAndFingerprint(t *testing.T) {
	build := func(leaf string) *Tree[*env] {
		return buildWith(t, func(b *Builder[*env]) NodeID {
			return b.Selector("root",
				b.Invert("not", b.Leaf(leaf, Unimplemented[*env]{})),
				b.Leaf("idle", ActionFunc[*env](func(*env) Status { return StatusSuccess })),
			)
		})
	}
	a, b := build("see"), build("see")
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), build("look").Fingerprint())

	var names []string
	var depths []int
	a.Walk(func(n NodeInfo) bool {
		names = append(names, n.Name)
		depths = append(depths, n.Depth)
		return true
	})
	assert.Equal(t, []string{"root", "not", "see", "idle"}, names)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)
	assert.Equal(t, "root [selector]\n  not [invert]\n    see [unimplemented]\n  idle [leaf]\n", a.String())
}

type hookLeaf struct {
	name  string
	order *[]string
}

func (h *hookLeaf) OnExit(*env, Status) { *h.order = append(*h.order, h.name) }

func (h *hookLeaf) Update(*env, Children[*env]) Status { return StatusRunning }

type hookComposite struct {
	name  string
	order *[]string
}

func (h *hookComposite) OnExit(*env, Status) { *h.order = append(*h.order, h.name) }

func (h *hookComposite) Update(e *env, ch Children[*env]) Status { return ch.Tick(e, 0) }
