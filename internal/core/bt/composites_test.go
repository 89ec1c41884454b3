package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector(t *testing.T) {
	cases := []struct {
		name     string
		children []Status
		want     Status
		ticked   []string
	}{
		{"all fail", []Status{StatusFailure, StatusFailure}, StatusFailure, []string{"c0", "c1"}},
		{"first success", []Status{StatusSuccess, StatusFailure}, StatusSuccess, []string{"c0"}},
		{"running stops", []Status{StatusFailure, StatusRunning, StatusSuccess}, StatusRunning, []string{"c0", "c1"}},
		{"error stops", []Status{StatusFailure, StatusError, StatusSuccess}, StatusError, []string{"c0", "c1"}},
		{"empty", nil, StatusFailure, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := buildWith(t, func(b *Builder[*env]) NodeID {
				ids := make([]NodeID, len(tc.children))
				for i, st := range tc.children {
					ids[i] = b.Leaf(childName(i), newProbe(childName(i), st))
				}
				return b.Selector("sel", ids...)
			})
			e := &env{}
			st, _ := tree.Tick(e)
			assert.Equal(t, tc.want, st)
			assert.Equal(t, tc.ticked, e.ticks)
		})
	}
}

func TestSequence(t *testing.T) {
	cases := []struct {
		name     string
		children []Status
		want     Status
		ticked   []string
	}{
		{"all succeed", []Status{StatusSuccess, StatusSuccess}, StatusSuccess, []string{"c0", "c1"}},
		{"failure stops", []Status{StatusSuccess, StatusFailure, StatusSuccess}, StatusFailure, []string{"c0", "c1"}},
		{"running stops", []Status{StatusRunning, StatusSuccess}, StatusRunning, []string{"c0"}},
		{"error stops", []Status{StatusSuccess, StatusError}, StatusError, []string{"c0", "c1"}},
		{"empty", nil, StatusSuccess, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := buildWith(t, func(b *Builder[*env]) NodeID {
				ids := make([]NodeID, len(tc.children))
				for i, st := range tc.children {
					ids[i] = b.Leaf(childName(i), newProbe(childName(i), st))
				}
				return b.Sequence("seq", ids...)
			})
			e := &env{}
			st, _ := tree.Tick(e)
			assert.Equal(t, tc.want, st)
			assert.Equal(t, tc.ticked, e.ticks)
		})
	}
}

func TestParallelThresholds(t *testing.T) {
	cases := []struct {
		name             string
		children         []Status
		success, failure int
		want             Status
	}{
		{"success threshold", []Status{StatusSuccess, StatusSuccess, StatusFailure}, 2, 2, StatusSuccess},
		{"failure threshold", []Status{StatusFailure, StatusFailure, StatusSuccess}, 2, 2, StatusFailure},
		{"neither", []Status{StatusSuccess, StatusFailure, StatusRunning}, 2, 2, StatusRunning},
		{"success checked first", []Status{StatusSuccess, StatusFailure}, 1, 1, StatusSuccess},
		{"error wins", []Status{StatusSuccess, StatusSuccess, StatusError}, 1, 1, StatusError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := buildWith(t, func(b *Builder[*env]) NodeID {
				ids := make([]NodeID, len(tc.children))
				for i, st := range tc.children {
					ids[i] = b.Leaf(childName(i), newProbe(childName(i), st))
				}
				return b.Parallel("par", tc.success, tc.failure, ids...)
			})
			e := &env{}
			st, _ := tree.Tick(e)
			assert.Equal(t, tc.want, st)
			assert.Len(t, e.ticks, len(tc.children), "parallel never short-circuits")
		})
	}
}

func TestParallelAbortsRunningChildrenOnResolve(t *testing.T) {
	fast := newProbe("fast", StatusRunning, StatusSuccess)
	slow := newProbe("slow", StatusRunning)
	var par NodeID
	tree := buildWith(t, func(b *Builder[*env]) NodeID {
		par = b.Parallel("par", 1, 2, b.Leaf("fast", fast), b.Leaf("slow", slow))
		return par
	})

	st, err := tree.Tick(&env{})
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, st)

	st, err = tree.Tick(&env{})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, st)
	assert.Equal(t, []Status{StatusFailure}, slow.exits, "slow is aborted")
	id, _ := tree.Find("slow")
	assert.Equal(t, StatusInvalid, tree.Status(id))

	_, _ = tree.Tick(&env{})
	assert.Equal(t, 2, slow.enters, "aborted child re-enters")
}

func childName(i int) string {
	return "c" + string(rune('0'+i))
}
