package world

import (
	"math"

	"github.com/emirpasic/gods/v2/queues/priorityqueue"

	"github.com/zeusync/guardai/internal/core/systems/physics"
	"github.com/zeusync/guardai/pkg/generic"
)

// Grid is a walkability grid over the XZ plane. Cells covered by an obstacle
// are blocked.
type Grid struct {
	min     physics.Vec3
	cell    float64
	cols    int
	rows    int
	blocked []bool
	scratch *generic.Pool[*search]
}

// search is the per-cell A* state, recycled between searches.
type search struct {
	cost   []float64
	came   []int
	closed []bool
}

func (s *search) reset() {
	for i := range s.cost {
		s.cost[i] = math.Inf(1)
		s.came[i] = -1
		s.closed[i] = false
	}
}

func newGrid(origin physics.Vec3, width, depth, cell float64) *Grid {
	cols := max(1, int(math.Ceil(width/cell)))
	rows := max(1, int(math.Ceil(depth/cell)))
	n := cols * rows
	return &Grid{
		min:     origin,
		cell:    cell,
		cols:    cols,
		rows:    rows,
		blocked: make([]bool, n),
		scratch: generic.NewPool(func() *search {
			return &search{cost: make([]float64, n), came: make([]int, n), closed: make([]bool, n)}
		}, (*search).reset),
	}
}

func (g *Grid) Size() (cols, rows int) { return g.cols, g.rows }

// block marks every cell the shape overlaps.
func (g *Grid) block(s Shape) {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			minX := g.min.X + float64(c)*g.cell
			minZ := g.min.Z + float64(r)*g.cell
			if s.OverlapsRect(minX, minZ, minX+g.cell, minZ+g.cell) {
				g.blocked[r*g.cols+c] = true
			}
		}
	}
}

func (g *Grid) Blocked(p physics.Vec3) bool {
	return g.blocked[g.cellOf(p)]
}

// cellOf clamps p into the grid.
func (g *Grid) cellOf(p physics.Vec3) int {
	c := int(math.Floor((p.X - g.min.X) / g.cell))
	r := int(math.Floor((p.Z - g.min.Z) / g.cell))
	c = min(max(c, 0), g.cols-1)
	r = min(max(r, 0), g.rows-1)
	return r*g.cols + c
}

func (g *Grid) center(i int, y float64) physics.Vec3 {
	c, r := i%g.cols, i/g.cols
	return physics.V3(
		g.min.X+(float64(c)+0.5)*g.cell,
		y,
		g.min.Z+(float64(r)+0.5)*g.cell,
	)
}

func (g *Grid) heuristic(a, b int) float64 {
	dx := math.Abs(float64(a%g.cols - b%g.cols))
	dz := math.Abs(float64(a/g.cols - b/g.cols))
	return g.cell * (math.Max(dx, dz) + (math.Sqrt2-1)*math.Min(dx, dz))
}

type openNode struct {
	cell int
	f, h float64
	seq  int
}

// FindPath runs A* over the 8-neighbourhood without corner cutting. The path
// excludes the start point. When the goal cannot be reached the path leads
// to the explored cell closest to it and complete is false.
func (g *Grid) FindPath(from, to physics.Vec3) (path []physics.Vec3, complete bool) {
	start, goal := g.cellOf(from), g.cellOf(to)
	if start == goal {
		return []physics.Vec3{to}, true
	}

	s := g.scratch.Get()
	defer g.scratch.Put(s)
	cost, came, closed := s.cost, s.came, s.closed

	open := priorityqueue.NewWith[*openNode](func(a, b *openNode) int {
		switch {
		case a.f < b.f:
			return -1
		case a.f > b.f:
			return 1
		case a.h < b.h:
			return -1
		case a.h > b.h:
			return 1
		default:
			return a.seq - b.seq
		}
	})
	seq := 0
	cost[start] = 0
	h := g.heuristic(start, goal)
	open.Enqueue(&openNode{cell: start, f: h, h: h})
	best, bestH := start, h

	for !open.Empty() {
		cur, _ := open.Dequeue()
		if closed[cur.cell] {
			continue
		}
		closed[cur.cell] = true
		if cur.h < bestH {
			best, bestH = cur.cell, cur.h
		}
		if cur.cell == goal {
			break
		}

		cc, cr := cur.cell%g.cols, cur.cell/g.cols
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				nc, nr := cc+dc, cr+dr
				if nc < 0 || nr < 0 || nc >= g.cols || nr >= g.rows {
					continue
				}
				next := nr*g.cols + nc
				if g.blocked[next] || closed[next] {
					continue
				}
				step := g.cell
				if dr != 0 && dc != 0 {
					if g.blocked[cr*g.cols+nc] || g.blocked[nr*g.cols+cc] {
						continue
					}
					step *= math.Sqrt2
				}
				if c := cost[cur.cell] + step; c < cost[next] {
					cost[next] = c
					came[next] = cur.cell
					seq++
					nh := g.heuristic(next, goal)
					open.Enqueue(&openNode{cell: next, f: c + nh, h: nh, seq: seq})
				}
			}
		}
	}

	complete = best == goal
	for cell := best; cell != start && cell != -1; cell = came[cell] {
		path = append(path, g.center(cell, from.Y))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if complete {
		path[len(path)-1] = to
	}
	return path, complete
}
