// Package cosegrid narrows the repulsion pass to pairs of nodes that are close to each other.
package cosegrid

import (
	"math"

	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/lib/geo"
)

type span struct {
	left, right, top, bottom int
}

// Grid buckets nodes into square cells as wide as the repulsion range. A node is registered in
// every cell its box touches, and its candidates are looked up in those cells and the ring of
// cells around them:
//
// .  ┌────┬────┬────┬────┐
// .  │ a ┌┼─┐  │    │    │  b spans 2 cells next to a's, so a and b are candidates;
// .  ├───┼┼─┼──┼────┼────┤  c is more than a cell away from a and is never compared to it.
// .  │   └┼─┘ b│    │  c │
// .  └────┴────┴────┴────┘
type Grid struct {
	Range float64

	left, top  float64
	cols, rows int
	cells      [][]int

	spans       []span
	surrounding [][]int
}

// New creates an empty grid for the given repulsion range.
func New(rng float64) *Grid {
	return &Grid{
		Range: rng,
	}
}

// Rebuild re-buckets nodes, indexed by their Seq, over bounds and recomputes every node's
// surrounding set: the later nodes with the same owner whose box is within Range of its box on
// both axes. Each candidate pair is therefore listed once.
func (g *Grid) Rebuild(bounds *geo.Box, nodes []*cosegraph.Node) {
	g.left, g.top = bounds.Left(), bounds.Top()
	g.cols = int(math.Ceil(bounds.Width/g.Range)) + 1
	g.rows = int(math.Ceil(bounds.Height/g.Range)) + 1
	g.cells = make([][]int, g.cols*g.rows)
	g.spans = make([]span, len(nodes))
	g.surrounding = make([][]int, len(nodes))

	for i, n := range nodes {
		s := span{
			left:   g.col(n.Left()),
			right:  g.col(n.Right()),
			top:    g.row(n.Top()),
			bottom: g.row(n.Bottom()),
		}
		g.spans[i] = s
		for c := s.left; c <= s.right; c++ {
			for r := s.top; r <= s.bottom; r++ {
				g.cells[r*g.cols+c] = append(g.cells[r*g.cols+c], i)
			}
		}
	}

	seen := make([]int, len(nodes))
	for i := range seen {
		seen[i] = -1
	}
	for i, n := range nodes {
		s := g.spans[i]
		for c := max(s.left-1, 0); c <= min(s.right+1, g.cols-1); c++ {
			for r := max(s.top-1, 0); r <= min(s.bottom+1, g.rows-1); r++ {
				for _, j := range g.cells[r*g.cols+c] {
					if j <= i || seen[j] == i {
						continue
					}
					seen[j] = i
					o := nodes[j]
					if o.Owner() != n.Owner() {
						continue
					}
					if g.withinRange(n, o) {
						g.surrounding[i] = append(g.surrounding[i], j)
					}
				}
			}
		}
	}
}

func (g *Grid) withinRange(a, b *cosegraph.Node) bool {
	distX := math.Abs(a.CenterX()-b.CenterX()) - (a.Width+b.Width)/2
	distY := math.Abs(a.CenterY()-b.CenterY()) - (a.Height+b.Height)/2
	return distX <= g.Range && distY <= g.Range
}

// Surrounding returns the candidates recorded for the node at index i by the last Rebuild.
func (g *Grid) Surrounding(i int) []int {
	if i >= len(g.surrounding) {
		return nil
	}
	return g.surrounding[i]
}

func (g *Grid) col(x float64) int {
	return clampIndex(int((x-g.left)/g.Range), g.cols)
}

func (g *Grid) row(y float64) int {
	return clampIndex(int((y-g.top)/g.Range), g.rows)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
