package coselayout

import (
	"math"
	"math/rand"

	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/lib/geo"
)

// place gives m a starting layout: radial trees if m is a flat forest, a seeded scatter
// otherwise.
func place(m *cosegraph.Manager, seed int64) {
	if forest := m.FlatForest(); len(forest) > 0 {
		positionRadially(m, forest)
	} else {
		positionRandomly(m, rand.New(rand.NewSource(seed)))
	}
	m.UpdateBounds()
}

// positionRandomly scatters every leaf uniformly around the world center. Compound nodes are
// fitted around their scattered children by the following bounds update.
func positionRandomly(m *cosegraph.Manager, r *rand.Rand) {
	var visit func(g *cosegraph.Graph)
	visit = func(g *cosegraph.Graph) {
		for _, n := range m.GraphNodes(g) {
			if !m.IsLeaf(n) {
				visit(m.ChildGraph(n))
				continue
			}
			x := WORLD_CENTER_X + (2*r.Float64()-1)*INITIAL_WORLD_BOUNDARY
			y := WORLD_CENTER_Y + (2*r.Float64()-1)*INITIAL_WORLD_BOUNDARY
			n.SetCenter(x, y)
		}
	}
	visit(m.Root())
}

// positionRadially lays out every tree around its center, tiling the trees in rows of
// ceil(sqrt(trees)), and centers the result on the world center.
//
// .  ┌─────────────┐ ┌──────┐ ┌───┐
// .  │   tree 1    │ │tree 2│ │ 3 │
// .  └─────────────┘ └──────┘ └───┘
// .  ┌──────┐ ┌─┐
// .  │tree 4│ │5│
// .  └──────┘ └─┘
func positionRadially(m *cosegraph.Manager, forest [][]cosegraph.NodeID) {
	columns := int(math.Ceil(math.Sqrt(float64(len(forest)))))
	var all []*cosegraph.Node
	rowHeight, x, y := 0., 0., 0.
	for i, ids := range forest {
		if i%columns == 0 {
			x = 0
			y = rowHeight
			if i != 0 {
				y += DEFAULT_COMPONENT_SEPARATION
			}
		}
		tree := make([]*cosegraph.Node, 0, len(ids))
		for _, id := range ids {
			n, _ := m.Node(id)
			tree = append(tree, n)
		}
		right, bottom := radialLayout(m, tree, x, y)
		rowHeight = math.Max(rowHeight, math.Floor(bottom))
		x = math.Floor(right + DEFAULT_COMPONENT_SEPARATION)
		all = append(all, tree...)
	}

	boxes := make([]*geo.Box, 0, len(all))
	for _, n := range all {
		boxes = append(boxes, n.Box)
	}
	b := geo.Union(boxes...)
	dx, dy := WORLD_CENTER_X-b.CenterX(), WORLD_CENTER_Y-b.CenterY()
	for _, n := range all {
		n.MoveBy(dx, dy)
	}
}

// radialLayout places tree radially around its center and moves it so its bounding box starts at
// (x, y). It returns the bottom right corner of the placed tree.
func radialLayout(m *cosegraph.Manager, tree []*cosegraph.Node, x, y float64) (float64, float64) {
	sep := DEFAULT_RADIAL_SEPARATION
	for _, n := range tree {
		sep = math.Max(sep, n.Diagonal())
	}
	branchRadialLayout(m, findCenterOfTree(m, tree), nil, 0, 359, 0, sep)

	boxes := make([]*geo.Box, 0, len(tree))
	for _, n := range tree {
		boxes = append(boxes, n.Box)
	}
	b := geo.Union(boxes...)
	dx, dy := x-b.Left(), y-b.Top()
	for _, n := range tree {
		n.MoveBy(dx, dy)
	}
	return x + b.Width, y + b.Height
}

// branchRadialLayout puts n at distance from the origin in the middle of the angular sector
// [start, end] and splits the sector evenly among n's children, one ring further out.
func branchRadialLayout(m *cosegraph.Manager, n, parent *cosegraph.Node, start, end, distance, sep float64) {
	half := (end - start + 1) / 2
	if half < 0 {
		half += 180
	}
	angle := math.Mod(half+start, 360) * 2 * math.Pi / 360
	n.SetCenter(distance*math.Cos(angle), distance*math.Sin(angle))

	neighbors := m.Neighbors(n)
	children := len(neighbors)
	first := 0
	if parent != nil {
		children--
		for i, nb := range neighbors {
			if nb == parent {
				first = (i + 1) % len(neighbors)
				break
			}
		}
	}
	if children == 0 {
		return
	}
	step := math.Abs(end-start) / float64(children)
	branch := 0
	for k := 0; k < len(neighbors); k++ {
		nb := neighbors[(first+k)%len(neighbors)]
		if nb == parent {
			continue
		}
		childStart := math.Mod(start+float64(branch)*step, 360)
		childEnd := math.Mod(childStart+step, 360)
		branchRadialLayout(m, nb, n, childStart, childEnd, distance+sep, sep)
		branch++
	}
}

// findCenterOfTree peels leaves off tree until one or two nodes remain and returns the first.
func findCenterOfTree(m *cosegraph.Manager, tree []*cosegraph.Node) *cosegraph.Node {
	remaining := make(map[*cosegraph.Node]int, len(tree))
	var leaves []*cosegraph.Node
	for _, n := range tree {
		d := len(m.Neighbors(n))
		remaining[n] = d
		if d <= 1 {
			leaves = append(leaves, n)
		}
	}
	left := len(tree)
	removed := make(map[*cosegraph.Node]bool, len(tree))
	for left > 2 && len(leaves) > 0 {
		var next []*cosegraph.Node
		for _, n := range leaves {
			removed[n] = true
			left--
		}
		for _, n := range leaves {
			for _, nb := range m.Neighbors(n) {
				if removed[nb] {
					continue
				}
				remaining[nb]--
				if remaining[nb] == 1 {
					next = append(next, nb)
				}
			}
		}
		leaves = next
	}
	for _, n := range tree {
		if !removed[n] {
			return n
		}
	}
	return tree[0]
}
