package cosegraph

import "math"

// UpdateBounds refits every compound node around its children, bottom-up, and records the
// bounds of every level including its margin. An empty nested level takes the box of its parent
// node; an empty root has zero bounds.
func (m *Manager) UpdateBounds() {
	if root := m.Root(); root != nil {
		m.updateGraphBounds(root)
	}
}

func (m *Manager) updateGraphBounds(g *Graph) {
	if len(g.nodes) == 0 {
		if p := m.nodes.get(g.parent.handle); p != nil {
			g.left, g.top, g.right, g.bottom = p.Left(), p.Top(), p.Right(), p.Bottom()
		} else {
			g.left, g.top, g.right, g.bottom = 0, 0, 0, 0
		}
		return
	}

	left, top := math.Inf(1), math.Inf(1)
	right, bottom := math.Inf(-1), math.Inf(-1)
	for _, id := range g.nodes {
		n := m.nodes.get(id.handle)
		if c := m.graphs.get(n.child.handle); c != nil {
			m.updateGraphBounds(c)
		}
		if !m.IsLeaf(n) {
			c := m.graphs.get(n.child.handle)
			n.TopLeft.X = c.left
			n.TopLeft.Y = c.top
			n.Width = c.right - c.left
			n.Height = c.bottom - c.top
		}
		left = math.Min(left, n.Left())
		top = math.Min(top, n.Top())
		right = math.Max(right, n.Right())
		bottom = math.Max(bottom, n.Bottom())
	}
	g.left = left - g.Margin
	g.top = top - g.Margin
	g.right = right + g.Margin
	g.bottom = bottom + g.Margin
}
