package cosegraph

import (
	"oss.terrastruct.com/cose/lib/geo"
)

const (
	// DummyNodeSize is the width and height of the nodes standing in for bend points.
	DummyNodeSize = 1.
	// selfLoopOffset is how far the initial bends of a self-loop sit outside the node.
	selfLoopOffset = 10.
	// multiEdgeSpacing separates the initial bends of parallel edges.
	multiEdgeSpacing = 20.
)

// BendSplit records edges temporarily replaced by chains of dummy nodes.
type BendSplit struct {
	m     *Manager
	edges []splitEdge
}

type splitEdge struct {
	edge    EdgeID
	dummies []NodeID
}

// Dummies returns every dummy node created by the split.
func (s *BendSplit) Dummies() []NodeID {
	var out []NodeID
	for _, se := range s.edges {
		out = append(out, se.dummies...)
	}
	return out
}

// SplitBends replaces every self-loop with a chain through three dummy nodes and every edge of
// a group of parallel edges with a chain through one, so the simulation can shape them. The
// dummies live in the lowest common ancestor level of the edge's endpoints. The original edges
// are detached, not destroyed; Restore turns the dummies into bend points and reattaches them.
func (m *Manager) SplitBends() (*BendSplit, error) {
	type pair struct{ a, b NodeID }
	groups := make(map[pair][]*Edge)
	var order []pair
	for _, e := range m.AllEdges() {
		p := pair{e.source, e.target}
		if p.b.idx < p.a.idx {
			p.a, p.b = p.b, p.a
		}
		if _, ok := groups[p]; !ok {
			order = append(order, p)
		}
		groups[p] = append(groups[p], e)
	}

	split := &BendSplit{m: m}
	for _, p := range order {
		edges := groups[p]
		a, _ := m.Node(p.a)
		b, _ := m.Node(p.b)
		for i, e := range edges {
			var bends geo.Points
			s, t := m.Endpoints(e)
			switch {
			case s == t:
				bends = selfLoopBends(s)
			case len(edges) > 1:
				bends = geo.Points{multiEdgeBend(a, b, float64(i)-float64(len(edges)-1)/2)}
			default:
				continue
			}
			se, err := m.splitEdge(e, s, t, bends)
			if err != nil {
				return nil, err
			}
			split.edges = append(split.edges, se)
		}
	}
	return split, nil
}

func selfLoopBends(n *Node) geo.Points {
	return geo.Points{
		geo.NewPoint(n.Right()+selfLoopOffset, n.CenterY()),
		geo.NewPoint(n.Right()+selfLoopOffset, n.Bottom()+selfLoopOffset),
		geo.NewPoint(n.CenterX(), n.Bottom()+selfLoopOffset),
	}
}

// multiEdgeBend places a bend on the perpendicular bisector of the segment between the centers,
// shift spacings away from it.
func multiEdgeBend(s, t *Node, shift float64) *geo.Point {
	mid := s.Center().Interpolate(t.Center(), 0.5)
	dx, dy := t.CenterX()-s.CenterX(), t.CenterY()-s.CenterY()
	l := geo.EuclideanDistance(0, 0, dx, dy)
	if l == 0 {
		return geo.NewPoint(mid.X, mid.Y+shift*multiEdgeSpacing)
	}
	return geo.NewPoint(mid.X-dy/l*shift*multiEdgeSpacing, mid.Y+dx/l*shift*multiEdgeSpacing)
}

func (m *Manager) splitEdge(e *Edge, s, t *Node, bends geo.Points) (splitEdge, error) {
	g := m.LCAOf(s, t)
	m.detachEdge(e)

	se := splitEdge{edge: e.ID}
	prev := s.ID
	for _, b := range bends {
		id := m.NewNode(nil)
		d, _ := m.Node(id)
		d.Width, d.Height = DummyNodeSize, DummyNodeSize
		d.SetCenter(b.X, b.Y)
		if err := m.AddNode(id, g.ID); err != nil {
			return se, err
		}
		if err := m.AddEdge(m.NewEdge(nil), prev, id); err != nil {
			return se, err
		}
		se.dummies = append(se.dummies, id)
		prev = id
	}
	if err := m.AddEdge(m.NewEdge(nil), prev, t.ID); err != nil {
		return se, err
	}
	return se, nil
}

// Restore writes the dummy centers into the original edges' bend points, removes the dummies
// and reattaches the original edges.
func (s *BendSplit) Restore() error {
	m := s.m
	for i := len(s.edges) - 1; i >= 0; i-- {
		se := s.edges[i]
		e, ok := m.Edge(se.edge)
		if !ok {
			return structuralf("split edge %v was destroyed", se.edge)
		}
		src, sok := m.Node(e.source)
		dst, dok := m.Node(e.target)
		if !sok || !dok || !src.attached() || !dst.attached() {
			return structuralf("endpoint of split edge %v was removed", se.edge)
		}
		bends := make(geo.Points, 0, len(se.dummies))
		for _, id := range se.dummies {
			d, ok := m.Node(id)
			if !ok {
				return structuralf("bend node %v was removed", id)
			}
			bends = append(bends, d.Center())
		}
		for _, id := range se.dummies {
			if err := m.RemoveNode(id); err != nil {
				return err
			}
		}
		e.Bends = bends
		m.attachEdge(e, src, dst)
	}
	s.edges = nil
	return nil
}
