package cosegraph

import "math"

// Weight is the number of original nodes a coarsened node stands for.
func (n *Node) Weight() int {
	return n.weight
}

// Coarsen contracts the root level into a new manager by greedy matching: every unmatched
// node, in order, is merged with its lightest unmatched neighbour into a surrogate node. Nodes
// without such a neighbour are carried over alone. The surrogates keep handles to the nodes they
// replace in Pred1 and Pred2, and the result's Finer points back at m.
//
// Only flat graphs can be coarsened.
func (m *Manager) Coarsen() (*Manager, error) {
	root := m.Root()
	if root == nil {
		return nil, structuralf("cannot coarsen a manager without root")
	}
	if !m.IsFlat() {
		return nil, structuralf("cannot coarsen a compound graph")
	}

	coarse := NewManager()
	coarse.Finer = m
	croot, err := coarse.AddRoot(root.Payload)
	if err != nil {
		return nil, err
	}

	nodes := m.GraphNodes(root)
	for _, n := range nodes {
		n.matched = false
		n.next = NodeID{}
	}
	for _, n := range nodes {
		if n.matched {
			continue
		}
		var partner *Node
		for _, nb := range m.Neighbors(n) {
			if nb == n || nb.matched {
				continue
			}
			if partner == nil || nb.weight < partner.weight {
				partner = nb
			}
		}

		sid := coarse.NewNode(nil)
		s, _ := coarse.Node(sid)
		s.Pred1 = n.ID
		s.weight = n.weight
		s.Width, s.Height = n.Width, n.Height
		cx, cy := n.CenterX(), n.CenterY()
		n.matched = true
		n.next = sid
		if partner != nil {
			s.Pred2 = partner.ID
			s.weight += partner.weight
			s.Width = math.Max(s.Width, partner.Width)
			s.Height = math.Max(s.Height, partner.Height)
			cx = (cx + partner.CenterX()) / 2
			cy = (cy + partner.CenterY()) / 2
			partner.matched = true
			partner.next = sid
		}
		s.SetCenter(cx, cy)
		if err := coarse.AddNode(sid, croot); err != nil {
			return nil, err
		}
	}

	type pair struct{ a, b NodeID }
	seen := make(map[pair]struct{})
	for _, id := range root.edges {
		e := m.edges.get(id.handle)
		s := m.nodes.get(e.source.handle).next
		t := m.nodes.get(e.target.handle).next
		if s == t {
			continue
		}
		if t.idx < s.idx {
			s, t = t, s
		}
		if _, ok := seen[pair{s, t}]; ok {
			continue
		}
		seen[pair{s, t}] = struct{}{}
		if err := coarse.AddEdge(coarse.NewEdge(nil), s, t); err != nil {
			return nil, err
		}
	}
	return coarse, nil
}

// CoarsenHierarchy coarsens m repeatedly and returns the managers from finest (m itself) to
// coarsest. It stops when a round removes no node or would leave a single node.
func (m *Manager) CoarsenHierarchy() ([]*Manager, error) {
	levels := []*Manager{m}
	cur := m
	for {
		next, err := cur.Coarsen()
		if err != nil {
			return nil, err
		}
		have, got := len(cur.Root().nodes), len(next.Root().nodes)
		if got == have || got <= 1 {
			return levels, nil
		}
		levels = append(levels, next)
		cur = next
	}
}
