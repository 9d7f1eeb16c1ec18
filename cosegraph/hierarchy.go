package cosegraph

import (
	"math"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CalcInclusionTreeDepths assigns every node the nesting depth of its owning graph. Nodes of
// the root graph are at depth 0.
func (m *Manager) CalcInclusionTreeDepths() {
	root := m.Root()
	if root == nil {
		m.depthEpoch = m.epoch
		return
	}
	root.depth = 0
	queue := []*Graph{root}
	for len(queue) > 0 {
		g := queue[0]
		queue = queue[1:]
		for _, id := range g.nodes {
			n := m.nodes.get(id.handle)
			n.depth = g.depth
			if c := m.graphs.get(n.child.handle); c != nil {
				c.depth = g.depth + 1
				queue = append(queue, c)
			}
		}
	}
	m.depthEpoch = m.epoch
}

func (m *Manager) ensureDepths() {
	if m.depthEpoch != m.epoch {
		m.CalcInclusionTreeDepths()
	}
}

// Depth returns n's inclusion tree depth, recomputing the depths if the structure changed.
func (m *Manager) Depth(n *Node) int {
	m.ensureDepths()
	return n.depth
}

// GraphDepth returns the depth shared by every node of g.
func (m *Manager) GraphDepth(g *Graph) int {
	m.ensureDepths()
	return g.depth
}

// CalcLowestCommonAncestors records, for every edge, the lowest graph containing both endpoints
// and the ancestor of each endpoint that lives in that graph. For intra-level edges these are
// the owner and the endpoints themselves.
func (m *Manager) CalcLowestCommonAncestors() {
	for _, e := range m.AllEdges() {
		s, t := m.Endpoints(e)
		if !e.interGraph {
			e.lca = s.owner
			e.sourceInLCA = s.ID
			e.targetInLCA = t.ID
			continue
		}
		e.lca, e.sourceInLCA, e.targetInLCA = m.lowestCommonAncestor(s, t)
	}
	m.lcaEpoch = m.epoch
}

func (m *Manager) lowestCommonAncestor(s, t *Node) (GraphID, NodeID, NodeID) {
	reps := make(map[GraphID]NodeID)
	for n := s; n != nil; n = m.nodes.get(m.graphs.get(n.owner.handle).parent.handle) {
		reps[n.owner] = n.ID
	}
	for n := t; n != nil; n = m.nodes.get(m.graphs.get(n.owner.handle).parent.handle) {
		if rep, ok := reps[n.owner]; ok {
			return n.owner, rep, n.ID
		}
	}
	return m.root, NodeID{}, NodeID{}
}

// LCA returns e's lowest common ancestor graph and the representatives of its endpoints there.
func (m *Manager) LCA(e *Edge) (*Graph, *Node, *Node) {
	if m.lcaEpoch != m.epoch {
		m.CalcLowestCommonAncestors()
	}
	return m.graphs.get(e.lca.handle), m.nodes.get(e.sourceInLCA.handle), m.nodes.get(e.targetInLCA.handle)
}

// LCAOf returns the lowest graph whose subtree holds both a and b.
func (m *Manager) LCAOf(a, b *Node) *Graph {
	if a.owner == b.owner {
		return m.graphs.get(a.owner.handle)
	}
	g, _, _ := m.lowestCommonAncestor(a, b)
	return m.graphs.get(g.handle)
}

// UpdateConnected recomputes whether g's nodes form a single component over g's own edges.
// Inter-graph edges are ignored. An empty level counts as connected.
func (m *Manager) UpdateConnected(g *Graph) bool {
	if len(g.nodes) == 0 {
		g.connected = true
		return true
	}
	index := make(map[NodeID]int64, len(g.nodes))
	ug := simple.NewUndirectedGraph()
	for i, id := range g.nodes {
		index[id] = int64(i)
		ug.AddNode(simple.Node(i))
	}
	for _, id := range g.edges {
		e := m.edges.get(id.handle)
		from, to := index[e.source], index[e.target]
		if from == to {
			continue
		}
		ug.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}
	g.connected = len(topo.ConnectedComponents(ug)) == 1
	return g.connected
}

// NodesToApplyGravitation returns the nodes of every level that is not internally connected.
// The set is cached until the next structural change.
func (m *Manager) NodesToApplyGravitation() []*Node {
	if m.gravityEpoch == m.epoch {
		return m.gravityNodes
	}
	var nodes []*Node
	for _, g := range m.Graphs() {
		if !m.UpdateConnected(g) {
			nodes = append(nodes, m.GraphNodes(g)...)
		}
	}
	m.gravityNodes = nodes
	m.gravityEpoch = m.epoch
	return nodes
}

// CalcEstimatedSizes fills the estimated size of every node and graph, bottom-up. A leaf
// estimates to its diagonal, a compound to its child graph, and a graph to the sum of its
// nodes' estimates divided by the square root of their count.
func (m *Manager) CalcEstimatedSizes() {
	if root := m.Root(); root != nil {
		m.calcGraphEstimatedSize(root)
	}
}

func (m *Manager) calcGraphEstimatedSize(g *Graph) float64 {
	sum := 0.
	for _, id := range g.nodes {
		n := m.nodes.get(id.handle)
		sum += m.calcNodeEstimatedSize(n)
	}
	if sum == 0 {
		g.estimatedSize = EmptyCompoundNodeSize
	} else {
		g.estimatedSize = sum / math.Sqrt(float64(len(g.nodes)))
	}
	return g.estimatedSize
}

func (m *Manager) calcNodeEstimatedSize(n *Node) float64 {
	c := m.graphs.get(n.child.handle)
	switch {
	case c == nil:
		n.estimatedSize = n.Diagonal()
	case len(c.nodes) == 0:
		n.estimatedSize = EmptyCompoundNodeSize
	default:
		n.estimatedSize = m.calcGraphEstimatedSize(c)
	}
	return n.estimatedSize
}

// CalcLeafCounts records how many leaves every node stands for: 1 for a leaf, the total of its
// children for a compound.
func (m *Manager) CalcLeafCounts() {
	if root := m.Root(); root != nil {
		m.calcGraphLeafCount(root)
	}
}

func (m *Manager) calcGraphLeafCount(g *Graph) int {
	total := 0
	for _, id := range g.nodes {
		n := m.nodes.get(id.handle)
		c := m.graphs.get(n.child.handle)
		if c == nil || len(c.nodes) == 0 {
			n.leafCount = 1
		} else {
			n.leafCount = m.calcGraphLeafCount(c)
		}
		total += n.leafCount
	}
	return total
}
