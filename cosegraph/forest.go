package cosegraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// FlatForest returns the tree components of the graph if it is a single flat level whose edges
// form a forest, and nil otherwise. Self-loops and parallel edges make it not a forest.
// Components are ordered by their first node, nodes by their order in the root graph.
func (m *Manager) FlatForest() [][]NodeID {
	root := m.Root()
	if root == nil || !m.IsFlat() || len(root.nodes) == 0 {
		return nil
	}

	index := make(map[NodeID]int64, len(root.nodes))
	ug := simple.NewUndirectedGraph()
	for i, id := range root.nodes {
		index[id] = int64(i)
		ug.AddNode(simple.Node(i))
	}
	for _, id := range root.edges {
		e := m.edges.get(id.handle)
		from, to := index[e.source], index[e.target]
		if from == to {
			return nil
		}
		ug.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	components := topo.ConnectedComponents(ug)
	componentOf := make([]int, len(root.nodes))
	forest := make([][]NodeID, len(components))
	for i, c := range components {
		idx := make([]int, 0, len(c))
		for _, n := range c {
			idx = append(idx, int(n.ID()))
		}
		sort.Ints(idx)
		for _, j := range idx {
			componentOf[j] = i
			forest[i] = append(forest[i], root.nodes[j])
		}
	}

	edgeCounts := make([]int, len(components))
	for _, id := range root.edges {
		e := m.edges.get(id.handle)
		edgeCounts[componentOf[index[e.source]]]++
	}
	for i, tree := range forest {
		if edgeCounts[i] != len(tree)-1 {
			return nil
		}
	}

	sort.Slice(forest, func(i, j int) bool {
		return index[forest[i][0]] < index[forest[j][0]]
	})
	return forest
}
