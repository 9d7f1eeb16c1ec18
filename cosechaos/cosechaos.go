// Package cosechaos generates seeded compound graphs to run the layout on.
package cosechaos

import (
	"fmt"
	"math"
	mathrand "math/rand"
	"strings"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/lib/go2"
)

type Kind string

const (
	KindPath   Kind = "path"
	KindCycle  Kind = "cycle"
	KindTree   Kind = "tree"
	KindGrid   Kind = "grid"
	KindRandom Kind = "random"
	KindNested Kind = "nested"
)

var Kinds = []Kind{KindPath, KindCycle, KindTree, KindGrid, KindRandom, KindNested}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == strings.ToLower(s) {
			return k, nil
		}
	}
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return "", fmt.Errorf("unknown graph kind %q, expected one of %s", s, strings.Join(names, ", "))
}

const (
	minNodeSize = 20
	maxNodeSize = 80
)

// Gen builds a graph of kind with n nodes. Node and edge payloads are "n<i>" and "e<i>" strings
// in creation order. The same seed always produces the same graph.
func Gen(kind Kind, n int, seed int64) (_ *cosegraph.Manager, err error) {
	defer xdefer.Errorf(&err, "failed to generate %s graph", kind)

	if n < 0 {
		return nil, fmt.Errorf("node count must not be negative, got %d", n)
	}
	gs := &genState{
		rand: mathrand.New(mathrand.NewSource(seed)),
		m:    cosegraph.NewManager(),
	}
	gs.root, err = gs.m.AddRoot(nil)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindPath:
		err = gs.path(n, false)
	case KindCycle:
		err = gs.path(n, true)
	case KindTree:
		err = gs.tree(n)
	case KindGrid:
		err = gs.grid(n)
	case KindRandom:
		err = gs.random(n)
	case KindNested:
		err = gs.nested(n)
	default:
		return nil, fmt.Errorf("unknown graph kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return gs.m, nil
}

type genState struct {
	rand *mathrand.Rand
	m    *cosegraph.Manager
	root cosegraph.GraphID

	nodes      []cosegraph.NodeID
	containers []cosegraph.NodeID
	edges      int
}

func (gs *genState) node(g cosegraph.GraphID) (cosegraph.NodeID, error) {
	id := gs.m.NewNode(fmt.Sprintf("n%d", len(gs.nodes)))
	if err := gs.m.AddNode(id, g); err != nil {
		return cosegraph.NodeID{}, err
	}
	gs.nodes = append(gs.nodes, id)
	return id, nil
}

func (gs *genState) edge(src, dst cosegraph.NodeID) error {
	id := gs.m.NewEdge(fmt.Sprintf("e%d", gs.edges))
	gs.edges++
	return gs.m.AddEdge(id, src, dst)
}

// resize gives the node a random size.
func (gs *genState) resize(id cosegraph.NodeID) {
	n, _ := gs.m.Node(id)
	n.Width = float64(minNodeSize + gs.rand.Intn(maxNodeSize-minNodeSize))
	n.Height = float64(minNodeSize + gs.rand.Intn(maxNodeSize-minNodeSize))
}

func (gs *genState) path(n int, closed bool) error {
	for i := 0; i < n; i++ {
		id, err := gs.node(gs.root)
		if err != nil {
			return err
		}
		if i > 0 {
			if err := gs.edge(gs.nodes[i-1], id); err != nil {
				return err
			}
		}
	}
	if closed && n > 2 {
		return gs.edge(gs.nodes[n-1], gs.nodes[0])
	}
	return nil
}

// tree connects every node to a random earlier one.
func (gs *genState) tree(n int) error {
	for i := 0; i < n; i++ {
		id, err := gs.node(gs.root)
		if err != nil {
			return err
		}
		if i > 0 {
			if err := gs.edge(gs.nodes[gs.rand.Intn(i)], id); err != nil {
				return err
			}
		}
	}
	return nil
}

// grid lays n nodes out row by row in a lattice of ceil(sqrt(n)) columns.
func (gs *genState) grid(n int) error {
	columns := go2.Max(1, int(math.Ceil(math.Sqrt(float64(n)))))
	for i := 0; i < n; i++ {
		id, err := gs.node(gs.root)
		if err != nil {
			return err
		}
		if i%columns != 0 {
			if err := gs.edge(gs.nodes[i-1], id); err != nil {
				return err
			}
		}
		if i >= columns {
			if err := gs.edge(gs.nodes[i-columns], id); err != nil {
				return err
			}
		}
	}
	return nil
}

// random builds a connected flat graph of randomly sized nodes: a random tree plus about n/2
// extra edges. Parallel edges may occur, self-loops do not.
func (gs *genState) random(n int) error {
	if err := gs.tree(n); err != nil {
		return err
	}
	for _, id := range gs.nodes {
		gs.resize(id)
	}
	return gs.extraEdges(n / 2)
}

func (gs *genState) extraEdges(count int) error {
	if len(gs.nodes) < 2 {
		return nil
	}
	for i := 0; i < count; i++ {
		src := gs.nodes[gs.rand.Intn(len(gs.nodes))]
		dst := gs.nodes[gs.rand.Intn(len(gs.nodes))]
		if src == dst || gs.related(src, dst) {
			continue
		}
		if err := gs.edge(src, dst); err != nil {
			return err
		}
	}
	return nil
}

// nested places nodes into randomly chosen containers, turning some of them into containers
// themselves, then connects random pairs across levels.
func (gs *genState) nested(n int) error {
	for i := 0; i < n; i++ {
		g := gs.root
		if gs.roll(40, 60) == 1 {
			// 60% chance of nesting under an existing container.
			if c, ok := gs.randContainer(); ok {
				owner, _ := gs.m.Node(c)
				g = owner.Child()
			}
		}
		id, err := gs.node(g)
		if err != nil {
			return err
		}
		if gs.roll(70, 30) == 1 {
			// 30% chance of becoming a container.
			if err := gs.m.AddChildGraph(gs.m.NewGraph(nil), id); err != nil {
				return err
			}
			gs.containers = append(gs.containers, id)
		} else {
			gs.resize(id)
		}
	}
	return gs.extraEdges(n)
}

func (gs *genState) randContainer() (cosegraph.NodeID, bool) {
	if len(gs.containers) == 0 {
		return cosegraph.NodeID{}, false
	}
	return gs.containers[gs.rand.Intn(len(gs.containers))], true
}

// related reports whether one of a and b contains the other.
func (gs *genState) related(a, b cosegraph.NodeID) bool {
	return gs.contains(a, b) || gs.contains(b, a)
}

func (gs *genState) contains(ancestor, id cosegraph.NodeID) bool {
	for {
		n, _ := gs.m.Node(id)
		g, _ := gs.m.Graph(n.Owner())
		if g.Parent().IsZero() {
			return false
		}
		if g.Parent() == ancestor {
			return true
		}
		id = g.Parent()
	}
}

func (gs *genState) roll(probs ...int) int {
	max := 0
	for _, p := range probs {
		max += p
	}

	n := gs.rand.Intn(max)
	var acc int
	for i, p := range probs {
		if n >= acc && n < acc+p {
			return i
		}
		acc += p
	}

	panic("cosechaos: unreachable")
}

// Leaves returns the ids of the nodes of m without nested nodes.
func Leaves(m *cosegraph.Manager) []cosegraph.NodeID {
	leaves := go2.Filter(m.AllNodes(), m.IsLeaf)
	ids := make([]cosegraph.NodeID, len(leaves))
	for i, n := range leaves {
		ids[i] = n.ID
	}
	return ids
}
