// Package cosegraph is the compound graph model the CoSE layout runs on.
//
// A Manager owns every nesting level (Graph) of one compound graph together with the nodes and
// edges in them. Nodes, edges and graphs are addressed by generation-checked handles; using a
// handle after the object it names was removed, or against another Manager, fails with
// ErrStructural instead of touching unrelated data.
package cosegraph

import (
	"errors"
	"fmt"

	"oss.terrastruct.com/cose/lib/geo"
)

const (
	// SimpleNodeSize is the width and height of a freshly created node.
	SimpleNodeSize = 40.
	// EmptyCompoundNodeSize is the estimated size of a compound node without children.
	EmptyCompoundNodeSize = 40.
	// DefaultGraphMargin is the padding between a nesting level's nodes and the compound node around them.
	DefaultGraphMargin = 15.
)

// ErrStructural is returned by every operation that would break the hierarchy: stale or foreign
// handles, a second root, a node owning two child graphs, adding an already attached object.
var ErrStructural = errors.New("structural violation")

func structuralf(msg string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrStructural, fmt.Sprintf(msg, v...))
}

type Node struct {
	ID      NodeID
	Payload interface{}

	*geo.Box

	owner GraphID
	child GraphID
	edges []EdgeID

	depth         int
	estimatedSize float64
	leafCount     int

	// DisplacementX and DisplacementY hold the movement applied in the last layout iteration.
	DisplacementX float64
	DisplacementY float64

	// Pred1 and Pred2 are set on nodes of a coarsened manager and name the nodes of the finer
	// manager the surrogate stands for. Pred2 is zero when only one node was carried over.
	Pred1  NodeID
	Pred2  NodeID
	weight int

	seq     int
	matched bool
	next    NodeID
}

func (n *Node) Owner() GraphID {
	return n.owner
}

func (n *Node) Child() GraphID {
	return n.child
}

func (n *Node) IsCompound() bool {
	return !n.child.IsZero()
}

// Edges returns the handles of the edges incident to n. The slice must not be modified.
func (n *Node) Edges() []EdgeID {
	return n.edges
}

// EstimatedSize is the size estimate computed by CalcEstimatedSizes.
func (n *Node) EstimatedSize() float64 {
	return n.estimatedSize
}

// LeafCount is the number of leaf nodes nested in n, 1 for leaves. Computed by CalcLeafCounts.
func (n *Node) LeafCount() int {
	if n.leafCount == 0 {
		return 1
	}
	return n.leafCount
}

// Seq is n's index in the Manager's AllNodes view.
func (n *Node) Seq() int {
	return n.seq
}

func (n *Node) attached() bool {
	return !n.owner.IsZero()
}

type Edge struct {
	ID      EdgeID
	Payload interface{}

	source NodeID
	target NodeID

	IdealLength float64
	Length      float64
	LengthX     float64
	LengthY     float64
	// Overlapping is set when the end rectangles intersect and the edge exerts no spring force.
	Overlapping bool

	Bends geo.Points

	attached    bool
	interGraph  bool
	lca         GraphID
	sourceInLCA NodeID
	targetInLCA NodeID
	seq         int
}

func (e *Edge) Source() NodeID {
	return e.source
}

func (e *Edge) Target() NodeID {
	return e.target
}

// IsInterGraph reports whether the endpoints are owned by different nesting levels.
func (e *Edge) IsInterGraph() bool {
	return e.interGraph
}

func (e *Edge) OtherEnd(n NodeID) NodeID {
	if e.source == n {
		return e.target
	}
	return e.source
}

func (e *Edge) Seq() int {
	return e.seq
}

type Graph struct {
	ID      GraphID
	Payload interface{}

	// Margin pads the bounds of the level's nodes.
	Margin float64

	parent NodeID
	nodes  []NodeID
	edges  []EdgeID

	attached  bool
	connected bool
	depth     int

	left, top, right, bottom float64

	estimatedSize float64
}

// Parent is the compound node the graph is nested in; zero for the root.
func (g *Graph) Parent() NodeID {
	return g.parent
}

// Nodes returns the handles of the level's nodes in insertion order. The slice must not be modified.
func (g *Graph) Nodes() []NodeID {
	return g.nodes
}

// Edges returns the handles of the edges with both ends at this level. The slice must not be modified.
func (g *Graph) Edges() []EdgeID {
	return g.edges
}

// IsConnected is the result of the last UpdateConnected call for g.
func (g *Graph) IsConnected() bool {
	return g.connected
}

func (g *Graph) EstimatedSize() float64 {
	return g.estimatedSize
}

// Bounds is the box computed by the last UpdateBounds, margin included.
func (g *Graph) Bounds() *geo.Box {
	return geo.NewBox(geo.NewPoint(g.left, g.top), g.right-g.left, g.bottom-g.top)
}

func (g *Graph) CenterX() float64 {
	return (g.left + g.right) / 2
}

func (g *Graph) CenterY() float64 {
	return (g.top + g.bottom) / 2
}

type Manager struct {
	tag uint32

	nodes  arena[Node]
	edges  arena[Edge]
	graphs arena[Graph]

	root       GraphID
	graphList  []GraphID
	interEdges []EdgeID

	allNodes []*Node
	allEdges []*Edge

	epoch        uint64
	depthEpoch   uint64
	lcaEpoch     uint64
	gravityEpoch uint64
	gravityNodes []*Node

	// Finer is the manager this one was coarsened from.
	Finer *Manager
}

func NewManager() *Manager {
	tag := nextManagerTag()
	return &Manager{
		tag:    tag,
		nodes:  newArena[Node](tag),
		edges:  newArena[Edge](tag),
		graphs: newArena[Graph](tag),
		epoch:  1,
	}
}

func (m *Manager) invalidate() {
	m.epoch++
	m.allNodes = nil
	m.allEdges = nil
}

// NewNode creates a detached node of the default size.
func (m *Manager) NewNode(payload interface{}) NodeID {
	n := &Node{
		Payload: payload,
		Box:     geo.NewBox(geo.NewPoint(0, 0), SimpleNodeSize, SimpleNodeSize),
		weight:  1,
	}
	n.ID = NodeID{m.nodes.alloc(n)}
	return n.ID
}

// NewEdge creates a detached edge.
func (m *Manager) NewEdge(payload interface{}) EdgeID {
	e := &Edge{
		Payload: payload,
	}
	e.ID = EdgeID{m.edges.alloc(e)}
	return e.ID
}

// NewGraph creates a detached nesting level, to be attached with AddRoot semantics or AddChildGraph.
func (m *Manager) NewGraph(payload interface{}) GraphID {
	g := &Graph{
		Payload: payload,
		Margin:  DefaultGraphMargin,
	}
	g.ID = GraphID{m.graphs.alloc(g)}
	return g.ID
}

func (m *Manager) Node(id NodeID) (*Node, bool) {
	n := m.nodes.get(id.handle)
	return n, n != nil
}

func (m *Manager) Edge(id EdgeID) (*Edge, bool) {
	e := m.edges.get(id.handle)
	return e, e != nil
}

func (m *Manager) Graph(id GraphID) (*Graph, bool) {
	g := m.graphs.get(id.handle)
	return g, g != nil
}

// Root returns the root graph, or nil if none was added.
func (m *Manager) Root() *Graph {
	return m.graphs.get(m.root.handle)
}

// Endpoints resolves an attached edge's source and target.
func (m *Manager) Endpoints(e *Edge) (*Node, *Node) {
	return m.nodes.get(e.source.handle), m.nodes.get(e.target.handle)
}

// Owner returns the graph that owns n.
func (m *Manager) Owner(n *Node) *Graph {
	return m.graphs.get(n.owner.handle)
}

// ChildGraph returns n's nested graph, or nil for non-compound nodes.
func (m *Manager) ChildGraph(n *Node) *Graph {
	return m.graphs.get(n.child.handle)
}

// GraphNodes resolves the nodes of g.
func (m *Manager) GraphNodes(g *Graph) []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, id := range g.nodes {
		out = append(out, m.nodes.get(id.handle))
	}
	return out
}

// Neighbors returns the other ends of n's incident edges in incidence order, self-loops
// contributing n itself.
func (m *Manager) Neighbors(n *Node) []*Node {
	out := make([]*Node, 0, len(n.edges))
	for _, id := range n.edges {
		e := m.edges.get(id.handle)
		out = append(out, m.nodes.get(e.OtherEnd(n.ID).handle))
	}
	return out
}

// IsLeaf reports whether n has no nested nodes.
func (m *Manager) IsLeaf(n *Node) bool {
	c := m.graphs.get(n.child.handle)
	return c == nil || len(c.nodes) == 0
}

// IsFlat reports whether the manager holds a single nesting level.
func (m *Manager) IsFlat() bool {
	return len(m.graphList) == 1
}

// AddRoot creates and attaches the unique root graph.
func (m *Manager) AddRoot(payload interface{}) (GraphID, error) {
	if !m.root.IsZero() {
		return GraphID{}, structuralf("root graph already exists")
	}
	id := m.NewGraph(payload)
	g := m.graphs.get(id.handle)
	g.attached = true
	m.root = id
	m.graphList = append(m.graphList, id)
	m.invalidate()
	return id, nil
}

// AddChildGraph nests the detached graph gid under parent.
func (m *Manager) AddChildGraph(gid GraphID, parent NodeID) error {
	g := m.graphs.get(gid.handle)
	if g == nil {
		return structuralf("graph %v is not managed", gid)
	}
	if g.attached {
		return structuralf("graph %v is already attached", gid)
	}
	p := m.nodes.get(parent.handle)
	if p == nil || !p.attached() {
		return structuralf("parent node %v is not in a managed graph", parent)
	}
	if !p.child.IsZero() {
		return structuralf("node %v already owns child graph %v", parent, p.child)
	}
	g.parent = parent
	g.attached = true
	p.child = gid
	m.graphList = append(m.graphList, gid)
	m.invalidate()
	return nil
}

// AddNode inserts the detached node nid into gid.
func (m *Manager) AddNode(nid NodeID, gid GraphID) error {
	n := m.nodes.get(nid.handle)
	if n == nil {
		return structuralf("node %v is not managed", nid)
	}
	if n.attached() {
		return structuralf("node %v is already owned by graph %v", nid, n.owner)
	}
	g := m.graphs.get(gid.handle)
	if g == nil || !g.attached {
		return structuralf("graph %v is not attached to this manager", gid)
	}
	if n.child == gid {
		return structuralf("node %v cannot be added to its own child graph", nid)
	}
	n.owner = gid
	g.nodes = append(g.nodes, nid)
	m.invalidate()
	return nil
}

// AddEdge connects src and dst with the detached edge eid. Endpoints at different levels make
// an inter-graph edge.
func (m *Manager) AddEdge(eid EdgeID, src, dst NodeID) error {
	e := m.edges.get(eid.handle)
	if e == nil {
		return structuralf("edge %v is not managed", eid)
	}
	if e.attached {
		return structuralf("edge %v is already attached", eid)
	}
	s := m.nodes.get(src.handle)
	if s == nil || !s.attached() {
		return structuralf("source %v is not in a managed graph", src)
	}
	t := m.nodes.get(dst.handle)
	if t == nil || !t.attached() {
		return structuralf("target %v is not in a managed graph", dst)
	}
	e.source = src
	e.target = dst
	m.attachEdge(e, s, t)
	return nil
}

func (m *Manager) attachEdge(e *Edge, s, t *Node) {
	e.attached = true
	e.interGraph = s.owner != t.owner
	if e.interGraph {
		m.interEdges = append(m.interEdges, e.ID)
	} else {
		g := m.graphs.get(s.owner.handle)
		g.edges = append(g.edges, e.ID)
	}
	s.edges = append(s.edges, e.ID)
	if t != s {
		t.edges = append(t.edges, e.ID)
	}
	m.invalidate()
}

// RemoveEdge detaches and destroys eid.
func (m *Manager) RemoveEdge(eid EdgeID) error {
	e := m.edges.get(eid.handle)
	if e == nil || !e.attached {
		return structuralf("edge %v is not attached to this manager", eid)
	}
	m.detachEdge(e)
	m.edges.release(eid.handle)
	return nil
}

func (m *Manager) detachEdge(e *Edge) {
	s, t := m.Endpoints(e)
	if e.interGraph {
		m.interEdges = removeID(m.interEdges, e.ID)
	} else {
		g := m.graphs.get(s.owner.handle)
		g.edges = removeID(g.edges, e.ID)
	}
	s.edges = removeID(s.edges, e.ID)
	if t != s {
		t.edges = removeID(t.edges, e.ID)
	}
	e.attached = false
	e.interGraph = false
	e.lca = GraphID{}
	e.sourceInLCA = NodeID{}
	e.targetInLCA = NodeID{}
	m.invalidate()
}

// RemoveNode destroys nid together with its incident edges and, for compound nodes, the
// whole nested subtree.
func (m *Manager) RemoveNode(nid NodeID) error {
	n := m.nodes.get(nid.handle)
	if n == nil || !n.attached() {
		return structuralf("node %v is not attached to this manager", nid)
	}
	if !n.child.IsZero() {
		if err := m.RemoveGraph(n.child); err != nil {
			return err
		}
	}
	for len(n.edges) > 0 {
		if err := m.RemoveEdge(n.edges[0]); err != nil {
			return err
		}
	}
	g := m.graphs.get(n.owner.handle)
	g.nodes = removeID(g.nodes, nid)
	n.owner = GraphID{}
	m.nodes.release(nid.handle)
	m.invalidate()
	return nil
}

// RemoveGraph destroys gid with everything nested in it. Removing the root empties the manager.
func (m *Manager) RemoveGraph(gid GraphID) error {
	g := m.graphs.get(gid.handle)
	if g == nil || !g.attached {
		return structuralf("graph %v is not attached to this manager", gid)
	}
	for len(g.nodes) > 0 {
		if err := m.RemoveNode(g.nodes[len(g.nodes)-1]); err != nil {
			return err
		}
	}
	if p := m.nodes.get(g.parent.handle); p != nil {
		p.child = GraphID{}
	}
	if gid == m.root {
		m.root = GraphID{}
	}
	m.graphList = removeID(m.graphList, gid)
	m.graphs.release(gid.handle)
	m.invalidate()
	return nil
}

// ResetAllNodes drops the flattened node view and every derived hierarchy fact.
// Call it after editing the structure behind the manager's back.
func (m *Manager) ResetAllNodes() {
	m.invalidate()
}

// ResetAllEdges drops the flattened edge view and every derived hierarchy fact.
func (m *Manager) ResetAllEdges() {
	m.invalidate()
}

// Graphs returns every attached nesting level, root first, in attachment order.
func (m *Manager) Graphs() []*Graph {
	out := make([]*Graph, 0, len(m.graphList))
	for _, id := range m.graphList {
		out = append(out, m.graphs.get(id.handle))
	}
	return out
}

// AllNodes returns every attached node, level by level in attachment order. The view is
// rebuilt after any structural change; Node.Seq is the node's index in it.
func (m *Manager) AllNodes() []*Node {
	if m.allNodes != nil {
		return m.allNodes
	}
	all := make([]*Node, 0, m.nodes.live)
	for _, gid := range m.graphList {
		g := m.graphs.get(gid.handle)
		for _, nid := range g.nodes {
			n := m.nodes.get(nid.handle)
			n.seq = len(all)
			all = append(all, n)
		}
	}
	m.allNodes = all
	return all
}

// AllEdges returns every attached edge: intra-level edges level by level, then inter-graph edges.
func (m *Manager) AllEdges() []*Edge {
	if m.allEdges != nil {
		return m.allEdges
	}
	all := make([]*Edge, 0, m.edges.live)
	for _, gid := range m.graphList {
		g := m.graphs.get(gid.handle)
		for _, eid := range g.edges {
			e := m.edges.get(eid.handle)
			e.seq = len(all)
			all = append(all, e)
		}
	}
	for _, eid := range m.interEdges {
		e := m.edges.get(eid.handle)
		e.seq = len(all)
		all = append(all, e)
	}
	m.allEdges = all
	return all
}

// MoveNode translates n. Compound nodes pass the movement on to their leaf descendants and
// get their own box refitted by the next UpdateBounds.
func (m *Manager) MoveNode(n *Node, dx, dy float64) {
	c := m.graphs.get(n.child.handle)
	if c == nil || len(c.nodes) == 0 {
		n.MoveBy(dx, dy)
		return
	}
	for _, id := range c.nodes {
		m.MoveNode(m.nodes.get(id.handle), dx, dy)
	}
}

type anyID interface {
	NodeID | EdgeID | GraphID
}

func removeID[T anyID](ids []T, target T) []T {
	for i, v := range ids {
		if v == target {
			copy(ids[i:], ids[i+1:])
			return ids[:len(ids)-1]
		}
	}
	return ids
}
