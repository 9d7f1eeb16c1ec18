package coselayout

import (
	"math"

	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/lib/geo"
)

// Env is what force policies see of a run.
type Env struct {
	Manager   *cosegraph.Manager
	Constants *Constants
}

// uniformLeaves reports whether a and b may be treated as equally sized points.
func (env *Env) uniformLeaves(a, b *cosegraph.Node) bool {
	return env.Constants.UniformLeafNodeSizes && env.Manager.IsLeaf(a) && env.Manager.IsLeaf(b)
}

type (
	// IdealLengthPolicy returns the resting length of e.
	IdealLengthPolicy func(env *Env, e *cosegraph.Edge) float64
	// OverlapPolicy reports whether two nodes are to be treated as overlapping.
	OverlapPolicy func(a, b *cosegraph.Node) bool
	// SpringPolicy returns the force e exerts on its source; the target receives the opposite.
	// It is only called for edges whose length was measured without overlap.
	SpringPolicy func(env *Env, e *cosegraph.Edge) (float64, float64)
	// RepulsionPolicy returns the force a exerts on b; a receives the opposite.
	RepulsionPolicy func(env *Env, a, b *cosegraph.Node, overlap bool) (float64, float64)
	// GravityPolicy returns the pull of owner on n.
	GravityPolicy func(env *Env, n *cosegraph.Node, owner *cosegraph.Graph) (float64, float64)
)

// Policies are the force terms a Layout is composed of.
type Policies struct {
	IdealLength IdealLengthPolicy
	Overlap     OverlapPolicy
	Spring      SpringPolicy
	Repulsion   RepulsionPolicy
	Gravity     GravityPolicy
}

func DefaultPolicies() *Policies {
	return &Policies{
		IdealLength: IdealLength,
		Overlap:     Overlap,
		Spring:      Spring,
		Repulsion:   Repulsion,
		Gravity:     Gravity,
	}
}

// withDefaults fills the unset policies of p.
func (p *Policies) withDefaults() *Policies {
	out := DefaultPolicies()
	if p == nil {
		return out
	}
	if p.IdealLength != nil {
		out.IdealLength = p.IdealLength
	}
	if p.Overlap != nil {
		out.Overlap = p.Overlap
	}
	if p.Spring != nil {
		out.Spring = p.Spring
	}
	if p.Repulsion != nil {
		out.Repulsion = p.Repulsion
	}
	if p.Gravity != nil {
		out.Gravity = p.Gravity
	}
	return out
}

// simpleNodeEstimate is the estimated size of a default sized leaf.
var simpleNodeEstimate = math.Sqrt2 * cosegraph.SimpleNodeSize

// IdealLength is the configured ideal edge length, stretched for inter-graph edges by the
// number of nesting levels they cross and, with SmartIdealEdgeLength, by how much larger than a
// simple node their endpoints' ancestors at the common level are.
func IdealLength(env *Env, e *cosegraph.Edge) float64 {
	c := env.Constants
	ideal := c.IdealEdgeLength
	if !e.IsInterGraph() {
		return ideal
	}
	m := env.Manager
	lca, srcInLCA, dstInLCA := m.LCA(e)
	if c.SmartIdealEdgeLength && srcInLCA != nil && dstInLCA != nil {
		ideal += srcInLCA.EstimatedSize() + dstInLCA.EstimatedSize() - 2*simpleNodeEstimate
	}
	src, dst := m.Endpoints(e)
	crossed := m.Depth(src) + m.Depth(dst) - 2*m.GraphDepth(lca)
	return ideal + DEFAULT_EDGE_LENGTH*PER_LEVEL_IDEAL_EDGE_LENGTH_FACTOR*float64(crossed)
}

func Overlap(a, b *cosegraph.Node) bool {
	return a.Intersects(b.Box)
}

// Spring pulls or pushes along the edge proportionally to its deviation from the ideal length.
func Spring(env *Env, e *cosegraph.Edge) (float64, float64) {
	if e.Length == 0 {
		return 0, 0
	}
	f := env.Constants.SpringConstant * (e.Length - e.IdealLength)
	return f * e.LengthX / e.Length, f * e.LengthY / e.Length
}

// Repulsion separates overlapping nodes along one axis and otherwise pushes them apart with an
// inverse square force between their clip points. Both are scaled by how many leaves the nodes
// stand for.
func Repulsion(env *Env, a, b *cosegraph.Node, overlap bool) (float64, float64) {
	na, nb := float64(a.LeafCount()), float64(b.LeafCount())
	if overlap {
		dx, dy := a.SeparationAmount(b.Box, OVERLAP_BUFFER)
		k := na * nb / (na + nb)
		return 2 * k * dx, 2 * k * dy
	}

	var dx, dy float64
	if env.uniformLeaves(a, b) {
		dx, dy = b.CenterX()-a.CenterX(), b.CenterY()-a.CenterY()
	} else {
		ax, ay, bx, by, _ := a.ClipPoints(b.Box)
		dx, dy = bx-ax, by-ay
	}
	dx = geo.AtLeast(dx, MIN_REPULSION_DIST)
	dy = geo.AtLeast(dy, MIN_REPULSION_DIST)
	if dx == 0 && dy == 0 {
		dx = MIN_REPULSION_DIST
	}
	d2 := dx*dx + dy*dy
	d := math.Sqrt(d2)
	f := env.Constants.RepulsionConstant * na * nb / d2
	return f * dx / d, f * dy / d
}

// Gravity pulls n towards the center of its level once n reaches past the level's estimated size
// times the range factor on either axis. Nested levels use the compound constants.
func Gravity(env *Env, n *cosegraph.Node, owner *cosegraph.Graph) (float64, float64) {
	c := env.Constants
	constant, rangeFactor := c.GravityConstant, c.GravityRangeFactor
	if !owner.Parent().IsZero() {
		constant, rangeFactor = c.CompoundGravityConstant, c.CompoundGravityRangeFactor
	}
	dx := n.CenterX() - owner.CenterX()
	dy := n.CenterY() - owner.CenterY()
	reach := owner.EstimatedSize() * rangeFactor
	if math.Abs(dx)+n.Width/2 > reach || math.Abs(dy)+n.Height/2 > reach {
		return -constant * dx, -constant * dy
	}
	return 0, 0
}

// measureEdge updates e's length and projections between its endpoints' clip points, or their
// centers for uniform leaves. Overlapping endpoints leave the edge marked Overlapping.
func measureEdge(env *Env, overlap OverlapPolicy, e *cosegraph.Edge, s, t *cosegraph.Node) {
	e.Overlapping = false
	if env.uniformLeaves(s, t) {
		e.LengthX = t.CenterX() - s.CenterX()
		e.LengthY = t.CenterY() - s.CenterY()
	} else {
		if overlap(s, t) {
			e.Overlapping = true
			return
		}
		sx, sy, tx, ty, _ := s.ClipPoints(t.Box)
		e.LengthX = tx - sx
		e.LengthY = ty - sy
	}
	e.LengthX = geo.AtLeast(e.LengthX, MIN_EDGE_LENGTH)
	e.LengthY = geo.AtLeast(e.LengthY, MIN_EDGE_LENGTH)
	if e.LengthX == 0 && e.LengthY == 0 {
		e.LengthX = MIN_EDGE_LENGTH
	}
	e.Length = math.Sqrt(e.LengthX*e.LengthX + e.LengthY*e.LengthY)
}
