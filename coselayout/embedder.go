package coselayout

import (
	"context"
	"math"

	"cdr.dev/slog"

	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/coselayout/cosegrid"
	"oss.terrastruct.com/cose/lib/geo"
	"oss.terrastruct.com/cose/lib/log"
)

// force accumulates what acts on one node during one iteration.
type force struct {
	springX, springY       float64
	repulsionX, repulsionY float64
	gravityX, gravityY     float64
}

// embedder runs the spring embedder on one manager.
type embedder struct {
	ctx  context.Context
	m    *cosegraph.Manager
	opts *Opts
	pol  *Policies
	env  *Env

	level       int
	incremental bool

	nodes   []*cosegraph.Node
	edges   []*cosegraph.Edge
	gravity []*cosegraph.Node
	acc     []force
	grid    *cosegrid.Grid

	state         State
	iteration     int
	maxIterations int
	threshold     float64

	initialCooling  float64
	cooling         float64
	maxDisplacement float64

	totalDisplacement    float64
	oldTotalDisplacement float64

	animationPeriod int
}

// newEmbedder derives the run parameters and the hierarchy facts the forces depend on.
func newEmbedder(ctx context.Context, m *cosegraph.Manager, opts *Opts, pol *Policies, level int, incremental bool) *embedder {
	c := opts.Constants()
	e := &embedder{
		ctx:             ctx,
		m:               m,
		opts:            opts,
		pol:             pol,
		env:             &Env{Manager: m, Constants: c},
		level:           level,
		incremental:     incremental,
		state:           Initializing,
		initialCooling:  COOLING_FACTOR,
		maxDisplacement: MAX_NODE_DISPLACEMENT,
		animationPeriod: opts.AnimationPeriod,
	}
	if incremental {
		e.initialCooling = COOLING_FACTOR_INCREMENTAL
		e.maxDisplacement = MAX_NODE_DISPLACEMENT_INCREMENTAL
	}
	e.cooling = e.initialCooling

	m.CalcInclusionTreeDepths()
	m.CalcLowestCommonAncestors()
	m.CalcLeafCounts()
	m.CalcEstimatedSizes()
	e.nodes = m.AllNodes()
	e.edges = m.AllEdges()
	e.gravity = m.NodesToApplyGravitation()
	e.acc = make([]force, len(e.nodes))

	for _, edge := range e.edges {
		edge.IdealLength = pol.IdealLength(e.env, edge)
	}

	e.maxIterations = MIN_ITERATIONS_PER_NODE * len(e.nodes)
	if e.maxIterations < c.MaxIterations {
		e.maxIterations = c.MaxIterations
	}
	e.threshold = c.DisplacementThresholdPerNode * float64(len(e.nodes))

	if opts.SmartRepulsionRange {
		e.grid = cosegrid.New(e.repulsionRange())
	}

	log.Debug(ctx, "initialized spring embedder",
		slog.F("level", level),
		slog.F("nodes", len(e.nodes)),
		slog.F("edges", len(e.edges)),
		slog.F("gravity_nodes", len(e.gravity)),
		slog.F("incremental", incremental),
		slog.F("max_iterations", e.maxIterations),
	)
	return e
}

// repulsionRange grows with the coarsening level.
func (e *embedder) repulsionRange() float64 {
	return 2 * float64(e.level+1) * e.env.Constants.IdealEdgeLength
}

// iterate steps the simulation until it converges or the iteration cap is reached.
func (e *embedder) iterate() State {
	e.state = Iterating
	if len(e.nodes) == 0 {
		e.state = Converged
		return e.state
	}
	for {
		e.iteration++
		if e.iteration%CONVERGENCE_CHECK_PERIOD == 0 {
			if e.isConverged() {
				e.state = Converged
				break
			}
			e.cool()
		}
		if e.iteration > e.maxIterations {
			e.iteration = e.maxIterations
			e.state = MaxIterations
			break
		}
		e.step()
	}
	e.m.UpdateBounds()

	log.Debug(e.ctx, "spring embedder finished",
		slog.F("level", e.level),
		slog.F("state", e.state),
		slog.F("iterations", e.iteration),
		slog.F("total_displacement", e.totalDisplacement),
	)
	return e.state
}

func (e *embedder) step() {
	e.totalDisplacement = 0
	for i := range e.acc {
		e.acc[i] = force{}
	}

	e.m.UpdateBounds()
	e.springPass()
	e.repulsionPass()
	e.gravityPass()
	e.integrate()
	e.animate()
}

func (e *embedder) springPass() {
	for _, edge := range e.edges {
		s, t := e.m.Endpoints(edge)
		if s == t {
			continue
		}
		measureEdge(e.env, e.pol.Overlap, edge, s, t)
		if edge.Overlapping {
			continue
		}
		fx, fy := e.pol.Spring(e.env, edge)
		e.acc[s.Seq()].springX += fx
		e.acc[s.Seq()].springY += fy
		e.acc[t.Seq()].springX -= fx
		e.acc[t.Seq()].springY -= fy
	}
}

func (e *embedder) repulsionPass() {
	if e.grid != nil {
		if e.iteration%GRID_CALCULATION_CHECK_PERIOD == 1 {
			e.grid.Rebuild(e.m.Root().Bounds(), e.nodes)
		}
		for i, a := range e.nodes {
			for _, j := range e.grid.Surrounding(i) {
				e.repulse(a, e.nodes[j])
			}
		}
		return
	}
	for _, g := range e.m.Graphs() {
		nodes := e.m.GraphNodes(g)
		for i, a := range nodes {
			for _, b := range nodes[i+1:] {
				e.repulse(a, b)
			}
		}
	}
}

func (e *embedder) repulse(a, b *cosegraph.Node) {
	fx, fy := e.pol.Repulsion(e.env, a, b, e.pol.Overlap(a, b))
	e.acc[a.Seq()].repulsionX -= fx
	e.acc[a.Seq()].repulsionY -= fy
	e.acc[b.Seq()].repulsionX += fx
	e.acc[b.Seq()].repulsionY += fy
}

func (e *embedder) gravityPass() {
	for _, n := range e.gravity {
		fx, fy := e.pol.Gravity(e.env, n, e.m.Owner(n))
		e.acc[n.Seq()].gravityX += fx
		e.acc[n.Seq()].gravityY += fy
	}
}

// integrate turns the accumulated forces into bounded displacements and applies them. Compound
// nodes hand their displacement down to their leaves.
func (e *embedder) integrate() {
	limit := e.cooling * e.maxDisplacement
	for _, n := range e.nodes {
		f := e.acc[n.Seq()]
		leaves := float64(n.LeafCount())
		dx := geo.Clamp(e.cooling*(f.springX+f.repulsionX+f.gravityX)/leaves, limit)
		dy := geo.Clamp(e.cooling*(f.springY+f.repulsionY+f.gravityY)/leaves, limit)
		n.DisplacementX, n.DisplacementY = dx, dy
		e.m.MoveNode(n, dx, dy)
		e.totalDisplacement += math.Abs(dx) + math.Abs(dy)
	}
}

func (e *embedder) animate() {
	if e.opts.Animate == nil || e.animationPeriod <= 0 || e.iteration%e.animationPeriod != 0 {
		return
	}
	e.opts.Animate(Frame{
		Level:             e.level,
		Iteration:         e.iteration,
		CoolingFactor:     e.cooling,
		TotalDisplacement: e.totalDisplacement,
	})
}

// isConverged compares the last iteration's total displacement to the threshold. Late in a run,
// a total that barely changed since the previous check counts as converged too.
func (e *embedder) isConverged() bool {
	oscillating := false
	if e.iteration > e.maxIterations/3 {
		oscillating = math.Abs(e.totalDisplacement-e.oldTotalDisplacement) < OSCILLATION_TOLERANCE
	}
	converged := e.totalDisplacement < e.threshold
	e.oldTotalDisplacement = e.totalDisplacement
	return converged || oscillating
}

// cool decays the cooling factor linearly towards zero at the iteration cap.
func (e *embedder) cool() {
	e.cooling = e.initialCooling * float64(e.maxIterations-e.iteration) / float64(e.maxIterations)
	if e.cooling < 0 {
		e.cooling = 0
	}
	e.animationPeriod = int(math.Ceil(float64(e.opts.AnimationPeriod) * math.Sqrt(e.cooling)))
}
