package coselayout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/lib/log"
)

func manager(t *testing.T, centers ...[2]float64) (*cosegraph.Manager, []*cosegraph.Node) {
	m := cosegraph.NewManager()
	root, err := m.AddRoot(nil)
	require.Nil(t, err)
	var nodes []*cosegraph.Node
	for _, c := range centers {
		id := m.NewNode(nil)
		require.Nil(t, m.AddNode(id, root))
		n, _ := m.Node(id)
		n.SetCenter(c[0], c[1])
		nodes = append(nodes, n)
	}
	m.UpdateBounds()
	return m, nodes
}

func TestOverlappingNodesSeparateInOneStep(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	for _, grid := range []bool{true, false} {
		m, nodes := manager(t, [2]float64{20, 20}, [2]float64{30, 20})
		require.True(t, nodes[0].Intersects(nodes[1].Box))

		opts := DefaultOpts
		opts.SmartRepulsionRange = grid
		e := newEmbedder(ctx, m, &opts, DefaultPolicies(), 0, false)
		e.iteration = 1
		e.step()
		assert.False(t, nodes[0].Intersects(nodes[1].Box), "grid %v", grid)
		assert.Less(t, nodes[0].CenterX(), nodes[1].CenterX())
	}
}

func TestRepulsionIsInverseSquare(t *testing.T) {
	t.Parallel()

	m, nodes := manager(t, [2]float64{0, 0}, [2]float64{140, 0})
	env := &Env{Manager: m, Constants: DefaultOpts.Constants()}
	m.CalcLeafCounts()

	// clip points are 100 apart
	fx, fy := Repulsion(env, nodes[0], nodes[1], false)
	assert.InDelta(t, DEFAULT_REPULSION_STRENGTH/100/100, fx, 1e-9)
	assert.Equal(t, 0., fy)

	// floored at the minimum distance
	nodes[1].SetCenter(41, 0)
	fx, _ = Repulsion(env, nodes[0], nodes[1], false)
	assert.InDelta(t, DEFAULT_REPULSION_STRENGTH/MIN_REPULSION_DIST/MIN_REPULSION_DIST, fx, 1e-9)
}

func TestSpringForce(t *testing.T) {
	t.Parallel()

	m, nodes := manager(t, [2]float64{0, 0}, [2]float64{140, 0})
	require.Nil(t, m.AddEdge(m.NewEdge(nil), nodes[0].ID, nodes[1].ID))
	e := m.AllEdges()[0]
	e.IdealLength = 50
	env := &Env{Manager: m, Constants: DefaultOpts.Constants()}

	measureEdge(env, Overlap, e, nodes[0], nodes[1])
	assert.False(t, e.Overlapping)
	assert.Equal(t, 100., e.Length)
	fx, fy := Spring(env, e)
	assert.InDelta(t, DEFAULT_SPRING_STRENGTH*50, fx, 1e-9)
	assert.Equal(t, 0., fy)

	nodes[1].SetCenter(10, 10)
	measureEdge(env, Overlap, e, nodes[0], nodes[1])
	assert.True(t, e.Overlapping)

	// uniform leaves measure between centers and never overlap
	env.Constants.UniformLeafNodeSizes = true
	measureEdge(env, Overlap, e, nodes[0], nodes[1])
	assert.False(t, e.Overlapping)
	assert.InDelta(t, 10*1.4142135623730951, e.Length, 1e-9)

	// coincident centers get a minimal length
	nodes[1].SetCenter(0, 0)
	measureEdge(env, Overlap, e, nodes[0], nodes[1])
	assert.Equal(t, MIN_EDGE_LENGTH, e.Length)
}

func TestGravityDeadZone(t *testing.T) {
	t.Parallel()

	m, nodes := manager(t, [2]float64{0, 0}, [2]float64{2000, 0}, [2]float64{1000, 0})
	m.CalcEstimatedSizes()
	env := &Env{Manager: m, Constants: DefaultOpts.Constants()}
	root := m.Root()
	require.Equal(t, 1000., root.CenterX())

	fx, fy := Gravity(env, nodes[2], root)
	assert.Equal(t, 0., fx)
	assert.Equal(t, 0., fy)

	fx, fy = Gravity(env, nodes[0], root)
	assert.InDelta(t, DEFAULT_GRAVITY_STRENGTH*1000, fx, 1e-9)
	assert.Equal(t, 0., fy)
	fx, _ = Gravity(env, nodes[1], root)
	assert.Less(t, fx, 0.)
}

func TestCompoundGravity(t *testing.T) {
	t.Parallel()

	m := cosegraph.NewManager()
	root, err := m.AddRoot(nil)
	require.Nil(t, err)
	c := m.NewNode(nil)
	require.Nil(t, m.AddNode(c, root))
	cg := m.NewGraph(nil)
	require.Nil(t, m.AddChildGraph(cg, c))
	var nodes []*cosegraph.Node
	for _, x := range []float64{0, 200, 400} {
		id := m.NewNode(nil)
		require.Nil(t, m.AddNode(id, cg))
		n, _ := m.Node(id)
		n.SetCenter(x, 0)
		nodes = append(nodes, n)
	}
	m.UpdateBounds()
	m.CalcEstimatedSizes()
	env := &Env{Manager: m, Constants: DefaultOpts.Constants()}
	owner, _ := m.Graph(cg)
	require.Equal(t, 200., owner.CenterX())

	// 200 away from the center: outside the compound range but inside the root range.
	reach := nodes[0].Width/2 + 200
	require.Greater(t, reach, owner.EstimatedSize()*DEFAULT_COMPOUND_GRAVITY_RANGE_FACTOR)
	require.Less(t, reach, owner.EstimatedSize()*DEFAULT_GRAVITY_RANGE_FACTOR)

	fx, fy := Gravity(env, nodes[0], owner)
	assert.InDelta(t, DEFAULT_COMPOUND_GRAVITY_STRENGTH*200, fx, 1e-9)
	assert.Equal(t, 0., fy)
	fx, _ = Gravity(env, nodes[2], owner)
	assert.InDelta(t, -DEFAULT_COMPOUND_GRAVITY_STRENGTH*200, fx, 1e-9)
	fx, fy = Gravity(env, nodes[1], owner)
	assert.Equal(t, 0., fx)
	assert.Equal(t, 0., fy)
}

func TestIdealLength(t *testing.T) {
	t.Parallel()

	m := cosegraph.NewManager()
	root, err := m.AddRoot(nil)
	require.Nil(t, err)
	a, c, f := m.NewNode(nil), m.NewNode(nil), m.NewNode(nil)
	require.Nil(t, m.AddNode(a, root))
	require.Nil(t, m.AddNode(c, root))
	cg := m.NewGraph(nil)
	require.Nil(t, m.AddChildGraph(cg, c))
	d, e := m.NewNode(nil), m.NewNode(nil)
	require.Nil(t, m.AddNode(d, cg))
	require.Nil(t, m.AddNode(e, cg))
	eg := m.NewGraph(nil)
	require.Nil(t, m.AddChildGraph(eg, e))
	require.Nil(t, m.AddNode(f, eg))

	intra := m.NewEdge(nil)
	require.Nil(t, m.AddEdge(intra, a, c))
	inter := m.NewEdge(nil)
	require.Nil(t, m.AddEdge(inter, a, f))
	m.CalcEstimatedSizes()

	opts := DefaultOpts
	env := &Env{Manager: m, Constants: opts.Constants()}
	ie, _ := m.Edge(intra)
	assert.Equal(t, DEFAULT_EDGE_LENGTH, IdealLength(env, ie))

	xe, _ := m.Edge(inter)
	cn, _ := m.Node(c)
	levels := DEFAULT_EDGE_LENGTH * PER_LEVEL_IDEAL_EDGE_LENGTH_FACTOR * 2
	assert.InDelta(t, DEFAULT_EDGE_LENGTH+cn.EstimatedSize()-simpleNodeEstimate+levels, IdealLength(env, xe), 1e-9)

	env.Constants.SmartIdealEdgeLength = false
	assert.InDelta(t, DEFAULT_EDGE_LENGTH+levels, IdealLength(env, xe), 1e-9)
}

func TestSliderTransform(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		value float64
		exp   float64
	}{
		{name: "min", value: 0, exp: DEFAULT_SPRING_STRENGTH / 10},
		{name: "quarter", value: 25, exp: 0.2475},
		{name: "default", value: 50, exp: DEFAULT_SPRING_STRENGTH},
		{name: "three_quarters", value: 75, exp: 2.475},
		{name: "max", value: 100, exp: DEFAULT_SPRING_STRENGTH * 10},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultOpts
			opts.SpringStrength = tc.value
			assert.InDelta(t, tc.exp, opts.Constants().SpringConstant, 1e-9)
		})
	}
}

func TestQualityConstants(t *testing.T) {
	t.Parallel()

	opts := DefaultOpts
	c := opts.Constants()
	assert.Equal(t, MAX_ITERATIONS, c.MaxIterations)
	assert.InDelta(t, 1.5, c.DisplacementThresholdPerNode, 1e-9)

	opts.Quality = QualityDraft
	c = opts.Constants()
	assert.Equal(t, 2000, c.MaxIterations)
	assert.InDelta(t, 1.8, c.DisplacementThresholdPerNode, 1e-9)

	opts.Quality = QualityProof
	c = opts.Constants()
	assert.Equal(t, 3000, c.MaxIterations)
	assert.InDelta(t, 1.2, c.DisplacementThresholdPerNode, 1e-9)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	opts := DefaultOpts
	assert.Nil(t, opts.Validate())

	opts.IdealEdgeLength = 0
	opts.GravityRange = 101
	opts.SpringStrength = -1
	opts.Quality = Quality(9)
	err := opts.Validate()
	assert.Len(t, multierr.Errors(err), 4)

	_, err = New(&opts, nil)
	assert.Error(t, err)
}

func TestParseQuality(t *testing.T) {
	t.Parallel()

	for _, q := range []Quality{QualityDraft, QualityDefault, QualityProof} {
		b, err := q.MarshalText()
		require.Nil(t, err)
		var got Quality
		require.Nil(t, got.UnmarshalText(b))
		assert.Equal(t, q, got)
	}
	_, err := ParseQuality("best")
	assert.Error(t, err)
}

func TestCoolingSchedule(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	m, _ := manager(t, [2]float64{0, 0})
	e := newEmbedder(ctx, m, &DefaultOpts, DefaultPolicies(), 0, false)
	assert.Equal(t, COOLING_FACTOR, e.cooling)
	e.iteration = e.maxIterations / 2
	e.cool()
	assert.InDelta(t, 0.5, e.cooling, 1e-9)
	assert.Equal(t, 36, e.animationPeriod)

	inc := newEmbedder(ctx, m, &DefaultOpts, DefaultPolicies(), 0, true)
	assert.Equal(t, COOLING_FACTOR_INCREMENTAL, inc.cooling)
	assert.Equal(t, MAX_NODE_DISPLACEMENT_INCREMENTAL, inc.maxDisplacement)

	// oscillation is only considered late in the run
	e.totalDisplacement, e.oldTotalDisplacement = 100, 100
	e.iteration = 100
	assert.False(t, e.isConverged())
	e.iteration = e.maxIterations/3 + 1
	assert.True(t, e.isConverged())
}
