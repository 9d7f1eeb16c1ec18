package cosechaos_test

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oss.terrastruct.com/diff"

	"oss.terrastruct.com/cose/cosechaos"
	"oss.terrastruct.com/cose/coseexporter"
	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/coselayout"
	"oss.terrastruct.com/cose/cosetarget"
	"oss.terrastruct.com/cose/lib/geo"
	"oss.terrastruct.com/cose/lib/log"
)

func TestGen(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		kind     cosechaos.Kind
		n        int
		expEdges int
		flat     bool
		forest   bool
	}{
		{kind: cosechaos.KindPath, n: 5, expEdges: 4, flat: true, forest: true},
		{kind: cosechaos.KindCycle, n: 5, expEdges: 5, flat: true},
		{kind: cosechaos.KindCycle, n: 2, expEdges: 1, flat: true, forest: true},
		{kind: cosechaos.KindTree, n: 12, expEdges: 11, flat: true, forest: true},
		{kind: cosechaos.KindGrid, n: 9, expEdges: 12, flat: true},
		{kind: cosechaos.KindGrid, n: 7, expEdges: 8, flat: true},
		{kind: cosechaos.KindRandom, n: 10, expEdges: -1, flat: true},
		{kind: cosechaos.KindNested, n: 20, expEdges: -1},
		{kind: cosechaos.KindPath, n: 0, expEdges: 0, flat: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("%s_%d", tc.kind, tc.n), func(t *testing.T) {
			t.Parallel()

			m, err := cosechaos.Gen(tc.kind, tc.n, 3)
			require.Nil(t, err)
			assert.Len(t, m.AllNodes(), tc.n)
			if tc.expEdges >= 0 {
				assert.Len(t, m.AllEdges(), tc.expEdges)
			}
			if tc.flat {
				assert.True(t, m.IsFlat())
			}
			if tc.forest {
				assert.Len(t, m.FlatForest(), 1)
			}
			for _, e := range m.AllEdges() {
				s, d := m.Endpoints(e)
				assert.NotEqual(t, s.ID, d.ID)
			}
		})
	}
}

func TestGenErrors(t *testing.T) {
	t.Parallel()

	_, err := cosechaos.Gen(cosechaos.KindPath, -1, 1)
	assert.Error(t, err)
	_, err = cosechaos.Gen("spiral", 3, 1)
	assert.Error(t, err)

	k, err := cosechaos.ParseKind("Nested")
	require.Nil(t, err)
	assert.Equal(t, cosechaos.KindNested, k)
	_, err = cosechaos.ParseKind("spiral")
	assert.Error(t, err)
}

func signature(m *cosegraph.Manager) []string {
	var out []string
	for _, n := range m.AllNodes() {
		out = append(out, fmt.Sprintf("%v %vx%v %d", n.Payload, n.Width, n.Height, m.Depth(n)))
	}
	for _, e := range m.AllEdges() {
		s, d := m.Endpoints(e)
		out = append(out, fmt.Sprintf("%v %v->%v", e.Payload, s.Payload, d.Payload))
	}
	return out
}

func TestGenDeterministic(t *testing.T) {
	t.Parallel()

	for _, kind := range []cosechaos.Kind{cosechaos.KindTree, cosechaos.KindRandom, cosechaos.KindNested} {
		m1, err := cosechaos.Gen(kind, 25, 42)
		require.Nil(t, err)
		m2, err := cosechaos.Gen(kind, 25, 42)
		require.Nil(t, err)
		assert.Equal(t, signature(m1), signature(m2), kind)

		m3, err := cosechaos.Gen(kind, 25, 43)
		require.Nil(t, err)
		assert.NotEqual(t, signature(m1), signature(m3), kind)
	}
}

func TestNestedHasLevels(t *testing.T) {
	t.Parallel()

	m, err := cosechaos.Gen(cosechaos.KindNested, 40, 1)
	require.Nil(t, err)
	assert.False(t, m.IsFlat())
	leaves := cosechaos.Leaves(m)
	assert.NotEmpty(t, leaves)
	assert.Less(t, len(leaves), 40)
}

func TestChaosLayout(t *testing.T) {
	t.Parallel()

	for _, kind := range cosechaos.Kinds {
		kind := kind
		for seed := int64(0); seed < 3; seed++ {
			seed := seed
			t.Run(fmt.Sprintf("%s_%d", kind, seed), func(t *testing.T) {
				t.Parallel()
				ctx := log.WithTB(context.Background(), t, nil)

				m, err := cosechaos.Gen(kind, 15, seed)
				require.Nil(t, err)
				opts := coselayout.DefaultOpts
				opts.CreateBendsAsNeeded = true
				opts.MultiLevelScaling = seed%2 == 0
				opts.Quality = coselayout.QualityDraft
				_, err = coselayout.Run(ctx, m, &opts)
				require.Nil(t, err)

				for _, n := range m.AllNodes() {
					assert.False(t, math.IsNaN(n.CenterX()) || math.IsInf(n.CenterX(), 0))
					assert.False(t, math.IsNaN(n.CenterY()) || math.IsInf(n.CenterY(), 0))
				}
				for _, e := range m.AllEdges() {
					for _, p := range e.Bends {
						assert.True(t, p.IsFinite())
					}
				}

				// Path, cycle and grid have the same shape for every seed.
				switch kind {
				case cosechaos.KindPath, cosechaos.KindCycle, cosechaos.KindGrid:
				default:
					return
				}
				if seed != 0 {
					return
				}
				diagram, err := coseexporter.Export(ctx, m, string(kind))
				require.Nil(t, err)
				for i := range diagram.Shapes {
					diagram.Shapes[i].Pos = cosetarget.Point{}
				}
				for i := range diagram.Connections {
					diagram.Connections[i].IdealLength = 0
					diagram.Connections[i].Route = []*geo.Point{}
				}
				err = diff.Testdata(filepath.Join("testdata", "TestChaosLayout", string(kind)), diagram)
				assert.Nil(t, err)
			})
		}
	}
}
