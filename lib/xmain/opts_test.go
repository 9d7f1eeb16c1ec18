package xmain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oss.terrastruct.com/xos"
)

func TestOptsEnvFallback(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		env      []string
		args     []string
		expNodes int64
		expKind  string
		expDebug bool
	}{
		{
			name:     "defaults",
			expNodes: 30,
			expKind:  "random",
		},
		{
			name:     "env",
			env:      []string{"TEST_NODES=12", "TEST_KIND=tree", "TEST_DEBUG=1"},
			expNodes: 12,
			expKind:  "tree",
			expDebug: true,
		},
		{
			name:     "flags_take_precedence",
			env:      []string{"TEST_NODES=12", "TEST_DEBUG=true"},
			args:     []string{"--nodes=7", "-k", "grid", "--debug=false"},
			expNodes: 7,
			expKind:  "grid",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			o := NewOpts(xos.NewEnv(tc.env), nil, tc.args)
			nodes, err := o.Int64("TEST_NODES", "nodes", "n", 30, "number of nodes")
			require.Nil(t, err)
			kind := o.String("TEST_KIND", "kind", "k", "random", "graph kind")
			debug, err := o.Bool("TEST_DEBUG", "debug", "d", false, "print debug logs")
			require.Nil(t, err)
			require.Nil(t, o.Parse())

			assert.Equal(t, tc.expNodes, *nodes)
			assert.Equal(t, tc.expKind, *kind)
			assert.Equal(t, tc.expDebug, *debug)
		})
	}
}

func TestOptsInvalidEnv(t *testing.T) {
	t.Parallel()

	o := NewOpts(xos.NewEnv([]string{"TEST_NODES=many", "TEST_DEBUG=yes"}), nil, nil)
	_, err := o.Int64("TEST_NODES", "nodes", "n", 30, "number of nodes")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), `Found "many"`)
	}
	_, err = o.Bool("TEST_DEBUG", "debug", "d", false, "print debug logs")
	assert.Error(t, err)
}

func TestOptsHelp(t *testing.T) {
	t.Parallel()

	o := NewOpts(xos.NewEnv(nil), nil, nil)
	o.String("TEST_KIND", "kind", "k", "random", "the kind of graph to generate. One of path, cycle, tree, grid, random or nested, each built from the same seed.")
	_, err := o.Bool("", "version", "v", false, "print the version")
	require.Nil(t, err)

	help := o.Help()
	assert.Contains(t, help, "--kind")
	assert.Contains(t, help, "--version")
	assert.Contains(t, help, "- $TEST_KIND  the kind of graph")
	_, envHelp, ok := strings.Cut(help, "environment variables")
	require.True(t, ok)
	lines := strings.Split(envHelp, "\n")[1:]
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), helpWidth, line)
	}
}
