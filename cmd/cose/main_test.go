package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oss.terrastruct.com/xos"

	"oss.terrastruct.com/cose/cosechaos"
	"oss.terrastruct.com/cose/coselayout"
	"oss.terrastruct.com/cose/cosetarget"
	"oss.terrastruct.com/cose/lib/log"
	"oss.terrastruct.com/cose/lib/xmain"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

func TestRun(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		args      []string
		env       []string
		expShapes int
		expConns  int
		expName   string
		expUsage  bool
	}{
		{
			name:      "flags",
			args:      []string{"-k", "path", "-n", "4", "-q", "draft"},
			expShapes: 4,
			expConns:  3,
			expName:   "path-1",
		},
		{
			name:      "env",
			args:      []string{"--seed=3", "-"},
			env:       []string{"COSE_KIND=grid", "COSE_NODES=6", "COSE_QUALITY=draft", "COSE_MULTILEVEL=1"},
			expShapes: 6,
			expConns:  7,
			expName:   "grid-3",
		},
		{
			name:     "unknown_kind",
			args:     []string{"-k", "spiral"},
			expUsage: true,
		},
		{
			name:     "too_many_args",
			args:     []string{"a.json", "b.json"},
			expUsage: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stdout bytes.Buffer
			ms := xmain.NewState("cose", tc.args, xos.NewEnv(tc.env), &bytes.Buffer{}, nopWriteCloser{&stdout}, nopWriteCloser{io.Discard})
			err := run(context.Background(), ms)
			if tc.expUsage {
				var uerr xmain.UsageError
				assert.True(t, errors.As(err, &uerr), "%v", err)
				return
			}
			require.Nil(t, err)

			var out struct {
				Diagram cosetarget.Diagram `json:"diagram"`
			}
			require.Nil(t, json.Unmarshal(stdout.Bytes(), &out))
			assert.Equal(t, tc.expName, out.Diagram.Name)
			assert.Len(t, out.Diagram.Shapes, tc.expShapes)
			assert.Len(t, out.Diagram.Connections, tc.expConns)
		})
	}
}

func TestHelp(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	ms := xmain.NewState("cose", []string{"--help"}, xos.NewEnv(nil), &bytes.Buffer{}, nopWriteCloser{&stdout}, nopWriteCloser{io.Discard})
	require.Nil(t, run(context.Background(), ms))
	assert.Contains(t, stdout.String(), "Usage:")
	assert.Contains(t, stdout.String(), "$COSE_KIND")
	assert.Contains(t, stdout.String(), "compound_gravity_range")
}

func TestLayout(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		canceled bool
	}{
		{name: "finishes"},
		{name: "expired", canceled: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := context.WithCancel(log.WithTB(context.Background(), t, nil))
			defer cancel()
			if tc.canceled {
				cancel()
			}

			m, err := cosechaos.Gen(cosechaos.KindPath, 5, 1)
			require.Nil(t, err)
			opts := coselayout.DefaultOpts
			opts.Quality = coselayout.QualityDraft

			res, err := layout(ctx, m, &opts)
			if !tc.canceled {
				require.Nil(t, err)
				assert.NotNil(t, res)
				return
			}
			assert.Nil(t, res)
			var eerr xmain.ExitError
			require.True(t, errors.As(err, &eerr))
			assert.Equal(t, 1, eerr.Code)
			assert.Contains(t, eerr.Message, "did not finish in time")
		})
	}
}
