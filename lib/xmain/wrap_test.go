package xmain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		indent int
		width  int
		in     string
		exp    string
	}{
		{
			name:   "fits",
			indent: 4,
			width:  80,
			in:     "short usage",
			exp:    "short usage",
		},
		{
			name:   "collapses_whitespace",
			indent: 0,
			width:  80,
			in:     "  a\tb \n c ",
			exp:    "a b c",
		},
		{
			name:   "hanging_indent",
			indent: 4,
			width:  30,
			in:     "the quick brown fox jumps over the lazy dog",
			exp:    "the quick brown fox jumps\n    over the lazy dog",
		},
		{
			name:   "narrow",
			indent: 70,
			width:  80,
			in:     "aaaaaaaaaa bbbbbbbbbb cccccccccc",
			exp:    "aaaaaaaaaa bbbbbbbbbb\n" + strings.Repeat(" ", 70) + "cccccccccc",
		},
		{
			name:   "long_word",
			indent: 0,
			width:  30,
			in:     "a " + strings.Repeat("x", 40) + " b",
			exp:    "a\n" + strings.Repeat("x", 40) + "\nb",
		},
		{
			name: "empty",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, wrap(tc.indent, tc.width, tc.in))
		})
	}
}
