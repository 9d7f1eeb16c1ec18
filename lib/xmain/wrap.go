package xmain

import "strings"

// minWrapWidth keeps text readable when the indent leaves little room on the line.
const minWrapWidth = 24

// wrap word-wraps s for a line that starts at column indent so that no line passes column
// width. Continuation lines are indented to line up under the first. Words longer than the
// available room get a line of their own.
func wrap(indent, width int, s string) string {
	room := width - indent
	if room < minWrapWidth {
		room = minWrapWidth
	}

	var b strings.Builder
	col := 0
	for _, word := range strings.Fields(s) {
		switch {
		case col == 0:
		case col+1+len(word) > room:
			b.WriteString("\n")
			b.WriteString(strings.Repeat(" ", indent))
			col = 0
		default:
			b.WriteByte(' ')
			col++
		}
		b.WriteString(word)
		col += len(word)
	}
	return b.String()
}
