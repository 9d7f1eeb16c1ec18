package coselayout

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/lib/log"
)

// runMultiLevel solves the coarsest version of m from scratch, then projects each solution onto
// the next finer level and refines it incrementally, down to m itself.
func (l *Layout) runMultiLevel(ctx context.Context, m *cosegraph.Manager, res *Result) error {
	levels, err := m.CoarsenHierarchy()
	if err != nil {
		return err
	}
	res.Levels = len(levels)
	log.Debug(ctx, "coarsened graph", slog.F("levels", len(levels)))

	for level := len(levels) - 1; level >= 0; level-- {
		lm := levels[level]
		coarsest := level == len(levels)-1
		if coarsest {
			place(lm, l.opts.Seed)
		}
		l.state = Initializing
		e := newEmbedder(ctx, lm, &l.opts, l.pol, level, !coarsest)
		l.state = Iterating
		res.State = e.iterate()
		res.Iterations += e.iteration
		if level > 0 {
			uncoarsen(lm, l.opts.IdealEdgeLength)
		}
	}
	return nil
}

// uncoarsen moves the predecessors of every node of coarse in its finer manager to the node's
// position, the second predecessor offset by idealEdgeLength on both axes.
func uncoarsen(coarse *cosegraph.Manager, idealEdgeLength float64) {
	finer := coarse.Finer
	for _, n := range coarse.AllNodes() {
		if p1, ok := finer.Node(n.Pred1); ok {
			p1.TopLeft.X, p1.TopLeft.Y = n.Left(), n.Top()
		}
		if p2, ok := finer.Node(n.Pred2); ok {
			p2.TopLeft.X, p2.TopLeft.Y = n.Left()+idealEdgeLength, n.Top()+idealEdgeLength
		}
	}
	finer.UpdateBounds()
}
