// Package coselayout is a compound spring embedder: it positions the nodes of a
// cosegraph.Manager by simulating springs along edges, repulsion between siblings and gravity
// towards the center of each nesting level until the layout settles.
package coselayout

import (
	"context"
	"fmt"

	"cdr.dev/slog"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/lib/log"
)

// Result reports how a run ended. Reaching the iteration cap is not an error: State is
// MaxIterations and the positions are the best found.
type Result struct {
	State      State    `json:"state"`
	Converged  bool     `json:"converged"`
	Iterations int      `json:"iterations"`
	Levels     int      `json:"levels"`
	Strategy   Strategy `json:"strategy"`
}

// Layout is a spring embedder composed from options and force policies.
type Layout struct {
	opts     Opts
	pol      *Policies
	strategy Strategy
	state    State
}

// New validates opts and composes a layout from them and pol. Nil opts select DefaultOpts,
// nil policies the default force terms.
func New(opts *Opts, pol *Policies) (*Layout, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	l := &Layout{
		opts:     *opts,
		pol:      pol.withDefaults(),
		strategy: Classic,
		state:    NotStarted,
	}
	if opts.MultiLevelScaling && !opts.Incremental {
		l.strategy = MultiLevel
	}
	return l, nil
}

func (l *Layout) Strategy() Strategy {
	return l.strategy
}

// State is the phase the layout is in. It is Done after a run.
func (l *Layout) State() State {
	return l.state
}

func DefaultLayout(ctx context.Context, m *cosegraph.Manager) (*Result, error) {
	return Run(ctx, m, nil)
}

// Run lays out m with opts and the default policies.
func Run(ctx context.Context, m *cosegraph.Manager, opts *Opts) (_ *Result, err error) {
	defer xdefer.Errorf(&err, "failed to cose layout")

	l, err := New(opts, nil)
	if err != nil {
		return nil, err
	}
	return l.Run(ctx, m)
}

// Run moves the nodes of m in place and, with CreateBendsAsNeeded, sets the bend points of
// self-loops and parallel edges. m must not change while the run is in progress.
func (l *Layout) Run(ctx context.Context, m *cosegraph.Manager) (_ *Result, err error) {
	defer xdefer.Errorf(&err, "failed to run %v layout", l.strategy)

	if m.Root() == nil {
		return nil, fmt.Errorf("%w: manager has no root graph", cosegraph.ErrStructural)
	}
	l.state = Initializing
	res := &Result{
		Strategy: l.strategy,
		Levels:   1,
	}

	var split *cosegraph.BendSplit
	if l.opts.CreateBendsAsNeeded {
		split, err = m.SplitBends()
		if err != nil {
			return nil, err
		}
	}

	if res.Strategy == MultiLevel && !m.IsFlat() {
		log.Warn(ctx, "multilevel scaling only applies to graphs without nesting, using classic layout")
		res.Strategy = Classic
	}

	log.Debug(ctx, "starting cose layout",
		slog.F("strategy", res.Strategy),
		slog.F("nodes", len(m.AllNodes())),
		slog.F("edges", len(m.AllEdges())),
		slog.F("quality", l.opts.Quality),
	)

	switch res.Strategy {
	case MultiLevel:
		err = l.runMultiLevel(ctx, m, res)
	default:
		err = l.runClassic(ctx, m, res)
	}
	if err != nil {
		return nil, err
	}

	if split != nil {
		if err := split.Restore(); err != nil {
			return nil, err
		}
		m.UpdateBounds()
	}
	res.Converged = res.State == Converged
	l.state = Done

	log.Debug(ctx, "finished cose layout",
		slog.F("state", res.State),
		slog.F("iterations", res.Iterations),
		slog.F("levels", res.Levels),
	)
	return res, nil
}

func (l *Layout) runClassic(ctx context.Context, m *cosegraph.Manager, res *Result) error {
	if !l.opts.Incremental {
		place(m, l.opts.Seed)
	}
	e := newEmbedder(ctx, m, &l.opts, l.pol, 0, l.opts.Incremental)
	l.state = Iterating
	res.State = e.iterate()
	res.Iterations = e.iteration
	return nil
}
