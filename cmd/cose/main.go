package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"oss.terrastruct.com/xjson"

	"oss.terrastruct.com/cose/cosechaos"
	"oss.terrastruct.com/cose/coseexporter"
	"oss.terrastruct.com/cose/cosegraph"
	"oss.terrastruct.com/cose/coselayout"
	"oss.terrastruct.com/cose/cosetarget"
	"oss.terrastruct.com/cose/lib/log"
	"oss.terrastruct.com/cose/lib/xmain"
)

func main() {
	xmain.Main(run)
}

type output struct {
	Result  *coselayout.Result  `json:"result"`
	Diagram *cosetarget.Diagram `json:"diagram"`
}

func run(ctx context.Context, ms *xmain.State) (err error) {
	kindFlag := ms.Opts.String("COSE_KIND", "kind", "k", string(cosechaos.KindRandom), "the kind of graph to generate: "+kindList()+".")
	nodesFlag, err := ms.Opts.Int64("COSE_NODES", "nodes", "n", 30, "the number of nodes to generate.")
	if err != nil {
		return err
	}
	seedFlag, err := ms.Opts.Int64("COSE_SEED", "seed", "s", 1, "the seed of both the generated graph and the initial placement.")
	if err != nil {
		return err
	}
	configFlag := ms.Opts.String("COSE_CONFIG", "config", "c", "", "a TOML file of layout options, see the layout options section below.")
	qualityFlag := ms.Opts.String("COSE_QUALITY", "quality", "q", "", "the layout quality: draft, default or proof. Overrides the config file.")
	multiLevelFlag, err := ms.Opts.Bool("COSE_MULTILEVEL", "multilevel", "m", false, "lay out flat graphs by coarsening them first.")
	if err != nil {
		return err
	}
	bendsFlag, err := ms.Opts.Bool("COSE_BENDS", "bends", "b", false, "create bend points for self-loops and parallel edges.")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		return err
	}
	err = ms.Opts.Parse()
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}
	if err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if len(ms.Opts.Flags.Args()) > 1 {
		return xmain.UsageErrorf("too many arguments passed")
	}
	outputPath := "-"
	if len(ms.Opts.Flags.Args()) == 1 {
		outputPath = ms.Opts.Flags.Arg(0)
	}

	ctx = log.Named(log.Stderr(ctx, *debugFlag), "cose")
	defer log.Sync(ctx)

	kind, err := cosechaos.ParseKind(*kindFlag)
	if err != nil {
		return xmain.UsageErrorf("-k[ind]: %v", err)
	}
	opts, err := loadOpts(ms, *configFlag)
	if err != nil {
		return err
	}
	if *qualityFlag != "" {
		opts.Quality, err = coselayout.ParseQuality(*qualityFlag)
		if err != nil {
			return xmain.UsageErrorf("-q[uality]: %v", err)
		}
	}
	if ms.Opts.Flags.Changed("multilevel") || ms.Env.Getenv("COSE_MULTILEVEL") != "" {
		opts.MultiLevelScaling = *multiLevelFlag
	}
	if ms.Opts.Flags.Changed("bends") || ms.Env.Getenv("COSE_BENDS") != "" {
		opts.CreateBendsAsNeeded = *bendsFlag
	}
	opts.Seed = *seedFlag

	m, err := cosechaos.Gen(kind, int(*nodesFlag), *seedFlag)
	if err != nil {
		return err
	}
	log.Debug(ctx, "generated graph",
		slog.F("kind", kind),
		slog.F("nodes", len(m.AllNodes())),
		slog.F("leaves", len(cosechaos.Leaves(m))),
		slog.F("edges", len(m.AllEdges())),
	)

	ctx, cancel := log.WithTimeout(ctx, time.Minute*2)
	defer cancel()

	start := time.Now()
	res, err := layout(ctx, m, opts)
	if err != nil {
		return err
	}
	ms.Log.Success.Printf("%v layout of %d nodes finished in %v: %v after %d iterations",
		res.Strategy, len(m.AllNodes()), time.Since(start).Round(time.Millisecond), res.State, res.Iterations)

	diagram, err := coseexporter.Export(ctx, m, fmt.Sprintf("%s-%d", kind, *seedFlag))
	if err != nil {
		return err
	}
	b := xjson.MarshalIndent(output{Result: res, Diagram: diagram})
	return ms.WritePath(outputPath, []byte(b+"\n"))
}

// layout runs the layout in the background so that a deadline on ctx ends the command even
// though the layout itself runs to completion. After a timeout error the abandoned run still
// writes to m, so m must not be used again.
func layout(ctx context.Context, m *cosegraph.Manager, opts *coselayout.Opts) (*coselayout.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, timeoutError(err)
	}

	type result struct {
		res *coselayout.Result
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := coselayout.Run(ctx, m, opts)
		done <- result{res, err}
	}()

	select {
	case r := <-done:
		return r.res, r.err
	case <-ctx.Done():
		return nil, timeoutError(ctx.Err())
	}
}

func timeoutError(err error) error {
	return xmain.ExitErrorf(1, "layout did not finish in time: %v", err)
}

// loadOpts decodes the TOML options file at path over coselayout.DefaultOpts.
func loadOpts(ms *xmain.State, path string) (*coselayout.Opts, error) {
	opts := coselayout.DefaultOpts
	if path == "" {
		return &opts, nil
	}
	b, err := ms.ReadPath(path)
	if err != nil {
		return nil, err
	}
	md, err := toml.Decode(string(b), &opts)
	if err != nil {
		return nil, xmain.UsageErrorf("failed to decode %s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		ms.Log.Warn.Printf("ignoring unknown options in %s: %s", path, strings.Join(keys, ", "))
	}
	return &opts, nil
}

func kindList() string {
	names := make([]string, len(cosechaos.Kinds))
	for i, k := range cosechaos.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
