package main

import (
	"fmt"

	"oss.terrastruct.com/cose/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `Usage:
  %s [--kind=random] [--nodes=30] [--seed=1] [--config=opts.toml] [out.json]

%[1]s generates a compound graph, lays it out with the CoSE spring embedder and writes
the result and the node and edge geometry as JSON to out.json.
Use - or leave out out.json to write to stdout.

Flags:
%s

Layout options:
  The --config file may set any of the following keys. Strengths and ranges are
  sliders from 0 to 100 where 50 is the default.

  ideal_edge_length = 50.0
  spring_strength = 50.0
  repulsion_strength = 50.0
  gravity_strength = 50.0
  gravity_range = 50.0
  compound_gravity_strength = 50.0
  compound_gravity_range = 50.0
  smart_ideal_edge_length = true
  smart_repulsion_range = true
  multi_level_scaling = false
  uniform_leaf_node_sizes = false
  incremental = false
  create_bends_as_needed = false
  quality = "default"
  animation_period = 50

$COSE_TIMEOUT overrides the number of seconds the layout may run for.
`, ms.Name, ms.Opts.Help())
}
