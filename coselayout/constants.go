package coselayout

const (
	DEFAULT_EDGE_LENGTH = 50.

	DEFAULT_SPRING_STRENGTH                 = 0.45
	DEFAULT_REPULSION_STRENGTH              = 4500.
	DEFAULT_GRAVITY_STRENGTH                = 0.4
	DEFAULT_COMPOUND_GRAVITY_STRENGTH       = 1.0
	DEFAULT_GRAVITY_RANGE_FACTOR            = 3.8
	DEFAULT_COMPOUND_GRAVITY_RANGE_FACTOR   = 1.5
	DEFAULT_DISPLACEMENT_THRESHOLD_PER_NODE = 3.0 * DEFAULT_EDGE_LENGTH / 100

	MIN_REPULSION_DIST = 5.
	MIN_EDGE_LENGTH    = 1.

	MAX_NODE_DISPLACEMENT             = 300.
	MAX_NODE_DISPLACEMENT_INCREMENTAL = 100.
	COOLING_FACTOR                    = 1.0
	COOLING_FACTOR_INCREMENTAL        = 0.8

	CONVERGENCE_CHECK_PERIOD      = 100
	GRID_CALCULATION_CHECK_PERIOD = 10
	MAX_ITERATIONS                = 2500
	MIN_ITERATIONS_PER_NODE       = 5

	// stop when total displacement changes by less than this between checks late in a run
	OSCILLATION_TOLERANCE = 2.

	PER_LEVEL_IDEAL_EDGE_LENGTH_FACTOR = 0.1

	// extra push when separating overlapping nodes
	OVERLAP_BUFFER = DEFAULT_EDGE_LENGTH / 2

	WORLD_CENTER_X               = 1200.
	WORLD_CENTER_Y               = 900.
	INITIAL_WORLD_BOUNDARY       = 1000.
	DEFAULT_RADIAL_SEPARATION    = DEFAULT_EDGE_LENGTH
	DEFAULT_COMPONENT_SEPARATION = 60.

	DEFAULT_ANIMATION_PERIOD = 50
)
