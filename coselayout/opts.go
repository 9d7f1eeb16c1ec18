package coselayout

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/multierr"
)

type Quality int

const (
	QualityDefault Quality = iota
	QualityDraft
	QualityProof
)

func (q Quality) String() string {
	switch q {
	case QualityDraft:
		return "draft"
	case QualityProof:
		return "proof"
	default:
		return "default"
	}
}

func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(s) {
	case "draft":
		return QualityDraft, nil
	case "", "default":
		return QualityDefault, nil
	case "proof":
		return QualityProof, nil
	}
	return QualityDefault, fmt.Errorf("unknown layout quality %q, expected one of draft, default, proof", s)
}

func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func (q *Quality) UnmarshalText(b []byte) error {
	v, err := ParseQuality(string(b))
	if err != nil {
		return err
	}
	*q = v
	return nil
}

// Frame is passed to Opts.Animate while a layout is in progress.
type Frame struct {
	Level             int
	Iteration         int
	CoolingFactor     float64
	TotalDisplacement float64
}

// Opts configures a layout run. The strength and range options are sliders from 0 to 100 where
// 50 selects the default physical constant, 0 a tenth of it and 100 ten times it.
type Opts struct {
	IdealEdgeLength         float64 `json:"idealEdgeLength" toml:"ideal_edge_length"`
	SpringStrength          float64 `json:"springStrength" toml:"spring_strength"`
	RepulsionStrength       float64 `json:"repulsionStrength" toml:"repulsion_strength"`
	GravityStrength         float64 `json:"gravityStrength" toml:"gravity_strength"`
	GravityRange            float64 `json:"gravityRange" toml:"gravity_range"`
	CompoundGravityStrength float64 `json:"compoundGravityStrength" toml:"compound_gravity_strength"`
	CompoundGravityRange    float64 `json:"compoundGravityRange" toml:"compound_gravity_range"`

	SmartIdealEdgeLength bool `json:"smartIdealEdgeLength" toml:"smart_ideal_edge_length"`
	SmartRepulsionRange  bool `json:"smartRepulsionRange" toml:"smart_repulsion_range"`
	MultiLevelScaling    bool `json:"multiLevelScaling" toml:"multi_level_scaling"`
	UniformLeafNodeSizes bool `json:"uniformLeafNodeSizes" toml:"uniform_leaf_node_sizes"`
	Incremental          bool `json:"incremental" toml:"incremental"`
	CreateBendsAsNeeded  bool `json:"createBendsAsNeeded" toml:"create_bends_as_needed"`

	Quality Quality `json:"quality" toml:"quality"`
	Seed    int64   `json:"seed" toml:"seed"`

	// Animate, if set, is called every AnimationPeriod iterations. The period shrinks as the
	// layout cools down.
	AnimationPeriod int         `json:"animationPeriod" toml:"animation_period"`
	Animate         func(Frame) `json:"-" toml:"-"`
}

var DefaultOpts = Opts{
	IdealEdgeLength:         DEFAULT_EDGE_LENGTH,
	SpringStrength:          50,
	RepulsionStrength:       50,
	GravityStrength:         50,
	GravityRange:            50,
	CompoundGravityStrength: 50,
	CompoundGravityRange:    50,
	SmartIdealEdgeLength:    true,
	SmartRepulsionRange:     true,
	Seed:                    1,
	AnimationPeriod:         DEFAULT_ANIMATION_PERIOD,
}

func (opts *Opts) Validate() error {
	var err error
	if !(opts.IdealEdgeLength > 0) || math.IsInf(opts.IdealEdgeLength, 1) {
		err = multierr.Append(err, fmt.Errorf("ideal edge length must be a positive number, got %v", opts.IdealEdgeLength))
	}
	sliders := []struct {
		name  string
		value float64
	}{
		{"spring strength", opts.SpringStrength},
		{"repulsion strength", opts.RepulsionStrength},
		{"gravity strength", opts.GravityStrength},
		{"gravity range", opts.GravityRange},
		{"compound gravity strength", opts.CompoundGravityStrength},
		{"compound gravity range", opts.CompoundGravityRange},
	}
	for _, s := range sliders {
		if !(s.value >= 0 && s.value <= 100) {
			err = multierr.Append(err, fmt.Errorf("%s must be between 0 and 100, got %v", s.name, s.value))
		}
	}
	if opts.Quality < QualityDefault || opts.Quality > QualityProof {
		err = multierr.Append(err, fmt.Errorf("unknown layout quality %d", opts.Quality))
	}
	if opts.AnimationPeriod < 0 {
		err = multierr.Append(err, fmt.Errorf("animation period must not be negative, got %d", opts.AnimationPeriod))
	}
	return err
}

// Constants are the physical parameters a run uses, derived from Opts.
type Constants struct {
	IdealEdgeLength            float64
	SpringConstant             float64
	RepulsionConstant          float64
	GravityConstant            float64
	GravityRangeFactor         float64
	CompoundGravityConstant    float64
	CompoundGravityRangeFactor float64

	SmartIdealEdgeLength bool
	UniformLeafNodeSizes bool

	DisplacementThresholdPerNode float64
	MaxIterations                int
}

func (opts *Opts) Constants() *Constants {
	c := &Constants{
		IdealEdgeLength:              opts.IdealEdgeLength,
		SpringConstant:               transform(opts.SpringStrength, DEFAULT_SPRING_STRENGTH),
		RepulsionConstant:            transform(opts.RepulsionStrength, DEFAULT_REPULSION_STRENGTH),
		GravityConstant:              transform(opts.GravityStrength, DEFAULT_GRAVITY_STRENGTH),
		GravityRangeFactor:           transform(opts.GravityRange, DEFAULT_GRAVITY_RANGE_FACTOR),
		CompoundGravityConstant:      transform(opts.CompoundGravityStrength, DEFAULT_COMPOUND_GRAVITY_STRENGTH),
		CompoundGravityRangeFactor:   transform(opts.CompoundGravityRange, DEFAULT_COMPOUND_GRAVITY_RANGE_FACTOR),
		SmartIdealEdgeLength:         opts.SmartIdealEdgeLength,
		UniformLeafNodeSizes:         opts.UniformLeafNodeSizes,
		DisplacementThresholdPerNode: DEFAULT_DISPLACEMENT_THRESHOLD_PER_NODE,
		MaxIterations:                MAX_ITERATIONS,
	}
	switch opts.Quality {
	case QualityDraft:
		c.DisplacementThresholdPerNode += 0.3
		c.MaxIterations = int(float64(c.MaxIterations) * 0.8)
	case QualityProof:
		c.DisplacementThresholdPerNode -= 0.3
		c.MaxIterations = int(float64(c.MaxIterations) * 1.2)
	}
	return c
}

// transform maps a 0-100 slider onto the range from a tenth to ten times defaultValue,
// linearly on each side of 50.
func transform(value, defaultValue float64) float64 {
	if value <= 50 {
		minValue := defaultValue / 10
		return defaultValue - (defaultValue-minValue)/50*(50-value)
	}
	maxValue := defaultValue * 10
	return defaultValue + (maxValue-defaultValue)/50*(value-50)
}
