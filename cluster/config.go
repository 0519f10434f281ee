package cluster

import (
	"io"
	"os"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/capclust/metric"
	"github.com/katalvlaran/capclust/solver"
)

// config is the fully resolved configuration of one run. Struct tags are
// checked by validate; everything else is checked by hand. The name tag is
// the field name reported in a ValidationError.
type config struct {
	Restarts   int               `name:"restarts" validate:"min=1"`
	Workers    int               `name:"workers" validate:"min=0"`
	PrintMode  PrintMode         `name:"print_mode" validate:"lte=2"`
	CenterInit solver.CenterInit `name:"center_init" validate:"lte=1"`

	Lambda      *float64 `name:"lambda" validate:"omitempty,gte=0"`
	LambdaFixed *float64 `name:"lambda_fixed" validate:"omitempty,gte=0"`

	Multiplicity []int `name:"multiplicity" validate:"omitempty,dive,min=1"`

	Metric   metric.Func   `name:"metric" validate:"required"`
	Solver   solver.Solver `name:"solver" validate:"required"`
	Reporter Reporter      `name:"reporter" validate:"required"`

	Ranges          [][2]float64  `validate:"-"`
	RangeTable      bool          `validate:"-"`
	CapacityWeights []float64     `validate:"-"`
	FixedCenters    [][]float64   `validate:"-"`
	Dist            mat.Matrix    `validate:"-"`
	Params          solver.Params `validate:"-"`
	Logger          *zap.Logger   `validate:"-"`
	Metrics         Metrics       `validate:"-"`

	Seed          int64
	Fractional    bool
	PlaceToPoint  bool
	Normalization bool
}

// resolve applies opts over the defaults. Defaults that depend on the inputs
// (capacity weights, capacity range) are derived here; resolve itself never
// fails and performs no O(n²) work.
func resolve(weights []float64, k int, opts []Option) *config {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	cfg := &config{
		Restarts:      DefaultRestarts,
		Workers:       1,
		PrintMode:     PrintProgress,
		CenterInit:    solver.InitRandom,
		Lambda:        o.lambda,
		LambdaFixed:   o.lambdaFixed,
		Multiplicity:  o.multiplicity,
		Metric:        o.metric,
		Solver:        o.solver,
		FixedCenters:  o.fixedCenters,
		Dist:          o.dist,
		Params:        solver.DefaultParams(),
		Logger:        o.logger,
		Metrics:       o.metrics,
		Seed:          o.seed,
		Fractional:    o.fractional,
		PlaceToPoint:  true,
		Normalization: true,
	}
	if o.restarts != nil {
		cfg.Restarts = *o.restarts
	}
	if o.workers != nil {
		cfg.Workers = *o.workers
	}
	if o.printMode != nil {
		cfg.PrintMode = *o.printMode
	}
	if o.centerInit != nil {
		cfg.CenterInit = *o.centerInit
	}
	if o.params != nil {
		cfg.Params = *o.params
	}
	if o.placeToPoint != nil {
		cfg.PlaceToPoint = *o.placeToPoint
	}
	if o.normalization != nil {
		cfg.Normalization = *o.normalization
	}
	if cfg.Metric == nil {
		cfg.Metric = metric.Default()
	}
	if cfg.Solver == nil {
		cfg.Solver = solver.Lloyd{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}

	cfg.Reporter = o.reporter
	if cfg.Reporter == nil {
		var w io.Writer = os.Stderr
		if o.output != nil {
			w = o.output
		}
		cfg.Reporter = NewReporter(cfg.PrintMode, w)
	}

	cfg.CapacityWeights = o.capacityWeights
	if cfg.CapacityWeights == nil {
		cfg.CapacityWeights = weights
	}

	switch {
	case o.rangeTable != nil:
		cfg.Ranges, cfg.RangeTable = o.rangeTable, true
	case k > 0:
		pair := defaultRange(weights)
		if o.rangePair != nil {
			pair = *o.rangePair
		}
		cfg.Ranges = make([][2]float64, k)
		for j := range cfg.Ranges {
			cfg.Ranges[j] = pair
		}
	}

	return cfg
}

// defaultRange is [min(w)/2, sum(w)].
func defaultRange(weights []float64) [2]float64 {
	if len(weights) == 0 {
		return [2]float64{}
	}

	return [2]float64{floats.Min(weights) / 2, floats.Sum(weights)}
}

// outgroup reports whether either outgroup cost is configured.
func (c *config) outgroup() bool { return c.Lambda != nil || c.LambdaFixed != nil }
