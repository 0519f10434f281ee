package cluster

import (
	"io"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/capclust/metric"
	"github.com/katalvlaran/capclust/solver"
)

// DefaultRestarts is the number of restarts when WithRestarts is not given.
const DefaultRestarts = 10

// Option sets one raw, caller-supplied setting. Options never fail; invalid
// values are reported by validation as a *ValidationError.
type Option func(*options)

// options holds raw settings as supplied. Pointer fields distinguish "unset"
// from a zero value; defaults are filled in by resolve.
type options struct {
	restarts        *int
	rangePair       *[2]float64
	rangeTable      [][2]float64
	capacityWeights []float64
	metric          metric.Func
	centerInit      *solver.CenterInit
	lambda          *float64
	lambdaFixed     *float64
	fractional      bool
	placeToPoint    *bool
	fixedCenters    [][]float64
	params          *solver.Params
	multiplicity    []int
	dist            mat.Matrix
	printMode       *PrintMode
	reporter        Reporter
	output          io.Writer
	normalization   *bool
	seed            int64
	workers         *int
	solver          solver.Solver
	logger          *zap.Logger
	metrics         Metrics
}

// WithRestarts sets the number of restarts N (default DefaultRestarts).
func WithRestarts(n int) Option { return func(o *options) { o.restarts = &n } }

// WithRange applies one capacity range [low, high] to every cluster.
// The default is [min(weights)/2, sum(weights)].
func WithRange(low, high float64) Option {
	return func(o *options) {
		o.rangePair = &[2]float64{low, high}
		o.rangeTable = nil
	}
}

// WithRanges sets one [low, high] row per cluster; the table must have k rows.
func WithRanges(table [][2]float64) Option {
	return func(o *options) {
		o.rangeTable = append([][2]float64{}, table...)
		o.rangePair = nil
	}
}

// WithCapacityWeights sets the per-point capacity weights (default: weights).
func WithCapacityWeights(cw []float64) Option {
	return func(o *options) { o.capacityWeights = cw }
}

// WithMetric sets the distance metric (default metric.SquaredEuclidean).
func WithMetric(fn metric.Func) Option { return func(o *options) { o.metric = fn } }

// WithCenterInit sets the head initialisation strategy (default random).
func WithCenterInit(ci solver.CenterInit) Option {
	return func(o *options) { o.centerInit = &ci }
}

// WithLambda enables the outgroup with a cost of lambda per unit of demand weight.
func WithLambda(lambda float64) Option { return func(o *options) { o.lambda = &lambda } }

// WithLambdaFixed enables the outgroup with a weight-independent cost per point.
func WithLambdaFixed(lambda float64) Option {
	return func(o *options) { o.lambdaFixed = &lambda }
}

// WithFractional allows points to be split across clusters.
func WithFractional(on bool) Option { return func(o *options) { o.fractional = on } }

// WithPlaceToPoint restricts cluster heads to input points (default true).
func WithPlaceToPoint(on bool) Option { return func(o *options) { o.placeToPoint = &on } }

// WithFixedCenters pins the first len(centers) cluster heads.
func WithFixedCenters(centers [][]float64) Option {
	return func(o *options) { o.fixedCenters = centers }
}

// WithSolverParams tunes the single-pass solver.
func WithSolverParams(p solver.Params) Option { return func(o *options) { o.params = &p } }

// WithMultiplicity sets how many clusters each point belongs to (default 1).
func WithMultiplicity(m []int) Option { return func(o *options) { o.multiplicity = m } }

// WithDistanceMatrix supplies a precomputed n×n distance matrix. It is used
// only when heads are restricted to input points.
func WithDistanceMatrix(m mat.Matrix) Option { return func(o *options) { o.dist = m } }

// WithPrintMode selects the built-in progress reporter (default PrintProgress).
func WithPrintMode(m PrintMode) Option { return func(o *options) { o.printMode = &m } }

// WithReporter installs a custom progress reporter; it takes precedence over
// WithPrintMode.
func WithReporter(r Reporter) Option { return func(o *options) { o.reporter = r } }

// WithOutput sets the writer of the built-in reporters (default os.Stderr).
func WithOutput(w io.Writer) Option { return func(o *options) { o.output = w } }

// WithNormalization toggles rescaling of distances, weights and ranges
// (default true).
func WithNormalization(on bool) Option { return func(o *options) { o.normalization = &on } }

// WithSeed sets the run seed; restart seeds are derived from it. Zero selects
// the fixed default seed.
func WithSeed(seed int64) Option { return func(o *options) { o.seed = seed } }

// WithWorkers sets the number of restarts run concurrently. 0 and 1 run
// restarts sequentially (default).
func WithWorkers(n int) Option { return func(o *options) { o.workers = &n } }

// WithSolver replaces the single-pass solver (default solver.Lloyd).
func WithSolver(s solver.Solver) Option { return func(o *options) { o.solver = s } }

// WithLogger sets the structured logger (default no-op).
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithMetrics installs a metrics hook.
func WithMetrics(m Metrics) Option { return func(o *options) { o.metrics = m } }
