package solver

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/capclust/metric"
)

var (
	// ErrBadProblem indicates a malformed Problem.
	ErrBadProblem = errors.New("solver: malformed problem")

	// ErrInfeasible indicates that no assignment satisfies the capacity ranges
	// for the sampled start.
	ErrInfeasible = errors.New("solver: capacity ranges cannot be satisfied")

	// ErrLP indicates a numeric failure of the linear program.
	ErrLP = errors.New("solver: linear program failed")

	// ErrUnknownCenterInit is returned by ParseCenterInit.
	ErrUnknownCenterInit = errors.New("solver: unknown center initialisation")

	// ErrUnknownMethod is returned by ParseMethod.
	ErrUnknownMethod = errors.New("solver: unknown assignment method")
)

// Defaults used when Params fields are zero.
const (
	DefaultMaxIter       = 50
	DefaultTol           = 1e-6
	DefaultLPTol         = 1e-10
	DefaultImprovePasses = 50

	// DefaultLPMaxVars caps the n·k assignment variables a hard run sends
	// to the dense simplex before switching to MethodGreedy.
	DefaultLPMaxVars = 1000
)

// Range is a closed capacity interval [Low, High] for one cluster.
type Range struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// CenterInit selects how non-fixed heads are seeded.
type CenterInit uint8

const (
	// InitRandom picks distinct input points uniformly at random.
	InitRandom CenterInit = iota

	// InitKMeansPP picks input points with probability ∝ weight·distance
	// to the nearest already chosen head.
	InitKMeansPP
)

// String implements fmt.Stringer.
func (c CenterInit) String() string {
	switch c {
	case InitRandom:
		return "random"
	case InitKMeansPP:
		return "kmeans++"
	default:
		return fmt.Sprintf("CenterInit(%d)", uint8(c))
	}
}

// ParseCenterInit maps "random" and "kmeans++" (alias "kmpp") to a CenterInit.
func ParseCenterInit(s string) (CenterInit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random":
		return InitRandom, nil
	case "kmeans++", "kmpp":
		return InitKMeansPP, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCenterInit, s)
	}
}

// Method selects the assignment algorithm.
type Method uint8

const (
	// MethodLP solves the LP relaxation with gonum's simplex. The tableau is
	// dense over n·k columns and its cost grows quickly: hard runs above
	// Params.LPMaxVars variables use MethodGreedy instead.
	MethodLP Method = iota

	// MethodGreedy uses regret-ordered greedy assignment. Ignored by
	// fractional runs, which always need the LP.
	MethodGreedy
)

// String implements fmt.Stringer.
func (m Method) String() string {
	switch m {
	case MethodLP:
		return "lp"
	case MethodGreedy:
		return "greedy"
	default:
		return fmt.Sprintf("Method(%d)", uint8(m))
	}
}

// ParseMethod maps "lp" and "greedy" to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lp":
		return MethodLP, nil
	case "greedy":
		return MethodGreedy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Params tunes a single pass. Zero fields take the package defaults.
type Params struct {
	MaxIter       int     // Lloyd iterations cap
	Tol           float64 // relative objective improvement below which iteration stops
	Method        Method  // assignment algorithm for hard runs
	LPTol         float64 // simplex reduced-cost tolerance
	ImprovePasses int     // local-search passes over hard assignments
	LPMaxVars     int     // n·k above which hard LP runs go greedy
}

// DefaultParams returns Params with every default filled in.
func DefaultParams() Params {
	return Params{
		MaxIter:       DefaultMaxIter,
		Tol:           DefaultTol,
		Method:        MethodLP,
		LPTol:         DefaultLPTol,
		ImprovePasses: DefaultImprovePasses,
		LPMaxVars:     DefaultLPMaxVars,
	}
}

// methodFor returns the assignment method of a hard run over vars
// assignment variables.
func (p Params) methodFor(vars int) Method {
	if p.Method == MethodLP && vars > p.LPMaxVars {
		return MethodGreedy
	}

	return p.Method
}

func (p Params) withDefaults() Params {
	if p.MaxIter <= 0 {
		p.MaxIter = DefaultMaxIter
	}
	if p.Tol <= 0 {
		p.Tol = DefaultTol
	}
	if p.LPTol <= 0 {
		p.LPTol = DefaultLPTol
	}
	if p.ImprovePasses <= 0 {
		p.ImprovePasses = DefaultImprovePasses
	}
	if p.LPMaxVars <= 0 {
		p.LPMaxVars = DefaultLPMaxVars
	}

	return p
}

// Problem is the fully prepared, read-only input of one pass.
//
// Ranges always has K rows. Dist, when non-nil, is the n×n point-to-point
// matrix (already normalised); DistScale is the divisor applied to Metric
// values computed analytically against free or fixed heads, so both sources
// share one scale (0 is treated as 1).
type Problem struct {
	Coords          [][]float64
	Weights         []float64
	CapacityWeights []float64
	K               int
	Ranges          []Range

	Dist      *mat.SymDense
	DistScale float64
	Metric    metric.Func

	CenterInit   CenterInit
	PlaceToPoint bool
	Fractional   bool
	FixedCenters [][]float64
	Multiplicity []int

	// Lambda is the outgroup cost per unit of demand weight; LambdaFixed a
	// weight-independent outgroup cost per point. Either one enables the outgroup.
	Lambda      *float64
	LambdaFixed *float64

	Params Params
}

// Start identifies one restart: its 1-based index and RNG seed.
type Start struct {
	Index int
	Seed  int64
}

// Result is the outcome of one pass.
type Result struct {
	// Assignment holds the cluster with the largest share of each point;
	// -1 marks the outgroup.
	Assignment []int `json:"assignment"`

	// Membership is the n×k assignment matrix. Set only for fractional or
	// multi-membership problems.
	Membership [][]float64 `json:"membership,omitempty"`

	// Centers holds the k head coordinates; fixed heads come first, unchanged.
	Centers [][]float64 `json:"centers"`

	// CenterPoints holds the input-point index of each head, -1 if the head
	// is not an input point.
	CenterPoints []int `json:"center_points"`

	// Loads is the capacity load of each cluster in the Problem's units.
	Loads []float64 `json:"loads"`

	Objective  float64 `json:"objective"`
	Iterations int     `json:"iterations"`
}

// Solver runs one pass of capacitated clustering.
// Implementations must not modify the Problem and must be safe for
// concurrent calls with distinct Starts.
type Solver interface {
	Solve(p *Problem, s Start) (*Result, error)
}
