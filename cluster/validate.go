package cluster

import (
	"errors"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("name")
	})

	return v
}

// validate checks the resolved configuration against the point set and
// returns the first violated constraint. It reads every input once, never
// mutates anything and performs no distance computation.
//
// Complexity: O(n + k) plus the struct-tag checks.
func (c *config) validate(coords [][]float64, weights []float64, k int) error {
	n := len(coords)
	if n == 0 {
		return invalid("coords", "no points")
	}
	var i int
	for i = 0; i < n; i++ {
		if len(coords[i]) != 2 {
			return invalid("coords", "row %d has %d columns, want 2", i, len(coords[i]))
		}
		if !finite(coords[i][0]) || !finite(coords[i][1]) {
			return invalid("coords", "row %d is not finite", i)
		}
	}
	if k < 1 {
		return invalid("k", "must be at least 1, got %d", k)
	}
	if n < k {
		return invalid("k", "%d points cannot form %d clusters", n, k)
	}
	if err := checkWeights("weights", weights, n); err != nil {
		return err
	}
	if err := checkWeights("capacity_weights", c.CapacityWeights, n); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		var fes validator.ValidationErrors
		if errors.As(err, &fes) && len(fes) > 0 {
			return fieldError(fes[0])
		}

		return invalid("config", "%v", err)
	}

	if err := c.checkRanges(k); err != nil {
		return err
	}
	if c.Lambda != nil && !finite(*c.Lambda) {
		return invalid("lambda", "must be finite")
	}
	if c.LambdaFixed != nil && !finite(*c.LambdaFixed) {
		return invalid("lambda_fixed", "must be finite")
	}
	if err := c.checkMultiplicity(n, k); err != nil {
		return err
	}
	if err := c.checkFixedCenters(k); err != nil {
		return err
	}
	if err := c.checkParams(); err != nil {
		return err
	}

	if c.Dist != nil && c.PlaceToPoint {
		if r, cl := c.Dist.Dims(); r != n || cl != n {
			return invalid("dist", "matrix is %dx%d, want %dx%d", r, cl, n, n)
		}
	}

	return nil
}

func checkWeights(field string, w []float64, n int) error {
	if len(w) != n {
		return invalid(field, "length %d does not match %d points", len(w), n)
	}
	var maxW float64
	for i, v := range w {
		if !finite(v) || v < 0 {
			return invalid(field, "entry %d must be a finite non-negative number, got %v", i, v)
		}
		maxW = math.Max(maxW, v)
	}
	if maxW <= 0 {
		return invalid(field, "at least one entry must be positive")
	}

	return nil
}

func (c *config) checkRanges(k int) error {
	if c.RangeTable && len(c.Ranges) != k {
		return misconfigured("ranges", "table has %d rows, want k=%d", len(c.Ranges), k)
	}
	for j, r := range c.Ranges {
		switch {
		case !finite(r[0]) || !finite(r[1]):
			return invalid("ranges", "row %d is not finite", j)
		case r[0] > r[1]:
			return invalid("ranges", "row %d has low %v above high %v", j, r[0], r[1])
		case r[1] < 0:
			return invalid("ranges", "row %d has negative high %v", j, r[1])
		}
	}

	return nil
}

func (c *config) checkMultiplicity(n, k int) error {
	if c.Multiplicity == nil {
		return nil
	}
	if len(c.Multiplicity) != n {
		return invalid("multiplicity", "length %d does not match %d points", len(c.Multiplicity), n)
	}
	multi := false
	for i, m := range c.Multiplicity {
		if m > k {
			return invalid("multiplicity", "entry %d is %d, above k=%d", i, m, k)
		}
		multi = multi || m > 1
	}
	if multi && c.outgroup() {
		return misconfigured("multiplicity", "multi-membership points cannot be combined with an outgroup")
	}

	return nil
}

func (c *config) checkFixedCenters(k int) error {
	if len(c.FixedCenters) > k {
		return invalid("fixed_centers", "%d centers for k=%d", len(c.FixedCenters), k)
	}
	for j, fc := range c.FixedCenters {
		if len(fc) != 2 {
			return invalid("fixed_centers", "row %d has %d columns, want 2", j, len(fc))
		}
		if !finite(fc[0]) || !finite(fc[1]) {
			return invalid("fixed_centers", "row %d is not finite", j)
		}
	}

	return nil
}

func (c *config) checkParams() error {
	p := c.Params
	switch {
	case p.MaxIter < 0:
		return invalid("solver_params", "max_iter must be non-negative, got %d", p.MaxIter)
	case p.LPMaxVars < 0:
		return invalid("solver_params", "lp_max_vars must be non-negative, got %d", p.LPMaxVars)
	case p.ImprovePasses < 0:
		return invalid("solver_params", "improve_passes must be non-negative, got %d", p.ImprovePasses)
	case !finite(p.Tol) || p.Tol < 0:
		return invalid("solver_params", "tol must be a finite non-negative number, got %v", p.Tol)
	case !finite(p.LPTol) || p.LPTol < 0:
		return invalid("solver_params", "lp_tol must be a finite non-negative number, got %v", p.LPTol)
	case p.Method > 1:
		return invalid("solver_params", "unknown method %v", p.Method)
	}

	return nil
}

// fieldError turns a struct-tag failure into a ValidationError.
func fieldError(e validator.FieldError) *ValidationError {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return invalid(field, "is required")
	case "min", "gte":
		return invalid(field, "must be at least %s, got %v", e.Param(), e.Value())
	case "lte", "max":
		return invalid(field, "must be at most %s, got %v", e.Param(), e.Value())
	default:
		return invalid(field, "fails %q", e.Tag())
	}
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
