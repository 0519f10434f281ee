package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/capclust/cluster"
	"github.com/katalvlaran/capclust/metric"
	"github.com/katalvlaran/capclust/solver"
)

// runConfig is the YAML run configuration. Pointer fields stay nil when the
// key is absent so the library defaults apply.
type runConfig struct {
	K             int         `yaml:"k"`
	Restarts      *int        `yaml:"restarts"`
	Range         []float64   `yaml:"range"`
	Ranges        [][]float64 `yaml:"ranges"`
	Metric        string      `yaml:"metric"`
	CenterInit    string      `yaml:"center_init"`
	Lambda        *float64    `yaml:"lambda"`
	LambdaFixed   *float64    `yaml:"lambda_fixed"`
	FracMemb      *bool       `yaml:"frac_memb"`
	PlaceToPoint  *bool       `yaml:"place_to_point"`
	Normalization *bool       `yaml:"normalization"`
	FixedCenters  [][]float64 `yaml:"fixed_centers"`
	Multiplicity  []int       `yaml:"multiplicity"`
	PrintMode     string      `yaml:"print_mode"`
	Seed          *int64      `yaml:"seed"`
	Workers       *int        `yaml:"workers"`
	Solver        solverYAML  `yaml:"solver"`
}

type solverYAML struct {
	MaxIter       int     `yaml:"max_iter"`
	Tol           float64 `yaml:"tol"`
	Method        string  `yaml:"method"`
	LPTol         float64 `yaml:"lp_tol"`
	ImprovePasses int     `yaml:"improve_passes"`
	LPMaxVars     int     `yaml:"lp_max_vars"`
}

// typed keys are checked against their YAML tag before decoding so a wrong
// scalar type surfaces as a ValidationError naming the key.
var typedKeys = map[string][]string{
	"frac_memb":      {"!!bool"},
	"place_to_point": {"!!bool"},
	"normalization":  {"!!bool"},
	"k":              {"!!int"},
	"lambda":         {"!!int", "!!float"},
	"lambda_fixed":   {"!!int", "!!float"},
}

func loadConfigFile(path string) (*runConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return loadConfig(f)
}

// loadConfig decodes a run configuration, rejecting unknown keys.
func loadConfig(r io.Reader) (*runConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var root yaml.Node
	if err = yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err = checkTypes(&root); err != nil {
		return nil, err
	}

	var rc runConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&rc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &rc, nil
}

func checkTypes(root *yaml.Node) error {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return &cluster.ValidationError{Field: "config", Reason: "top level must be a mapping", Kind: cluster.ErrValidation}
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i].Value, m.Content[i+1]
		tags, ok := typedKeys[key]
		if !ok || val.ShortTag() == "!!null" {
			continue
		}
		if !hasTag(val, tags) {
			return &cluster.ValidationError{
				Field:  key,
				Reason: fmt.Sprintf("line %d: %q is not a %s", val.Line, val.Value, tags[len(tags)-1][2:]),
				Kind:   cluster.ErrValidation,
			}
		}
	}

	return nil
}

func hasTag(n *yaml.Node, tags []string) bool {
	if n.Kind != yaml.ScalarNode {
		return false
	}
	for _, t := range tags {
		if n.ShortTag() == t {
			return true
		}
	}

	return false
}

// options maps the configuration onto cluster options. Names (metric, center
// init, print mode, method) are resolved here.
func (rc *runConfig) options() ([]cluster.Option, error) {
	var opts []cluster.Option

	if rc.Restarts != nil {
		opts = append(opts, cluster.WithRestarts(*rc.Restarts))
	}
	switch {
	case rc.Ranges != nil:
		table := make([][2]float64, len(rc.Ranges))
		for j, row := range rc.Ranges {
			if len(row) != 2 {
				return nil, &cluster.ValidationError{
					Field:  "ranges",
					Reason: fmt.Sprintf("row %d has %d values, want 2", j, len(row)),
					Kind:   cluster.ErrConfiguration,
				}
			}
			table[j] = [2]float64{row[0], row[1]}
		}
		opts = append(opts, cluster.WithRanges(table))
	case rc.Range != nil:
		if len(rc.Range) != 2 {
			return nil, &cluster.ValidationError{
				Field:  "range",
				Reason: fmt.Sprintf("has %d values, want 2", len(rc.Range)),
				Kind:   cluster.ErrValidation,
			}
		}
		opts = append(opts, cluster.WithRange(rc.Range[0], rc.Range[1]))
	}

	fn, err := metric.ByName(rc.Metric)
	if err != nil {
		return nil, &cluster.ValidationError{Field: "metric", Reason: err.Error(), Kind: cluster.ErrValidation}
	}
	ci, err := solver.ParseCenterInit(rc.CenterInit)
	if err != nil {
		return nil, &cluster.ValidationError{Field: "center_init", Reason: err.Error(), Kind: cluster.ErrValidation}
	}
	method, err := solver.ParseMethod(rc.Solver.Method)
	if err != nil {
		return nil, &cluster.ValidationError{Field: "solver.method", Reason: err.Error(), Kind: cluster.ErrValidation}
	}
	mode, err := cluster.ParsePrintMode(rc.PrintMode)
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		cluster.WithMetric(fn),
		cluster.WithCenterInit(ci),
		cluster.WithPrintMode(mode),
		cluster.WithSolverParams(solver.Params{
			MaxIter:       rc.Solver.MaxIter,
			Tol:           rc.Solver.Tol,
			Method:        method,
			LPTol:         rc.Solver.LPTol,
			ImprovePasses: rc.Solver.ImprovePasses,
			LPMaxVars:     rc.Solver.LPMaxVars,
		}),
	)

	if rc.Lambda != nil {
		opts = append(opts, cluster.WithLambda(*rc.Lambda))
	}
	if rc.LambdaFixed != nil {
		opts = append(opts, cluster.WithLambdaFixed(*rc.LambdaFixed))
	}
	if rc.FracMemb != nil {
		opts = append(opts, cluster.WithFractional(*rc.FracMemb))
	}
	if rc.PlaceToPoint != nil {
		opts = append(opts, cluster.WithPlaceToPoint(*rc.PlaceToPoint))
	}
	if rc.Normalization != nil {
		opts = append(opts, cluster.WithNormalization(*rc.Normalization))
	}
	if rc.FixedCenters != nil {
		opts = append(opts, cluster.WithFixedCenters(rc.FixedCenters))
	}
	if rc.Multiplicity != nil {
		opts = append(opts, cluster.WithMultiplicity(rc.Multiplicity))
	}
	if rc.Workers != nil {
		opts = append(opts, cluster.WithWorkers(*rc.Workers))
	}

	return opts, nil
}
