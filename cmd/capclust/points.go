package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var errPoints = errors.New("points: malformed input")

// pointSet is the content of a points CSV file. capacity is nil when the
// file has no capacity_weight column.
type pointSet struct {
	coords   [][]float64
	weights  []float64
	capacity []float64
}

func readPointsFile(path string) (*pointSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open points: %w", err)
	}
	defer f.Close()

	return readPoints(f)
}

// readPoints parses x,y,weight[,capacity_weight] rows. A first row whose
// first field is not a number is treated as a header. Every row must have the
// same number of columns.
func readPoints(r io.Reader) (*pointSet, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errPoints, err)
	}
	if len(records) > 0 {
		if _, err = strconv.ParseFloat(strings.TrimSpace(records[0][0]), 64); err != nil {
			records = records[1:]
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no rows", errPoints)
	}

	cols := len(records[0])
	if cols != 3 && cols != 4 {
		return nil, fmt.Errorf("%w: %d columns, want x,y,weight[,capacity_weight]", errPoints, cols)
	}

	ps := &pointSet{
		coords:  make([][]float64, len(records)),
		weights: make([]float64, len(records)),
	}
	if cols == 4 {
		ps.capacity = make([]float64, len(records))
	}
	for i, rec := range records {
		var v [4]float64
		for c := 0; c < cols; c++ {
			if v[c], err = strconv.ParseFloat(strings.TrimSpace(rec[c]), 64); err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %q is not a number", errPoints, i+1, c+1, rec[c])
			}
		}
		ps.coords[i] = []float64{v[0], v[1]}
		ps.weights[i] = v[2]
		if cols == 4 {
			ps.capacity[i] = v[3]
		}
	}

	return ps, nil
}
