package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/katalvlaran/capclust/cluster"
)

// report is the JSON document written by -format json.
type report struct {
	RunID string `json:"run_id"`
	Seed  int64  `json:"seed"`
	*cluster.Result
}

func writeJSON(w io.Writer, runID string, seed int64, res *cluster.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(report{RunID: runID, Seed: seed, Result: res})
}

// writeTable prints one row per cluster with loads and ranges in raw
// capacity-weight units, followed by a short summary.
func writeTable(w io.Writer, runID string, seed int64, res *cluster.Result) error {
	members := make([]int, len(res.Centers))
	outgroup := 0
	for _, a := range res.Assignment {
		if a < 0 {
			outgroup++
			continue
		}
		members[a]++
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Cluster", "Center X", "Center Y", "Points", "Load", "Low", "High"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	capScale := res.Scaling.Capacity
	for j, c := range res.Centers {
		table.Append([]string{
			strconv.Itoa(j),
			formatFloat(c[0]),
			formatFloat(c[1]),
			strconv.Itoa(members[j]),
			formatFloat(res.RawLoads[j]),
			formatFloat(res.Ranges[j].Low * capScale),
			formatFloat(res.Ranges[j].High * capScale),
		})
	}
	table.Render()

	_, err := fmt.Fprintf(w,
		"run %s seed %d: best restart %d of %d, objective %.6g, outgroup %d, failed restarts %d\n",
		runID, seed, res.Restart, len(res.Objectives), res.Objective, outgroup, len(res.Failures))

	return err
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
