package cluster

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// PrintMode selects the built-in progress reporter.
type PrintMode uint8

const (
	// PrintNone reports nothing.
	PrintNone PrintMode = iota

	// PrintProgress draws a bar proportional to completed restarts.
	PrintProgress

	// PrintSteps writes one line per finished restart with its timing.
	PrintSteps
)

// String implements fmt.Stringer.
func (m PrintMode) String() string {
	switch m {
	case PrintNone:
		return "none"
	case PrintProgress:
		return "progress"
	case PrintSteps:
		return "steps"
	default:
		return fmt.Sprintf("PrintMode(%d)", uint8(m))
	}
}

// ParsePrintMode maps "none" (alias "silent"), "progress" and "steps".
func ParsePrintMode(s string) (PrintMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "silent":
		return PrintNone, nil
	case "", "progress":
		return PrintProgress, nil
	case "steps":
		return PrintSteps, nil
	default:
		return 0, invalid("print_mode", "unknown mode %q", s)
	}
}

// Event describes one finished restart.
type Event struct {
	Restart   int // 1-based restart index
	Total     int // number of restarts in the run
	Completed int // restarts finished so far, this one included
	Objective float64
	Elapsed   time.Duration
	Err       error
}

// Reporter receives one Event per finished restart. Calls are serialised by
// the orchestrator, so implementations need no locking of their own.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report implements Reporter.
func (f ReporterFunc) Report(e Event) { f(e) }

// NewReporter returns the built-in reporter for mode, writing to w.
// Unknown modes and a nil writer report nothing.
func NewReporter(mode PrintMode, w io.Writer) Reporter {
	if w == nil {
		return silent{}
	}
	switch mode {
	case PrintProgress:
		return &bar{w: w, width: barWidth}
	case PrintSteps:
		return steps{w: w}
	default:
		return silent{}
	}
}

type silent struct{}

func (silent) Report(Event) {}

const barWidth = 40

// bar redraws a single line in place and terminates it after the last restart.
type bar struct {
	w     io.Writer
	width int
}

func (b *bar) Report(e Event) {
	if e.Total <= 0 {
		return
	}
	filled := b.width * e.Completed / e.Total
	_, _ = fmt.Fprintf(b.w, "\r[%s%s] %d/%d",
		strings.Repeat("=", filled), strings.Repeat(" ", b.width-filled), e.Completed, e.Total)
	if e.Completed >= e.Total {
		_, _ = io.WriteString(b.w, "\n")
	}
}

type steps struct{ w io.Writer }

func (s steps) Report(e Event) {
	if e.Err != nil {
		_, _ = fmt.Fprintf(s.w, "restart %d/%d failed after %s: %v\n",
			e.Restart, e.Total, e.Elapsed.Round(time.Microsecond), e.Err)
		return
	}
	_, _ = fmt.Fprintf(s.w, "restart %d/%d done in %s, objective %.6g\n",
		e.Restart, e.Total, e.Elapsed.Round(time.Microsecond), e.Objective)
}
