package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/vibabattista/stylised-images/restyle"
)

// consoleReporter prints per-sweep progress in the same visual style as
// the startup validation suite. It is driven sequentially by the sweep
// driver and is not safe for concurrent use.
type consoleReporter struct {
	output io.Writer
	starts map[int]time.Time
}

// Compile-time check that consoleReporter implements restyle.ProgressReporter
var _ restyle.ProgressReporter = (*consoleReporter)(nil)

func newConsoleReporter() *consoleReporter {
	return &consoleReporter{output: os.Stdout}
}

func (r *consoleReporter) SweepStarted(index, total int, request restyle.SweepRequest) {
	if r.starts == nil {
		r.starts = make(map[int]time.Time)
	}
	r.starts[index] = time.Now()

	if index == 0 {
		header := color.New(color.FgCyan, color.Bold)
		header.Fprintf(r.output, "━━━ Style Sweeps ━━━\n")
		fmt.Fprintln(r.output)
	}
	fmt.Fprintf(r.output, "  ◌ [%d/%d] %s...", index+1, total, request.Style)
}

func (r *consoleReporter) SweepFinished(index, total int, result *restyle.SweepResult, err error) {
	elapsed := time.Duration(0)
	if start, ok := r.starts[index]; ok {
		elapsed = time.Since(start).Round(time.Millisecond)
		delete(r.starts, index)
	}

	// Clear the "running" line and print result
	fmt.Fprintf(r.output, "\r")
	if err != nil {
		clr := color.New(color.FgRed)
		clr.Fprintf(r.output, "  ✗ [%d/%d] sweep failed", index+1, total)
		color.New(color.FgHiBlack).Fprintf(r.output, " (%v)", elapsed)
		fmt.Fprintln(r.output)
		clr.Fprintf(r.output, "    └─ %s\n", err.Error())
	} else {
		clr := color.New(color.FgGreen)
		clr.Fprintf(r.output, "  ✓ [%d/%d] %s", index+1, total, result.Style)
		dim := color.New(color.FgHiBlack)
		dim.Fprintf(r.output, " - %d images, seed %d (%v)",
			len(result.Normalized), result.Seed, elapsed)
		fmt.Fprintln(r.output)
	}

	if index == total-1 {
		fmt.Fprintln(r.output)
	}
}
