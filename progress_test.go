package main

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/vibabattista/stylised-images/restyle"
)

func TestConsoleReporterSuccess(t *testing.T) {
	var buf bytes.Buffer
	reporter := &consoleReporter{output: &buf}

	result := &restyle.SweepResult{
		Style:      "anime",
		Normalized: make([]image.Image, 2),
		Seed:       42,
	}

	reporter.SweepStarted(0, 2, restyle.SweepRequest{Style: "anime"})
	reporter.SweepFinished(0, 2, result, nil)

	out := buf.String()
	for _, want := range []string{"Style Sweeps", "[1/2] anime", "2 images", "seed 42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporterFailure(t *testing.T) {
	var buf bytes.Buffer
	reporter := &consoleReporter{output: &buf}

	reporter.SweepStarted(1, 2, restyle.SweepRequest{Style: "cartoon"})
	reporter.SweepFinished(1, 2, nil, errors.New("backend offline"))

	out := buf.String()
	if !strings.Contains(out, "sweep failed") {
		t.Errorf("failure output missing status line:\n%s", out)
	}
	if !strings.Contains(out, "backend offline") {
		t.Errorf("failure output missing error detail:\n%s", out)
	}
	if strings.Contains(out, "Style Sweeps") {
		t.Errorf("header printed for a non-first sweep:\n%s", out)
	}
}

func TestConsoleReporterHeaderOnlyOnce(t *testing.T) {
	var buf bytes.Buffer
	reporter := &consoleReporter{output: &buf}

	reporter.SweepStarted(0, 2, restyle.SweepRequest{Style: "anime"})
	reporter.SweepFinished(0, 2, &restyle.SweepResult{Style: "anime"}, nil)
	reporter.SweepStarted(1, 2, restyle.SweepRequest{Style: "cartoon"})
	reporter.SweepFinished(1, 2, &restyle.SweepResult{Style: "cartoon"}, nil)

	if got := strings.Count(buf.String(), "Style Sweeps"); got != 1 {
		t.Errorf("header printed %d times, want 1", got)
	}
}
