// Package metrics provides pure data types and in-memory aggregation
// for sweep run statistics. Types in this file are atoms with no behavior.
package metrics

import "time"

// Sweep status values for SweepRecord.Status.
const (
	SweepStatusSuccess = "success"
	SweepStatusError   = "error"
)

// SweepRecord represents a single completed sweep.
// This is a pure data structure for tracking individual generation runs.
type SweepRecord struct {
	// ID is the short correlation ID of the sweep
	ID string `json:"id"`

	// Style is the style label the sweep ran under
	Style string `json:"style"`

	// Backend names the generation backend that served the sweep
	Backend string `json:"backend"`

	// Status is "success" or "error"
	Status string `json:"status"`

	// Images is the number of images the sweep produced
	Images int `json:"images"`

	// Strength is the img2img denoising strength used
	Strength float64 `json:"strength"`

	// GuidanceScale is the classifier-free guidance used
	GuidanceScale float64 `json:"guidance_scale"`

	// StartTime is when the sweep began
	StartTime time.Time `json:"start_time"`

	// Duration is the total sweep execution time
	Duration time.Duration `json:"duration"`

	// ErrorMsg contains error details if Status is "error"
	ErrorMsg string `json:"error_msg,omitempty"`
}

// StyleMetrics aggregates sweep statistics for one style.
type StyleMetrics struct {
	// Count is the number of sweeps run for this style
	Count int64 `json:"count"`

	// SuccessRate is the percentage of successful sweeps (0-100)
	SuccessRate float64 `json:"success_rate"`

	// AvgDuration is the mean sweep duration
	AvgDuration time.Duration `json:"avg_duration"`

	// Images is the total number of images produced for this style
	Images int64 `json:"images"`
}

// SweepMetrics aggregates statistics across a whole run.
type SweepMetrics struct {
	// TotalSweeps is the number of sweeps recorded
	TotalSweeps int64 `json:"total_sweeps"`

	// TotalSuccess is the number of sweeps that completed
	TotalSuccess int64 `json:"total_success"`

	// TotalErrors is the number of sweeps that failed
	TotalErrors int64 `json:"total_errors"`

	// TotalImages is the number of images produced across all sweeps
	TotalImages int64 `json:"total_images"`

	// ByStyle holds per-style aggregations keyed by style label
	ByStyle map[string]*StyleMetrics `json:"by_style"`
}
