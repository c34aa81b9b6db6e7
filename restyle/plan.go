package restyle

import (
	"errors"
	"fmt"
	"image"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyPlan is returned when a plan contains no sweeps.
var ErrEmptyPlan = errors.New("restyle: plan contains no sweeps")

// ErrInvalidPlan is returned when a plan fails validation.
var ErrInvalidPlan = errors.New("restyle: invalid plan")

// PlanDefaults holds plan-wide fallback values. Zero fields fall through
// to the package defaults when sweeps run.
type PlanDefaults struct {
	Steps          int     `yaml:"steps"`
	ImageCount     int     `yaml:"image_count"`
	Strength       float64 `yaml:"strength"`
	GuidanceScale  float64 `yaml:"guidance_scale"`
	OutputSize     int     `yaml:"output_size"`
	Sheet          bool    `yaml:"sheet"`
	NegativePrompt string  `yaml:"negative_prompt"`
}

// PlanSweep describes one plan entry. An entry names a builtin style, or
// carries its own prompt, or both; explicit fields win over the preset,
// which wins over the plan defaults.
//
// Strengths and GuidanceScales expand the entry into one sweep per
// guidance x strength pair.
type PlanSweep struct {
	Style          string    `yaml:"style"`
	Prompt         string    `yaml:"prompt"`
	NegativePrompt string    `yaml:"negative_prompt"`
	Steps          int       `yaml:"steps"`
	ImageCount     int       `yaml:"image_count"`
	Strength       float64   `yaml:"strength"`
	GuidanceScale  float64   `yaml:"guidance_scale"`
	Strengths      []float64 `yaml:"strengths"`
	GuidanceScales []float64 `yaml:"guidance_scales"`
	Seed           int64     `yaml:"seed"`
	OutputSize     int       `yaml:"output_size"`
	Sheet          *bool     `yaml:"sheet"`
}

// Plan is a declarative batch of sweeps loaded from YAML.
//
// Example:
//
//	defaults:
//	  image_count: 4
//	  sheet: true
//	sweeps:
//	  - style: anime
//	  - style: cartoon
//	    strengths: [0.4, 0.6, 0.8]
//	    guidance_scales: [6, 9]
type Plan struct {
	Defaults PlanDefaults `yaml:"defaults"`
	Sweeps   []PlanSweep  `yaml:"sweeps"`
}

// ParsePlan decodes and validates a YAML plan.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// LoadPlan reads and parses a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return ParsePlan(data)
}

// Validate checks the plan's structure. Value ranges are checked by the
// pipeline when sweeps run.
func (p *Plan) Validate() error {
	if len(p.Sweeps) == 0 {
		return ErrEmptyPlan
	}

	for i, sweep := range p.Sweeps {
		if sweep.Style == "" && sweep.Prompt == "" {
			return fmt.Errorf("%w: sweep %d needs a style or a prompt", ErrInvalidPlan, i)
		}
		if sweep.Style != "" && sweep.Prompt == "" {
			if _, err := Preset(sweep.Style); err != nil {
				return fmt.Errorf("%w: sweep %d: %v", ErrInvalidPlan, i, err)
			}
		}
	}
	return nil
}

// Requests expands the plan into sweep requests around the given seed
// image. Entries with value axes expand into one request per pair in
// guidance-major order; everything else maps one to one.
func (p *Plan) Requests(img image.Image) ([]SweepRequest, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	requests := make([]SweepRequest, 0, len(p.Sweeps))
	for i, sweep := range p.Sweeps {
		expanded, err := p.expand(sweep, img)
		if err != nil {
			return nil, fmt.Errorf("%w: sweep %d: %v", ErrInvalidPlan, i, err)
		}
		requests = append(requests, expanded...)
	}
	return requests, nil
}

// expand resolves one plan entry against its preset and the plan defaults,
// then fans it out over any value axes.
func (p *Plan) expand(sweep PlanSweep, img image.Image) ([]SweepRequest, error) {
	var preset StylePreset
	if sweep.Style != "" {
		if found, err := Preset(sweep.Style); err == nil {
			preset = found
		} else if sweep.Prompt == "" {
			return nil, err
		}
	}

	prompt := sweep.Prompt
	if prompt == "" {
		prompt = preset.Prompt
	}
	if prompt == "" {
		return nil, errors.New("no prompt resolved")
	}

	style := sweep.Style
	if style == "" {
		style = "custom"
	}

	negative := firstNonEmpty(sweep.NegativePrompt, preset.NegativePrompt, p.Defaults.NegativePrompt)

	base := SweepConfig{
		Steps:         firstPositive(sweep.Steps, preset.Steps, p.Defaults.Steps),
		ImageCount:    firstPositive(sweep.ImageCount, p.Defaults.ImageCount),
		Strength:      firstPositiveFloat(sweep.Strength, preset.Strength, p.Defaults.Strength),
		GuidanceScale: firstPositiveFloat(sweep.GuidanceScale, preset.GuidanceScale, p.Defaults.GuidanceScale),
		Seed:          sweep.Seed,
		OutputSize:    firstPositive(sweep.OutputSize, p.Defaults.OutputSize),
		Sheet:         p.Defaults.Sheet,
	}
	if sweep.Sheet != nil {
		base.Sheet = *sweep.Sheet
	}

	request := SweepRequest{
		Style:          style,
		Prompt:         prompt,
		NegativePrompt: negative,
		Image:          img,
	}

	if len(sweep.Strengths) == 0 && len(sweep.GuidanceScales) == 0 {
		request.Config = base
		return []SweepRequest{request}, nil
	}

	grid := ParamGrid{Guidance: sweep.GuidanceScales, Strength: sweep.Strengths}
	if len(grid.Guidance) == 0 {
		grid.Guidance = []float64{base.GuidanceScale}
	}
	if len(grid.Strength) == 0 {
		grid.Strength = []float64{base.Strength}
	}

	requests := make([]SweepRequest, 0, grid.Len())
	for _, config := range grid.Apply(base) {
		r := request
		r.Config = config
		requests = append(requests, r)
	}
	return requests, nil
}

// firstPositive returns the first value greater than zero, or zero.
func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// firstPositiveFloat returns the first value greater than zero, or zero.
func firstPositiveFloat(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// firstNonEmpty returns the first non-empty string, or the empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
