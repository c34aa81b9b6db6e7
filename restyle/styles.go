// Package restyle orchestrates stylised re-renders of a seed photograph.
//
// It follows the atoms -> molecules -> organisms pattern:
//   - Atoms: ParamGrid and StylePreset (pure values, no side effects)
//   - Molecules: Plan parsing and expansion into sweep requests
//   - Organisms: Driver, which runs sweeps against a generation pipeline
//     and normalizes the results
package restyle

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"
)

// ErrUnknownStyle is returned when a style name matches no builtin preset.
var ErrUnknownStyle = errors.New("restyle: unknown style")

// DefaultNegativePrompt discourages photorealistic output and the usual
// generation defects. It is applied whenever a sweep does not provide its
// own negative prompt.
const DefaultNegativePrompt = "photo, photorealistic, realism, 3d render, " +
	"(low quality, worst quality:1.4), lowres, jpeg artifacts, blurry, " +
	"bad anatomy, bad hands, missing fingers, extra digit, fewer digits, " +
	"extra limbs, duplicate, deformed, mutated, " +
	"text, signature, watermark, username"

// StylePreset bundles a prompt with the tuning values that work well for
// that style. Presets are starting points; plan entries override any field.
type StylePreset struct {
	// Name identifies the preset in plans and output filenames.
	Name string

	// Prompt is the positive prompt sent to the pipeline.
	Prompt string

	// NegativePrompt overrides DefaultNegativePrompt when non-empty.
	NegativePrompt string

	// Strength is the denoising strength in (0, 1].
	Strength float64

	// GuidanceScale is the classifier-free guidance scale.
	GuidanceScale float64

	// Steps is the diffusion step count.
	Steps int
}

// presets holds the builtin styles keyed by lowercase name.
var presets = map[string]StylePreset{
	"anime": {
		Name: "anime",
		Prompt: "best quality, masterpiece, anime style, anime key visual, " +
			"clean lineart, cel shading, vibrant colors, detailed eyes",
		Strength:      0.55,
		GuidanceScale: 7.5,
		Steps:         30,
	},
	"cartoon": {
		Name: "cartoon",
		Prompt: "best quality, western cartoon style, bold outlines, " +
			"flat colors, exaggerated features, saturday morning cartoon",
		Strength:      0.6,
		GuidanceScale: 8,
		Steps:         30,
	},
	"manga": {
		Name: "manga",
		Prompt: "best quality, monochrome manga style, ink lineart, " +
			"screentone shading, detailed hatching, dramatic composition",
		Strength:      0.65,
		GuidanceScale: 7,
		Steps:         35,
	},
	"chibi": {
		Name: "chibi",
		Prompt: "best quality, chibi style, super deformed, oversized head, " +
			"tiny body, cute, simple background",
		Strength:      0.7,
		GuidanceScale: 9,
		Steps:         30,
	},
}

// Preset looks up a builtin style by name. Lookup is case-insensitive.
//
// Returns ErrUnknownStyle when no preset matches.
func Preset(name string) (StylePreset, error) {
	preset, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return StylePreset{}, fmt.Errorf("%w: %q (known: %s)",
			ErrUnknownStyle, name, strings.Join(PresetNames(), ", "))
	}
	return preset, nil
}

// PresetNames returns the builtin style names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Request builds a sweep request for this preset around the given seed
// image, using the preset's tuning values.
//
// This is a pure function with no side effects.
func (p StylePreset) Request(img image.Image) SweepRequest {
	return SweepRequest{
		Style:          p.Name,
		Prompt:         p.Prompt,
		NegativePrompt: p.NegativePrompt,
		Image:          img,
		Config: SweepConfig{
			Steps:         p.Steps,
			Strength:      p.Strength,
			GuidanceScale: p.GuidanceScale,
			Seed:          -1,
		},
	}
}
