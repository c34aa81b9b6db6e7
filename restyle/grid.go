package restyle

// ParamGrid is a lazy Cartesian product over guidance scale and denoising
// strength values. Pairs are computed on demand from the two axes; the
// grid itself is never materialized.
//
// This is a pure value type with no side effects.
type ParamGrid struct {
	// Guidance holds the guidance scale axis.
	Guidance []float64

	// Strength holds the denoising strength axis.
	Strength []float64
}

// Len returns the number of pairs in the grid. A grid with an empty axis
// has length zero.
func (g ParamGrid) Len() int {
	return len(g.Guidance) * len(g.Strength)
}

// At returns the i-th pair in guidance-major order: all strengths for the
// first guidance value, then all strengths for the second, and so on.
//
// Panics if i is out of range.
func (g ParamGrid) At(i int) (guidance, strength float64) {
	n := len(g.Strength)
	return g.Guidance[i/n], g.Strength[i%n]
}

// Apply stamps every grid pair onto a copy of the base configuration and
// returns the resulting configurations in grid order.
func (g ParamGrid) Apply(base SweepConfig) []SweepConfig {
	configs := make([]SweepConfig, 0, g.Len())
	for i := 0; i < g.Len(); i++ {
		cfg := base
		cfg.GuidanceScale, cfg.Strength = g.At(i)
		configs = append(configs, cfg)
	}
	return configs
}
