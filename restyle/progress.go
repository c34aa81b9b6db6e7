package restyle

// ProgressReporter receives batch progress callbacks from RunAll. It lets
// an integration layer show per-sweep progress without the driver knowing
// about consoles or display surfaces.
//
// Callbacks run on the calling goroutine, between sweeps; implementations
// should return quickly.
type ProgressReporter interface {
	// SweepStarted is called before the sweep at index (zero-based) of
	// total runs.
	SweepStarted(index, total int, request SweepRequest)

	// SweepFinished is called after the sweep completes. On failure the
	// result is nil and err carries the unchanged pipeline error.
	SweepFinished(index, total int, result *SweepResult, err error)
}
