package restyle

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"go.uber.org/zap"

	"github.com/vibabattista/stylised-images/pipeline"
)

// recordingPipeline captures the requests it receives and returns scripted
// results, failing at the call indexes listed in failAt.
type recordingPipeline struct {
	requests  []pipeline.Request
	failAt    map[int]error
	stampSize int
}

func (p *recordingPipeline) Generate(ctx context.Context, request pipeline.Request) (*pipeline.Result, error) {
	index := len(p.requests)
	p.requests = append(p.requests, request)

	if err, ok := p.failAt[index]; ok {
		return nil, err
	}

	size := p.stampSize
	if size <= 0 {
		size = 48
	}
	images := make([]image.Image, request.ImageCount)
	for i := range images {
		stamp := image.NewNRGBA(image.Rect(0, 0, size, size))
		draw.Draw(stamp, stamp.Bounds(), image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 255}), image.Point{}, draw.Src)
		images[i] = stamp
	}
	return &pipeline.Result{Images: images, Seed: 99, Backend: "recording"}, nil
}

func (p *recordingPipeline) Name() string {
	return "recording"
}

var _ pipeline.Pipeline = (*recordingPipeline)(nil)

func seedImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 255}), image.Point{}, draw.Src)
	return img
}

func testDriver(backend pipeline.Pipeline, mutate func(*DriverConfig)) *Driver {
	config := DefaultDriverConfig()
	config.InputSize = 64
	if mutate != nil {
		mutate(&config)
	}
	return NewDriver(config, backend, zap.NewNop())
}

func testSweepRequest() SweepRequest {
	return SweepRequest{
		Style:  "anime",
		Prompt: "anime style portrait",
		Image:  seedImage(40, 30),
		Config: SweepConfig{ImageCount: 2, OutputSize: 32},
	}
}

func TestNewDriver_AppliesDefaults(t *testing.T) {
	driver := NewDriver(DriverConfig{SheetGap: -4}, &recordingPipeline{}, nil)

	config := driver.GetConfig()
	if config.InputSize != 1024 {
		t.Errorf("InputSize = %d, want 1024", config.InputSize)
	}
	if config.SheetGap != 0 {
		t.Errorf("SheetGap = %d, want 0", config.SheetGap)
	}
}

func TestDriver_RunSweep_Success(t *testing.T) {
	backend := &recordingPipeline{}
	driver := testDriver(backend, nil)

	result, err := driver.RunSweep(context.Background(), testSweepRequest())
	if err != nil {
		t.Fatalf("RunSweep() failed: %v", err)
	}

	if len(result.Raw) != 2 || len(result.Normalized) != 2 {
		t.Fatalf("got %d raw / %d normalized images, want 2 / 2", len(result.Raw), len(result.Normalized))
	}
	for i, img := range result.Normalized {
		bounds := img.Bounds()
		if bounds.Dx() != 32 || bounds.Dy() != 32 {
			t.Errorf("normalized %d is %dx%d, want 32x32", i, bounds.Dx(), bounds.Dy())
		}
	}
	for i, img := range result.Raw {
		bounds := img.Bounds()
		if bounds.Dx() != 48 || bounds.Dy() != 48 {
			t.Errorf("raw %d is %dx%d, want untouched 48x48", i, bounds.Dx(), bounds.Dy())
		}
	}

	if result.Style != "anime" {
		t.Errorf("Style = %q, want anime", result.Style)
	}
	if result.Backend != "recording" {
		t.Errorf("Backend = %q, want recording", result.Backend)
	}
	if result.Seed != 99 {
		t.Errorf("Seed = %d, want 99", result.Seed)
	}
	if len(result.ID) != 8 {
		t.Errorf("ID = %q, want 8 characters", result.ID)
	}
	if result.Sheet != nil {
		t.Error("Sheet should be nil unless requested")
	}

	// Defaults were filled before the call.
	if result.Config.Steps != 30 {
		t.Errorf("Config.Steps = %d, want 30", result.Config.Steps)
	}
	if result.Config.Seed != -1 {
		t.Errorf("Config.Seed = %d, want -1", result.Config.Seed)
	}
}

func TestDriver_RunSweep_MakesExactlyOneCall(t *testing.T) {
	backend := &recordingPipeline{}
	driver := testDriver(backend, nil)

	if _, err := driver.RunSweep(context.Background(), testSweepRequest()); err != nil {
		t.Fatalf("RunSweep() failed: %v", err)
	}
	if len(backend.requests) != 1 {
		t.Errorf("pipeline received %d calls, want 1", len(backend.requests))
	}
}

func TestDriver_RunSweep_NormalizesSeedImage(t *testing.T) {
	backend := &recordingPipeline{}
	driver := testDriver(backend, nil)

	if _, err := driver.RunSweep(context.Background(), testSweepRequest()); err != nil {
		t.Fatalf("RunSweep() failed: %v", err)
	}

	sent := backend.requests[0].InitImage
	if sent == nil {
		t.Fatal("no seed image was sent")
	}
	bounds := sent.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 64 {
		t.Errorf("seed sent as %dx%d, want normalized 64x64", bounds.Dx(), bounds.Dy())
	}
}

func TestDriver_RunSweep_InjectsDefaultNegativePrompt(t *testing.T) {
	backend := &recordingPipeline{}
	driver := testDriver(backend, nil)

	if _, err := driver.RunSweep(context.Background(), testSweepRequest()); err != nil {
		t.Fatalf("RunSweep() failed: %v", err)
	}
	if got := backend.requests[0].NegativePrompt; got != DefaultNegativePrompt {
		t.Errorf("NegativePrompt = %q, want default", got)
	}
}

func TestDriver_RunSweep_KeepsCustomNegativePrompt(t *testing.T) {
	backend := &recordingPipeline{}
	driver := testDriver(backend, nil)

	request := testSweepRequest()
	request.NegativePrompt = "sketch, rough lines"

	if _, err := driver.RunSweep(context.Background(), request); err != nil {
		t.Fatalf("RunSweep() failed: %v", err)
	}
	if got := backend.requests[0].NegativePrompt; got != "sketch, rough lines" {
		t.Errorf("NegativePrompt = %q, want custom value", got)
	}
}

func TestDriver_RunSweep_NilSeedImage(t *testing.T) {
	driver := testDriver(&recordingPipeline{}, nil)

	request := testSweepRequest()
	request.Image = nil

	_, err := driver.RunSweep(context.Background(), request)
	if !errors.Is(err, ErrNilSeedImage) {
		t.Errorf("expected ErrNilSeedImage, got: %v", err)
	}
}

func TestDriver_RunSweep_PipelineErrorUnchanged(t *testing.T) {
	backendErr := pipeline.NewGenerationError("recording", pipeline.ErrCodeOutOfMemory, "VRAM exhausted", false, nil)
	backend := &recordingPipeline{failAt: map[int]error{0: backendErr}}
	driver := testDriver(backend, nil)

	_, err := driver.RunSweep(context.Background(), testSweepRequest())
	if err == nil {
		t.Fatal("expected error from pipeline")
	}
	if !errors.Is(err, backendErr) {
		t.Errorf("pipeline error was modified: %v", err)
	}

	var genErr *pipeline.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if genErr.Code != pipeline.ErrCodeOutOfMemory {
		t.Errorf("Code = %q, want %q", genErr.Code, pipeline.ErrCodeOutOfMemory)
	}
}

func TestDriver_RunSweep_AssemblesSheet(t *testing.T) {
	backend := &recordingPipeline{}
	driver := testDriver(backend, func(c *DriverConfig) { c.SheetGap = 8 })

	request := testSweepRequest()
	request.Config.ImageCount = 3
	request.Config.Sheet = true

	result, err := driver.RunSweep(context.Background(), request)
	if err != nil {
		t.Fatalf("RunSweep() failed: %v", err)
	}
	if result.Sheet == nil {
		t.Fatal("expected a contact sheet")
	}

	bounds := result.Sheet.Bounds()
	wantWidth := 3*32 + 2*8
	if bounds.Dx() != wantWidth || bounds.Dy() != 32 {
		t.Errorf("sheet is %dx%d, want %dx32", bounds.Dx(), bounds.Dy(), wantWidth)
	}
}

func TestDriver_RunAll_AbortsOnFirstFailure(t *testing.T) {
	backendErr := pipeline.NewGenerationError("recording", pipeline.ErrCodeBackendDown, "offline", true, nil)
	backend := &recordingPipeline{failAt: map[int]error{1: backendErr}}
	driver := testDriver(backend, nil)

	requests := []SweepRequest{testSweepRequest(), testSweepRequest(), testSweepRequest()}

	results, err := driver.RunAll(context.Background(), requests)
	if !errors.Is(err, backendErr) {
		t.Errorf("expected the pipeline error unchanged, got: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1 (collected before the failure)", len(results))
	}
	if len(backend.requests) != 2 {
		t.Errorf("pipeline received %d calls, want 2 (no calls after abort)", len(backend.requests))
	}
}

func TestDriver_RunAll_ContinueOnError(t *testing.T) {
	backendErr := pipeline.NewGenerationError("recording", pipeline.ErrCodeBackendDown, "offline", true, nil)
	backend := &recordingPipeline{failAt: map[int]error{1: backendErr}}
	driver := testDriver(backend, func(c *DriverConfig) { c.ContinueOnError = true })

	requests := []SweepRequest{testSweepRequest(), testSweepRequest(), testSweepRequest()}

	results, err := driver.RunAll(context.Background(), requests)
	if !errors.Is(err, ErrSweepFailed) {
		t.Errorf("expected ErrSweepFailed, got: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
	if len(backend.requests) != 3 {
		t.Errorf("pipeline received %d calls, want 3", len(backend.requests))
	}
}

func TestDriver_RunAll_AllSucceed(t *testing.T) {
	backend := &recordingPipeline{}
	driver := testDriver(backend, nil)

	results, err := driver.RunAll(context.Background(), []SweepRequest{testSweepRequest(), testSweepRequest()})
	if err != nil {
		t.Fatalf("RunAll() failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestDriver_RunAll_HonorsCancellation(t *testing.T) {
	backend := &recordingPipeline{}
	driver := testDriver(backend, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := driver.RunAll(ctx, []SweepRequest{testSweepRequest()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
	if len(backend.requests) != 0 {
		t.Errorf("pipeline received %d calls, want 0", len(backend.requests))
	}
}

// recordingReporter captures progress callbacks for assertions.
type recordingReporter struct {
	started  []int
	finished []int
	errs     []error
}

func (r *recordingReporter) SweepStarted(index, total int, request SweepRequest) {
	r.started = append(r.started, index)
}

func (r *recordingReporter) SweepFinished(index, total int, result *SweepResult, err error) {
	r.finished = append(r.finished, index)
	r.errs = append(r.errs, err)
}

var _ ProgressReporter = (*recordingReporter)(nil)

func TestDriver_RunAll_ReportsProgress(t *testing.T) {
	backend := &recordingPipeline{}
	reporter := &recordingReporter{}
	driver := testDriver(backend, nil).WithReporter(reporter)

	_, err := driver.RunAll(context.Background(), []SweepRequest{testSweepRequest(), testSweepRequest()})
	if err != nil {
		t.Fatalf("RunAll() failed: %v", err)
	}

	if len(reporter.started) != 2 || len(reporter.finished) != 2 {
		t.Fatalf("got %d started / %d finished callbacks, want 2 / 2",
			len(reporter.started), len(reporter.finished))
	}
	for i, err := range reporter.errs {
		if err != nil {
			t.Errorf("errs[%d] = %v, want nil", i, err)
		}
	}
}

func TestDriver_RunAll_ReportsFailure(t *testing.T) {
	backendErr := pipeline.NewGenerationError("recording", pipeline.ErrCodeBackendDown, "offline", true, nil)
	backend := &recordingPipeline{failAt: map[int]error{0: backendErr}}
	reporter := &recordingReporter{}
	driver := testDriver(backend, nil).WithReporter(reporter)

	_, err := driver.RunAll(context.Background(), []SweepRequest{testSweepRequest(), testSweepRequest()})
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected the pipeline error unchanged, got: %v", err)
	}

	if len(reporter.finished) != 1 {
		t.Fatalf("got %d finished callbacks, want 1 (batch aborted)", len(reporter.finished))
	}
	if !errors.Is(reporter.errs[0], backendErr) {
		t.Errorf("errs[0] = %v, want the pipeline error", reporter.errs[0])
	}
}
