package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"net/http"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/vibabattista/stylised-images/letterbox"
)

// OpenAIPipeline generates images through the OpenAI image-edit API.
//
// The edits endpoint exposes no step count, denoising strength, guidance
// scale or negative prompt; those request fields are validated but not
// transmitted. The seed image is staged as a temporary PNG because the
// client library uploads from a file handle.
//
// Thread Safety: OpenAIPipeline is safe for concurrent use. The embedded
// limiter bounds in-flight calls at RuntimeConfig.MaxConcurrent.
type OpenAIPipeline struct {
	config  RuntimeConfig
	client  *openai.Client
	limiter *Limiter
	model   string
}

// NewOpenAIPipeline creates an OpenAI backend from the given runtime
// configuration.
//
// Returns an error if the API key is missing or the configuration fails
// validation.
func NewOpenAIPipeline(config RuntimeConfig) (*OpenAIPipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", ErrInvalidRequest)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.HTTPClient = &http.Client{Timeout: config.RequestTimeout}

	model := config.Model
	if model == "" {
		model = openai.CreateImageModelDallE2
	}

	limiter, err := NewLimiter(config.MaxConcurrent)
	if err != nil {
		return nil, err
	}

	return &OpenAIPipeline{
		config:  config,
		client:  openai.NewClientWithConfig(clientConfig),
		limiter: limiter,
		model:   model,
	}, nil
}

// Name identifies the backend in logs and results.
func (p *OpenAIPipeline) Name() string {
	return "openai"
}

// Model returns the configured image model name.
func (p *OpenAIPipeline) Model() string {
	return p.model
}

// Generate runs one image-edit call and decodes the returned batch.
func (p *OpenAIPipeline) Generate(ctx context.Context, request Request) (*Result, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, p.config.AcquireTimeout)
	defer cancel()
	if err := p.limiter.Acquire(acquireCtx); err != nil {
		return nil, NewGenerationError(p.Name(), ErrCodeTimeout, "no generation slot", true, err)
	}
	defer p.limiter.Release()

	seedFile, cleanup, err := p.stageSeedImage(request.InitImage)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	req := openai.ImageEditRequest{
		Image:          seedFile,
		Prompt:         request.Prompt,
		Model:          p.model,
		N:              request.ImageCount,
		Size:           p.sizeString(),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}

	start := time.Now()
	response, err := p.client.CreateEditImage(ctx, req)
	if err != nil {
		return nil, NewGenerationError(p.Name(), ErrCodeGenerationFailed, "image edit failed", false, err)
	}

	images, err := p.decodeImages(response.Data, request.ImageCount)
	if err != nil {
		return nil, err
	}

	return &Result{
		Images:  images,
		Seed:    request.Seed,
		Backend: p.Name(),
		Elapsed: time.Since(start),
	}, nil
}

// Close releases the backend's slot limiter.
func (p *OpenAIPipeline) Close() error {
	return p.limiter.Close()
}

// stageSeedImage writes the seed image to a temporary PNG and returns the
// open handle plus a cleanup function removing it.
func (p *OpenAIPipeline) stageSeedImage(img image.Image) (*os.File, func(), error) {
	data, err := letterbox.EncodePNG(img)
	if err != nil {
		return nil, nil, NewGenerationError(p.Name(), ErrCodeInvalidRequest, "failed to encode seed image", false, err)
	}

	f, err := os.CreateTemp("", "seed-*.png")
	if err != nil {
		return nil, nil, NewGenerationError(p.Name(), ErrCodeGenerationFailed, "failed to stage seed image", false, err)
	}

	cleanup := func() {
		f.Close()
		os.Remove(f.Name())
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return nil, nil, NewGenerationError(p.Name(), ErrCodeGenerationFailed, "failed to write seed image", false, err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		cleanup()
		return nil, nil, NewGenerationError(p.Name(), ErrCodeGenerationFailed, "failed to rewind seed image", false, err)
	}

	return f, cleanup, nil
}

// sizeString maps the configured input size onto a supported edit size.
// The edits endpoint accepts 256, 512 and 1024 pixel squares only.
func (p *OpenAIPipeline) sizeString() string {
	switch p.config.InputSize {
	case 256:
		return openai.CreateImageSize256x256
	case 512:
		return openai.CreateImageSize512x512
	default:
		return openai.CreateImageSize1024x1024
	}
}

// decodeImages converts the base64 response batch back into images.
func (p *OpenAIPipeline) decodeImages(data []openai.ImageResponseDataInner, count int) ([]image.Image, error) {
	if data == nil {
		return nil, NewGenerationError(p.Name(), ErrCodeBadResponse, "response carries no data", false, nil)
	}
	if len(data) < count {
		return nil, NewGenerationError(p.Name(), ErrCodeBadResponse,
			fmt.Sprintf("expected %d images, got %d", count, len(data)), false, nil)
	}
	data = data[:count]

	images := make([]image.Image, 0, count)
	for i, item := range data {
		if item.B64JSON == "" {
			return nil, NewGenerationError(p.Name(), ErrCodeBadResponse,
				fmt.Sprintf("image %d carries no payload", i), false, nil)
		}

		raw, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, NewGenerationError(p.Name(), ErrCodeBadResponse,
				fmt.Sprintf("image %d is not valid base64", i), false, err)
		}

		img, err := letterbox.DecodeBytes(raw)
		if err != nil {
			return nil, NewGenerationError(p.Name(), ErrCodeBadResponse,
				fmt.Sprintf("image %d failed to decode", i), false, err)
		}
		images = append(images, img)
	}

	return images, nil
}

// Ensure OpenAIPipeline implements Pipeline.
var _ Pipeline = (*OpenAIPipeline)(nil)
