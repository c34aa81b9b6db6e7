package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vibabattista/stylised-images/letterbox"
)

// img2imgPath is the WebUI image-to-image endpoint.
const img2imgPath = "/sdapi/v1/img2img"

// maxErrorBody caps how much of an error response body makes it into an
// error message.
const maxErrorBody = 512

// WebUIPipeline generates images through a Stable Diffusion WebUI
// server's img2img API. One instance may serve concurrent callers; the
// embedded limiter bounds in-flight calls at RuntimeConfig.MaxConcurrent.
type WebUIPipeline struct {
	config  RuntimeConfig
	client  *http.Client
	limiter *Limiter
}

// img2imgRequest is the WebUI img2img payload. Field names follow the
// server's JSON schema.
type img2imgRequest struct {
	InitImages        []string       `json:"init_images"`
	Prompt            string         `json:"prompt"`
	NegativePrompt    string         `json:"negative_prompt,omitempty"`
	DenoisingStrength float64        `json:"denoising_strength"`
	CFGScale          float64        `json:"cfg_scale"`
	Steps             int            `json:"steps"`
	BatchSize         int            `json:"batch_size"`
	NIter             int            `json:"n_iter"`
	Width             int            `json:"width"`
	Height            int            `json:"height"`
	Seed              int64          `json:"seed"`
	SamplerName       string         `json:"sampler_name,omitempty"`
	SendImages        bool           `json:"send_images"`
	SaveImages        bool           `json:"save_images"`
	OverrideSettings  map[string]any `json:"override_settings,omitempty"`

	OverrideSettingsRestoreAfterwards bool `json:"override_settings_restore_afterwards"`
}

// img2imgResponse is the WebUI img2img reply.
type img2imgResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info,omitempty"`
}

// NewWebUIPipeline creates a WebUI backend from the given runtime
// configuration. The configuration is captured at construction and never
// consulted from the environment again.
func NewWebUIPipeline(config RuntimeConfig) (*WebUIPipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidRequest)
	}

	limiter, err := NewLimiter(config.MaxConcurrent)
	if err != nil {
		return nil, err
	}

	return &WebUIPipeline{
		config: config,
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		limiter: limiter,
	}, nil
}

// Name identifies the backend in logs and results.
func (p *WebUIPipeline) Name() string {
	return "webui"
}

// Generate runs one img2img call and decodes the returned batch.
func (p *WebUIPipeline) Generate(ctx context.Context, request Request) (*Result, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, p.config.AcquireTimeout)
	defer cancel()
	if err := p.limiter.Acquire(acquireCtx); err != nil {
		return nil, NewGenerationError(p.Name(), ErrCodeTimeout, "no generation slot", true, err)
	}
	defer p.limiter.Release()

	payload, err := p.buildPayload(request)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewGenerationError(p.Name(), ErrCodeInvalidRequest, "failed to encode request", false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+img2imgPath, bytes.NewReader(body))
	if err != nil {
		return nil, NewGenerationError(p.Name(), ErrCodeInvalidRequest, "failed to build request", false, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, NewGenerationError(p.Name(), ErrCodeBackendDown, "img2img call failed", true, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, p.statusError(resp.StatusCode, detail)
	}

	var reply img2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, NewGenerationError(p.Name(), ErrCodeBadResponse, "failed to decode response", false, err)
	}

	images, err := p.decodeImages(reply.Images, request.ImageCount)
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
func (p *WebUIPipeline) Close() error {
	return p.limiter.Close()
}

// buildPayload maps a Request onto the img2img wire format.
func (p *WebUIPipeline) buildPayload(request Request) (*img2imgRequest, error) {
	seedPNG, err := letterbox.EncodePNG(request.InitImage)
	if err != nil {
		return nil, NewGenerationError(p.Name(), ErrCodeInvalidRequest, "failed to encode seed image", false, err)
	}

	return &img2imgRequest{
		InitImages:        []string{base64.StdEncoding.EncodeToString(seedPNG)},
		Prompt:            request.Prompt,
		NegativePrompt:    request.NegativePrompt,
		DenoisingStrength: request.Strength,
		CFGScale:          request.GuidanceScale,
		Steps:             request.Steps,
		BatchSize:         request.ImageCount,
		NIter:             1,
		Width:             p.config.InputSize,
		Height:            p.config.InputSize,
		Seed:              request.Seed,
		SamplerName:       p.config.Sampler,
		SendImages:        true,
		SaveImages:        false,
		OverrideSettings:  p.config.OverrideSettings,

		OverrideSettingsRestoreAfterwards: true,
	}, nil
}

// decodeImages converts the base64 batch back into images. Servers
// configured to return a grid prepend it to the batch; only the trailing
// count entries are the per-image outputs.
func (p *WebUIPipeline) decodeImages(encoded []string, count int) ([]image.Image, error) {
	if len(encoded) < count {
		return nil, NewGenerationError(p.Name(), ErrCodeBadResponse,
			fmt.Sprintf("expected %d images, got %d", count, len(encoded)), false, nil)
	}
	encoded = encoded[len(encoded)-count:]

	images := make([]image.Image, 0, count)
	for i, item := range encoded {
		// Some servers wrap payloads as data URLs.
		if idx := strings.IndexByte(item, ','); idx != -1 && strings.HasPrefix(item, "data:") {
			item = item[idx+1:]
		}

		raw, err := base64.StdEncoding.DecodeString(item)
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

// statusError maps an HTTP failure status onto a GenerationError.
func (p *WebUIPipeline) statusError(status int, body []byte) *GenerationError {
	msg := fmt.Sprintf("img2img returned status %d", status)
	if detail := strings.TrimSpace(string(body)); detail != "" {
		msg += ": " + detail
	}

	switch {
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return NewGenerationError(p.Name(), ErrCodeTimeout, msg, true, nil)
	case status >= 500:
		return NewGenerationError(p.Name(), ErrCodeBackendDown, msg, true, nil)
	default:
		return NewGenerationError(p.Name(), ErrCodeGenerationFailed, msg, false, nil)
	}
}

// Ensure WebUIPipeline implements Pipeline.
var _ Pipeline = (*WebUIPipeline)(nil)
