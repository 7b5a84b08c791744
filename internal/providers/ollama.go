package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	OllamaName                    = "ollama"
	OllamaDefaultBaseURL          = "http://localhost:11434"
	ollamaDefaultVisionModel      = "qwen2.5-vl"
	ollamaDefaultAdjudicatorModel = "llama3.1"
)

// OllamaConfig holds configuration for the Ollama backend.
type OllamaConfig struct {
	BaseURL          string
	VisionModel      string
	AdjudicatorModel string
	Timeout          time.Duration
	MaxRetries       int
	RateLimit        float64 // Requests per second
}

// OllamaBackend implements VisionBackend and AdjudicatorBackend against a
// local Ollama server's generate API.
type OllamaBackend struct {
	baseURL          string
	visionModel      string
	adjudicatorModel string
	maxRetries       int
	client           *http.Client
	limiter          *RateLimiter
}

// NewOllamaBackend creates a new Ollama backend.
func NewOllamaBackend(cfg OllamaConfig) *OllamaBackend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OllamaDefaultBaseURL
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = ollamaDefaultVisionModel
	}
	if cfg.AdjudicatorModel == "" {
		cfg.AdjudicatorModel = ollamaDefaultAdjudicatorModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 4.0
	}

	return &OllamaBackend{
		baseURL:          cfg.BaseURL,
		visionModel:      cfg.VisionModel,
		adjudicatorModel: cfg.AdjudicatorModel,
		maxRetries:       cfg.MaxRetries,
		client:           &http.Client{Timeout: cfg.Timeout},
		limiter:          NewRateLimiter(cfg.RateLimit),
	}
}

// Name returns the backend identifier.
func (b *OllamaBackend) Name() string {
	return OllamaName
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Images  []string       `json:"images,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Extract converts a page image to markdown via the vision model.
func (b *OllamaBackend) Extract(ctx context.Context, image []byte, prompt string) (string, error) {
	if prompt == "" {
		prompt = VisionPrompt
	}

	req := ollamaGenerateRequest{
		Model:   b.visionModel,
		Prompt:  prompt,
		Images:  []string{base64.StdEncoding.EncodeToString(image)},
		Stream:  false,
		Options: map[string]any{"temperature": 0},
	}

	resp, err := b.generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("ollama vision extraction failed: %w", err)
	}
	return resp.Response, nil
}

// Select picks one of two candidates via the text model.
func (b *OllamaBackend) Select(ctx context.Context, contextBefore, candidateA, candidateB, contextAfter string) (*Adjudication, error) {
	prompt := AdjudicatorSystemPrompt + "\n\n" +
		adjudicationUserPrompt(contextBefore, candidateA, candidateB, contextAfter)

	req := ollamaGenerateRequest{
		Model:   b.adjudicatorModel,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"temperature": 0},
	}

	resp, err := b.generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ollama adjudication failed: %w", err)
	}
	return parseAdjudication(resp.Response, candidateA, candidateB)
}

// generate posts to /api/generate with retry on transport errors.
func (b *OllamaBackend) generate(ctx context.Context, genReq ollamaGenerateRequest) (*ollamaGenerateResponse, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var genResp ollamaGenerateResponse
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/generate", bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := b.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed reading response: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
			}
			return json.Unmarshal(respBody, &genResp)
		},
		retry.Context(ctx),
		retry.Attempts(uint(b.maxRetries)),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return &genResp, nil
}
