package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName                    = "openai"
	openAIDefaultVisionModel      = "gpt-4o"
	openAIDefaultAdjudicatorModel = "gpt-4o"
	openAIDefaultTimeout          = 60 * time.Second
)

// OpenAIConfig holds configuration for the OpenAI backend.
type OpenAIConfig struct {
	APIKey           string
	VisionModel      string
	AdjudicatorModel string
	BaseURL          string // Optional (tests)
	Timeout          time.Duration
	MaxRetries       int
	RateLimit        float64      // Requests per second
	HTTPClient       *http.Client // Optional (tests)
}

// OpenAIBackend implements VisionBackend and AdjudicatorBackend using the
// official OpenAI SDK.
type OpenAIBackend struct {
	visionModel      string
	adjudicatorModel string
	client           openai.Client
	limiter          *RateLimiter
}

// NewOpenAIBackend creates a new OpenAI backend.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	if cfg.VisionModel == "" {
		cfg.VisionModel = openAIDefaultVisionModel
	}
	if cfg.AdjudicatorModel == "" {
		cfg.AdjudicatorModel = openAIDefaultAdjudicatorModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = openAIDefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 4.0
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIBackend{
		visionModel:      cfg.VisionModel,
		adjudicatorModel: cfg.AdjudicatorModel,
		client:           openai.NewClient(opts...),
		limiter:          NewRateLimiter(cfg.RateLimit),
	}
}

// Name returns the backend identifier.
func (b *OpenAIBackend) Name() string {
	return OpenAIName
}

// Extract converts a page image to markdown using a vision chat completion.
func (b *OpenAIBackend) Extract(ctx context.Context, image []byte, prompt string) (string, error) {
	if prompt == "" {
		prompt = VisionSystemPrompt
	}
	if err := b.limiter.Wait(ctx); err != nil {
		return "", err
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.visionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(4000),
	})
	if err != nil {
		return "", fmt.Errorf("openai vision extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai vision extraction returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Select picks one of two candidates using a chat completion and validates
// the JSON reply before trusting it.
func (b *OpenAIBackend) Select(ctx context.Context, contextBefore, candidateA, candidateB, contextAfter string) (*Adjudication, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.adjudicatorModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(AdjudicatorSystemPrompt),
			openai.UserMessage(adjudicationUserPrompt(contextBefore, candidateA, candidateB, contextAfter)),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("openai adjudication failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai adjudication returned no choices")
	}

	return parseAdjudication(resp.Choices[0].Message.Content, candidateA, candidateB)
}
