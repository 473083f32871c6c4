// Package vision provides an OCR service adapter backed by a vision
// language model through the OpenAI API. Image regions are attached as
// base64 data URLs and the model answers with a structured verdict.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
)

// Ensure Service implements the interfaces.
var (
	_ driven.OCRService       = (*Service)(nil)
	_ driven.PromptStoreAware = (*Service)(nil)
)

// Default configuration values.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the vision OCR service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL. Leave empty for the OpenAI default;
	// set for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the vision model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Service probes image regions with a vision model.
type Service struct {
	client      *openai.Client
	model       string
	promptStore driven.PromptStore
}

// New creates a new vision OCR service.
func New(cfg Config) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Service{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

// defaultDetectPrompt is the fallback prompt when no PromptStore is configured.
const defaultDetectPrompt = `Look at the attached page image region.
Does it render tabular content (rows and columns of values)?
Answer with a JSON object: {"is_table": true|false, "text_len": <int>}
where text_len is the approximate count of readable characters.`

// defaultExtractPrompt asks for a plain transcription of the region.
const defaultExtractPrompt = `Transcribe all readable text in the attached image region.
Return the text only, with no commentary.`

// detectVerdict is the JSON shape the model answers with.
type detectVerdict struct {
	IsTable bool `json:"is_table"`
	TextLen int  `json:"text_len"`
}

// DetectElements asks the vision model whether an image region renders
// a table and how much text it carries.
func (s *Service) DetectElements(ctx context.Context, region domain.ImageRegion) (driven.OCRVerdict, error) {
	prompt := s.loadPrompt(driven.PromptOCRDetect, defaultDetectPrompt)

	reply, err := s.askAboutImage(ctx, prompt, region, 100)
	if err != nil {
		return driven.OCRVerdict{}, err
	}

	var verdict detectVerdict
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &verdict); err != nil {
		return driven.OCRVerdict{}, fmt.Errorf("unexpected detect reply %q: %w", reply, domain.ErrInvalidInput)
	}

	return driven.OCRVerdict{
		IsTable: verdict.IsTable,
		TextLen: verdict.TextLen,
	}, nil
}

// ExtractText transcribes the readable text inside an image region.
func (s *Service) ExtractText(ctx context.Context, region domain.ImageRegion) (string, error) {
	reply, err := s.askAboutImage(ctx, defaultExtractPrompt, region, 1000)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// askAboutImage sends one user message carrying the prompt and the
// region bytes as a data URL, and returns the model reply.
func (s *Service) askAboutImage(ctx context.Context, prompt string, region domain.ImageRegion, maxTokens int) (string, error) {
	if len(region.Data) == 0 {
		return "", fmt.Errorf("image region carries no bytes: %w", domain.ErrInvalidInput)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(region.Data),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision: no response choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// dataURL encodes image bytes as a base64 data URL, sniffing the
// content type from the bytes themselves.
func dataURL(data []byte) string {
	contentType := http.DetectContentType(data)
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models wrap JSON replies in despite instructions.
func stripCodeFence(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *Service) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// Name identifies the backend for logs and manifests.
func (s *Service) Name() string {
	return "vision:" + s.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *Service) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Close releases resources.
func (s *Service) Close() error {
	return nil
}
