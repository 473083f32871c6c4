package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAIProvider_IsValid tests all valid and invalid AI providers
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{
			name:     "ollama is valid",
			provider: AIProviderOllama,
			expected: true,
		},
		{
			name:     "openai is valid",
			provider: AIProviderOpenAI,
			expected: true,
		},
		{
			name:     "anthropic is valid",
			provider: AIProviderAnthropic,
			expected: true,
		},
		{
			name:     "empty string is invalid",
			provider: AIProvider(""),
			expected: false,
		},
		{
			name:     "unknown provider is invalid",
			provider: AIProvider("gemini"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.provider.IsValid()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
}

func TestAIProvider_IsLocal(t *testing.T) {
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())
	assert.False(t, AIProviderAnthropic.IsLocal())
}

func TestOCRProvider_IsValid(t *testing.T) {
	assert.True(t, OCRProviderMock.IsValid())
	assert.True(t, OCRProviderVision.IsValid())
	assert.False(t, OCRProvider("tesseract").IsValid())
	assert.False(t, OCRProvider("").IsValid())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{
			name:     "unconfigured settings",
			settings: LLMSettings{},
			expected: false,
		},
		{
			name:     "ollama without key",
			settings: LLMSettings{Provider: AIProviderOllama},
			expected: true,
		},
		{
			name:     "openai without key",
			settings: LLMSettings{Provider: AIProviderOpenAI},
			expected: false,
		},
		{
			name:     "openai with key",
			settings: LLMSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"},
			expected: true,
		},
		{
			name:     "anthropic with key",
			settings: LLMSettings{Provider: AIProviderAnthropic, APIKey: "sk-ant"},
			expected: true,
		},
		{
			name:     "invalid provider with key",
			settings: LLMSettings{Provider: AIProvider("gemini"), APIKey: "key"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestOCRSettings_IsConfigured(t *testing.T) {
	assert.False(t, OCRSettings{}.IsConfigured())
	assert.True(t, OCRSettings{Provider: OCRProviderMock}.IsConfigured())
	assert.False(t, OCRSettings{Provider: OCRProviderVision}.IsConfigured())
	assert.True(t, OCRSettings{Provider: OCRProviderVision, APIKey: "sk-test"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	settings := DefaultAppSettings()

	assert.False(t, settings.LLM.IsConfigured())
	assert.False(t, settings.OCR.IsConfigured())
	assert.Equal(t, 4, settings.Annotate.Workers)
	assert.Equal(t, 10, settings.Annotate.OCRTimeoutSeconds)
	assert.Zero(t, settings.Annotate.RateLimit)
}

func TestDefaultLLMModels_CoversAllProviders(t *testing.T) {
	models := DefaultLLMModels()
	for _, provider := range AllLLMProviders() {
		assert.NotEmpty(t, models[provider], "no default model for %s", provider)
	}
}
