package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for layout classification.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// OCRProvider identifies an OCR backend for visual element probes.
type OCRProvider string

// Available OCR providers.
const (
	// OCRProviderMock performs no recognition and confirms heuristics.
	OCRProviderMock OCRProvider = "mock"

	// OCRProviderVision probes images with a vision language model.
	OCRProviderVision OCRProvider = "vision"
)

// IsValid returns true if the OCR provider is recognised.
func (p OCRProvider) IsValid() bool {
	switch p {
	case OCRProviderMock, OCRProviderVision:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p OCRProvider) RequiresAPIKey() bool {
	return p == OCRProviderVision
}

// String returns the string representation.
func (p OCRProvider) String() string {
	return string(p)
}

// LLMSettings holds LLM provider configuration for layout classification.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// OCRSettings holds OCR backend configuration for visual probes.
type OCRSettings struct {
	// Provider is the OCR backend.
	Provider OCRProvider

	// Model is the vision model name (for the vision provider).
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key (for the vision provider).
	APIKey string
}

// IsConfigured returns true if the OCR backend is set up.
func (o OCRSettings) IsConfigured() bool {
	if !o.Provider.IsValid() {
		return false
	}
	if o.Provider.RequiresAPIKey() && o.APIKey == "" {
		return false
	}
	return true
}

// AnnotateSettings holds corpus annotation behaviour configuration.
type AnnotateSettings struct {
	// Workers is the parallel annotation worker count.
	Workers int

	// RateLimit caps external calls per second; zero means unlimited.
	RateLimit float64

	// OCRTimeoutSeconds bounds each visual probe.
	OCRTimeoutSeconds int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds layout classification provider settings.
	LLM LLMSettings

	// OCR holds visual probe backend settings.
	OCR OCRSettings

	// Annotate holds annotation run settings.
	Annotate AnnotateSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI capabilities (LLM, OCR) are left unconfigured by default and
// annotation degrades to the geometric heuristics without them.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{},
		OCR: OCRSettings{},
		Annotate: AnnotateSettings{
			Workers:           4,
			OCRTimeoutSeconds: 10,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
