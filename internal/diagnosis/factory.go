package diagnosis

import (
	"fmt"
	"strings"

	"replay-doctor/internal/config"
)

const (
	ProviderGemini           = "gemini"
	ProviderGeminiStructured = "gemini-structured"
	ProviderOpenAI           = "openai"
)

// Factory creates diagnostic clients with consistent logic. The provider
// picks the strategy; the orchestration above it never changes.
type Factory struct {
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	Options      GenerationOptions
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OpenAIModel:  cfg.OpenAIModel,
		Options: GenerationOptions{
			MaxOutputTokens: cfg.MaxOutputTokens,
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
			Seed:            cfg.Seed,
		},
	}
}

func (f *Factory) CreateClient(provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderGemini:
		if f.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for provider %q", provider)
		}
		return NewGemini(f.GeminiAPIKey, f.GeminiModel, false, f.Options), nil
	case ProviderGeminiStructured:
		if f.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for provider %q", provider)
		}
		return NewGemini(f.GeminiAPIKey, f.GeminiModel, true, f.Options), nil
	case ProviderOpenAI:
		if f.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for provider %q", provider)
		}
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIModel, f.Options), nil
	default:
		return nil, fmt.Errorf("unknown diagnosis provider: %s", provider)
	}
}
