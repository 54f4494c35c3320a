package ai

import "fmt"

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewClient creates a Client based on the config.
// This is the factory function - switch AI provider by changing config.Provider.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(cfg.GeminiAPIKey), nil

	case ProviderOllama:
		return NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	default:
		// Auto: Gemini first when an API key is available, Ollama as
		// the local fallback
		if cfg.GeminiAPIKey != "" {
			return NewFallbackClient(
				NewGeminiClient(cfg.GeminiAPIKey),
				NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel),
			), nil
		}
		return NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	}
}
