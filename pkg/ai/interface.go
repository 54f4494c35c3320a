package ai

import (
	"context"
	"net/http"
	"time"
)

// completionTimeout caps one completion round trip so a hung upstream
// never pins a scheduler tick or request handler past it.
const completionTimeout = 2 * time.Minute

// httpClient is shared by all providers
var httpClient = &http.Client{Timeout: completionTimeout}

// Role of a chat message sent to the model
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the prompt
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the interface for chat-completion inference.
// Implement this interface to add new providers (Gemini, Ollama, OpenAI, etc.)
type Client interface {
	Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
