package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackClient routes completions across two providers:
// the primary is tried first, the secondary takes over on connection
// or quota errors.
type FallbackClient struct {
	primary   Client
	secondary Client
}

// NewFallbackClient creates a new fallback client
func NewFallbackClient(primary, secondary Client) *FallbackClient {
	return &FallbackClient{
		primary:   primary,
		secondary: secondary,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}
	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
	}
	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// Complete tries the primary provider, falling back to the secondary
// on connection or quota errors.
func (f *FallbackClient) Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	if f.primary != nil {
		result, err := f.primary.Complete(ctx, messages, maxTokens, temperature)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) || isQuotaError(err) {
			log.Printf("[AI] Primary provider unavailable: %v, falling back", err)
		} else {
			log.Printf("[AI] Primary provider error: %v, falling back", err)
		}
	}

	if f.secondary != nil {
		result, err := f.secondary.Complete(ctx, messages, maxTokens, temperature)
		if err == nil {
			return result, nil
		}
		return "", fmt.Errorf("fallback completion failed: %w", err)
	}

	return "", fmt.Errorf("no AI provider available")
}
