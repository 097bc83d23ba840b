package providers

import (
	"context"
	"fmt"
)

// LanguageModel generates a text completion for a prompt.
type LanguageModel interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}

// ProviderError is a failure talking to an external provider, classified by Code
// (see constants.ErrCode*).
type ProviderError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the request may succeed if sent again.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500 || (e.StatusCode == 0 && e.Err != nil)
}
