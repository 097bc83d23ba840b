package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"uav-logchat/flightdesk/internal/constants"
	"uav-logchat/flightdesk/internal/logging"
)

const (
	geminiMaxAttempts  = 3
	geminiInitialDelay = time.Second
	geminiMaxBodyBytes = 4 << 20
)

// GeminiProvider calls the Gemini generateContent REST endpoint.
type GeminiProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client

	// MaxAttempts and InitialDelay control retries of 429 and 5xx responses.
	MaxAttempts  int
	InitialDelay time.Duration
}

var _ LanguageModel = (*GeminiProvider)(nil)

func NewGeminiProvider(baseURL, apiKey, model string, timeout time.Duration) *GeminiProvider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiProvider{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		APIKey:       apiKey,
		Model:        model,
		Client:       &http.Client{Timeout: timeout},
		MaxAttempts:  geminiMaxAttempts,
		InitialDelay: geminiInitialDelay,
	}
}

func (p *GeminiProvider) GetProviderType() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateContent sends prompt as a single user turn and returns the text of the
// first candidate.
func (p *GeminiProvider) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if p.APIKey == "" {
		return "", &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: "GEMINI_API_KEY is not set",
		}
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to marshal request body",
			Err:     err,
		}
	}

	endpoint := fmt.Sprintf("/models/%s:generateContent", p.Model)

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr *ProviderError
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.InitialDelay << (attempt - 1)
			logging.Warn("Retrying language model request",
				"provider", p.GetProviderType(),
				"attempt", attempt+1,
				"delay", delay.String(),
				"error", lastErr.Error(),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", &ProviderError{
					Code:    constants.ErrCodeNetworkError,
					Message: "Request cancelled while waiting to retry",
					Err:     ctx.Err(),
				}
			}
		}

		body, provErr := p.doPost(ctx, endpoint, payload)
		if provErr == nil {
			return p.decode(body)
		}
		lastErr = provErr
		if ctx.Err() != nil || !provErr.Retryable() {
			return "", provErr
		}
	}

	return "", lastErr
}

// doPost performs one POST and returns the body of a 2xx response.
func (p *GeminiProvider) doPost(ctx context.Context, endpoint string, payload []byte) ([]byte, *ProviderError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("x-goog-api-key", p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, geminiMaxBodyBytes))
	if err != nil {
		return nil, &ProviderError{
			Code:       constants.ErrCodeNetworkError,
			Message:    "Failed to read response body",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, p.buildHTTPError(resp.StatusCode, endpoint, bodyBytes)
	}
	return bodyBytes, nil
}

func (p *GeminiProvider) decode(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidDataFormat),
			Details: string(body),
			Err:     err,
		}
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", &ProviderError{
			Code:    constants.ErrCodeContentBlocked,
			Message: constants.GetErrorMessage(constants.ErrCodeContentBlocked),
			Details: resp.PromptFeedback.BlockReason,
		}
	}

	if len(resp.Candidates) == 0 {
		return "", &ProviderError{
			Code:    constants.ErrCodeEmptyResponse,
			Message: constants.GetErrorMessage(constants.ErrCodeEmptyResponse),
		}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", &ProviderError{
			Code:    constants.ErrCodeEmptyResponse,
			Message: constants.GetErrorMessage(constants.ErrCodeEmptyResponse),
			Details: resp.Candidates[0].FinishReason,
		}
	}
	return sb.String(), nil
}

// buildHTTPError creates appropriate error based on status code
func (p *GeminiProvider) buildHTTPError(statusCode int, endpoint string, body []byte) *ProviderError {
	detail := string(body)
	var apiErr geminiErrorBody
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		detail = apiErr.Error.Message
	}

	e := &ProviderError{
		StatusCode: statusCode,
		Details:    detail,
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		e.Code = constants.ErrCodeAuthenticationFailed
		e.Message = fmt.Sprintf("Authentication failed for endpoint %s", endpoint)
	case statusCode == http.StatusNotFound:
		e.Code = constants.ErrCodeModelNotFound
		e.Message = fmt.Sprintf("Model %s not found", p.Model)
	case statusCode == http.StatusTooManyRequests:
		e.Code = constants.ErrCodeRateLimited
		e.Message = constants.GetErrorMessage(constants.ErrCodeRateLimited)
	case statusCode == http.StatusBadRequest:
		e.Code = constants.ErrCodeBadRequest
		e.Message = fmt.Sprintf("Bad request to %s: %s", endpoint, detail)
		// Gemini reports an invalid key as 400 INVALID_ARGUMENT
		if strings.Contains(strings.ToLower(detail), "api key") {
			e.Code = constants.ErrCodeInvalidAPIKey
			e.Message = constants.GetErrorMessage(constants.ErrCodeInvalidAPIKey)
		}
	default:
		e.Code = constants.ErrCodeUpstreamError
		e.Message = fmt.Sprintf("HTTP %d from %s: %s", statusCode, endpoint, detail)
	}
	return e
}

// IsProviderError reports whether err is a *ProviderError with the given code.
func IsProviderError(err error, code string) bool {
	var provErr *ProviderError
	return errors.As(err, &provErr) && provErr.Code == code
}
