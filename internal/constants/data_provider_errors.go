package constants

// Language-model provider error codes.
const (
	ErrCodeInvalidAPIKey        = "INVALID_API_KEY"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeModelNotFound        = "MODEL_NOT_FOUND"
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeUpstreamError        = "UPSTREAM_ERROR"
	ErrCodeContentBlocked       = "CONTENT_BLOCKED"
	ErrCodeEmptyResponse        = "EMPTY_RESPONSE"
	ErrCodeInvalidDataFormat    = "INVALID_DATA_FORMAT"
)

var ProviderErrorMessages = map[string]string{
	ErrCodeInvalidAPIKey:        "The language model API key is missing or invalid",
	ErrCodeAuthenticationFailed: "Authentication with the language model provider failed",
	ErrCodeRateLimited:          "Rate limit exceeded. Please try again later",
	ErrCodeNetworkError:         "Unable to reach the language model provider",
	ErrCodeModelNotFound:        "The configured model does not exist",
	ErrCodeBadRequest:           "The provider rejected the request",
	ErrCodeUpstreamError:        "The language model provider returned an error",
	ErrCodeContentBlocked:       "The response was blocked by the provider's safety filters",
	ErrCodeEmptyResponse:        "The provider returned no content",
	ErrCodeInvalidDataFormat:    "The provider response could not be decoded",
}

// GetErrorMessage returns the human-readable message for an error code.
func GetErrorMessage(code string) string {
	if msg, ok := ProviderErrorMessages[code]; ok {
		return msg
	}
	return "An unknown error occurred"
}
