package availability

import (
	"errors"
	"net/http"
)

// Machine-readable error codes returned to callers
const (
	CodeNotConfigured     = "not_configured"
	CodeInvalidDomain     = "invalid_domain"
	CodeInvalidCredential = "invalid_credential"
	CodeProviderError     = "provider_error"
	CodeInternal          = "internal"
)

const invalidCredentialMessage = "Invalid WhoisJSON token. Please check the token in Integrations and save it again."

// ProviderError is a lookup failure carrying the HTTP status to answer with
type ProviderError struct {
	Status  int
	Code    string
	Message string
	Raw     map[string]any
}

func (e *ProviderError) Error() string {
	return e.Message
}

// AsProviderError unwraps err into a ProviderError, wrapping unknown errors as internal
func AsProviderError(err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: err.Error()}
}

func notConfigured() *ProviderError {
	return &ProviderError{
		Status:  http.StatusPreconditionFailed,
		Code:    CodeNotConfigured,
		Message: "WhoAPI API key not configured",
	}
}

func invalidDomain() *ProviderError {
	return &ProviderError{
		Status:  http.StatusBadRequest,
		Code:    CodeInvalidDomain,
		Message: "domain is required",
	}
}
