package schema

import (
	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
)

type ProviderErrorCode string

const (
	ProviderError   ProviderErrorCode = "PROVIDER_ERROR"
	TimeoutError    ProviderErrorCode = "TIMEOUT_ERROR"
	ConnectionError ProviderErrorCode = "CONNECTION_ERROR"
)

// ProviderResponseError describes a failed provider round-trip, it always is ErrorProviderUnavailable.
type ProviderResponseError struct {
	Code    ProviderErrorCode `json:"code"`
	Message string            `json:"message"`
}

func (e *ProviderResponseError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *ProviderResponseError) Unwrap() error {
	return errors.ErrorProviderUnavailable
}

func NewProviderError(msg string) *ProviderResponseError {
	return &ProviderResponseError{
		Code:    ProviderError,
		Message: msg,
	}
}

func NewTimeoutError(msg string) *ProviderResponseError {
	return &ProviderResponseError{
		Code:    TimeoutError,
		Message: msg,
	}
}

func NewConnectionError(msg string) *ProviderResponseError {
	return &ProviderResponseError{
		Code:    ConnectionError,
		Message: msg,
	}
}
