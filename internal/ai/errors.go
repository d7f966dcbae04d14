package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ConfigurationError reports a missing or rejected credential.
// It is raised before any network attempt when the key is absent.
type ConfigurationError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s configuration error: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s configuration error: %s", e.Provider, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// TransportError reports a network failure, timeout or non-auth API error
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the call ran out of time
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ProviderError reports a response that carried no usable text, or a
// contract the provider cannot be asked to honor
type ProviderError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s returned no usable output: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s returned no usable output: %s", e.Provider, e.Reason)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func unsupportedContract(provider, name string, err error) error {
	return &ProviderError{Provider: provider, Reason: "cannot express " + name + " contract", Err: err}
}

func missingCredential(provider string) error {
	return &ConfigurationError{Provider: provider, Reason: "API key is not configured"}
}

// classifyStatus maps an HTTP status returned by a provider onto the error taxonomy
func classifyStatus(provider string, status int, err error) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &ConfigurationError{Provider: provider, Reason: "credential rejected", Err: err}
	}
	return &TransportError{Provider: provider, Err: err}
}
