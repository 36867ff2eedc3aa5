package currency

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration     = errors.New("configuration error")
	ErrUpstream          = errors.New("upstream API error")
	ErrMalformedResponse = errors.New("malformed API response")
	ErrMissingField      = errors.New("missing field in API response")
	ErrStoreWrite        = errors.New("store write error")
)

type (
	ConfigurationError struct {
		Variable string
		Reason   string
	}

	// UpstreamError is returned when the rates API cannot be reached or answers with
	// anything but 200. StatusCode is 0 when no response was received.
	UpstreamError struct {
		StatusCode int
		Body       string
		Err        error
	}

	MalformedResponseError struct {
		Reason string
		Err    error
	}

	MissingFieldError struct {
		Field string
	}

	StoreWriteError struct {
		Key     string
		Code    string
		Message string
		Err     error
	}
)

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid value for environment variable '%s': %s", e.Variable, e.Reason)
	}

	return fmt.Sprintf("Missing environment variable '%s'", e.Variable)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("API call failed: %v", e.Err)
	}

	return fmt.Sprintf("API call failed with status code %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid JSON format received from the external API: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("invalid JSON format received from the external API: %s", e.Reason)
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("failed to reformat JSON, missing expected key: '%s'", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

func (e *StoreWriteError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage error: %s - %s", e.Code, e.Message)
	}

	return fmt.Sprintf("error putting item %s into storage: %s - %s", e.Key, e.Code, e.Message)
}

func (e *StoreWriteError) Is(target error) bool {
	return target == ErrStoreWrite
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}
