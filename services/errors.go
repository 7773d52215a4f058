package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError means the request was rejected before any network call,
// e.g. a missing payment id or an unknown payment method.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError means the backend could not be reached or did not answer.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BackendError means the backend answered with an error envelope or a
// non-2xx status. StatusCode preserves the HTTP status for the caller.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return e.Message
}

// NotFoundError means the backend has no payment data for the given id.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ErrorMessage extracts the human-readable message to surface for err,
// falling back to the supplied default.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var (
		ve *ValidationError
		ne *NetworkError
		be *BackendError
		nf *NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &be):
		if be.Message != "" {
			return be.Message
		}
	case errors.As(err, &nf):
		return nf.Message
	case errors.As(err, &ne):
		if ne.Message != "" {
			return ne.Message
		}
	}
	return fallback
}

// ErrorStatusCode maps err to the HTTP status the checkout should answer
// with when it proxies the failure to the browser.
func ErrorStatusCode(err error) int {
	var (
		ve *ValidationError
		be *BackendError
		nf *NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &be):
		if be.StatusCode != 0 {
			return be.StatusCode
		}
		return http.StatusBadGateway
	case err != nil:
		return http.StatusBadGateway
	}
	return http.StatusOK
}
