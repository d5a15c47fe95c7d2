package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is returned when a marketplace body cannot be decoded into the expected shape.
var ErrMalformedResponse = errors.New("malformed marketplace response")

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport failures and timeouts.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError describes a failed marketplace call.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	// Body holds at most maxErrorBody bytes of the response.
	Body string
	Err  error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("marketplace %s error: %s %s", e.ErrorClass, e.Method, e.Endpoint)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassifyStatus maps an HTTP status code to an ErrorClass. Non-error codes return "".
func ClassifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// classifyError categorizes a transport error or response for metrics and logging.
func classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}
	if resp == nil {
		return ""
	}
	return ClassifyStatus(resp.StatusCode)
}
