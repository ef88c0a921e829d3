package catalog

import "errors"

var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	// The error message carries the response body when the service sent one.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrInvalidBaseURL indicates that the configured catalog base URL cannot be parsed.
	ErrInvalidBaseURL = errors.New("invalid catalog base URL")
)
