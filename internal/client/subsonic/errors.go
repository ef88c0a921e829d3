package subsonic

import "errors"

var (
	// ErrInvalidBaseURL indicates the configured Subsonic server URL could not be parsed.
	ErrInvalidBaseURL = errors.New("invalid subsonic server URL")

	// ErrUnexpectedHTTPStatus indicates the server replied with a non-200 status code.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status code")

	// ErrScanRejected indicates the server answered the scan request with a failed status.
	ErrScanRejected = errors.New("subsonic server rejected the scan request")
)
