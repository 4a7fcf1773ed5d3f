package inference

import (
	"errors"
	"fmt"
)

// ErrNotConfigured indicates no API key is set. It is returned before any
// throttle wait or network activity.
var ErrNotConfigured = errors.New("inference api key not configured")

// ErrInvalidAPIKey indicates the endpoint rejected the configured key.
var ErrInvalidAPIKey = errors.New("invalid api key, check the configured inference credentials")

// ErrRateLimited indicates the endpoint returned HTTP 429.
var ErrRateLimited = errors.New("rate limit exceeded, try again later")

// ErrModelLoading indicates the remote model is cold-starting (HTTP 503).
var ErrModelLoading = errors.New("model is currently loading, try again in a few moments")

// StatusError reports a non-2xx response not covered by a sentinel error.
type StatusError struct {
	Code  int
	Model string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference request to %s failed with status %d", e.Model, e.Code)
}
