package etl

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingTitleSlug rejects a record that has no title or no slug after
// normalization. The text is reported to callers as is.
var ErrMissingTitleSlug = errors.New("Missing title/slug")

// UpstreamError is a failure reported by a backend, either through its HTTP
// status or through a failure flag in an otherwise successful response.
type UpstreamError struct {
	Op         string
	Instance   string
	Collection string
	StatusCode int
	Message    string
}

// Error returns the message the backend gave, verbatim when there is one.
func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s on %s failed: %d %s", e.Op, e.Collection, e.Instance, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s on %s failed", e.Op, e.Collection, e.Instance)
}
