package api

import (
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/internal/utils"
)

// APIError is raised for any non-2xx response.
type APIError struct {
	Status  int
	Message string
	Body    json.RawMessage // raw response body, nil when empty
}

var _ errors.StatusError = (*APIError)(nil)

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) StatusCode() int {
	return e.Status
}

// newAPIError picks the message from the body's "message" field. Validation failures
// sometimes send a list of messages, those are joined.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	if len(body) > 0 {
		e.Body = json.RawMessage(body)
	}

	var parsed struct {
		Message any `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		switch m := parsed.Message.(type) {
		case string:
			e.Message = m
		case []any:
			e.Message = utils.JoinNonEmpty(utils.ToStringSlice(m), "; ")
		}
	}

	if e.Message == "" {
		e.Message = fmt.Sprintf("Request failed with status %d", status)
	}
	return e
}
