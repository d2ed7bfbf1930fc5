package sumup

import (
	"encoding/json"
	"fmt"
)

// Response is a completed HTTP exchange: the status code and the decoded JSON
// body. Body is whatever the transport decoded (map[string]any, []any, a
// scalar or nil). A Response is never mutated after construction.
type Response struct {
	statusCode int
	body       any
}

// NewResponse wraps a raw outcome. Transports use it to hand results back to
// the service before classification.
func NewResponse(statusCode int, body any) *Response {
	return &Response{statusCode: statusCode, body: body}
}

// HTTPResponseCode returns the HTTP status code
func (r *Response) HTTPResponseCode() int { return r.statusCode }

// Body returns the decoded body exactly as received
func (r *Response) Body() any { return r.body }

// Decode copies the body into v, typically one of the model structs
func (r *Response) Decode(v any) error {
	raw, err := json.Marshal(r.body)
	if err != nil {
		return fmt.Errorf("failed to encode body: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}
	return nil
}
