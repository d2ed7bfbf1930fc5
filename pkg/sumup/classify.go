package sumup

import (
	"encoding/json"
	"fmt"
)

// Default messages used when an error body carries no usable text
const (
	defaultServerMessage = "Server error"
	defaultClientMessage = "Client error"
)

// outcome is the view of a response that classification rules inspect.
// At most one of object and list is set.
type outcome struct {
	status int
	null   bool
	object map[string]any
	list   []any
}

// rule is one step of the classification chain
type rule struct {
	name  string
	match func(o *outcome) bool
	build func(o *outcome) error
}

// classificationRules are evaluated in order and the first match wins.
// Body-shape rules come before the status thresholds, so a 400 carrying a
// recognised body is reported by its shape, and an error body on a 200 is
// still an error.
var classificationRules = []rule{
	{name: "unauthorized", match: isUnauthorized, build: authenticationFailure},
	{name: "invalid field", match: hasFieldError, build: fieldFailure},
	{name: "reader", match: hasReaderErrors, build: readerFailure},
	{name: "invalid field list", match: hasFieldErrorList, build: fieldListFailure},
	{name: "server", match: func(o *outcome) bool { return o.status >= 500 }, build: serverFailure},
	{name: "client", match: func(o *outcome) bool { return o.status >= 400 }, build: clientFailure},
}

// Classify decides whether a completed exchange succeeded. It returns either
// the response wrapping statusCode and body unchanged, or exactly one of
// *AuthenticationError, *ValidationError, *ReaderError, *ServerError or
// *ClientError. It keeps no state and is safe for concurrent use.
func Classify(statusCode int, body any) (*Response, error) {
	o := newOutcome(statusCode, body)
	for _, r := range classificationRules {
		if r.match(o) {
			return nil, r.build(o)
		}
	}
	return NewResponse(statusCode, body), nil
}

func newOutcome(statusCode int, body any) *outcome {
	o := &outcome{status: statusCode}
	switch b := normalizeBody(body).(type) {
	case nil:
		o.null = true
	case map[string]any:
		o.object = b
	case []any:
		o.list = b
	}
	return o
}

// normalizeBody brings typed values (structs, typed slices, raw JSON) to the
// generic shape produced by encoding/json so the rules only deal with maps
// and slices. Maps and slices are always re-encoded since typed values may
// sit anywhere inside them.
func normalizeBody(body any) any {
	switch b := body.(type) {
	case nil, string, bool, float64:
		return b
	case json.RawMessage:
		return decodeJSON(b)
	case []byte:
		return decodeJSON(b)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return body
	}
	return decodeJSON(raw)
}

func decodeJSON(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func isUnauthorized(o *outcome) bool {
	code, ok := stringField(o.object, "code")
	return ok && code == "unauthorized"
}

func authenticationFailure(o *outcome) error {
	msg, _ := textField(o.object, "message")
	return &AuthenticationError{APIError{Message: msg, HTTPStatus: o.status}}
}

func hasFieldError(o *outcome) bool {
	code, ok := stringField(o.object, "error")
	return ok && (code == "MISSING" || code == "invalid_grant")
}

func fieldFailure(o *outcome) error {
	field, _ := textField(o.object, "error_description")
	return newValidationError([]string{field}, o.status)
}

func readerErrors(o *outcome) (map[string]any, bool) {
	errs, ok := o.object["errors"].(map[string]any)
	return errs, ok
}

func hasReaderErrors(o *outcome) bool {
	_, ok := readerErrors(o)
	return ok
}

// readerFailure reports READER_OFFLINE as is and every other type as
// READER_BUSY.
func readerFailure(o *outcome) error {
	errs, _ := readerErrors(o)
	detail, _ := textField(errs, "detail")
	kind := ReaderBusy
	if t, ok := stringField(errs, "type"); ok && t == string(ReaderNotConnected) {
		kind = ReaderNotConnected
	}
	return &ReaderError{APIError: APIError{Message: detail, HTTPStatus: o.status}, Type: kind}
}

func hasFieldErrorList(o *outcome) bool {
	if len(o.list) == 0 {
		return false
	}
	first, _ := o.list[0].(map[string]any)
	code, ok := stringField(first, "error_code")
	return ok && (code == "MISSING" || code == "INVALID")
}

func fieldListFailure(o *outcome) error {
	fields := make([]string, 0, len(o.list))
	for _, item := range o.list {
		entry, _ := item.(map[string]any)
		param, _ := textField(entry, "param")
		fields = append(fields, param)
	}
	return newValidationError(fields, o.status)
}

func serverFailure(o *outcome) error {
	return &ServerError{APIError{Message: errorMessage(o, defaultServerMessage), HTTPStatus: o.status}}
}

func clientFailure(o *outcome) error {
	return &ClientError{APIError{Message: errorMessage(o, defaultClientMessage), HTTPStatus: o.status}}
}

// errorMessage picks the first present of message, errors.detail and
// error_message, falling back to def.
func errorMessage(o *outcome, def string) string {
	if o.null {
		return def
	}
	if msg, ok := textField(o.object, "message"); ok {
		return msg
	}
	if errs, ok := readerErrors(o); ok {
		if detail, ok := textField(errs, "detail"); ok {
			return detail
		}
	}
	if msg, ok := textField(o.object, "error_message"); ok {
		return msg
	}
	return def
}

// stringField returns m[key] when it holds a string
func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// textField returns m[key] rendered as text when it is present and not null
func textField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}
