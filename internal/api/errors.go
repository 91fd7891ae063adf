package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrRequest  = errors.New("error making request")
	ErrResponse = errors.New("error decoding response")
)

// FetchError is returned for any non-2xx response.
type FetchError struct {
	StatusCode int
	// Fields holds the decoded error body when the server sent a JSON
	// object, e.g. {"apartamento": ["Invalid pk"]}.
	Fields map[string]any
	Raw    []byte
}

func newFetchError(status int, body []byte) *FetchError {
	fe := &FetchError{StatusCode: status, Raw: body}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err == nil {
		fe.Fields = fields
	}
	return fe
}

func (e *FetchError) Error() string {
	if msg, ok := e.FirstMessage(); ok {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// NotFound reports a 404 response.
func (e *FetchError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// FieldMessage returns the first message the server attached to field.
func (e *FetchError) FieldMessage(field string) (string, bool) {
	if e == nil || e.Fields == nil {
		return "", false
	}
	return message(e.Fields[field])
}

// FirstMessage returns detail or non_field_errors when present, otherwise
// the message of the first field in name order.
func (e *FetchError) FirstMessage() (string, bool) {
	for _, key := range []string{"detail", "non_field_errors"} {
		if msg, ok := e.FieldMessage(key); ok {
			return msg, true
		}
	}
	if e == nil || len(e.Fields) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg, ok := message(e.Fields[k]); ok {
			return k + ": " + msg, true
		}
	}
	return "", false
}

func message(v any) (string, bool) {
	switch m := v.(type) {
	case string:
		m = strings.TrimSpace(m)
		return m, m != ""
	case []any:
		for _, item := range m {
			if s, ok := message(item); ok {
				return s, true
			}
		}
	}
	return "", false
}

// AsFetchError unwraps err into a *FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
