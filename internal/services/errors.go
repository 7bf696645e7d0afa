package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/desertthunder/outside/internal/shared"
)

// APIError is a non-2xx response from the venue API.
//
// Fields holds the error body decoded as field name to messages. Bodies of the form {"detail": "..."}
// and {"username": ["..."]} are both normalized to lists.
type APIError struct {
	StatusCode int
	Body       []byte
	Fields     map[string][]string
}

// NewAPIError builds an [APIError] from a status code and response body.
func NewAPIError(status int, body []byte) *APIError {
	return &APIError{StatusCode: status, Body: body, Fields: parseErrorFields(body)}
}

func (e *APIError) Error() string {
	if msg := e.Message("", "detail", "error", "non_field_errors"); msg != "" {
		return fmt.Sprintf("venue API error (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("venue API error: status %d", e.StatusCode)
}

// Unwrap lets [errors.Is] match [shared.ErrAPIRequest] and the status-specific sentinel.
func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		errs = append(errs, shared.ErrNotAuthenticated)
	case http.StatusNotFound:
		errs = append(errs, shared.ErrVenueNotFound)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		errs = append(errs, shared.ErrServiceUnavailable)
	}
	return errs
}

// First returns the first message recorded for field, or "".
func (e *APIError) First(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Message returns the first message of the first field in priority order that has one, or fallback.
func (e *APIError) Message(fallback string, fields ...string) string {
	for _, f := range fields {
		if msg := e.First(f); msg != "" {
			return msg
		}
	}
	return fallback
}

// FieldNames lists the fields present in the body, sorted.
func (e *APIError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func parseErrorFields(body []byte) map[string][]string {
	fields := make(map[string][]string)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		// A bare list is how DRF reports a ValidationError raised with a plain string.
		var list []string
		if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
			fields["non_field_errors"] = list
		}
		return fields
	}

	for key, value := range raw {
		if msgs := flattenMessages(value); len(msgs) > 0 {
			fields[key] = msgs
		}
	}
	return fields
}

func flattenMessages(value json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return []string{s}
		}
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(value, &list); err == nil {
		var out []string
		for _, item := range list {
			out = append(out, flattenMessages(item)...)
		}
		return out
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(value, &nested); err == nil {
		keys := make([]string, 0, len(nested))
		for k := range nested {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var out []string
		for _, k := range keys {
			out = append(out, flattenMessages(nested[k])...)
		}
		return out
	}

	return nil
}
