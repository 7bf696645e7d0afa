package services

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/outside/internal/shared"
)

func TestAPIError(t *testing.T) {
	tc := []struct {
		name   string
		body   string
		fields []string
		want   string
	}{
		{name: "detail string", body: `{"detail": "Not found."}`, fields: []string{"detail"}, want: "Not found."},
		{name: "non field errors list", body: `{"non_field_errors": ["Invalid username or password."]}`, fields: []string{"detail", "non_field_errors"}, want: "Invalid username or password."},
		{name: "priority order", body: `{"password": ["Too short."], "username": ["Taken."]}`, fields: []string{"username", "password"}, want: "Taken."},
		{name: "nested object", body: `{"password": {"0": "This password is too common."}}`, fields: []string{"password"}, want: "This password is too common."},
		{name: "bare list", body: `["Must include \"username\" and \"password\"."]`, fields: []string{"non_field_errors"}, want: `Must include "username" and "password".`},
		{name: "html body", body: `<html>Server Error</html>`, fields: []string{"detail"}, want: "fallback"},
		{name: "empty values skipped", body: `{"detail": "", "username": []}`, fields: []string{"detail", "username"}, want: "fallback"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(http.StatusBadRequest, []byte(tt.body))
			if got := err.Message("fallback", tt.fields...); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("Error string", func(t *testing.T) {
		err := NewAPIError(http.StatusBadRequest, []byte(`{"error": "Category and city are required"}`))
		if !strings.Contains(err.Error(), "Category and city are required") {
			t.Errorf("unexpected error string: %s", err.Error())
		}

		bare := NewAPIError(http.StatusInternalServerError, nil)
		if bare.Error() != "venue API error: status 500" {
			t.Errorf("unexpected error string: %s", bare.Error())
		}
	})

	t.Run("sentinels", func(t *testing.T) {
		tc := []struct {
			status int
			want   error
		}{
			{http.StatusUnauthorized, shared.ErrNotAuthenticated},
			{http.StatusForbidden, shared.ErrNotAuthenticated},
			{http.StatusNotFound, shared.ErrVenueNotFound},
			{http.StatusServiceUnavailable, shared.ErrServiceUnavailable},
			{http.StatusTeapot, shared.ErrAPIRequest},
		}
		for _, tt := range tc {
			err := error(NewAPIError(tt.status, nil))
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d: expected %v", tt.status, tt.want)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("status %d: expected ErrAPIRequest", tt.status)
			}
		}
	})
}
