package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantHeaders map[string]string
		wantCookies map[string]string
		wantURL     string
		wantErr     bool
	}{
		{
			name:        "single header with single quotes",
			curlCmd:     `curl -H 'Accept: application/json' https://api.example.com`,
			wantHeaders: map[string]string{"Accept": "application/json"},
			wantURL:     "https://api.example.com",
		},
		{
			name:        "single header with double quotes",
			curlCmd:     `curl -H "X-CSRFToken: tok" https://api.example.com`,
			wantHeaders: map[string]string{"X-CSRFToken": "tok"},
			wantURL:     "https://api.example.com",
		},
		{
			name:        "cookie in -b flag",
			curlCmd:     `curl -b 'sessionid=abc123; csrftoken=xyz' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookies: map[string]string{"sessionid": "abc123", "csrftoken": "xyz"},
			wantURL:     "https://api.example.com",
		},
		{
			name:        "cookie header is excluded from regular headers",
			curlCmd:     `curl -H 'Cookie: sessionid=abc123' -H 'Accept: */*' https://api.example.com`,
			wantHeaders: map[string]string{"Accept": "*/*"},
			wantCookies: map[string]string{"sessionid": "abc123"},
			wantURL:     "https://api.example.com",
		},
		{
			name:        "-b cookie takes precedence over -H cookie",
			curlCmd:     `curl -H 'Cookie: old=value' -b 'new=value' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookies: map[string]string{"new": "value"},
			wantURL:     "https://api.example.com",
		},
		{
			name: "browser copy as curl",
			curlCmd: `curl 'http://127.0.0.1:8000/api/auth/me/' \
  -H 'accept: application/json' \
  -H 'cookie: csrftoken=tok123; sessionid=sess456' \
  --compressed`,
			wantHeaders: map[string]string{"accept": "application/json"},
			wantCookies: map[string]string{"csrftoken": "tok123", "sessionid": "sess456"},
			wantURL:     "http://127.0.0.1:8000/api/auth/me/",
		},
		{
			name:    "no headers or cookies",
			curlCmd: `curl https://api.example.com`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand(tc.curlCmd)

			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
			}

			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}

			if len(result.Headers) != len(tc.wantHeaders) {
				t.Errorf("headers count = %v, want %v", len(result.Headers), len(tc.wantHeaders))
			}

			for key, want := range tc.wantHeaders {
				if got := result.Headers[key]; got != want {
					t.Errorf("header[%s] = %v, want %v", key, got, want)
				}
			}

			if len(result.Cookies) != len(tc.wantCookies) {
				t.Errorf("cookies count = %v, want %v", len(result.Cookies), len(tc.wantCookies))
			}

			for name, want := range tc.wantCookies {
				c := result.Cookie(name)
				if c == nil {
					t.Errorf("missing cookie %s", name)
					continue
				}
				if c.Value != want {
					t.Errorf("cookie[%s] = %v, want %v", name, c.Value, want)
				}
			}

			if result.URL != tc.wantURL {
				t.Errorf("URL = %q, want %q", result.URL, tc.wantURL)
			}
		})
	}
}

func TestSessionImport(t *testing.T) {
	result, err := ParseCurlCommand(`curl 'http://127.0.0.1:8000/api/' -b 'sessionid=s; csrftoken=c'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.HasSession() {
		t.Error("expected session cookie to be detected")
	}

	if result.Host() != "127.0.0.1:8000" {
		t.Errorf("Host() = %q", result.Host())
	}

	if result.Cookie("missing") != nil {
		t.Error("expected nil for unknown cookie")
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		curlFile := filepath.Join(t.TempDir(), "curl.sh")

		curlCmd := `curl -H 'Accept: application/json' -b 'sessionid=abc' https://api.example.com`
		if err := os.WriteFile(curlFile, []byte(curlCmd), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}

		if !result.HasSession() {
			t.Error("expected session cookie")
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		if _, err := ParseCurlFile("/nonexistent/file.sh"); err == nil {
			t.Error("ParseCurlFile() expected error for nonexistent file")
		}
	})
}
