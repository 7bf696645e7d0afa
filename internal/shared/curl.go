// Importing a browser session from a "Copy as cURL" command.
package shared

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderPattern = regexp.MustCompile(`(?:-H|--header)\s+'([^']+)'|(?:-H|--header)\s+"([^"]+)"`)
	curlCookiePattern = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
	curlURLPattern    = regexp.MustCompile(`curl\s+'(https?://[^']+)'|curl\s+"(https?://[^"]+)"|(https?://\S+)`)
)

// SessionImport is the request target, headers, and cookies captured from a browser request.
type SessionImport struct {
	URL     string
	Headers map[string]string
	Cookies []*http.Cookie
}

// ParseCurlFile reads a file containing a cURL command and extracts the session.
func ParseCurlFile(path string) (*SessionImport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(string(content))
}

// ParseCurlCommand extracts headers and cookies from a cURL command.
//
// A -b/--cookie flag takes precedence over a Cookie header.
func ParseCurlCommand(cmd string) (*SessionImport, error) {
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	out := &SessionImport{Headers: make(map[string]string)}
	if m := curlURLPattern.FindStringSubmatch(cmd); m != nil {
		out.URL = firstNonEmpty(m[1:]...)
	}

	var cookieHeader string
	for _, m := range curlHeaderPattern.FindAllStringSubmatch(cmd, -1) {
		key, value, ok := strings.Cut(firstNonEmpty(m[1:]...), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if strings.EqualFold(key, "cookie") {
			if cookieHeader == "" {
				cookieHeader = value
			}
			continue
		}
		out.Headers[key] = value
	}

	if m := curlCookiePattern.FindStringSubmatch(cmd); m != nil {
		cookieHeader = firstNonEmpty(m[1:]...)
	}
	out.Cookies = parseCookieHeader(cookieHeader)

	if len(out.Headers) == 0 && len(out.Cookies) == 0 {
		return nil, fmt.Errorf("%w: no headers or cookies found in curl command", ErrInvalidInput)
	}
	return out, nil
}

// Cookie returns the named cookie, or nil.
func (s *SessionImport) Cookie(name string) *http.Cookie {
	for _, c := range s.Cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// HasSession reports whether a session cookie was captured.
func (s *SessionImport) HasSession() bool {
	return s.Cookie("sessionid") != nil
}

// Host returns the host of the captured URL, or "".
func (s *SessionImport) Host() string {
	if s.URL == "" {
		return ""
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

func parseCookieHeader(header string) []*http.Cookie {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	cookies, err := http.ParseCookie(header)
	if err == nil {
		return cookies
	}

	// Fall back to a lenient split when the browser produced something ParseCookie rejects.
	var out []*http.Cookie
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" {
			continue
		}
		out = append(out, &http.Cookie{Name: name, Value: value})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
