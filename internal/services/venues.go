// HTTP implementation of [API] for the venue discovery service
//
// The service authenticates with a cookie session. State-changing requests carry the CSRF token
// from the csrftoken cookie in the X-CSRFToken header.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/shared"
)

const (
	defaultVenueBaseURL string = "http://127.0.0.1:8000"
	defaultTimeout             = 10 * time.Second
)

// VenueService implements [API] over HTTP.
type VenueService struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	timeout    time.Duration
	userAgent  string
	logger     *log.Logger
}

// VenueOption configures a [VenueService].
type VenueOption func(*VenueService)

// WithHTTPClient bases requests on a copy of c; c itself is never modified. [WithCookieJar] and
// [WithTimeout] take precedence over the client's own jar and timeout in any option order.
func WithHTTPClient(c *http.Client) VenueOption {
	return func(s *VenueService) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithCookieJar sets the jar used to hold the session cookies.
func WithCookieJar(jar http.CookieJar) VenueOption {
	return func(s *VenueService) { s.jar = jar }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) VenueOption {
	return func(s *VenueService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) VenueOption {
	return func(s *VenueService) { s.userAgent = ua }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) VenueOption {
	return func(s *VenueService) { s.logger = l }
}

// NewVenueService creates a client for the API rooted at baseURL.
func NewVenueService(baseURL string, opts ...VenueOption) (*VenueService, error) {
	if baseURL == "" {
		baseURL = defaultVenueBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", shared.ErrInvalidConfig, baseURL)
	}

	s := &VenueService{
		baseURL:    u,
		httpClient: &http.Client{},
		userAgent:  "outside/0.1",
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	client := *s.httpClient
	switch {
	case s.jar != nil:
		client.Jar = s.jar
	case client.Jar == nil:
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		client.Jar = jar
	}
	switch {
	case s.timeout > 0:
		client.Timeout = s.timeout
	case client.Timeout == 0:
		client.Timeout = defaultTimeout
	}
	s.httpClient = &client
	s.jar = client.Jar
	s.timeout = client.Timeout

	return s, nil
}

// BaseURL returns the API root.
func (s *VenueService) BaseURL() *url.URL {
	u := *s.baseURL
	return &u
}

// Client returns the underlying HTTP client, which shares the session cookie jar.
func (s *VenueService) Client() *http.Client {
	return s.httpClient
}

// CSRFToken returns the csrftoken cookie value for the API host, or "".
func (s *VenueService) CSRFToken() string {
	return cookieValue(s.httpClient.Jar, s.baseURL, CSRFCookie)
}

// HasSession reports whether a session cookie is held for the API host.
func (s *VenueService) HasSession() bool {
	return cookieValue(s.httpClient.Jar, s.baseURL, SessionCookie) != ""
}

func (s *VenueService) Me(ctx context.Context) (*models.UserRef, error) {
	var user models.UserRef
	if err := s.doRequest(ctx, http.MethodGet, PathMe, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *VenueService) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	body := map[string]string{"username": username, "password": password}

	var resp models.AuthResponse
	if err := s.doRequest(ctx, http.MethodPost, PathLogin, nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *VenueService) Register(ctx context.Context, form models.Registration) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := s.doRequest(ctx, http.MethodPost, PathRegister, nil, form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *VenueService) Logout(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPost, PathLogout, nil, struct{}{}, nil)
}

// Categories accepts both a bare list and a paginated {"results": [...]} body.
func (s *VenueService) Categories(ctx context.Context) ([]models.Category, error) {
	var raw json.RawMessage
	if err := s.doRequest(ctx, http.MethodGet, PathCategories, nil, nil, &raw); err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := json.Unmarshal(raw, &categories); err == nil {
		return categories, nil
	}

	var page struct {
		Results []models.Category `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return page.Results, nil
}

func (s *VenueService) Search(ctx context.Context, category string, query models.SearchQuery) (*models.SearchResult, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("city", query.City)
	if query.Area != "" {
		params.Set("area", query.Area)
	}

	var result models.SearchResult
	if err := s.doRequest(ctx, http.MethodGet, PathSearch, params, nil, &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []models.Venue{}
	}
	return &result, nil
}

func (s *VenueService) Venue(ctx context.Context, id int) (*models.VenueDetail, error) {
	var detail models.VenueDetail
	if err := s.doRequest(ctx, http.MethodGet, PathVenues+strconv.Itoa(id)+"/", nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// SearchHistory accepts both a bare list and a paginated {"results": [...]} body.
func (s *VenueService) SearchHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	var raw json.RawMessage
	if err := s.doRequest(ctx, http.MethodGet, PathSearchHistory, nil, nil, &raw); err != nil {
		return nil, err
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries, nil
	}

	var page struct {
		Results []models.HistoryEntry `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode search history: %w", err)
	}
	return page.Results, nil
}

func (s *VenueService) endpoint(path string, params url.Values) string {
	u := s.baseURL.JoinPath(path)
	// JoinPath drops the trailing slash the API requires.
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func (s *VenueService) doRequest(ctx context.Context, method, path string, params url.Values, payload, result any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(path, params), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && method != http.MethodHead {
		req.Header.Set(CSRFHeader, s.CSRFToken())
		req.Header.Set("Referer", s.baseURL.String()+"/")
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s %s: %v", shared.ErrConnection, method, path, ctxErr)
		}
		return fmt.Errorf("%w: %s %s: %v", shared.ErrConnection, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrConnection, err)
	}

	s.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewAPIError(resp.StatusCode, data)
	}

	if result != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// StatusCode extracts the HTTP status from an [*APIError], or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func cookieValue(jar http.CookieJar, u *url.URL, name string) string {
	if jar == nil {
		return ""
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
