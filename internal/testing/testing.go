// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/outside/internal/models"
)

// Venues returns a fixed search result: two venues in Accra and one without usable coordinates.
func Venues() []models.Venue {
	return []models.Venue{
		{
			ID: 1, Name: "Buka Restaurant", CategoryName: "Restaurants", CategoryIcon: "🍽️",
			City: "Accra", Area: "Osu", Address: "10th Lane, Osu",
			Latitude: models.ParseDecimal("5.555800"), Longitude: models.ParseDecimal("-0.182300"),
			PriceRange: "₵₵", Rating: models.ParseDecimal("4.50"),
		},
		{
			ID: 2, Name: "Santoku", CategoryName: "Restaurants", CategoryIcon: "🍽️",
			City: "Accra", Area: "Airport City", Address: "Villaggio Vista",
			Latitude: models.ParseDecimal("5.605200"), Longitude: models.ParseDecimal("-0.171000"),
			PriceRange: "₵₵₵₵", Rating: models.ParseDecimal("4.80"),
		},
		{
			ID: 3, Name: "Chop Bar", CategoryName: "Restaurants", CategoryIcon: "🍽️",
			City: "Accra", Address: "Unknown",
			Latitude: models.ParseDecimal("n/a"), Longitude: models.ParseDecimal("-0.2"),
			PriceRange: "₵", Rating: models.ParseDecimal("0.00"),
		},
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SequenceRoundTripper replays one result per request and records each request it sees.
//
// Once the sequence is exhausted the last result repeats.
type SequenceRoundTripper struct {
	mu       sync.Mutex
	results  []func(*http.Request) (*http.Response, error)
	Requests []*http.Request
}

func NewSequenceRoundTripper(results ...func(*http.Request) (*http.Response, error)) *SequenceRoundTripper {
	return &SequenceRoundTripper{results: results}
}

func (s *SequenceRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.Requests)
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	s.Requests = append(s.Requests, r)
	return s.results[idx](r)
}

// Count returns the number of requests seen.
func (s *SequenceRoundTripper) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
