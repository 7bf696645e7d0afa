package services

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
)

// CookieStore persists session cookies between runs.
type CookieStore interface {
	LoadCookies(host string) ([]*http.Cookie, error)
	SaveCookies(host string, cookies []*http.Cookie) error
	ClearCookies(host string) error
}

// PersistentJar is an [http.CookieJar] that mirrors cookie changes into a [CookieStore].
//
// Store failures are logged and never surface to the HTTP client.
type PersistentJar struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	store  CookieStore
	logger *log.Logger
}

// NewPersistentJar creates a jar seeded with the cookies stored for each of hosts.
func NewPersistentJar(store CookieStore, logger *log.Logger, hosts ...*url.URL) (*PersistentJar, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	p := &PersistentJar{jar: jar, store: store, logger: logger}
	if store == nil {
		return p, nil
	}

	for _, u := range hosts {
		cookies, err := store.LoadCookies(u.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to load cookies for %s: %w", u.Host, err)
		}
		if len(cookies) > 0 {
			jar.SetCookies(rootOf(u), cookies)
			logger.Debug("restored cookies", "host", u.Host, "count", len(cookies))
		}
	}
	return p, nil
}

func (p *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.jar.SetCookies(u, cookies)
	if p.store == nil || len(cookies) == 0 {
		return
	}
	if err := p.store.SaveCookies(u.Host, cookies); err != nil {
		p.logger.Warn("failed to persist cookies", "host", u.Host, "error", err)
	}
}

func (p *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jar.Cookies(u)
}

// Import adds cookies captured elsewhere, such as from a browser, for the host of u.
func (p *PersistentJar) Import(u *url.URL, cookies []*http.Cookie) {
	for _, c := range cookies {
		if c.Path == "" {
			c.Path = "/"
		}
	}
	p.SetCookies(rootOf(u), cookies)
}

// Clear drops every cookie held in memory and the stored cookies for the host of u.
func (p *PersistentJar) Clear(u *url.URL) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}
	p.jar = jar

	if p.store != nil {
		if err := p.store.ClearCookies(u.Host); err != nil {
			return fmt.Errorf("failed to clear stored cookies: %w", err)
		}
	}
	return nil
}

func rootOf(u *url.URL) *url.URL {
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
}
