package services

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
)

type memoryCookieStore struct {
	cookies  map[string]map[string]*http.Cookie
	failSave bool
}

func newMemoryCookieStore() *memoryCookieStore {
	return &memoryCookieStore{cookies: make(map[string]map[string]*http.Cookie)}
}

func (m *memoryCookieStore) LoadCookies(host string) ([]*http.Cookie, error) {
	var out []*http.Cookie
	for _, c := range m.cookies[host] {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryCookieStore) SaveCookies(host string, cookies []*http.Cookie) error {
	if m.failSave {
		return errors.New("disk full")
	}
	if m.cookies[host] == nil {
		m.cookies[host] = make(map[string]*http.Cookie)
	}
	for _, c := range cookies {
		if c.MaxAge < 0 {
			delete(m.cookies[host], c.Name)
			continue
		}
		m.cookies[host][c.Name] = c
	}
	return nil
}

func (m *memoryCookieStore) ClearCookies(host string) error {
	delete(m.cookies, host)
	return nil
}

func TestPersistentJar(t *testing.T) {
	api, _ := url.Parse("http://127.0.0.1:8000/api/auth/login/")

	t.Run("persists and restores", func(t *testing.T) {
		store := newMemoryCookieStore()
		jar, err := NewPersistentJar(store, nil, api)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		jar.SetCookies(api, []*http.Cookie{{Name: SessionCookie, Value: "abc", Path: "/"}})
		if len(store.cookies["127.0.0.1:8000"]) != 1 {
			t.Fatalf("expected cookie to be saved, got %v", store.cookies)
		}

		restored, err := NewPersistentJar(store, nil, api)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v := cookieValue(restored, api, SessionCookie); v != "abc" {
			t.Errorf("expected restored session cookie, got %q", v)
		}
	})

	t.Run("deletion cookies remove stored values", func(t *testing.T) {
		store := newMemoryCookieStore()
		jar, _ := NewPersistentJar(store, nil, api)

		jar.SetCookies(api, []*http.Cookie{{Name: SessionCookie, Value: "abc", Path: "/"}})
		jar.SetCookies(api, []*http.Cookie{{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1}})

		if len(store.cookies["127.0.0.1:8000"]) != 0 {
			t.Errorf("expected cookie to be deleted, got %v", store.cookies)
		}
		if cookieValue(jar, api, SessionCookie) != "" {
			t.Error("expected cookie to be removed from the jar")
		}
	})

	t.Run("Import and Clear", func(t *testing.T) {
		store := newMemoryCookieStore()
		jar, _ := NewPersistentJar(store, nil)

		jar.Import(api, []*http.Cookie{{Name: CSRFCookie, Value: "tok"}})
		if cookieValue(jar, api, CSRFCookie) != "tok" {
			t.Fatal("expected imported cookie to be visible on API paths")
		}

		if err := jar.Clear(api); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(jar.Cookies(api)) != 0 || len(store.cookies) != 0 {
			t.Error("expected jar and store to be empty")
		}
	})

	t.Run("store failures do not break the jar", func(t *testing.T) {
		store := newMemoryCookieStore()
		store.failSave = true
		jar, _ := NewPersistentJar(store, nil)

		jar.SetCookies(api, []*http.Cookie{{Name: SessionCookie, Value: "abc", Path: "/"}})
		if cookieValue(jar, api, SessionCookie) != "abc" {
			t.Error("expected in-memory cookie despite store failure")
		}
	})
}
