package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/services"
	"github.com/desertthunder/outside/internal/shared"
)

type fixtureEnv struct {
	api    *FixtureAPI
	server *httptest.Server
	client *services.VenueService
}

func newFixtureEnv(t *testing.T) *fixtureEnv {
	t.Helper()

	api, err := NewFixtureAPI(nil)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}

	ts := httptest.NewServer(NewFixtureRouter(api, log.New(io.Discard), 0))
	t.Cleanup(ts.Close)

	client, err := services.NewVenueService(ts.URL, services.WithHTTPClient(&http.Client{}))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return &fixtureEnv{api: api, server: ts, client: client}
}

func (e *fixtureEnv) login(t *testing.T) {
	t.Helper()
	if _, err := e.client.Login(context.Background(), "demo", "outside123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

// post sends a POST through the client's cookie jar with the given CSRF header value.
func (e *fixtureEnv) post(t *testing.T, path, csrf string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if csrf != "" {
		req.Header.Set(services.CSRFHeader, csrf)
	}
	resp, err := e.client.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func asAPIError(t *testing.T, err error) *services.APIError {
	t.Helper()
	var apiErr *services.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *services.APIError, got %v", err)
	}
	return apiErr
}

func TestFixtureSession(t *testing.T) {
	ctx := context.Background()

	t.Run("logged out", func(t *testing.T) {
		env := newFixtureEnv(t)
		_, err := env.client.Me(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if got := asAPIError(t, err); got.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", got.StatusCode)
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		env := newFixtureEnv(t)
		_, err := env.client.Login(ctx, "demo", "wrong")
		apiErr := asAPIError(t, err)
		if apiErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", apiErr.StatusCode)
		}
		if msg := apiErr.First("non_field_errors"); msg != msgInvalidCredentials {
			t.Errorf("expected %q, got %q", msgInvalidCredentials, msg)
		}
	})

	t.Run("blank fields", func(t *testing.T) {
		env := newFixtureEnv(t)
		_, err := env.client.Login(ctx, "", "")
		apiErr := asAPIError(t, err)
		if apiErr.First("username") != msgFieldBlank || apiErr.First("password") != msgFieldBlank {
			t.Errorf("expected blank field errors, got %v", apiErr.Fields)
		}
	})

	t.Run("login, me, logout", func(t *testing.T) {
		env := newFixtureEnv(t)

		resp, err := env.client.Login(ctx, "DEMO", "outside123")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if resp.User.Username != "demo" || resp.Message != msgLoginSuccessful {
			t.Errorf("unexpected login response %+v", resp)
		}
		if env.client.CSRFToken() == "" || !env.client.HasSession() {
			t.Fatal("expected session and csrf cookies")
		}

		user, err := env.client.Me(ctx)
		if err != nil {
			t.Fatalf("me failed: %v", err)
		}
		if user.FullName != "Demo User" {
			t.Errorf("expected Demo User, got %q", user.FullName)
		}

		if err := env.client.Logout(ctx); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if env.api.SessionCount() != 0 {
			t.Errorf("expected session removed, %d left", env.api.SessionCount())
		}
		if env.client.HasSession() {
			t.Error("expected session cookie expired")
		}

		err = env.client.Logout(ctx)
		if services.StatusCode(err) != http.StatusUnauthorized {
			t.Errorf("expected 401 on second logout, got %v", err)
		}
	})
}

func TestFixtureRegister(t *testing.T) {
	ctx := context.Background()
	valid := models.Registration{
		Username:  "ama",
		Email:     "ama@example.com",
		FullName:  "Ama Mensah",
		Password:  "kente-2024",
		Password2: "kente-2024",
	}

	tests := []struct {
		name  string
		edit  func(*models.Registration)
		field string
		want  string
	}{
		{"blank username", func(r *models.Registration) { r.Username = " " }, "username", msgFieldBlank},
		{"taken username", func(r *models.Registration) { r.Username = "Demo" }, "username", msgUsernameTaken},
		{"invalid email", func(r *models.Registration) { r.Email = "ama" }, "email", msgInvalidEmail},
		{"short password", func(r *models.Registration) { r.Password, r.Password2 = "short", "short" }, "password", "This password is too short. It must contain at least 8 characters."},
		{"mismatch", func(r *models.Registration) { r.Password2 = "kente-2025" }, "password", msgPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFixtureEnv(t)
			form := valid
			tt.edit(&form)

			_, err := env.client.Register(ctx, form)
			apiErr := asAPIError(t, err)
			if apiErr.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", apiErr.StatusCode)
			}
			if got := apiErr.First(tt.field); got != tt.want {
				t.Errorf("expected %s error %q, got %q (%v)", tt.field, tt.want, got, apiErr.Fields)
			}
		})
	}

	t.Run("success logs in", func(t *testing.T) {
		env := newFixtureEnv(t)
		resp, err := env.client.Register(ctx, valid)
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		if resp.Message != msgRegistered || resp.User.ID != 2 {
			t.Errorf("unexpected response %+v", resp)
		}

		user, err := env.client.Me(ctx)
		if err != nil || user.Username != "ama" {
			t.Errorf("expected new user session, got %v %v", user, err)
		}
	})
}

func TestFixtureSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("requires category and city", func(t *testing.T) {
		env := newFixtureEnv(t)
		_, err := env.client.Search(ctx, "restaurant", models.SearchQuery{})
		apiErr := asAPIError(t, err)
		if apiErr.StatusCode != http.StatusBadRequest || apiErr.First("error") != msgSearchRequired {
			t.Errorf("unexpected error %v", apiErr.Fields)
		}
	})

	t.Run("orders by rating then name", func(t *testing.T) {
		env := newFixtureEnv(t)
		result, err := env.client.Search(ctx, "restaurant", models.ParseLocation("accra"))
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if result.Count != 3 || len(result.Results) != 3 {
			t.Fatalf("expected 3 venues, got %d", result.Count)
		}

		names := []string{result.Results[0].Name, result.Results[1].Name, result.Results[2].Name}
		want := []string{"Santoku", "Buka Restaurant", "Jamestown Chop Bar"}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("position %d: expected %q, got %q", i, want[i], names[i])
			}
		}

		if result.Results[2].Latitude.Valid {
			t.Error("expected null latitude to decode as invalid")
		}
		if result.Results[0].CategoryIcon != "🍽️" {
			t.Errorf("expected category icon, got %q", result.Results[0].CategoryIcon)
		}
	})

	t.Run("matches category name and area", func(t *testing.T) {
		env := newFixtureEnv(t)
		result, err := env.client.Search(ctx, "Restaurants", models.ParseLocation("Accra, osu"))
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if result.Count != 1 || result.Results[0].ID != 1 {
			t.Fatalf("expected only Buka, got %+v", result.Results)
		}

		thumb := result.Results[0].Thumbnail
		if thumb == nil || !strings.HasPrefix(*thumb, env.server.URL) {
			t.Errorf("expected absolute thumbnail URL, got %v", thumb)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		env := newFixtureEnv(t)
		result, err := env.client.Search(ctx, "cinema", models.ParseLocation("Tamale"))
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if result.Count != 0 || result.Results == nil {
			t.Errorf("expected empty non-nil results, got %+v", result)
		}
	})
}

func TestFixtureHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("requires session", func(t *testing.T) {
		env := newFixtureEnv(t)
		_, err := env.client.SearchHistory(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("anonymous searches are not recorded", func(t *testing.T) {
		env := newFixtureEnv(t)
		if _, err := env.client.Search(ctx, "cafe", models.ParseLocation("Accra")); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if got := env.api.History("demo"); len(got) != 0 {
			t.Errorf("expected no history, got %d", len(got))
		}
	})

	t.Run("newest first, capped", func(t *testing.T) {
		env := newFixtureEnv(t)
		env.login(t)

		for range HistoryPageSize + 2 {
			if _, err := env.client.Search(ctx, "cafe", models.ParseLocation("Accra")); err != nil {
				t.Fatalf("search failed: %v", err)
			}
		}
		if _, err := env.client.Search(ctx, "bar", models.ParseLocation("Accra, Osu")); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		entries, err := env.client.SearchHistory(ctx)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if len(entries) != HistoryPageSize {
			t.Fatalf("expected %d entries, got %d", HistoryPageSize, len(entries))
		}
		if entries[0].Category != "bar" || entries[0].Area != "Osu" {
			t.Errorf("expected newest search first, got %+v", entries[0])
		}
		if entries[0].SearchedAt.IsZero() {
			t.Error("expected searched_at set")
		}
	})
}

func TestFixtureVenue(t *testing.T) {
	ctx := context.Background()
	env := newFixtureEnv(t)

	t.Run("found", func(t *testing.T) {
		detail, err := env.client.Venue(ctx, 2)
		if err != nil {
			t.Fatalf("venue failed: %v", err)
		}
		if detail.Name != "Santoku" || detail.Category == nil || detail.Category.Slug != "restaurant" {
			t.Errorf("unexpected detail %+v", detail)
		}
		if len(detail.Amenities) != 3 || detail.Website == "" {
			t.Errorf("expected amenities and website, got %+v", detail)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := env.client.Venue(ctx, 999)
		if !errors.Is(err, shared.ErrVenueNotFound) {
			t.Errorf("expected ErrVenueNotFound, got %v", err)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		resp, err := http.Get(env.server.URL + "/api/venues/abc/")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("categories", func(t *testing.T) {
		categories, err := env.client.Categories(ctx)
		if err != nil {
			t.Fatalf("categories failed: %v", err)
		}
		if len(categories) != len(models.DefaultCategories) {
			t.Errorf("expected %d categories, got %d", len(models.DefaultCategories), len(categories))
		}
	})
}

func TestCSRF(t *testing.T) {
	t.Run("anonymous posts pass", func(t *testing.T) {
		env := newFixtureEnv(t)
		resp := env.post(t, services.PathLogout, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected handler 401, got %d", resp.StatusCode)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		env := newFixtureEnv(t)
		env.login(t)

		resp := env.post(t, services.PathLogout, "")
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusForbidden || !strings.Contains(string(body), "missing") {
			t.Errorf("expected 403 missing token, got %d %s", resp.StatusCode, body)
		}
		if env.api.SessionCount() != 1 {
			t.Error("rejected request must not end the session")
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		env := newFixtureEnv(t)
		env.login(t)

		resp := env.post(t, services.PathLogout, "forged")
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusForbidden || !strings.Contains(string(body), "incorrect") {
			t.Errorf("expected 403 incorrect token, got %d %s", resp.StatusCode, body)
		}
	})

	t.Run("matching token", func(t *testing.T) {
		env := newFixtureEnv(t)
		env.login(t)

		resp := env.post(t, services.PathLogout, env.client.CSRFToken())
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			order = append(order, "handler")
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"detail"`) {
			t.Errorf("expected JSON detail body, got %s", rec.Body.String())
		}
	})

	t.Run("fixture routes", func(t *testing.T) {
		api, err := NewFixtureAPI(nil)
		if err != nil {
			t.Fatalf("failed to create fixture: %v", err)
		}
		r := NewFixtureRouter(api, log.New(io.Discard), 0)

		tests := []struct {
			method, path string
			want         int
		}{
			{http.MethodGet, "/healthz", http.StatusOK},
			{http.MethodGet, "/nope", http.StatusNotFound},
			{http.MethodGet, services.PathLogin, http.StatusMethodNotAllowed},
			{http.MethodGet, services.PathCategories, http.StatusOK},
			{http.MethodGet, "/api/auth/me/extra", http.StatusNotFound},
		}
		for _, tt := range tests {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, rec.Code)
			}
		}
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/kettle", nil))

	out := buf.String()
	for _, want := range []string{"request", "path=/kettle", "status=418", "bytes=15"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got %q", want, out)
		}
	}
}

func TestLatency(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	t.Run("disabled", func(t *testing.T) {
		h := Latency(0)(next)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected passthrough, got %d", rec.Code)
		}
	})

	t.Run("delays", func(t *testing.T) {
		h := Latency(20 * time.Millisecond)(next)
		start := time.Now()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
			t.Errorf("expected at least 20ms, got %v", elapsed)
		}
	})
}

func TestServe(t *testing.T) {
	api, err := NewFixtureAPI(nil)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", NewFixtureRouter(api, log.New(io.Discard), 0), log.New(io.Discard), ready)
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewFixtureAPIFrom(t *testing.T) {
	if _, err := NewFixtureAPIFrom([]byte("{"), nil); err == nil {
		t.Error("expected decode error")
	}

	seed := `{"categories":[{"id":9,"name":"Parks","slug":"park","icon":"🌳"}],
		"venues":[{"id":1,"name":"Legon Botanical Garden","category":"park","city":"Accra","latitude":"5.6601","longitude":"-0.1931","rating":"4.4"}]}`
	api, err := NewFixtureAPIFrom([]byte(seed), nil)
	if err != nil {
		t.Fatalf("failed to load seed: %v", err)
	}

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, services.PathSearch+"?category=park&city=accra", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Legon Botanical Garden") {
		t.Errorf("expected seeded venue, got %d %s", rec.Code, rec.Body.String())
	}
}
