package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/notify"
	"github.com/desertthunder/outside/internal/tasks"
	tu "github.com/desertthunder/outside/internal/testing"
)

type stubAPI struct {
	mu       sync.Mutex
	loggedIn bool
	searches int
}

func (s *stubAPI) Me(context.Context) (*models.UserRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn {
		return nil, errors.New("not logged in")
	}
	return &models.UserRef{ID: 1, Username: "demo", FullName: "Demo User"}, nil
}

func (s *stubAPI) Login(_ context.Context, username, _ string) (*models.AuthResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = true
	return &models.AuthResponse{User: models.UserRef{ID: 1, Username: username, FullName: "Demo User"}}, nil
}

func (s *stubAPI) Register(_ context.Context, form models.Registration) (*models.AuthResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = true
	return &models.AuthResponse{User: models.UserRef{ID: 2, Username: form.Username}}, nil
}

func (s *stubAPI) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = false
	return nil
}

func (s *stubAPI) Categories(context.Context) ([]models.Category, error) {
	return models.DefaultCategories, nil
}

func (s *stubAPI) Search(_ context.Context, _ string, _ models.SearchQuery) (*models.SearchResult, error) {
	s.mu.Lock()
	s.searches++
	s.mu.Unlock()
	venues := tu.Venues()
	return &models.SearchResult{Count: len(venues), Results: venues}, nil
}

func (s *stubAPI) Venue(_ context.Context, id int) (*models.VenueDetail, error) {
	for _, v := range tu.Venues() {
		if v.ID == id {
			return &models.VenueDetail{
				ID:          v.ID,
				Name:        v.Name,
				Description: "Jollof and waakye.",
				City:        v.City,
				Area:        v.Area,
				Latitude:    v.Latitude,
				Longitude:   v.Longitude,
				PriceRange:  v.PriceRange,
				Rating:      v.Rating,
			}, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubAPI) SearchHistory(context.Context) ([]models.HistoryEntry, error) {
	return []models.HistoryEntry{{ID: 1, Category: "restaurant", City: "Accra", Area: "Osu"}}, nil
}

func newTestModel(t *testing.T) (*Model, *stubAPI, *[]string) {
	t.Helper()
	api := &stubAPI{}
	var opened []string

	m := NewModel(context.Background(), Config{
		API: api,
		Options: tasks.Options{
			Schedule: func(_ time.Duration, fn func()) { fn() },
		},
		OpenURL: func(u string) error {
			opened = append(opened, u)
			return nil
		},
	})
	return m, api, &opened
}

func press(t *testing.T, m *Model, k tea.KeyMsg) {
	t.Helper()
	m.Update(k)
}

// submit sends a key to the model and runs the resulting command, feeding its message back.
func submit(t *testing.T, m *Model, k tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(k)
	run(t, m, cmd)
}

func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(Msg); ok {
		m.Update(msg)
	}
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

// drain applies every queued background event.
func drain(m *Model) {
	for {
		select {
		case msg := <-m.events:
			m.Update(msg)
		default:
			return
		}
	}
}

func search(t *testing.T, m *Model, location string) {
	t.Helper()
	press(t, m, keyEnter)
	typeText(m, location)
	submit(t, m, keyEnter)
}

func assertContains(t *testing.T, view string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(view, w) {
			t.Errorf("expected view to contain %q\n%s", w, view)
		}
	}
}

func TestNewModel(t *testing.T) {
	m, _, _ := newTestModel(t)

	if m.view != CategoryView {
		t.Errorf("expected category view, got %v", m.view)
	}
	assertContains(t, m.View(), "What are you looking for?", "Restaurants", tasks.ActionLogin, tasks.ActionSignup)

	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	if m.width != 140 || m.height != 40 {
		t.Errorf("expected resize, got %dx%d", m.width, m.height)
	}
}

func TestSearchFlow(t *testing.T) {
	t.Run("category then location", func(t *testing.T) {
		m, api, _ := newTestModel(t)

		press(t, m, keyEnter)
		if m.view != LocationView {
			t.Fatalf("expected location view, got %v", m.view)
		}
		assertContains(t, m.View(), "Where should we look for Restaurants?")

		typeText(m, "Accra")
		submit(t, m, keyEnter)

		if m.view != ResultsView {
			t.Fatalf("expected results view, got %v", m.view)
		}
		if api.searches != 1 {
			t.Errorf("expected one search, got %d", api.searches)
		}
		assertContains(t, m.View(), "Restaurants in Accra", "Showing 3 places", "Buka Restaurant", "[1]", "[-]")
	})

	t.Run("empty location", func(t *testing.T) {
		m, api, _ := newTestModel(t)
		press(t, m, keyEnter)
		submit(t, m, keyEnter)
		drain(m)

		if m.view != LocationView || api.searches != 0 {
			t.Errorf("expected to stay on the prompt without searching, view %v searches %d", m.view, api.searches)
		}
		assertContains(t, m.View(), tasks.MsgMissingLocation)
	})

	t.Run("escape closes prompt", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		press(t, m, keyEnter)
		press(t, m, keyEsc)

		if m.view != CategoryView || m.search.PromptOpen {
			t.Errorf("expected prompt closed, view %v open %v", m.view, m.search.PromptOpen)
		}
	})
}

func TestCrossHighlight(t *testing.T) {
	t.Run("moving the cursor focuses the map", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		search(t, m, "Accra")

		press(t, m, keyDown)

		if m.search.Highlight != 2 {
			t.Errorf("expected Santoku highlighted, got %d", m.search.Highlight)
		}
		p, ok := m.renderer.OpenPopup()
		if !ok || p.VenueID != 2 {
			t.Errorf("expected Santoku popup, got %+v", p)
		}
		assertContains(t, m.View(), "Santoku", "[View Details]")
	})

	t.Run("marker clicks scroll the list", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		search(t, m, "Accra")

		press(t, m, keyRune('m'))
		if m.search.Highlight != 1 || m.venues.Index() != 0 {
			t.Errorf("expected first marker, highlight %d index %d", m.search.Highlight, m.venues.Index())
		}

		press(t, m, keyRune('m'))
		if m.search.Highlight != 2 || m.venues.Index() != 1 {
			t.Errorf("expected second marker, highlight %d index %d", m.search.Highlight, m.venues.Index())
		}

		press(t, m, keyRune('m'))
		if m.search.Highlight != 1 {
			t.Errorf("expected markers to wrap around, got %d", m.search.Highlight)
		}
	})
}

func TestVenueView(t *testing.T) {
	m, _, opened := newTestModel(t)
	search(t, m, "Accra, Osu")

	_, cmd := m.Update(keyEnter)
	if m.view != VenueView || m.detail.Status != tasks.DetailLoading {
		t.Fatalf("expected loading venue view, got %v %v", m.view, m.detail.Status)
	}
	assertContains(t, m.View(), tasks.MsgLoadingVenue)

	run(t, m, cmd)
	assertContains(t, m.View(), "Buka Restaurant", "Jollof and waakye.")

	press(t, m, keyRune('d'))
	if len(*opened) != 1 || !strings.Contains((*opened)[0], "5.555800") {
		t.Errorf("expected directions opened, got %v", *opened)
	}

	press(t, m, keyEsc)
	if m.view != ResultsView || m.detail.Status != tasks.DetailClosed {
		t.Errorf("expected results view with detail closed, got %v %v", m.view, m.detail.Status)
	}
}

func TestAuthForms(t *testing.T) {
	t.Run("login loads history", func(t *testing.T) {
		m, _, _ := newTestModel(t)

		press(t, m, keyRune('l'))
		if m.view != LoginView {
			t.Fatalf("expected login view, got %v", m.view)
		}

		typeText(m, "demo")
		press(t, m, keyTab)
		typeText(m, "outside123")
		submit(t, m, keyEnter)
		drain(m)

		if m.view != CategoryView || !m.session.Authenticated {
			t.Fatalf("expected logged in on category view, got %v %+v", m.view, m.session)
		}
		assertContains(t, m.View(), "Hi, Demo User", "Welcome back, demo!", "Recent searches", "1. ")
	})

	t.Run("missing password keeps form", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		press(t, m, keyRune('l'))
		typeText(m, "demo")
		press(t, m, keyTab)
		submit(t, m, keyEnter)
		drain(m)

		if m.view != LoginView {
			t.Errorf("expected to stay on login, got %v", m.view)
		}
		assertContains(t, m.View(), tasks.MsgMissingCredentials)
	})

	t.Run("signup walks every field", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		press(t, m, keyRune('s'))
		if m.view != SignupView || len(m.form.inputs) != 5 {
			t.Fatalf("expected signup form, got %v", m.view)
		}

		for i, v := range []string{"ama", "ama@example.com", "Ama Mensah", "kente-2024", "kente-2024"} {
			typeText(m, v)
			if i < 4 {
				press(t, m, keyEnter)
			}
		}
		submit(t, m, keyEnter)
		drain(m)

		if !m.session.Authenticated || m.session.Username != "ama" {
			t.Errorf("expected signed up session, got %+v", m.session)
		}
	})

	t.Run("logout", func(t *testing.T) {
		m, api, _ := newTestModel(t)
		api.loggedIn = true
		run(t, m, m.checkStatus())
		if !m.session.Authenticated {
			t.Fatal("expected session restored by status check")
		}

		submit(t, m, keyRune('o'))
		drain(m)
		if m.session.Authenticated || len(m.search.History) != 0 {
			t.Errorf("expected logged out with history cleared, got %+v", m.session)
		}
		assertContains(t, m.View(), tasks.MsgLoggedOut)
	})
}

func TestRepeatHistory(t *testing.T) {
	m, api, _ := newTestModel(t)
	api.loggedIn = true
	run(t, m, m.checkStatus())

	submit(t, m, keyRune('1'))
	if m.view != ResultsView || api.searches != 1 {
		t.Fatalf("expected repeated search, view %v searches %d", m.view, api.searches)
	}
	assertContains(t, m.View(), "Restaurants in Accra, Osu")

	submit(t, m, keyRune('9'))
	if api.searches != 1 {
		t.Error("out of range history keys must be ignored")
	}
}

func TestBackgroundMessages(t *testing.T) {
	m, _, _ := newTestModel(t)

	n := notify.Notification{ID: "n1", Message: "Heads up", Kind: notify.Info}
	m.Update(notificationMsg(n))
	assertContains(t, m.View(), "Heads up")

	m.Update(notificationDismissedMsg("other"))
	if m.banner == nil {
		t.Error("dismissing another notification must keep the banner")
	}
	m.Update(notificationDismissedMsg("n1"))
	if m.banner != nil {
		t.Error("expected banner dismissed")
	}

	m.Update(progressUpdateMsg(tasks.ProgressUpdate{Message: "Loading categories..."}))
	assertContains(t, m.View(), "Loading categories...")
	m.Update(progressUpdateMsg(tasks.ProgressUpdate{Message: "done", Done: true}))
	if m.status != "" {
		t.Errorf("expected status cleared, got %q", m.status)
	}
}

func TestListen(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.send(refreshMsg())
	msg, ok := m.listen()().(Msg)
	if !ok || msg.kind != MsgRefresh {
		t.Fatalf("expected refresh message, got %#v", msg)
	}

	m.progress <- tasks.ProgressUpdate{Message: "x"}
	msg, ok = m.listen()().(Msg)
	if !ok || msg.kind != MsgProgressUpdate {
		t.Errorf("expected progress message, got %#v", msg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.ctx = ctx
	cancel()
	if got := m.listen()(); got != nil {
		t.Errorf("expected nil after cancel, got %#v", got)
	}
}
