package tasks

import (
	"slices"
	"sync"

	"github.com/desertthunder/outside/internal/models"
)

// SessionStore holds the current [models.Session]. The session is replaced wholesale, never mutated.
type SessionStore struct {
	mu       sync.RWMutex
	session  models.Session
	watchers []func(models.Session)
}

// NewSessionStore starts logged out.
func NewSessionStore() *SessionStore {
	return &SessionStore{session: models.LoggedOut()}
}

// Get returns a copy of the session.
func (s *SessionStore) Get() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.session
	if sess.User != nil {
		u := *sess.User
		sess.User = &u
	}
	return sess
}

// Authenticated reports whether a user is logged in.
func (s *SessionStore) Authenticated() bool {
	return s.Get().Authenticated
}

// Set replaces the session and notifies watchers.
func (s *SessionStore) Set(sess models.Session) {
	s.mu.Lock()
	s.session = sess
	watchers := slices.Clone(s.watchers)
	s.mu.Unlock()

	for _, w := range watchers {
		w(sess)
	}
}

// Watch registers fn to run after every [SessionStore.Set].
func (s *SessionStore) Watch(fn func(models.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// SessionView is what the navigation shows for a session.
type SessionView struct {
	Authenticated bool
	Username      string
	DisplayName   string
	Initial       string
	Greeting      string
	Actions       []string
}

// Navigation actions.
const (
	ActionLogin  = "Login"
	ActionSignup = "Sign Up"
	ActionLogout = "Logout"
)

// NewSessionView derives the navigation for sess.
func NewSessionView(sess models.Session) SessionView {
	if !sess.Authenticated || sess.User == nil {
		return SessionView{Actions: []string{ActionLogin, ActionSignup}}
	}
	return SessionView{
		Authenticated: true,
		Username:      sess.User.Username,
		DisplayName:   sess.User.DisplayName(),
		Initial:       sess.User.Initial(),
		Greeting:      "Hi, " + sess.User.DisplayName(),
		Actions:       []string{ActionLogout},
	}
}
