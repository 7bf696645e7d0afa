// package tasks implements the controllers behind the CLI and TUI.
//
// Each controller owns its state behind a mutex and hands out snapshots. Operations notify the user
// through a [notify.Notifier] and emit progress updates via channels for non-blocking status reporting.
package tasks

import (
	"context"
	"time"

	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/services"
)

// UserError carries the message shown to the user together with the error that classifies it.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }
func (e *UserError) Unwrap() error { return e.Err }

func userError(message string, err error) *UserError {
	return &UserError{Message: message, Err: err}
}

// Scheduler runs fn once after d. The default is [time.AfterFunc].
type Scheduler func(d time.Duration, fn func())

func afterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// HistoryLoader refreshes and clears the recent-search list.
type HistoryLoader interface {
	LoadHistory(ctx context.Context) ([]models.HistoryEntry, error)
	ClearHistory()
}

// VenueCacher persists venues seen in search results.
//
// Implementations should be silent about duplicates; callers ignore returned errors.
type VenueCacher interface {
	CacheVenues(ctx context.Context, category string, venues []models.Venue) error
}

// Controllers bundles the controllers that share one API client and session.
type Controllers struct {
	Session *SessionStore
	Auth    *AuthController
	Search  *SearchController
	Detail  *DetailLoader
}

// NewControllers wires the auth, search and detail controllers around api.
func NewControllers(api services.API, opts Options) *Controllers {
	session := NewSessionStore()
	search := NewSearchController(api, session, opts)
	auth := NewAuthController(api, session, search, opts)
	detail := NewDetailLoader(api, opts)
	return &Controllers{Session: session, Auth: auth, Search: search, Detail: detail}
}
