// package services defines the [API] interface for the remote venue service and its HTTP implementations.
package services

import (
	"context"

	"github.com/desertthunder/outside/internal/models"
)

// API is the remote venue discovery service.
//
// Non-2xx responses are returned as [*APIError]; transport failures wrap [shared.ErrConnection].
type API interface {
	// Me returns the identity bound to the current session cookie.
	Me(ctx context.Context) (*models.UserRef, error)

	// Login authenticates with username and password and starts a session.
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)

	// Register creates an account and starts a session for it.
	Register(ctx context.Context, form models.Registration) (*models.AuthResponse, error)

	// Logout ends the current session.
	Logout(ctx context.Context) error

	// Categories lists the active venue categories.
	Categories(ctx context.Context) ([]models.Category, error)

	// Search finds venues of category in the queried city and optional area.
	Search(ctx context.Context, category string, query models.SearchQuery) (*models.SearchResult, error)

	// Venue fetches the full record of one venue.
	Venue(ctx context.Context, id int) (*models.VenueDetail, error)

	// SearchHistory lists the current user's recent searches, newest first.
	SearchHistory(ctx context.Context) ([]models.HistoryEntry, error)
}

// Endpoint paths relative to the API base URL.
const (
	PathMe            = "/api/auth/me/"
	PathLogin         = "/api/auth/login/"
	PathRegister      = "/api/auth/register/"
	PathLogout        = "/api/auth/logout/"
	PathCategories    = "/api/categories/"
	PathSearch        = "/api/search/"
	PathVenues        = "/api/venues/"
	PathSearchHistory = "/api/search-history/"
)

// Cookie and header names used by the session and CSRF protection.
const (
	SessionCookie = "sessionid"
	CSRFCookie    = "csrftoken"
	CSRFHeader    = "X-CSRFToken"
)
