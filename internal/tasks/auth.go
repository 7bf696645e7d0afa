package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/notify"
	"github.com/desertthunder/outside/internal/services"
	"github.com/desertthunder/outside/internal/shared"
)

// User-facing auth messages.
const (
	MsgMissingCredentials = "Please enter username and password"
	MsgMissingFields      = "Please fill in all fields"
	MsgPasswordMismatch   = "Passwords do not match"
	MsgPasswordTooShort   = "Password must be at least 8 characters"
	MsgLoginFailed        = "Login failed. Please check your credentials."
	MsgSignupFailed       = "Signup failed. Please try again."
	MsgConnectionError    = "Connection error. Please try again."
	MsgLoggedOut          = "Logged out successfully"
	MsgLogoutFailed       = "Logout failed. Refreshing page..."
	MsgLogoutError        = "Logout error. Refreshing page..."
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// AuthController owns the session lifecycle: status check at start-up, login, signup and logout.
type AuthController struct {
	api     services.API
	session *SessionStore
	history HistoryLoader
	opts    Options
	logger  *log.Logger
	busy    atomic.Bool
}

// NewAuthController creates an auth controller. history may be nil.
func NewAuthController(api services.API, session *SessionStore, history HistoryLoader, opts Options) *AuthController {
	opts = opts.withDefaults()
	return &AuthController{
		api:     api,
		session: session,
		history: history,
		opts:    opts,
		logger:  shared.WithLogger(opts.Logger, "controller", "auth"),
	}
}

// Session returns the current session.
func (a *AuthController) Session() models.Session {
	return a.session.Get()
}

// Busy reports whether a login or signup request is in flight.
func (a *AuthController) Busy() bool {
	return a.busy.Load()
}

// CheckStatus asks the API who owns the current session cookie. Any failure means logged out.
func (a *AuthController) CheckStatus(ctx context.Context) models.Session {
	sendProgress(a.opts.Progress, checkSessionUpdate())

	user, err := a.api.Me(ctx)
	if err != nil || user == nil {
		a.logger.Debug("no active session", "error", err)
		a.session.Set(models.LoggedOut())
		if a.history != nil {
			a.history.ClearHistory()
		}
		return a.session.Get()
	}

	a.logger.Info("session active", "username", user.Username)
	a.session.Set(models.LoggedIn(*user))
	a.loadHistory(ctx)
	return a.session.Get()
}

// Login validates the credentials locally, then authenticates.
func (a *AuthController) Login(ctx context.Context, username, password string) (models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return a.fail(userError(MsgMissingCredentials, shared.ErrValidation))
	}

	if !a.busy.CompareAndSwap(false, true) {
		return a.session.Get(), shared.ErrBusy
	}
	defer a.busy.Store(false)

	sendProgress(a.opts.Progress, authenticateUpdate(username))

	resp, err := a.api.Login(ctx, username, password)
	if err != nil {
		a.logger.Warn("login failed", "username", username, "error", err)
		var apiErr *services.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.Message(MsgLoginFailed, "detail", "non_field_errors", "username", "password")
			return a.fail(userError(msg, fmt.Errorf("%w: %w", shared.ErrInvalidCredentials, err)))
		}
		return a.fail(userError(MsgConnectionError, err))
	}

	user := resp.User
	if user.Username == "" {
		user.Username = username
	}
	a.session.Set(models.LoggedIn(user))
	a.logger.Info("logged in", "username", user.Username)
	a.opts.Notifier.Notify(fmt.Sprintf("Welcome back, %s!", user.Username), notify.Success)
	a.scheduleHistory(ctx)
	return a.session.Get(), nil
}

// Signup validates the form locally, then registers the account.
func (a *AuthController) Signup(ctx context.Context, form models.Registration) (models.Session, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	form.FullName = strings.TrimSpace(form.FullName)

	switch {
	case form.Username == "" || form.Email == "" || form.FullName == "" || form.Password == "" || form.Password2 == "":
		return a.fail(userError(MsgMissingFields, shared.ErrValidation))
	case form.Password != form.Password2:
		return a.fail(userError(MsgPasswordMismatch, shared.ErrValidation))
	case len(form.Password) < MinPasswordLength:
		return a.fail(userError(MsgPasswordTooShort, shared.ErrValidation))
	}

	if !a.busy.CompareAndSwap(false, true) {
		return a.session.Get(), shared.ErrBusy
	}
	defer a.busy.Store(false)

	sendProgress(a.opts.Progress, authenticateUpdate(form.Username))

	resp, err := a.api.Register(ctx, form)
	if err != nil {
		a.logger.Warn("signup failed", "username", form.Username, "error", err)
		var apiErr *services.APIError
		if errors.As(err, &apiErr) {
			return a.fail(userError(signupMessage(apiErr), fmt.Errorf("%w: %w", shared.ErrRegistrationFailed, err)))
		}
		return a.fail(userError(MsgConnectionError, err))
	}

	user := resp.User
	if user.Username == "" {
		user.Username = form.Username
	}
	a.session.Set(models.LoggedIn(user))
	a.logger.Info("account created", "username", user.Username)
	a.opts.Notifier.Notify(fmt.Sprintf("Welcome, %s!", user.Username), notify.Success)
	a.scheduleHistory(ctx)
	return a.session.Get(), nil
}

// Logout ends the session. A 401 counts as success. Any other failure schedules a reload that
// rebuilds local state from [AuthController.CheckStatus].
func (a *AuthController) Logout(ctx context.Context) (models.Session, error) {
	sendProgress(a.opts.Progress, endSessionUpdate())

	err := a.api.Logout(ctx)
	if err == nil || services.StatusCode(err) == http.StatusUnauthorized {
		a.session.Set(models.LoggedOut())
		if a.history != nil {
			a.history.ClearHistory()
		}
		a.logger.Info("logged out")
		a.opts.Notifier.Notify(MsgLoggedOut, notify.Success)
		return a.session.Get(), nil
	}

	msg := MsgLogoutError
	if services.StatusCode(err) != 0 {
		msg = MsgLogoutFailed
	}
	a.logger.Error("logout failed", "error", err)
	a.opts.Notifier.Notify(msg, notify.Error)

	bg := context.WithoutCancel(ctx)
	a.opts.Schedule(a.opts.ReloadDelay, func() { a.Reload(bg) })
	return a.session.Get(), userError(msg, fmt.Errorf("%w: %w", shared.ErrLogoutFailed, err))
}

// Reload discards local state and rebuilds the session from the server.
func (a *AuthController) Reload(ctx context.Context) models.Session {
	sendProgress(a.opts.Progress, reloadUpdate())
	if a.opts.OnReload != nil {
		a.opts.OnReload()
	}
	a.session.Set(models.LoggedOut())
	if a.history != nil {
		a.history.ClearHistory()
	}
	return a.CheckStatus(ctx)
}

func (a *AuthController) fail(err *UserError) (models.Session, error) {
	a.opts.Notifier.Notify(err.Message, notify.Error)
	return a.session.Get(), err
}

func (a *AuthController) scheduleHistory(ctx context.Context) {
	if a.history == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	a.opts.Schedule(a.opts.HistoryDelay, func() { a.loadHistory(bg) })
}

func (a *AuthController) loadHistory(ctx context.Context) {
	if a.history == nil {
		return
	}
	if _, err := a.history.LoadHistory(ctx); err != nil {
		a.logger.Warn("failed to load search history", "error", err)
	}
}

func signupMessage(e *services.APIError) string {
	for _, f := range []struct{ field, prefix string }{
		{"username", "Username: "},
		{"email", "Email: "},
		{"password", "Password: "},
		{"password2", ""},
		{"detail", ""},
	} {
		if msg := e.First(f.field); msg != "" {
			return f.prefix + msg
		}
	}
	return MsgSignupFailed
}
