package models

import "strings"

// UserRef is the identity returned by the auth endpoints.
type UserRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// DisplayName returns the full name, or the username when no full name is set.
func (u UserRef) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Username
}

// Initial is the upper-cased first letter of the username, used as an avatar.
func (u UserRef) Initial() string {
	for _, r := range u.Username {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// Session is the client's view of the server session. Sessions are replaced wholesale, never mutated.
type Session struct {
	Authenticated bool     `json:"authenticated"`
	User          *UserRef `json:"user,omitempty"`
}

// LoggedIn returns an authenticated session for u.
func LoggedIn(u UserRef) Session {
	return Session{Authenticated: true, User: &u}
}

// LoggedOut returns the unauthenticated session.
func LoggedOut() Session {
	return Session{}
}

// Username returns the current username or "".
func (s Session) Username() string {
	if s.User == nil {
		return ""
	}
	return s.User.Username
}

// Registration is the signup form.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// AuthResponse is the body of a successful login or registration.
type AuthResponse struct {
	User    UserRef `json:"user"`
	Message string  `json:"message"`
}
