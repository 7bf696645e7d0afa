package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrRegistrationFailed = fmt.Errorf("registration failed")
	ErrLogoutFailed       = fmt.Errorf("logout failed")
	ErrMissingCSRFToken   = fmt.Errorf("missing CSRF token")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrConnection         = fmt.Errorf("connection error")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrVenueNotFound      = fmt.Errorf("venue not found")
	ErrTileFetch          = fmt.Errorf("tile fetch failed")

	// Controller errors
	ErrBusy          = fmt.Errorf("request already in progress")
	ErrStaleResponse = fmt.Errorf("response superseded by a newer request")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
