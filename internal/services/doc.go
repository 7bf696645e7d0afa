// Package services implements clients for the remote systems the venue discovery client talks to.
//
// # Venue API
//
// [API] describes the remote venue service: session check, login, registration, logout, categories,
// search, venue detail and search history. [VenueService] implements it over HTTP.
//
// The service uses a cookie session. [VenueService] keeps cookies in an [http.CookieJar]; the CLI
// passes a [PersistentJar] so a login survives between invocations. State-changing requests send
// the csrftoken cookie value in the X-CSRFToken header.
//
// # Error Handling
//
// Non-2xx responses come back as [*APIError], which keeps the decoded field errors so callers can pick
// a message by priority with [APIError.Message]. [errors.Is] matches:
//   - [shared.ErrAPIRequest] : any rejected request
//   - [shared.ErrNotAuthenticated] : 401 or 403
//   - [shared.ErrVenueNotFound] : 404
//   - [shared.ErrConnection] : the request never got a response
//
// # Tiles
//
// [TileService] downloads map tiles through a rate limiter and retries a failed tile exactly once.
//
// # Raw Access
//
// [APIService] performs unprocessed GET and POST requests for debugging.
package services
