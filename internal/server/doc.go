// Package server provides HTTP routing, middleware, and an in-memory fixture of the venue API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Middleware
//
// [RequestLogger] writes one structured log line per request. [CSRF] enforces the X-CSRFToken header on
// unsafe methods for requests that carry a session, the way Django's SessionAuthentication does.
// [Latency] slows every response down so loading indicators can be seen in development.
//
// # Fixture API
//
// [FixtureAPI] serves the routes of the venue service from memory: cookie sessions, registration, categories,
// search with per-user history, and venue detail. Validation failures use Django REST framework bodies
// ({"field": ["message"]}, {"non_field_errors": [...]}, {"detail": "..."}) so the client's message
// fallbacks can be exercised without the real backend.
//
// The seed data is embedded from fixtures.json and includes the "demo" user.
//
// # Current Usage
//
// `outside dev serve` runs [NewFixtureRouter] on the configured server address. Package tests across the
// module start it with httptest.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
