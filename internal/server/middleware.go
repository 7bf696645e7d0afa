package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(p)
	s.bytes += n
	return n, err
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}

			logFn := logger.Info
			if status >= http.StatusInternalServerError {
				logFn = logger.Error
			} else if status >= http.StatusBadRequest {
				logFn = logger.Warn
			}
			logFn("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", rec.bytes,
				"elapsed", time.Since(start),
			)
		})
	}
}

// CSRF rejects unsafe requests from authenticated sessions whose X-CSRFToken header does not
// match the session token. tokenFor returns the token and whether the request carries a session.
//
// Anonymous requests pass through, so login and registration work before a token exists.
func CSRF(tokenFor func(*http.Request) (string, bool)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := tokenFor(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			switch header := r.Header.Get(csrfHeader); {
			case header == "":
				writeDetail(w, http.StatusForbidden, "CSRF Failed: CSRF token missing.")
			case header != token:
				writeDetail(w, http.StatusForbidden, "CSRF Failed: CSRF token incorrect.")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// Latency delays every request by d. Used to make loading states visible in development.
func Latency(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(d):
				next.ServeHTTP(w, r)
			case <-r.Context().Done():
			}
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
