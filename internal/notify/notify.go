// Package notify shows transient status messages.
//
// At most one notification is visible. Showing a new one replaces the current one, and each
// notification dismisses itself after a fixed delay.
package notify

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/shared"
)

// Kind selects how a notification is styled.
type Kind int

const (
	Info Kind = iota
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Glyph is the prefix shown before the message.
func (k Kind) Glyph() string {
	switch k {
	case Success:
		return "✅"
	case Error:
		return "❌"
	default:
		return "ℹ️"
	}
}

// DefaultDismiss is the auto-dismiss delay.
const DefaultDismiss = 4 * time.Second

// Notification is one visible message.
type Notification struct {
	ID        string
	Message   string
	Kind      Kind
	CreatedAt time.Time
}

// Notifier is implemented by anything that can show a notification.
type Notifier interface {
	Notify(message string, kind Kind)
}

// Service holds the current notification.
type Service struct {
	mu      sync.Mutex
	current *Notification
	timer   *time.Timer
	dismiss time.Duration
	onShow  func(Notification)
	onClear func(id string)
	logger  *log.Logger
}

// Option configures a [Service].
type Option func(*Service)

// WithDismiss sets the auto-dismiss delay.
func WithDismiss(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.dismiss = d
		}
	}
}

// OnShow registers an observer called after a notification becomes visible.
func OnShow(fn func(Notification)) Option {
	return func(s *Service) { s.onShow = fn }
}

// OnDismiss registers an observer called after a notification is removed.
func OnDismiss(fn func(id string)) Option {
	return func(s *Service) { s.onClear = fn }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a notification service.
func New(opts ...Option) *Service {
	s := &Service{dismiss: DefaultDismiss, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify replaces the current notification with message. It never panics.
func (s *Service) Notify(message string, kind Kind) {
	n := Notification{
		ID:        shared.GenerateID(),
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.current = &n
	s.timer = time.AfterFunc(s.dismiss, func() { s.Dismiss(n.ID) })
	onShow := s.onShow
	s.mu.Unlock()

	s.logger.Debug("notification", "kind", kind, "message", message)
	s.observe(func() {
		if onShow != nil {
			onShow(n)
		}
	})
}

// Current returns the visible notification.
func (s *Service) Current() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Notification{}, false
	}
	return *s.current, true
}

// Dismiss removes the notification with id if it is still the visible one.
func (s *Service) Dismiss(id string) {
	s.mu.Lock()
	if s.current == nil || s.current.ID != id {
		s.mu.Unlock()
		return
	}
	s.current = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	onClear := s.onClear
	s.mu.Unlock()

	s.observe(func() {
		if onClear != nil {
			onClear(id)
		}
	})
}

// Clear removes whatever is visible.
func (s *Service) Clear() {
	if n, ok := s.Current(); ok {
		s.Dismiss(n.ID)
	}
}

func (s *Service) observe(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("notification observer panicked", "recovered", r)
		}
	}()
	fn()
}

// Func adapts a function to [Notifier].
type Func func(message string, kind Kind)

func (f Func) Notify(message string, kind Kind) { f(message, kind) }

// Discard is a [Notifier] that drops every message.
var Discard Notifier = Func(func(string, Kind) {})
