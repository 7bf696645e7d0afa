package tasks

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/mapview"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/notify"
	"github.com/desertthunder/outside/internal/shared"
)

// Default delays and limits.
const (
	DefaultHistoryDelay = 500 * time.Millisecond
	DefaultReloadDelay  = 1500 * time.Millisecond
	DefaultHistoryLimit = 5
)

// MapRenderer is the part of [mapview.Renderer] the search controller drives.
type MapRenderer interface {
	SetVenues(venues []models.Venue) int
	FocusVenue(venueID int) (int, bool)
	OpenPopup() (mapview.Popup, bool)
	ClosePopup()
}

// Options holds the collaborators and timings shared by the controllers. Zero values select defaults.
type Options struct {
	Notifier     notify.Notifier
	Map          MapRenderer
	Cacher       VenueCacher
	Progress     chan<- ProgressUpdate
	Logger       *log.Logger
	Schedule     Scheduler
	HistoryDelay time.Duration
	ReloadDelay  time.Duration
	HistoryLimit int

	// OnReload runs before the session is rebuilt after a failed logout.
	OnReload func()
}

// OptionsFromConfig fills the timings from the session section of c.
func OptionsFromConfig(c *shared.Config) Options {
	return Options{
		HistoryDelay: c.Session.HistoryDelay(),
		ReloadDelay:  c.Session.ReloadDelay(),
		HistoryLimit: c.Session.HistoryLimit,
	}
}

func (o Options) withDefaults() Options {
	if o.Notifier == nil {
		o.Notifier = notify.Discard
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Schedule == nil {
		o.Schedule = afterFunc
	}
	if o.HistoryDelay <= 0 {
		o.HistoryDelay = DefaultHistoryDelay
	}
	if o.ReloadDelay <= 0 {
		o.ReloadDelay = DefaultReloadDelay
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = DefaultHistoryLimit
	}
	return o
}
