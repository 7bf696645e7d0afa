package tasks

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/services"
	"github.com/desertthunder/outside/internal/shared"
)

// Detail fallbacks and messages.
const (
	MsgLoadingVenue     = "Loading venue details..."
	MsgVenueLoadFailed  = "Error loading venue details"
	MsgNoDescription    = "No description available."
	MsgNoRating         = "No rating yet"
	MsgNotAvailable     = "Not available"
	DefaultCategoryName = "Venue"
)

// DirectionsBaseURL is the route planner the directions link points at.
const DirectionsBaseURL = "https://www.google.com/maps/dir/"

// DetailStatus is the phase of the detail view.
type DetailStatus int

const (
	DetailClosed DetailStatus = iota
	DetailLoading
	DetailLoaded
	DetailFailed
)

func (s DetailStatus) String() string {
	switch s {
	case DetailLoading:
		return "loading"
	case DetailLoaded:
		return "loaded"
	case DetailFailed:
		return "failed"
	default:
		return "closed"
	}
}

// DetailView is the rendered content of the venue detail panel.
type DetailView struct {
	Status        DetailStatus        `json:"-"`
	VenueID       int                 `json:"id"`
	Name          string              `json:"name"`
	Icon          string              `json:"icon"`
	CategoryName  string              `json:"category"`
	Description   string              `json:"description"`
	Location      string              `json:"location"`
	Address       string              `json:"address"`
	PriceRange    string              `json:"price_range"`
	Rating        string              `json:"rating"`
	Phone         string              `json:"phone"`
	Website       string              `json:"website"`
	HasWebsite    bool                `json:"-"`
	Amenities     []string            `json:"amenities,omitempty"`
	Images        []models.VenueImage `json:"images,omitempty"`
	OpeningHours  map[string]any      `json:"opening_hours,omitempty"`
	DirectionsURL string              `json:"directions_url"`
	Message       string              `json:"-"`
}

// Fields lists the labelled rows of the info block.
func (d DetailView) Fields() [][2]string {
	return [][2]string{
		{"📍 Location", d.Location},
		{"🏠 Address", d.Address},
		{"💰 Price Range", d.PriceRange},
		{"⭐ Rating", d.Rating},
		{"📞 Phone", d.Phone},
		{"🌐 Website", d.Website},
	}
}

// NewDetailView renders v with placeholders for missing fields.
func NewDetailView(v models.VenueDetail) DetailView {
	d := DetailView{
		Status:        DetailLoaded,
		VenueID:       v.ID,
		Name:          v.Name,
		Icon:          models.DefaultIcon,
		CategoryName:  DefaultCategoryName,
		Description:   v.Description,
		Location:      v.LocationText(),
		Address:       v.Address,
		PriceRange:    v.PriceRange,
		Rating:        MsgNoRating,
		Phone:         v.PhoneNumber,
		Website:       v.Website,
		HasWebsite:    v.Website != "",
		Images:        v.Images,
		OpeningHours:  v.OpeningHours,
		DirectionsURL: DirectionsURL(v.Latitude, v.Longitude),
	}
	if v.Category != nil {
		if v.Category.Icon != "" {
			d.Icon = v.Category.Icon
		}
		if v.Category.Name != "" {
			d.CategoryName = v.Category.Name
		}
	}
	if d.Description == "" {
		d.Description = MsgNoDescription
	}
	if v.Rating.Positive() {
		d.Rating = fmt.Sprintf("⭐ %s/5.0", v.Rating.String())
	}
	if d.Phone == "" {
		d.Phone = MsgNotAvailable
	}
	if d.Website == "" {
		d.Website = MsgNotAvailable
	}
	for _, a := range v.Amenities {
		d.Amenities = append(d.Amenities, a.Icon+" "+a.Name)
	}
	return d
}

// DirectionsURL links to driving directions ending at lat,lng. It is empty unless both
// coordinates are valid.
func DirectionsURL(lat, lng models.Decimal) string {
	if !lat.Valid || !lng.Valid {
		return ""
	}
	return DirectionsBaseURL + "?api=1&destination=" + url.QueryEscape(lat.Raw) + "," + url.QueryEscape(lng.Raw)
}

// DetailLoader fetches and renders one venue at a time.
type DetailLoader struct {
	api    services.API
	opts   Options
	logger *log.Logger

	mu      sync.Mutex
	current DetailView
	seq     uint64
}

// NewDetailLoader creates a detail loader.
func NewDetailLoader(api services.API, opts Options) *DetailLoader {
	opts = opts.withDefaults()
	return &DetailLoader{api: api, opts: opts, logger: shared.WithLogger(opts.Logger, "controller", "detail")}
}

// Begin switches the view to the loading state for id and returns it.
func (l *DetailLoader) Begin(id int) DetailView {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.current = DetailView{Status: DetailLoading, VenueID: id, Message: MsgLoadingVenue}
	return l.current
}

// Show fetches venue id and returns the rendered view, or the error view on failure.
func (l *DetailLoader) Show(ctx context.Context, id int) (DetailView, error) {
	l.Begin(id)
	return l.Load(ctx, id)
}

// Load fetches venue id without resetting the view first. Call after [DetailLoader.Begin].
func (l *DetailLoader) Load(ctx context.Context, id int) (DetailView, error) {
	l.mu.Lock()
	seq := l.seq
	l.mu.Unlock()

	sendProgress(l.opts.Progress, loadVenueUpdate(id))
	venue, err := l.api.Venue(ctx, id)

	var view DetailView
	if err != nil {
		l.logger.Error("failed to load venue", "id", id, "error", err)
		view = DetailView{Status: DetailFailed, VenueID: id, Message: MsgVenueLoadFailed}
		err = userError(MsgVenueLoadFailed, err)
	} else {
		view = NewDetailView(*venue)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return view, shared.ErrStaleResponse
	}
	l.current = view
	return view, err
}

// Current returns the visible detail view.
func (l *DetailLoader) Current() DetailView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Close hides the detail view and abandons any load in flight.
func (l *DetailLoader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.current = DetailView{}
}
