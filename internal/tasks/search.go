package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/notify"
	"github.com/desertthunder/outside/internal/services"
	"github.com/desertthunder/outside/internal/shared"
)

// User-facing search messages.
const (
	MsgMissingLocation = "Please enter a location"
	MsgMissingCategory = "Please select a category first"
	MsgSearchFailed    = "Error searching for venues. Please try again."
	MsgNoVenues        = "No venues found"
	MsgNoVenuesHint    = "Try searching in a different location"
)

// SearchState is a snapshot of the search controller.
type SearchState struct {
	Selection  models.SearchSelection
	Location   string
	PromptOpen bool
	Loading    bool
	Searched   bool
	Query      models.SearchQuery
	Venues     []models.Venue
	Count      int
	Title      string
	Highlight  int // venue id of the highlighted card, 0 for none
	ScrollTo   int // venue id the list should scroll to, 0 for none
	Categories []models.Category
	History    []models.HistoryEntry
}

// CountText formats the result count: "Showing 1 place" or "Showing N places".
func (s SearchState) CountText() string {
	return models.CountText(s.Count)
}

// Empty reports whether a search completed without results.
func (s SearchState) Empty() bool {
	return s.Searched && len(s.Venues) == 0
}


// ResultsTitle formats "<CategoryName> in <location>".
func ResultsTitle(categoryName, location string) string {
	return fmt.Sprintf("%s in %s", categoryName, location)
}

// SearchController runs venue searches and keeps the result list, the map markers and the
// highlighted venue consistent with one another.
type SearchController struct {
	api     services.API
	session *SessionStore
	opts    Options
	logger  *log.Logger

	generation atomic.Uint64

	mu    sync.Mutex
	state SearchState
}

// NewSearchController creates a search controller starting with the static category catalog.
func NewSearchController(api services.API, session *SessionStore, opts Options) *SearchController {
	opts = opts.withDefaults()
	c := &SearchController{
		api:     api,
		session: session,
		opts:    opts,
		logger:  shared.WithLogger(opts.Logger, "controller", "search"),
	}
	c.state.Categories = slices.Clone(models.DefaultCategories)
	return c
}

// State returns a snapshot of the controller.
func (c *SearchController) State() SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Venues = slices.Clone(c.state.Venues)
	s.Categories = slices.Clone(c.state.Categories)
	s.History = slices.Clone(c.state.History)
	return s
}

// SelectCategory records the category for the next search and opens the location prompt.
func (c *SearchController) SelectCategory(category, icon, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection = models.SearchSelection{Category: category, CategoryIcon: icon, CategoryName: name}
	c.state.PromptOpen = true
}

// ClosePrompt dismisses the location prompt without searching.
func (c *SearchController) ClosePrompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PromptOpen = false
}

// SetLocation sets the free-text location.
func (c *SearchController) SetLocation(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Location = text
}

// FindCategory looks key up in the loaded catalog by slug or name, ignoring case.
func (c *SearchController) FindCategory(key string) (models.Category, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return findCategory(c.state.Categories, key)
}

func findCategory(categories []models.Category, key string) (models.Category, bool) {
	key = strings.TrimSpace(key)
	for _, cat := range categories {
		if strings.EqualFold(cat.Slug, key) || strings.EqualFold(cat.Name, key) {
			return cat, true
		}
	}
	return models.Category{}, false
}

// Search runs the query built from the current selection and location.
//
// Results are applied only if no newer search started meanwhile; a superseded search returns
// [shared.ErrStaleResponse]. On failure the previous results stay in place.
func (c *SearchController) Search(ctx context.Context) (*models.SearchResult, error) {
	c.mu.Lock()
	location := strings.TrimSpace(c.state.Location)
	sel := c.state.Selection
	c.mu.Unlock()

	if location == "" {
		return nil, c.fail(userError(MsgMissingLocation, shared.ErrValidation))
	}
	if sel.Empty() {
		return nil, c.fail(userError(MsgMissingCategory, shared.ErrValidation))
	}

	query := models.ParseLocation(location)
	gen := c.generation.Add(1)

	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	sendProgress(c.opts.Progress, searchingUpdate(sel, location))
	c.logger.Info("searching", "category", sel.Category, "city", query.City, "area", query.Area, "generation", gen)

	result, err := c.api.Search(ctx, sel.Category, query)

	c.mu.Lock()
	if gen != c.generation.Load() {
		c.mu.Unlock()
		c.logger.Debug("discarding stale results", "generation", gen)
		return nil, shared.ErrStaleResponse
	}
	c.state.Loading = false

	if err != nil {
		c.mu.Unlock()
		c.logger.Error("search failed", "error", err)
		sendProgress(c.opts.Progress, searchFailedUpdate(err))
		return nil, c.fail(userError(MsgSearchFailed, err))
	}

	venues := result.Results
	if venues == nil {
		venues = []models.Venue{}
	}
	markers := 0
	if c.opts.Map != nil {
		markers = c.opts.Map.SetVenues(venues)
	}

	count := result.Count
	if count < len(venues) {
		count = len(venues)
	}
	name := sel.CategoryName
	if name == "" {
		name = sel.Category
	}

	c.state.Venues = venues
	c.state.Count = count
	c.state.Query = query
	c.state.Title = ResultsTitle(name, location)
	c.state.Searched = true
	c.state.Highlight = 0
	c.state.ScrollTo = 0
	c.state.PromptOpen = false
	c.mu.Unlock()

	sendProgress(c.opts.Progress, renderResultsUpdate(result, markers))
	c.cache(ctx, sel.Category, venues)
	return result, nil
}

// RepeatSearch reruns a prior search. Icon and name come from the loaded category catalog and
// stay blank when the category is not in it.
func (c *SearchController) RepeatSearch(ctx context.Context, category, city, area string) (*models.SearchResult, error) {
	c.mu.Lock()
	sel := models.SearchSelection{Category: category}
	if cat, ok := findCategory(c.state.Categories, category); ok {
		sel.CategoryIcon = cat.Glyph()
		sel.CategoryName = cat.Name
	}
	c.state.Selection = sel
	c.state.Location = models.SearchQuery{City: city, Area: area}.String()
	c.mu.Unlock()

	return c.Search(ctx)
}

// RepeatHistory reruns the i-th visible history entry.
func (c *SearchController) RepeatHistory(ctx context.Context, i int) (*models.SearchResult, error) {
	c.mu.Lock()
	if i < 0 || i >= len(c.state.History) {
		n := len(c.state.History)
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: history entry %d of %d", shared.ErrInvalidArgument, i+1, n)
	}
	h := c.state.History[i]
	c.mu.Unlock()

	return c.RepeatSearch(ctx, h.Category, h.City, h.Area)
}

// LoadHistory fetches recent searches when logged in and keeps the most recent few.
func (c *SearchController) LoadHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	if c.session == nil || !c.session.Authenticated() {
		return nil, nil
	}

	sendProgress(c.opts.Progress, loadHistoryUpdate())
	entries, err := c.api.SearchHistory(ctx)
	if err != nil {
		c.logger.Warn("could not load search history", "error", err)
		return nil, err
	}
	if len(entries) > c.opts.HistoryLimit {
		entries = entries[:c.opts.HistoryLimit]
	}

	c.mu.Lock()
	c.state.History = entries
	c.mu.Unlock()
	return slices.Clone(entries), nil
}

// ClearHistory forgets the loaded history.
func (c *SearchController) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.History = nil
}

// LoadCategories replaces the catalog from the API, keeping the static table on failure or an
// empty response.
func (c *SearchController) LoadCategories(ctx context.Context) []models.Category {
	sendProgress(c.opts.Progress, loadCategoriesUpdate())

	categories, err := c.api.Categories(ctx)
	if err != nil || len(categories) == 0 {
		c.logger.Warn("using built-in categories", "error", err)
		categories = models.DefaultCategories
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Categories = slices.Clone(categories)
	return slices.Clone(categories)
}

// SelectCard highlights the card of venueID and closes a popup that belongs to another venue.
// The map does not move.
func (c *SearchController) SelectCard(venueID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Highlight = venueID
	if c.opts.Map == nil {
		return
	}
	if p, ok := c.opts.Map.OpenPopup(); ok && p.VenueID != venueID {
		c.opts.Map.ClosePopup()
	}
}

// HoverCard focuses the map on the marker of venueID, opens its popup and highlights the card.
func (c *SearchController) HoverCard(venueID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Highlight = venueID
	if c.opts.Map == nil {
		return
	}
	if _, ok := c.opts.Map.FocusVenue(venueID); !ok {
		c.opts.Map.ClosePopup()
	}
}

// MarkerClicked highlights the card of venueID and asks the list to scroll it into view.
func (c *SearchController) MarkerClicked(venueID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Highlight = venueID
	c.state.ScrollTo = venueID
}

// Venue returns the listed venue with id.
func (c *SearchController) Venue(id int) (models.Venue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.state.Venues {
		if v.ID == id {
			return v, true
		}
	}
	return models.Venue{}, false
}

// Reset drops results, selection and history.
func (c *SearchController) Reset() {
	c.generation.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	categories := c.state.Categories
	c.state = SearchState{Categories: categories}
	if c.opts.Map != nil {
		c.opts.Map.SetVenues(nil)
	}
}

func (c *SearchController) cache(ctx context.Context, category string, venues []models.Venue) {
	if c.opts.Cacher == nil || len(venues) == 0 {
		return
	}
	sendProgress(c.opts.Progress, cacheVenuesUpdate(len(venues)))
	if err := c.opts.Cacher.CacheVenues(ctx, category, venues); err != nil {
		c.logger.Debug("venue cache write failed", "error", err)
	}
}

func (c *SearchController) fail(err *UserError) error {
	c.opts.Notifier.Notify(err.Message, notify.Error)
	return err
}
