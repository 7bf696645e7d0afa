package ui

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/mapview"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/notify"
	"github.com/desertthunder/outside/internal/services"
	"github.com/desertthunder/outside/internal/shared"
	"github.com/desertthunder/outside/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CategoryView ViewState = iota
	LocationView
	ResultsView
	VenueView
	LoginView
	SignupView
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	eventBuffer   = 64
)

// Config holds the dependencies of a [Model].
type Config struct {
	API     services.API
	Map     *mapview.Renderer
	Cacher  tasks.VenueCacher
	Options tasks.Options
	Dismiss time.Duration

	// OpenURL opens directions links. Defaults to [shared.OpenBrowser].
	OpenURL func(string) error
}

// Model represents the TUI application state.
//
// Controllers own the domain state. The model keeps snapshots of it, refreshed after every message,
// so View stays a pure function of the model.
type Model struct {
	ctx      context.Context
	view     ViewState
	ctrl     *tasks.Controllers
	renderer *mapview.Renderer
	notifier *notify.Service
	openURL  func(string) error
	logger   *log.Logger

	events   chan tea.Msg
	progress chan tasks.ProgressUpdate

	width      int
	height     int
	categories list.Model
	venues     list.Model
	location   textinput.Model
	form       authForm
	spinner    spinner.Model
	help       help.Model
	keys       keyMap

	session tasks.SessionView
	search  tasks.SearchState
	detail  tasks.DetailView
	glyphs  map[int]rune
	banner  *notify.Notification
	status  string
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, cfg Config) *Model {
	opts := cfg.Options
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if cfg.Map == nil {
		cfg.Map = mapview.New(mapview.DefaultOptions(), opts.Logger)
	}
	if cfg.OpenURL == nil {
		cfg.OpenURL = shared.OpenBrowser
	}

	m := &Model{
		ctx:      ctx,
		view:     CategoryView,
		renderer: cfg.Map,
		openURL:  cfg.OpenURL,
		logger:   shared.WithLogger(opts.Logger, "component", "ui"),
		events:   make(chan tea.Msg, eventBuffer),
		progress: make(chan tasks.ProgressUpdate, eventBuffer),
		width:    defaultWidth,
		height:   defaultHeight,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		keys:     newKeyMap(),
		glyphs:   map[int]rune{},
	}

	m.notifier = notify.New(
		notify.WithDismiss(cfg.Dismiss),
		notify.WithLogger(m.logger),
		notify.OnShow(func(n notify.Notification) { m.send(notificationMsg(n)) }),
		notify.OnDismiss(func(id string) { m.send(notificationDismissedMsg(id)) }),
	)

	schedule := opts.Schedule
	if schedule == nil {
		schedule = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	opts.Schedule = func(d time.Duration, fn func()) {
		schedule(d, func() {
			fn()
			m.send(refreshMsg())
		})
	}

	opts.Notifier = m.notifier
	opts.Map = cfg.Map
	opts.Cacher = cfg.Cacher
	opts.Progress = m.progress
	m.ctrl = tasks.NewControllers(cfg.API, opts)

	cfg.Map.OnMarkerClick(m.ctrl.Search.MarkerClicked)
	cfg.Map.Init()

	m.categories = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.categories.Title = "What are you looking for?"
	m.categories.SetShowStatusBar(false)
	m.categories.SetShowHelp(false)
	m.categories.SetFilteringEnabled(false)
	m.categories.DisableQuitKeybindings()

	m.venues = list.New(nil, venueDelegate{m: m}, 0, 0)
	m.venues.SetShowTitle(false)
	m.venues.SetShowStatusBar(false)
	m.venues.SetShowHelp(false)
	m.venues.SetFilteringEnabled(false)
	m.venues.DisableQuitKeybindings()

	m.location = textinput.New()
	m.location.Placeholder = "City, Area (e.g. Accra, Osu)"
	m.location.CharLimit = 120

	m.sync()
	m.categories.SetItems(categoryItems(m.search.Categories))
	m.resize()
	return m
}

// Controllers exposes the controllers backing the model.
func (m *Model) Controllers() *tasks.Controllers {
	return m.ctrl
}

// Init checks the session, loads the category catalog and starts listening for background events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.checkStatus(), m.loadCategories(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case CategoryView:
			return m.handleCategoryKeys(msg)
		case LocationView:
			return m.handleLocationKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case VenueView:
			return m.handleVenueKeys(msg)
		case LoginView, SignupView:
			return m.handleFormKeys(msg)
		}

	case Msg:
		cmd := m.handleMsg(msg)
		m.sync()
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgSessionChecked:
		return nil

	case MsgRefresh:
		return m.listen()

	case MsgCategoriesLoaded:
		m.categories.SetItems(categoryItems(msg.data.([]models.Category)))
		return nil

	case MsgSearchDone:
		res := msg.data.(searchResult)
		if res.err != nil {
			return nil
		}
		m.search = m.ctrl.Search.State()
		m.setVenues()
		m.location.Blur()
		m.view = ResultsView
		return nil

	case MsgVenueLoaded:
		res := msg.data.(venueResult)
		if errors.Is(res.err, shared.ErrStaleResponse) {
			return nil
		}
		m.detail = res.view
		return nil

	case MsgAuthDone:
		res := msg.data.(authResult)
		if res.err == nil {
			m.view = CategoryView
		}
		return nil

	case MsgNotification:
		n := msg.data.(notify.Notification)
		m.banner = &n
		return m.listen()

	case MsgNotificationDismissed:
		if id := msg.data.(string); m.banner != nil && m.banner.ID == id {
			m.banner = nil
		}
		return m.listen()

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.status = update.Message
		if update.Done {
			m.status = ""
		}
		return m.listen()
	}
	return nil
}

func (m *Model) handleCategoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.categories.SelectedItem().(categoryItem); ok {
			c := item.category
			m.ctrl.Search.SelectCategory(c.Slug, c.Glyph(), c.Name)
			return m, m.openPrompt()
		}
		return m, nil
	case key.Matches(msg, m.keys.repeat):
		i, _ := strconv.Atoi(msg.String())
		if i < 1 || i > len(m.search.History) {
			return m, nil
		}
		return m, m.repeatHistory(i - 1)
	case key.Matches(msg, m.keys.results):
		if m.search.Searched {
			m.view = ResultsView
		}
		return m, nil
	case key.Matches(msg, m.keys.login) && !m.session.Authenticated:
		return m, m.openForm(false)
	case key.Matches(msg, m.keys.signup) && !m.session.Authenticated:
		return m, m.openForm(true)
	case key.Matches(msg, m.keys.logout) && m.session.Authenticated:
		return m, m.logout()
	}

	var cmd tea.Cmd
	m.categories, cmd = m.categories.Update(msg)
	return m, cmd
}

func (m *Model) handleLocationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.ctrl.Search.ClosePrompt()
		m.location.Blur()
		m.view = CategoryView
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.ctrl.Search.SetLocation(m.location.Value())
		return m, m.runSearch()
	}

	var cmd tea.Cmd
	m.location, cmd = m.location.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = CategoryView
		return m, nil
	case key.Matches(msg, m.keys.search):
		if m.search.Selection.Empty() {
			return m, nil
		}
		m.ctrl.Search.SelectCategory(m.search.Selection.Category, m.search.Selection.CategoryIcon, m.search.Selection.CategoryName)
		return m, m.openPrompt()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.venues.SelectedItem().(venueItem); ok {
			m.ctrl.Search.SelectCard(item.venue.ID)
			return m, m.loadVenue(item.venue.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.marker):
		m.clickNextMarker()
		return m, nil
	}

	before := m.venues.Index()
	var cmd tea.Cmd
	m.venues, cmd = m.venues.Update(msg)
	if m.venues.Index() != before {
		if item, ok := m.venues.SelectedItem().(venueItem); ok {
			m.ctrl.Search.HoverCard(item.venue.ID)
		}
	}
	m.sync()
	return m, cmd
}

func (m *Model) handleVenueKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.ctrl.Detail.Close()
		m.detail = m.ctrl.Detail.Current()
		m.view = ResultsView
		return m, nil
	case key.Matches(msg, m.keys.directions):
		if m.detail.Status != tasks.DetailLoaded || m.detail.DirectionsURL == "" {
			return m, nil
		}
		if err := m.openURL(m.detail.DirectionsURL); err != nil {
			m.logger.Warn("failed to open directions", "error", err)
			m.notifier.Notify("Could not open directions: "+m.detail.DirectionsURL, notify.Error)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = CategoryView
		return m, nil
	case "tab", "down":
		m.form.next()
		return m, nil
	case "shift+tab", "up":
		m.form.prev()
		return m, nil
	case "enter":
		if !m.form.last() {
			m.form.next()
			return m, nil
		}
		return m, m.submitForm()
	}
	return m, m.form.update(msg)
}

// clickNextMarker opens the popup of the marker after the open one, as a click on the map would.
func (m *Model) clickNextMarker() {
	markers := m.renderer.Markers()
	if len(markers) == 0 {
		return
	}

	next := 0
	if p, ok := m.renderer.OpenPopup(); ok {
		for i, mk := range markers {
			if mk.VenueID == p.VenueID {
				next = (i + 1) % len(markers)
				break
			}
		}
	}

	m.renderer.ClickMarker(markers[next].VenueID)
	m.sync()
	m.scrollTo(m.search.ScrollTo)
}

func (m *Model) scrollTo(venueID int) {
	for i, item := range m.venues.Items() {
		if v, ok := item.(venueItem); ok && v.venue.ID == venueID {
			m.venues.Select(i)
			return
		}
	}
}

func (m *Model) openPrompt() tea.Cmd {
	m.sync()
	m.view = LocationView
	m.location.SetValue(m.search.Location)
	m.location.CursorEnd()
	return m.location.Focus()
}

func (m *Model) openForm(signup bool) tea.Cmd {
	m.form = newAuthForm(signup)
	m.view = LoginView
	if signup {
		m.view = SignupView
	}
	return textinput.Blink
}

// sync refreshes the snapshots of controller state used by View.
func (m *Model) sync() {
	m.session = tasks.NewSessionView(m.ctrl.Session.Get())
	m.search = m.ctrl.Search.State()

	m.glyphs = make(map[int]rune)
	for i, mk := range m.renderer.Markers() {
		m.glyphs[mk.VenueID] = mapview.Glyph(i)
	}
}

func (m *Model) setVenues() {
	m.venues.SetItems(venueItems(m.search.Venues))
	m.venues.Select(0)
}

func (m *Model) resize() {
	bodyHeight := max(m.height-10, 6)
	m.categories.SetSize(m.width-4, bodyHeight)
	m.venues.SetSize(m.listWidth(), bodyHeight)
	m.location.Width = max(m.width-10, 20)
	m.help.Width = m.width
}

func (m *Model) listWidth() int {
	return max(m.width/2-2, 30)
}

// send delivers a message from a background goroutine without blocking it.
func (m *Model) send(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
		m.logger.Debug("dropped ui event", "msg", msg)
	}
}

// listen waits for the next background event or progress update.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return msg
		case update := <-m.progress:
			return progressUpdateMsg(update)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) checkStatus() tea.Cmd {
	return func() tea.Msg {
		return sessionCheckedMsg(m.ctrl.Auth.CheckStatus(m.ctx))
	}
}

func (m *Model) loadCategories() tea.Cmd {
	return func() tea.Msg {
		return categoriesLoadedMsg(m.ctrl.Search.LoadCategories(m.ctx))
	}
}

func (m *Model) runSearch() tea.Cmd {
	return func() tea.Msg {
		result, err := m.ctrl.Search.Search(m.ctx)
		return searchDoneMsg(result, err)
	}
}

func (m *Model) repeatHistory(i int) tea.Cmd {
	return func() tea.Msg {
		result, err := m.ctrl.Search.RepeatHistory(m.ctx, i)
		return searchDoneMsg(result, err)
	}
}

func (m *Model) loadVenue(id int) tea.Cmd {
	m.detail = m.ctrl.Detail.Begin(id)
	m.view = VenueView
	return func() tea.Msg {
		view, err := m.ctrl.Detail.Load(m.ctx, id)
		return venueLoadedMsg(view, err)
	}
}

func (m *Model) submitForm() tea.Cmd {
	form := m.form
	if form.signup {
		return func() tea.Msg {
			session, err := m.ctrl.Auth.Signup(m.ctx, form.registration())
			return authDoneMsg(session, err)
		}
	}
	return func() tea.Msg {
		username, password := form.credentials()
		session, err := m.ctrl.Auth.Login(m.ctx, username, password)
		return authDoneMsg(session, err)
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		session, err := m.ctrl.Auth.Logout(m.ctx)
		return authDoneMsg(session, err)
	}
}
