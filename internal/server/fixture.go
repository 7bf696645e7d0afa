package server

import (
	"cmp"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/services"
	"github.com/google/uuid"
)

//go:embed fixtures.json
var fixtureData []byte

const (
	csrfHeader = services.CSRFHeader

	// HistoryPageSize is the number of searches returned by the history endpoint.
	HistoryPageSize = 10

	minPasswordLength = 8
)

// Messages returned by the fixture, matching the Django REST framework responses.
const (
	detailNotAuthenticated = "Authentication credentials were not provided."
	detailNotFound         = "Not found."
	msgLoginSuccessful     = "Login successful"
	msgRegistered          = "Registration successful"
	msgLogoutSuccessful    = "Logout successful"
	msgInvalidCredentials  = "Invalid username or password."
	msgFieldRequired       = "This field is required."
	msgFieldBlank          = "This field may not be blank."
	msgUsernameTaken       = "A user with that username already exists."
	msgInvalidEmail        = "Enter a valid email address."
	msgPasswordMismatch    = "Password fields didn't match."
	msgSearchRequired      = "Category and city are required"
)

type fixtureUser struct {
	models.UserRef
	Password string `json:"password"`
}

type fixtureVenue struct {
	models.VenueDetail
	Category string `json:"category"`
}

type fixtureSeed struct {
	Categories []models.Category `json:"categories"`
	Users      []fixtureUser     `json:"users"`
	Venues     []fixtureVenue    `json:"venues"`
}

type fixtureSession struct {
	userID int
	csrf   string
}

// FixtureAPI is an in-memory implementation of the venue API.
//
// It serves the same routes, status codes and error bodies as the Django service, with cookie sessions,
// CSRF tokens and per-user search history. State lives for the lifetime of the value.
type FixtureAPI struct {
	mu         sync.Mutex
	categories []models.Category
	venues     []models.VenueDetail
	users      map[string]*fixtureUser
	sessions   map[string]*fixtureSession
	history    map[int][]models.HistoryEntry
	nextUserID int
	nextHistID int
	now        func() time.Time
	logger     *log.Logger
}

// NewFixtureAPI creates a fixture seeded with the embedded categories, venues and demo user.
func NewFixtureAPI(logger *log.Logger) (*FixtureAPI, error) {
	return NewFixtureAPIFrom(fixtureData, logger)
}

// NewFixtureAPIFrom creates a fixture from a JSON seed with "categories", "users" and "venues".
//
// Venues name their category by slug.
func NewFixtureAPIFrom(seed []byte, logger *log.Logger) (*FixtureAPI, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var data fixtureSeed
	if err := json.Unmarshal(seed, &data); err != nil {
		return nil, fmt.Errorf("failed to decode fixture seed: %w", err)
	}

	f := &FixtureAPI{
		categories: data.Categories,
		users:      make(map[string]*fixtureUser),
		sessions:   make(map[string]*fixtureSession),
		history:    make(map[int][]models.HistoryEntry),
		now:        time.Now,
		logger:     logger,
	}

	for i := range data.Users {
		u := data.Users[i]
		f.users[strings.ToLower(u.Username)] = &u
		f.nextUserID = max(f.nextUserID, u.ID)
	}

	for _, v := range data.Venues {
		detail := v.VenueDetail
		if c, ok := f.category(v.Category); ok {
			detail.Category = &c
		}
		f.venues = append(f.venues, detail)
	}

	return f, nil
}

// Routes returns the API paths served by the fixture.
func (f *FixtureAPI) Routes() []string {
	return []string{
		services.PathMe,
		services.PathLogin,
		services.PathRegister,
		services.PathLogout,
		services.PathCategories,
		services.PathSearch,
		services.PathVenues,
		services.PathSearchHistory,
	}
}

func (f *FixtureAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch path := r.URL.Path; {
	case path == services.PathMe:
		allow(w, r, http.MethodGet, f.me)
	case path == services.PathLogin:
		allow(w, r, http.MethodPost, f.login)
	case path == services.PathRegister:
		allow(w, r, http.MethodPost, f.register)
	case path == services.PathLogout:
		allow(w, r, http.MethodPost, f.logout)
	case path == services.PathCategories:
		allow(w, r, http.MethodGet, f.listCategories)
	case path == services.PathSearch:
		allow(w, r, http.MethodGet, f.search)
	case path == services.PathSearchHistory:
		allow(w, r, http.MethodGet, f.searchHistory)
	case strings.HasPrefix(path, services.PathVenues):
		allow(w, r, http.MethodGet, f.venue)
	default:
		NotFound(w, r)
	}
}

// CSRFToken returns the token bound to the request's session, for use with [CSRF].
func (f *FixtureAPI) CSRFToken(r *http.Request) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.session(r)
	if !ok {
		return "", false
	}
	return s.csrf, true
}

// SessionCount returns the number of live sessions.
func (f *FixtureAPI) SessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// History returns the recorded searches of username, newest first.
func (f *FixtureAPI) History(username string) []models.HistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[strings.ToLower(username)]
	if !ok {
		return nil
	}
	return slices.Clone(f.history[u.ID])
}

func (f *FixtureAPI) me(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	user, ok := f.currentUser(r)
	f.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, user.UserRef)
}

func (f *FixtureAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	errs := fieldErrors{}
	errs.require("username", body.Username)
	errs.require("password", body.Password)
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[strings.ToLower(*body.Username)]
	if !ok || user.Password != *body.Password {
		writeJSON(w, http.StatusBadRequest, fieldErrors{"non_field_errors": {msgInvalidCredentials}})
		return
	}

	f.startSession(w, user)
	f.logger.Debug("fixture login", "username", user.Username)
	writeJSON(w, http.StatusOK, models.AuthResponse{User: user.UserRef, Message: msgLoginSuccessful})
}

func (f *FixtureAPI) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		FullName  string  `json:"full_name"`
		Password  *string `json:"password"`
		Password2 *string `json:"password2"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	errs := fieldErrors{}
	if errs.require("username", body.Username) {
		if _, taken := f.users[strings.ToLower(*body.Username)]; taken {
			errs.add("username", msgUsernameTaken)
		}
	}
	if errs.require("email", body.Email) {
		if _, err := mail.ParseAddress(*body.Email); err != nil {
			errs.add("email", msgInvalidEmail)
		}
	}
	if errs.require("password", body.Password) && len(*body.Password) < minPasswordLength {
		errs.add("password", fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
	errs.require("password2", body.Password2)
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	if *body.Password != *body.Password2 {
		writeJSON(w, http.StatusBadRequest, fieldErrors{"password": {msgPasswordMismatch}})
		return
	}

	f.nextUserID++
	user := &fixtureUser{
		UserRef: models.UserRef{
			ID:       f.nextUserID,
			Username: *body.Username,
			Email:    *body.Email,
			FullName: body.FullName,
		},
		Password: *body.Password,
	}
	f.users[strings.ToLower(user.Username)] = user

	f.startSession(w, user)
	f.logger.Debug("fixture registration", "username", user.Username)
	writeJSON(w, http.StatusCreated, models.AuthResponse{User: user.UserRef, Message: msgRegistered})
}

func (f *FixtureAPI) logout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cookie, err := r.Cookie(services.SessionCookie)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
		return
	}
	if _, ok := f.sessions[cookie.Value]; !ok {
		writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
		return
	}

	delete(f.sessions, cookie.Value)
	http.SetCookie(w, &http.Cookie{Name: services.SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": msgLogoutSuccessful})
}

func (f *FixtureAPI) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, f.categories)
}

// search filters by category slug or name, city substring and optional area substring, ordered by
// rating then name. Authenticated searches are recorded in the user's history.
func (f *FixtureAPI) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	city := strings.TrimSpace(q.Get("city"))
	area := strings.TrimSpace(q.Get("area"))

	if category == "" || city == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgSearchRequired})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []models.VenueDetail
	for _, v := range f.venues {
		if v.Category == nil {
			continue
		}
		if !strings.EqualFold(v.Category.Slug, category) && !strings.EqualFold(v.Category.Name, category) {
			continue
		}
		if !containsFold(v.City, city) || (area != "" && !containsFold(v.Area, area)) {
			continue
		}
		matches = append(matches, v)
	}

	slices.SortStableFunc(matches, func(a, b models.VenueDetail) int {
		if c := cmp.Compare(b.Rating.Value, a.Rating.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	if user, ok := f.currentUser(r); ok {
		f.nextHistID++
		entry := models.HistoryEntry{ID: f.nextHistID, Category: category, City: city, Area: area, SearchedAt: f.now().UTC()}
		f.history[user.ID] = append([]models.HistoryEntry{entry}, f.history[user.ID]...)
	}

	results := make([]models.Venue, 0, len(matches))
	for _, v := range matches {
		summary := v.Summary()
		summary.Thumbnail = thumbnail(r, v.Images)
		results = append(results, summary)
	}

	writeJSON(w, http.StatusOK, models.SearchResult{Count: len(results), Results: results})
}

func (f *FixtureAPI) venue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.Trim(strings.TrimPrefix(r.URL.Path, services.PathVenues), "/"))
	if err != nil {
		NotFound(w, r)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, v := range f.venues {
		if v.ID == id {
			writeJSON(w, http.StatusOK, v)
			return
		}
	}
	NotFound(w, r)
}

func (f *FixtureAPI) searchHistory(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.currentUser(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
		return
	}

	entries := f.history[user.ID]
	entries = entries[:min(len(entries), HistoryPageSize)]
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// startSession binds a new session to user and sets the session and CSRF cookies. Callers hold f.mu.
func (f *FixtureAPI) startSession(w http.ResponseWriter, user *fixtureUser) {
	key := uuid.NewString()
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	f.sessions[key] = &fixtureSession{userID: user.ID, csrf: token}

	http.SetCookie(w, &http.Cookie{Name: services.SessionCookie, Value: key, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	http.SetCookie(w, &http.Cookie{Name: services.CSRFCookie, Value: token, Path: "/", SameSite: http.SameSiteLaxMode})
}

// session looks up the request's session. Callers hold f.mu.
func (f *FixtureAPI) session(r *http.Request) (*fixtureSession, bool) {
	cookie, err := r.Cookie(services.SessionCookie)
	if err != nil {
		return nil, false
	}
	s, ok := f.sessions[cookie.Value]
	return s, ok
}

// currentUser resolves the request's session to its user. Callers hold f.mu.
func (f *FixtureAPI) currentUser(r *http.Request) (*fixtureUser, bool) {
	s, ok := f.session(r)
	if !ok {
		return nil, false
	}
	for _, u := range f.users {
		if u.ID == s.userID {
			return u, true
		}
	}
	return nil, false
}

func (f *FixtureAPI) category(slug string) (models.Category, bool) {
	for _, c := range f.categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return models.Category{}, false
}

// fieldErrors is a DRF validation error body: field name to messages.
type fieldErrors map[string][]string

func (e fieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// require records an error for a missing or blank value and reports whether the value is present.
func (e fieldErrors) require(field string, value *string) bool {
	switch {
	case value == nil:
		e.add(field, msgFieldRequired)
		return false
	case strings.TrimSpace(*value) == "":
		e.add(field, msgFieldBlank)
		return false
	}
	return true
}

func thumbnail(r *http.Request, images []models.VenueImage) *string {
	if len(images) == 0 {
		return nil
	}
	img := images[0]
	for _, i := range images {
		if i.IsPrimary {
			img = i
			break
		}
	}
	if img.Image == "" {
		return nil
	}

	u := img.Image
	if strings.HasPrefix(u, "/") {
		u = "http://" + r.Host + u
	}
	return &u
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func allow(w http.ResponseWriter, r *http.Request, method string, fn http.HandlerFunc) {
	if r.Method != method {
		methodNotAllowed(w, r)
		return
	}
	fn(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return false
	}
	return true
}

// NotFound writes the API's 404 body.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeDetail(w, http.StatusNotFound, detailNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}
