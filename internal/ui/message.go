package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/outside/internal/models"
	"github.com/desertthunder/outside/internal/notify"
	"github.com/desertthunder/outside/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionChecked MsgKind = iota
	MsgCategoriesLoaded
	MsgSearchDone
	MsgVenueLoaded
	MsgAuthDone
	MsgNotification
	MsgNotificationDismissed
	MsgProgressUpdate
	MsgRefresh
)

type searchResult struct {
	result *models.SearchResult
	err    error
}

type authResult struct {
	session models.Session
	err     error
}

type venueResult struct {
	view tasks.DetailView
	err  error
}

// sessionCheckedMsg is the constructor for [MsgSessionChecked]
func sessionCheckedMsg(session models.Session) Msg {
	return Msg{kind: MsgSessionChecked, data: session}
}

// categoriesLoadedMsg is the constructor for [MsgCategoriesLoaded]
func categoriesLoadedMsg(categories []models.Category) Msg {
	return Msg{kind: MsgCategoriesLoaded, data: categories}
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(result *models.SearchResult, err error) Msg {
	return Msg{kind: MsgSearchDone, data: searchResult{result, err}}
}

// venueLoadedMsg is the constructor for [MsgVenueLoaded]
func venueLoadedMsg(view tasks.DetailView, err error) Msg {
	return Msg{kind: MsgVenueLoaded, data: venueResult{view, err}}
}

// authDoneMsg is the constructor for [MsgAuthDone]
func authDoneMsg(session models.Session, err error) Msg {
	return Msg{kind: MsgAuthDone, data: authResult{session, err}}
}

// notificationMsg is the constructor for [MsgNotification]
func notificationMsg(n notify.Notification) Msg {
	return Msg{kind: MsgNotification, data: n}
}

// notificationDismissedMsg is the constructor for [MsgNotificationDismissed]
func notificationDismissedMsg(id string) Msg {
	return Msg{kind: MsgNotificationDismissed, data: id}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// refreshMsg is the constructor for [MsgRefresh], sent after background work changes controller state
func refreshMsg() Msg {
	return Msg{kind: MsgRefresh}
}
