// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the venue finder's screens:
//  1. [CategoryView] : Pick a category, or repeat one of the recent searches
//  2. [LocationView] : Enter "City" or "City, Area" for the chosen category
//  3. [ResultsView] : Venue cards beside a character map of their markers
//  4. [VenueView] : Full venue record with a directions link
//  5. [LoginView] and [SignupView] : Session forms
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Domain state lives in the tasks controllers. Notifications, scheduled history loads and progress updates arrive on
// channels drained by a single listening command, so controller callbacks never block on the UI.
//
// Moving through the result list focuses the map on the venue and opens its popup. Cycling markers with m does the
// reverse: the card of the clicked marker is highlighted and scrolled into view.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
