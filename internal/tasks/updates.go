package tasks

import (
	"fmt"

	"github.com/desertthunder/outside/internal/models"
)

// ProgressUpdate represents a progress event during a controller operation.
//
// Sent to the CLI or UI layer so it can show a spinner or status line.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Done    bool   // Set on the last update of the phase
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	CheckSession Phase = iota
	Authenticate
	EndSession
	LoadHistory
	LoadCategories
	SearchVenues
	RenderResults
	CacheVenues
	LoadVenue
	Reload
	DownloadTiles
)

func (p Phase) String() string {
	switch p {
	case CheckSession:
		return "check_session"
	case Authenticate:
		return "authenticate"
	case EndSession:
		return "end_session"
	case LoadHistory:
		return "load_history"
	case LoadCategories:
		return "load_categories"
	case SearchVenues:
		return "search_venues"
	case RenderResults:
		return "render_results"
	case CacheVenues:
		return "cache_venues"
	case LoadVenue:
		return "load_venue"
	case Reload:
		return "reload"
	case DownloadTiles:
		return "download_tiles"
	default:
		return ""
	}
}

// sendProgress sends update without blocking; a full or nil channel drops it.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func checkSessionUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: CheckSession, Step: 1, Total: 1, Message: "Checking session..."}
}

func authenticateUpdate(username string) ProgressUpdate {
	return ProgressUpdate{Phase: Authenticate, Step: 1, Total: 1, Message: fmt.Sprintf("Signing in as %s...", username)}
}

func endSessionUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: EndSession, Step: 1, Total: 1, Message: "Logging out..."}
}

func reloadUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Reload, Step: 1, Total: 1, Message: "Reloading session..."}
}

func loadHistoryUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: LoadHistory, Step: 1, Total: 1, Message: "Loading recent searches..."}
}

func loadCategoriesUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: LoadCategories, Step: 1, Total: 1, Message: "Loading categories..."}
}

func searchingUpdate(sel models.SearchSelection, location string) ProgressUpdate {
	name := sel.CategoryName
	if name == "" {
		name = sel.Category
	}
	return ProgressUpdate{
		Phase:   SearchVenues,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Searching for %s in %s...", name, location),
		Data:    sel,
	}
}

func renderResultsUpdate(result *models.SearchResult, markers int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderResults,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Found %d venues (%d on the map)", len(result.Results), markers),
		Done:    true,
		Data:    result,
	}
}

func searchFailedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{Phase: SearchVenues, Step: 2, Total: 2, Message: fmt.Sprintf("✗ search failed: %v", err), Done: true}
}

func cacheVenuesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{Phase: CacheVenues, Step: 1, Total: 1, Message: fmt.Sprintf("Caching %d venues...", count)}
}

func loadVenueUpdate(id int) ProgressUpdate {
	return ProgressUpdate{Phase: LoadVenue, Step: 1, Total: 1, Message: fmt.Sprintf("Loading venue %d...", id)}
}
