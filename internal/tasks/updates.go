package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchBanner Phase = iota
	FetchRow
	FetchPage
	Discover
)

func (p Phase) String() string {
	switch p {
	case FetchBanner:
		return "fetch_banner"
	case FetchRow:
		return "fetch_row"
	case FetchPage:
		return "fetch_page"
	case Discover:
		return "discover"
	default:
		return ""
	}
}

func fetchBannerUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchBanner,
		Step:    step,
		Total:   total,
		Message: "Fetching featured movies...",
	}
}

func rowLoadedUpdate(step, total int, row Row) ProgressUpdate {
	if row.Err != nil {
		return ProgressUpdate{
			Phase:   FetchRow,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, row.Title, row.Err),
		}
	}
	return ProgressUpdate{
		Phase:   FetchRow,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d movies)", step, total, row.Title, len(row.Movies)),
		Data:    row,
	}
}

func pageFetchedUpdate(step, total, page, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] page %d: %d movies", step, total, page, count),
	}
}

func pageFailedUpdate(step, total, page int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ page %d: %v", step, total, page, err),
	}
}

func discoverUpdate(chips int) ProgressUpdate {
	msg := "Discovering movies..."
	if chips > 0 {
		msg = fmt.Sprintf("Discovering movies with %d filters...", chips)
	}
	return ProgressUpdate{Phase: Discover, Step: 1, Total: 1, Message: msg}
}
