// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewCollect is the price collection view.
	ViewCollect
	// ViewObservations lists the observations of the session.
	ViewObservations
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewCollect:
		return "collect"
	case ViewObservations:
		return "observations"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// SuggestionsReady carries a debounced suggestion evaluation.
type SuggestionsReady struct {
	Set domain.SuggestionSet
}

// ObservationConfirmed carries the outcome of a confirm.
// Observation is set whenever the observation was recorded, including when
// Err reports a persistence failure.
type ObservationConfirmed struct {
	Observation domain.Observation
	Err         error
}

// ObservationsLoaded carries the current observation list.
type ObservationsLoaded struct {
	Observations []domain.Observation
}

// ExportCompleted carries the outcome of an export.
type ExportCompleted struct {
	Result domain.ExportResult
	Err    error
}

// ResetCompleted signals the observation list was cleared.
type ResetCompleted struct {
	Err error
}

// CatalogLoaded carries the outcome of a catalog reload.
type CatalogLoaded struct {
	Stats domain.CatalogStats
	Err   error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// CatalogReloadRequested asks the app to reload the catalog snapshot.
type CatalogReloadRequested struct{}
