// Package state provides observable state containers for the hospital
// directory. Containers publish an event on every change so that any front
// end can subscribe and re-render.
package state

import (
	"github.com/sofiamatics/hospdir/internal/events"
	"github.com/sofiamatics/hospdir/internal/models"
)

// State event types
const (
	EventListingChanged   events.EventType = "listing_changed"
	EventCountriesChanged events.EventType = "countries_changed"
)

// Reason says which transition produced a change event.
type Reason string

// Listing change reasons
const (
	ReasonSearchQuery      Reason = "search_query"
	ReasonSelectedState    Reason = "selected_state"
	ReasonSelectedCountry  Reason = "selected_country"
	ReasonCurrentPage      Reason = "current_page"
	ReasonItemsPerPage     Reason = "items_per_page"
	ReasonSelectedHospital Reason = "selected_hospital"
	ReasonFetchStarted     Reason = "fetch_started"
	ReasonFetchSucceeded   Reason = "fetch_succeeded"
	ReasonFetchFailed      Reason = "fetch_failed"
	ReasonReset            Reason = "reset"
)

// ListingChangedEvent is published after every listing state transition.
type ListingChangedEvent struct {
	events.BaseEvent
	Reason   Reason
	Snapshot Snapshot
}

// NewListingChangedEvent creates a new ListingChangedEvent.
func NewListingChangedEvent(reason Reason, snap Snapshot) *ListingChangedEvent {
	return &ListingChangedEvent{
		BaseEvent: events.NewBaseEvent(EventListingChanged),
		Reason:    reason,
		Snapshot:  snap,
	}
}

// CountriesChangedEvent is published after every country catalog transition.
type CountriesChangedEvent struct {
	events.BaseEvent
	Reason    Reason
	Countries []models.Country
	Loading   bool
	Error     string
}

// NewCountriesChangedEvent creates a new CountriesChangedEvent.
func NewCountriesChangedEvent(reason Reason, snap CountrySnapshot) *CountriesChangedEvent {
	return &CountriesChangedEvent{
		BaseEvent: events.NewBaseEvent(EventCountriesChanged),
		Reason:    reason,
		Countries: snap.Countries,
		Loading:   snap.Loading,
		Error:     snap.Error,
	}
}
