package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sofiamatics/hospdir/internal/api"
	"github.com/sofiamatics/hospdir/internal/constants"
	"github.com/sofiamatics/hospdir/internal/events"
	"github.com/sofiamatics/hospdir/internal/logging"
	"github.com/sofiamatics/hospdir/internal/models"
)

// ErrInvalidPageSize is returned by SetItemsPerPage for sizes outside
// constants.ItemsPerPageOptions.
var ErrInvalidPageSize = errors.New("invalid items per page")

// HospitalLister is the remote service the listing controller pages through.
// *api.Client satisfies it.
type HospitalLister interface {
	ListHospitals(ctx context.Context, q api.HospitalQuery) (*models.HospitalPage, error)
}

// Snapshot is a point-in-time copy of the listing state.
type Snapshot struct {
	SearchQuery     string
	SelectedState   string
	SelectedCountry string
	CurrentPage     int
	ItemsPerPage    int

	Hospitals  []models.Hospital
	TotalPages int
	TotalCount int
	Loading    bool
	Error      string // empty when the last fetch succeeded

	SelectedHospital *models.Hospital
}

// Query returns the listing request described by the snapshot's filters.
func (s Snapshot) Query() api.HospitalQuery {
	return api.HospitalQuery{
		CountryID:  s.SelectedCountry,
		Page:       s.CurrentPage,
		PerPage:    s.ItemsPerPage,
		State:      s.SelectedState,
		SearchTerm: s.SearchQuery,
	}
}

// HasFilters reports whether a search or state filter is active.
func (s Snapshot) HasFilters() bool {
	return s.SearchQuery != "" || s.SelectedState != ""
}

// Option configures a ListingState.
type Option func(*ListingState)

// WithDefaultCountry sets the country selected initially and after Reset.
func WithDefaultCountry(id string) Option {
	return func(s *ListingState) { s.defaultCountry = id }
}

// WithItemsPerPage sets the initial page size. Invalid sizes are ignored.
func WithItemsPerPage(n int) Option {
	return func(s *ListingState) {
		if constants.IsValidItemsPerPage(n) {
			s.defaultPerPage = n
		}
	}
}

// WithStaleResponseGuard makes FetchHospitals drop results of fetches that
// were superseded by a newer fetch before they completed. Without it the
// last response to arrive is applied.
func WithStaleResponseGuard(enabled bool) Option {
	return func(s *ListingState) { s.discardStale = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *ListingState) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ListingState owns the filter, pagination, result and selection state of the
// hospital listing. Every transition notifies subscribers synchronously, after
// the new state is in place and the lock is released.
// Thread-safe for concurrent access.
type ListingState struct {
	lister   HospitalLister
	eventBus *events.EventBus
	logger   *logging.Logger

	defaultCountry string
	defaultPerPage int
	discardStale   bool

	mu          sync.RWMutex
	snap        Snapshot
	latestFetch string // token of the most recently started fetch
}

// NewListingState creates a listing controller backed by lister. When
// eventBus is nil a private bus is created.
func NewListingState(lister HospitalLister, eventBus *events.EventBus, opts ...Option) *ListingState {
	if eventBus == nil {
		eventBus = events.NewEventBus(0)
	}
	s := &ListingState{
		lister:         lister,
		eventBus:       eventBus,
		logger:         logging.NewNopLogger(),
		defaultCountry: constants.DefaultCountryID,
		defaultPerPage: constants.DefaultItemsPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap = s.initialSnapshot()
	return s
}

func (s *ListingState) initialSnapshot() Snapshot {
	return Snapshot{
		SelectedCountry: s.defaultCountry,
		CurrentPage:     1,
		ItemsPerPage:    s.defaultPerPage,
		Hospitals:       []models.Hospital{},
		TotalPages:      constants.DefaultTotalPages,
	}
}

// Snapshot returns a copy of the current state.
func (s *ListingState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// copyLocked copies the snapshot (must hold lock).
func (s *ListingState) copyLocked() Snapshot {
	snap := s.snap
	snap.Hospitals = make([]models.Hospital, len(s.snap.Hospitals))
	copy(snap.Hospitals, s.snap.Hospitals)
	if s.snap.SelectedHospital != nil {
		h := *s.snap.SelectedHospital
		snap.SelectedHospital = &h
	}
	return snap
}

// Subscribe registers fn to be called synchronously with the new snapshot
// after every transition. The returned function unsubscribes.
func (s *ListingState) Subscribe(fn func(Snapshot)) func() {
	return s.eventBus.Listen(EventListingChanged, func(e events.Event) {
		if ev, ok := e.(*ListingChangedEvent); ok {
			fn(ev.Snapshot)
		}
	})
}

// update applies mutate under the lock and then publishes one change event.
func (s *ListingState) update(reason Reason, mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.snap)
	snap := s.copyLocked()
	s.mu.Unlock()

	s.eventBus.Publish(NewListingChangedEvent(reason, snap))
}

// SetSearchQuery sets the search text and returns to page 1.
func (s *ListingState) SetSearchQuery(q string) {
	s.update(ReasonSearchQuery, func(snap *Snapshot) {
		snap.SearchQuery = q
		snap.CurrentPage = 1
	})
}

// SetSelectedState sets the state/region filter and returns to page 1.
func (s *ListingState) SetSelectedState(state string) {
	s.update(ReasonSelectedState, func(snap *Snapshot) {
		snap.SelectedState = state
		snap.CurrentPage = 1
	})
}

// SetSelectedCountry sets the country filter and returns to page 1.
func (s *ListingState) SetSelectedCountry(id string) {
	s.update(ReasonSelectedCountry, func(snap *Snapshot) {
		snap.SelectedCountry = id
		snap.CurrentPage = 1
	})
}

// SetCurrentPage sets the page number as given. It is not clamped against
// TotalPages; out-of-range pages go to the server unchanged.
func (s *ListingState) SetCurrentPage(page int) {
	s.update(ReasonCurrentPage, func(snap *Snapshot) {
		snap.CurrentPage = page
	})
}

// SetItemsPerPage sets the page size and returns to page 1.
func (s *ListingState) SetItemsPerPage(n int) error {
	if !constants.IsValidItemsPerPage(n) {
		return fmt.Errorf("%w: %d (allowed: %v)", ErrInvalidPageSize, n, constants.ItemsPerPageOptions)
	}
	s.update(ReasonItemsPerPage, func(snap *Snapshot) {
		snap.ItemsPerPage = n
		snap.CurrentPage = 1
	})
	return nil
}

// SetSelectedHospital opens the detail view for h; nil closes it.
func (s *ListingState) SetSelectedHospital(h *models.Hospital) {
	var selected *models.Hospital
	if h != nil {
		c := *h
		selected = &c
	}
	s.update(ReasonSelectedHospital, func(snap *Snapshot) {
		snap.SelectedHospital = selected
	})
}

// Reset restores the default filters, page, page size and selection.
// Fetched results are kept until the next fetch.
func (s *ListingState) Reset() {
	initial := s.initialSnapshot()
	s.update(ReasonReset, func(snap *Snapshot) {
		snap.SearchQuery = initial.SearchQuery
		snap.SelectedState = initial.SelectedState
		snap.SelectedCountry = initial.SelectedCountry
		snap.CurrentPage = initial.CurrentPage
		snap.ItemsPerPage = initial.ItemsPerPage
		snap.SelectedHospital = nil
	})
}

// FetchHospitals loads the page described by the current filters.
//
// It notifies once when the fetch starts (loading, error cleared) and once
// when it finishes: on success the results are replaced, sorted by name; on
// failure the error message is recorded and the previous results are kept.
// The returned error is the same failure that was recorded in state.
func (s *ListingState) FetchHospitals(ctx context.Context) error {
	token := uuid.NewString()

	var q api.HospitalQuery
	s.update(ReasonFetchStarted, func(snap *Snapshot) {
		snap.Loading = true
		snap.Error = ""
		q = snap.Query()
		s.latestFetch = token
	})

	s.logger.Debug().
		Str("fetch", token).
		Str("country", q.CountryID).
		Int("page", q.Page).
		Int("per_page", q.PerPage).
		Str("state", q.State).
		Str("search", q.SearchTerm).
		Msg("fetching hospitals")

	page, err := s.lister.ListHospitals(ctx, q)

	if s.isStale(token) {
		s.logger.Debug().Str("fetch", token).Msg("discarding superseded hospital response")
		return err
	}

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = constants.FetchErrorFallback
		}
		s.logger.Warn().Err(err).Msg("hospital fetch failed")
		s.update(ReasonFetchFailed, func(snap *Snapshot) {
			snap.Error = msg
			snap.Loading = false
		})
		return err
	}

	if page == nil {
		page = &models.HospitalPage{}
	}
	page.Normalize()
	hospitals := sortByName(page.Data)

	s.update(ReasonFetchSucceeded, func(snap *Snapshot) {
		snap.Hospitals = hospitals
		snap.TotalPages = page.TotalPages
		snap.TotalCount = page.TotalCount
		snap.Loading = false
		snap.Error = ""
	})

	s.logger.Debug().
		Str("fetch", token).
		Int("count", len(hospitals)).
		Int("total_pages", page.TotalPages).
		Int("total_count", page.TotalCount).
		Msg("hospitals loaded")
	return nil
}

func (s *ListingState) isStale(token string) bool {
	if !s.discardStale {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestFetch != token
}

// sortByName returns a copy of hospitals sorted case-insensitively by name.
// Equal names keep their server order.
func sortByName(hospitals []models.Hospital) []models.Hospital {
	sorted := make([]models.Hospital, len(hospitals))
	copy(sorted, hospitals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].HospitalName) < strings.ToLower(sorted[j].HospitalName)
	})
	return sorted
}
