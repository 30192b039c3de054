package state

import (
	"context"
	"strings"
	"sync"

	"github.com/sofiamatics/hospdir/internal/constants"
	"github.com/sofiamatics/hospdir/internal/events"
	"github.com/sofiamatics/hospdir/internal/logging"
	"github.com/sofiamatics/hospdir/internal/models"
)

// CountryLister is the remote source of the country catalog.
type CountryLister interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
}

// CountrySnapshot is a point-in-time copy of the country catalog state.
type CountrySnapshot struct {
	Countries []models.Country
	Loading   bool
	Error     string
}

// CountryState holds the country catalog used to label and pick the
// country filter.
type CountryState struct {
	lister   CountryLister
	eventBus *events.EventBus
	logger   *logging.Logger

	mu   sync.RWMutex
	snap CountrySnapshot
}

// NewCountryState creates a country catalog backed by lister.
func NewCountryState(lister CountryLister, eventBus *events.EventBus, logger *logging.Logger) *CountryState {
	if eventBus == nil {
		eventBus = events.NewEventBus(0)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CountryState{
		lister:   lister,
		eventBus: eventBus,
		logger:   logger,
		snap:     CountrySnapshot{Countries: []models.Country{}},
	}
}

// Snapshot returns a copy of the current state.
func (s *CountryState) Snapshot() CountrySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *CountryState) copyLocked() CountrySnapshot {
	snap := s.snap
	snap.Countries = make([]models.Country, len(s.snap.Countries))
	copy(snap.Countries, s.snap.Countries)
	return snap
}

// Subscribe registers fn to be called synchronously after every transition.
func (s *CountryState) Subscribe(fn func(CountrySnapshot)) func() {
	return s.eventBus.Listen(EventCountriesChanged, func(e events.Event) {
		if ev, ok := e.(*CountriesChangedEvent); ok {
			fn(CountrySnapshot{Countries: ev.Countries, Loading: ev.Loading, Error: ev.Error})
		}
	})
}

func (s *CountryState) update(reason Reason, mutate func(*CountrySnapshot)) {
	s.mu.Lock()
	mutate(&s.snap)
	snap := s.copyLocked()
	s.mu.Unlock()

	s.eventBus.Publish(NewCountriesChangedEvent(reason, snap))
}

// FetchCountries loads the catalog. On failure the previous catalog is kept
// and the error message recorded.
func (s *CountryState) FetchCountries(ctx context.Context) error {
	s.update(ReasonFetchStarted, func(snap *CountrySnapshot) {
		snap.Loading = true
		snap.Error = ""
	})

	countries, err := s.lister.ListCountries(ctx)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = constants.FetchErrorFallback
		}
		s.logger.Warn().Err(err).Msg("country fetch failed")
		s.update(ReasonFetchFailed, func(snap *CountrySnapshot) {
			snap.Error = msg
			snap.Loading = false
		})
		return err
	}

	if countries == nil {
		countries = []models.Country{}
	}
	s.update(ReasonFetchSucceeded, func(snap *CountrySnapshot) {
		snap.Countries = countries
		snap.Loading = false
		snap.Error = ""
	})
	return nil
}

// Lookup finds a country by its id string.
func (s *CountryState) Lookup(id string) (models.Country, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.snap.Countries {
		if c.IDString() == id {
			return c, true
		}
	}
	return models.Country{}, false
}

// Search returns the countries whose name or code contains term,
// case-insensitively. An empty term returns the whole catalog.
func (s *CountryState) Search(term string) []models.Country {
	snap := s.Snapshot()
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return snap.Countries
	}
	var matches []models.Country
	for _, c := range snap.Countries {
		if strings.Contains(strings.ToLower(c.Name), term) || strings.ToLower(c.CountryCode) == term {
			matches = append(matches, c)
		}
	}
	return matches
}
