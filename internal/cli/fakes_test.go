package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/sofiamatics/hospdir/internal/api"
	"github.com/sofiamatics/hospdir/internal/config"
	"github.com/sofiamatics/hospdir/internal/models"
)

// fakeDirectory serves a fixed three-page listing and country catalog.
type fakeDirectory struct {
	mu           sync.Mutex
	queries      []api.HospitalQuery
	hospitalsErr error
	countriesErr error
}

func (f *fakeDirectory) ListHospitals(ctx context.Context, q api.HospitalQuery) (*models.HospitalPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	err := f.hospitalsErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	phone := "+234 1 000"
	return &models.HospitalPage{
		Data: []models.Hospital{
			{ID: 7, HospitalName: "Zenith Clinic", State: "Oyo", Country: "Nigeria", CountryCode: "NG"},
			{ID: 3, HospitalName: "abbey Hospital", HospitalEmail: "info@abbey.ng", PhoneNumber: &phone, State: "Lagos", Country: "Nigeria", CountryCode: "NG"},
		},
		TotalPages: 3,
		TotalCount: 25,
	}, nil
}

func (f *fakeDirectory) ListCountries(ctx context.Context) ([]models.Country, error) {
	if f.countriesErr != nil {
		return nil, f.countriesErr
	}
	return []models.Country{
		{ID: 166, CountryCode: "NG", PhoneCode: "+234", Name: "Nigeria", NationalCurrency: "NGN"},
		{ID: 83, CountryCode: "GH", PhoneCode: "+233", Name: "Ghana", NationalCurrency: "GHS"},
		{ID: 84, CountryCode: "GN", PhoneCode: "+224", Name: "Guinea", NationalCurrency: "GNF"},
		{ID: 85, CountryCode: "GW", PhoneCode: "+245", Name: "Guinea-Bissau", NationalCurrency: "XOF"},
	}, nil
}

func (f *fakeDirectory) lastQuery() api.HospitalQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return api.HospitalQuery{}
	}
	return f.queries[len(f.queries)-1]
}

func (f *fakeDirectory) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

var errUnavailable = errors.New("Failed to fetch: Service Unavailable")

func testConfig() *config.Config {
	return config.NewDefaultConfig()
}
