package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sofiamatics/hospdir/internal/config"
	"github.com/sofiamatics/hospdir/internal/events"
	"github.com/sofiamatics/hospdir/internal/models"
	"github.com/sofiamatics/hospdir/internal/progress"
	"github.com/sofiamatics/hospdir/internal/render"
	"github.com/sofiamatics/hospdir/internal/state"
)

const loadingDescription = "Loading hospitals"

// newHospitalsCmd creates the 'hospitals' command group.
func newHospitalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hospitals",
		Short: "List and browse hospitals",
		Long: `Hospital listing commands.

Commands:
  list    - Fetch one page with the given filters
  browse  - Interactive browser with search, filters and paging`,
	}

	cmd.AddCommand(newHospitalsListCmd())
	cmd.AddCommand(newHospitalsBrowseCmd())

	return cmd
}

// listOptions holds the flags of 'hospitals list'.
type listOptions struct {
	search  string
	country string
	state   string
	page    int
	perPage int
	output  string
	showID  int
	compact bool
}

// newHospitalsListCmd creates the 'hospitals list' command.
func newHospitalsListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hospitals",
		Long: `Fetch one page of hospitals.

The country defaults to default_country_id from the configuration; use
'hospdir countries list' to find other ids.`,
		Example: `  hospdir hospitals list --state Lagos
  hospdir hospitals list --search "general" --per-page 20 --page 2
  hospdir hospitals list --show 42 --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(opts.output); err != nil {
				return err
			}
			if opts.page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}

			client, err := getAPIClient()
			if err != nil {
				return err
			}

			opts.compact = useCompact()
			return runHospitalsList(cmd.Context(), client, client, client.GetConfig(), opts,
				cmd.OutOrStdout(), progress.NewStderrSpinner())
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Search term")
	cmd.Flags().StringVar(&opts.country, "country", "", "Country id (default from config)")
	cmd.Flags().StringVar(&opts.state, "state", "", "State or region")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&opts.perPage, "per-page", 0, "Hospitals per page: 10, 20, 30 or 40 (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "Output format: table, json or yaml")
	cmd.Flags().IntVar(&opts.showID, "show", 0, "Show the detail of the hospital with this id from the fetched page")

	return cmd
}

// newListing creates the listing controller with the configured defaults.
func newListing(cfg *config.Config, lister state.HospitalLister, bus *events.EventBus) *state.ListingState {
	opts := []state.Option{
		state.WithItemsPerPage(cfg.ItemsPerPage),
		state.WithStaleResponseGuard(cfg.DiscardStaleResponses),
		state.WithLogger(GetLogger().Component("listing")),
	}
	if cfg.DefaultCountryID != "" {
		opts = append(opts, state.WithDefaultCountry(cfg.DefaultCountryID))
	}
	return state.NewListingState(lister, bus, opts...)
}

func runHospitalsList(ctx context.Context, hospitals state.HospitalLister, countries state.CountryLister,
	cfg *config.Config, opts listOptions, out io.Writer, spinner *progress.Spinner) error {
	listing := newListing(cfg, hospitals, nil)

	unsubscribe := listing.Subscribe(func(snap state.Snapshot) {
		spinner.Follow(snap.Loading, loadingDescription)
	})
	defer unsubscribe()
	defer spinner.Stop()

	if opts.country != "" {
		listing.SetSelectedCountry(opts.country)
	}
	if opts.search != "" {
		listing.SetSearchQuery(opts.search)
	}
	if opts.state != "" {
		listing.SetSelectedState(opts.state)
	}
	if opts.perPage != 0 {
		if err := listing.SetItemsPerPage(opts.perPage); err != nil {
			return err
		}
	}
	if opts.page > 1 {
		listing.SetCurrentPage(opts.page)
	}

	if err := listing.FetchHospitals(ctx); err != nil {
		return fmt.Errorf("failed to list hospitals: %w", err)
	}

	snap := listing.Snapshot()
	if opts.showID != 0 {
		h := findHospital(snap.Hospitals, opts.showID)
		if h == nil {
			return fmt.Errorf("hospital %d is not on page %d", opts.showID, snap.CurrentPage)
		}
		listing.SetSelectedHospital(h)
		snap = listing.Snapshot()
	}

	if opts.output != outputTable {
		if snap.SelectedHospital != nil {
			return writeStructured(out, opts.output, snap.SelectedHospital)
		}
		return writeStructured(out, opts.output, newHospitalListing(snap))
	}

	if snap.SelectedHospital != nil {
		render.Detail(out, *snap.SelectedHospital)
		return nil
	}
	render.Listing(out, snap, render.Options{
		Compact:     opts.compact,
		CountryName: countryName(ctx, countries, snap.SelectedCountry),
	})
	return nil
}

// countryName resolves a country id to its name for the filter line. Lookup
// failures only cost the label.
func countryName(ctx context.Context, lister state.CountryLister, id string) string {
	if lister == nil || id == "" {
		return ""
	}
	catalog := state.NewCountryState(lister, nil, GetLogger().Component("countries"))
	if err := catalog.FetchCountries(ctx); err != nil {
		GetLogger().Debug().Err(err).Msg("country catalog unavailable")
		return ""
	}
	if c, ok := catalog.Lookup(id); ok {
		return c.Name
	}
	return ""
}

func findHospital(hospitals []models.Hospital, id int) *models.Hospital {
	for i := range hospitals {
		if hospitals[i].ID == id {
			return &hospitals[i]
		}
	}
	return nil
}
