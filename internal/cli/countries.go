package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sofiamatics/hospdir/internal/models"
	"github.com/sofiamatics/hospdir/internal/render"
	"github.com/sofiamatics/hospdir/internal/state"
)

// newCountriesCmd creates the 'countries' command group.
func newCountriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "Country catalog",
	}
	cmd.AddCommand(newCountriesListCmd())
	return cmd
}

func newCountriesListCmd() *cobra.Command {
	var search, output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List countries and their ids",
		Long: `List the country catalog. The ID column is the value accepted by
'hospitals list --country' and the browser's 'country' command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			client, err := getAPIClient()
			if err != nil {
				return err
			}
			return runCountriesList(cmd.Context(), client, search, output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only countries whose name contains this text or whose code matches")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table, json or yaml")

	return cmd
}

func runCountriesList(ctx context.Context, lister state.CountryLister, search, output string, out io.Writer) error {
	catalog := state.NewCountryState(lister, nil, GetLogger().Component("countries"))
	if err := catalog.FetchCountries(ctx); err != nil {
		return fmt.Errorf("failed to list countries: %w", err)
	}

	countries := catalog.Search(search)
	if countries == nil {
		countries = []models.Country{}
	}

	if output != outputTable {
		return writeStructured(out, output, countries)
	}
	if len(countries) == 0 {
		fmt.Fprintln(out, "No countries found")
		return nil
	}
	render.Countries(out, countries)
	return nil
}
