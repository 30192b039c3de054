package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sofiamatics/hospdir/internal/events"
	"github.com/sofiamatics/hospdir/internal/progress"
	"github.com/sofiamatics/hospdir/internal/render"
	"github.com/sofiamatics/hospdir/internal/state"
	"github.com/sofiamatics/hospdir/internal/util/sanitize"
)

const browsePrompt = "hospdir> "

const browseHelp = `Commands:
  search <text>        Search hospitals (empty text clears the search)
  state <name>         Filter by state or region (empty clears)
  country <id|name>    Filter by country
  countries [text]     List countries, optionally matching text
  page <n>             Go to page n
  next, prev           Go to the next or previous page
  per-page <n>         Hospitals per page: 10, 20, 30 or 40
  show <row>           Open the detail of a row from the table
  close                Close the detail
  clear                Reset all filters
  refresh              Fetch the current page again
  help                 Show this help
  quit                 Leave the browser`

// browseCommand is one parsed input line.
type browseCommand struct {
	name string
	arg  string
}

// parseCommand splits a line into a lowercased command name and the rest of
// the line as its argument.
func parseCommand(line string) browseCommand {
	name, arg, _ := strings.Cut(sanitize.Input(line), " ")
	name = strings.ToLower(name)
	switch name {
	case "q", "exit":
		name = "quit"
	case "n":
		name = "next"
	case "p":
		name = "prev"
	case "?", "h":
		name = "help"
	case "perpage":
		name = "per-page"
	}
	return browseCommand{name: name, arg: strings.TrimSpace(arg)}
}

// browser drives a listing controller from typed commands. Rendering happens
// in the change listener, never in the command handlers.
type browser struct {
	ctx       context.Context
	listing   *state.ListingState
	countries *state.CountryState
	out       io.Writer
	compact   bool
	spinner   *progress.Spinner

	unlisten func()
}

func newBrowser(ctx context.Context, bus *events.EventBus, listing *state.ListingState,
	countries *state.CountryState, out io.Writer, compact bool, spinner *progress.Spinner) *browser {
	b := &browser{
		ctx:       ctx,
		listing:   listing,
		countries: countries,
		out:       out,
		compact:   compact,
		spinner:   spinner,
	}
	b.unlisten = bus.Listen(state.EventListingChanged, b.onListingChanged)
	return b
}

func (b *browser) close() {
	b.unlisten()
	b.spinner.Stop()
}

func (b *browser) onListingChanged(e events.Event) {
	ev, ok := e.(*state.ListingChangedEvent)
	if !ok {
		return
	}
	b.spinner.Follow(ev.Snapshot.Loading, loadingDescription)

	// Filter changes are followed by a fetch; draw once it settles.
	switch ev.Reason {
	case state.ReasonFetchSucceeded, state.ReasonFetchFailed, state.ReasonSelectedHospital:
		fmt.Fprintln(b.out)
		render.Listing(b.out, ev.Snapshot, render.Options{
			Compact:     b.compact,
			CountryName: b.countryLabel(ev.Snapshot.SelectedCountry),
		})
	}
}

func (b *browser) countryLabel(id string) string {
	if c, ok := b.countries.Lookup(id); ok {
		return c.Name
	}
	return ""
}

// fetch loads the current page. Failures are shown by the listener through
// the error banner.
func (b *browser) fetch() {
	if err := b.listing.FetchHospitals(b.ctx); err != nil {
		GetLogger().Debug().Err(err).Msg("browse fetch failed")
	}
}

// run reads commands until quit, end of input or cancellation.
func (b *browser) run(in io.Reader) error {
	b.fetch()

	scanner := bufio.NewScanner(in)
	fmt.Fprint(b.out, browsePrompt)
	for scanner.Scan() {
		if b.ctx.Err() != nil {
			return nil
		}
		quit, err := b.execute(parseCommand(scanner.Text()))
		if err != nil {
			fmt.Fprintf(b.out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
		fmt.Fprint(b.out, browsePrompt)
	}
	fmt.Fprintln(b.out)
	return scanner.Err()
}

// execute applies one command. It returns true when the browser should exit.
func (b *browser) execute(c browseCommand) (bool, error) {
	snap := b.listing.Snapshot()

	switch c.name {
	case "":
	case "search":
		b.listing.SetSearchQuery(c.arg)
		b.fetch()
	case "state":
		b.listing.SetSelectedState(c.arg)
		b.fetch()
	case "country":
		id, err := b.resolveCountry(c.arg)
		if err != nil {
			return false, err
		}
		b.listing.SetSelectedCountry(id)
		b.fetch()
	case "countries":
		render.Countries(b.out, b.countries.Search(c.arg))
	case "page":
		n, err := strconv.Atoi(c.arg)
		if err != nil || n < 1 {
			return false, errors.New("usage: page <n>")
		}
		b.listing.SetCurrentPage(n)
		b.fetch()
	case "next":
		next := render.NextPage(snap)
		if next == snap.CurrentPage {
			return false, errors.New("already on the last page")
		}
		b.listing.SetCurrentPage(next)
		b.fetch()
	case "prev":
		prev := render.PrevPage(snap)
		if prev == snap.CurrentPage {
			return false, errors.New("already on the first page")
		}
		b.listing.SetCurrentPage(prev)
		b.fetch()
	case "per-page":
		n, err := strconv.Atoi(c.arg)
		if err != nil {
			return false, errors.New("usage: per-page <n>")
		}
		if err := b.listing.SetItemsPerPage(n); err != nil {
			return false, err
		}
		b.fetch()
	case "show":
		row, err := strconv.Atoi(c.arg)
		if err != nil {
			return false, errors.New("usage: show <row>")
		}
		if row < 1 || row > len(snap.Hospitals) {
			return false, fmt.Errorf("no row %d on this page", row)
		}
		b.listing.SetSelectedHospital(&snap.Hospitals[row-1])
	case "close":
		if snap.SelectedHospital != nil {
			b.listing.SetSelectedHospital(nil)
		}
	case "clear":
		b.listing.Reset()
		b.fetch()
	case "refresh":
		b.fetch()
	case "help":
		fmt.Fprintln(b.out, browseHelp)
	case "quit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (type help)", c.name)
	}
	return false, nil
}

// resolveCountry accepts a numeric id, a country code or a unique name match.
func (b *browser) resolveCountry(arg string) (string, error) {
	if arg == "" {
		return "", errors.New("usage: country <id|code|name>")
	}
	if _, err := strconv.Atoi(arg); err == nil {
		return arg, nil
	}

	matches := b.countries.Search(arg)
	for _, c := range matches {
		if strings.EqualFold(c.Name, arg) || strings.EqualFold(c.CountryCode, arg) {
			return c.IDString(), nil
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown country %q", arg)
	case 1:
		return matches[0].IDString(), nil
	}
	return "", fmt.Errorf("%q matches %d countries; use the id from 'countries %s'", arg, len(matches), arg)
}

// newHospitalsBrowseCmd creates the 'hospitals browse' command.
func newHospitalsBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse hospitals interactively",
		Long: `Interactive hospital browser.

Type commands at the prompt; every filter or page change fetches again and
redraws the listing. Type 'help' for the command list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			log := GetLogger()

			bus := events.NewEventBus(0)
			defer bus.Close()
			if debug {
				tracer := startEventTracer(bus, log.Component("events"))
				defer tracer.stop()
			}

			listing := newListing(client.GetConfig(), client, bus)
			countries := state.NewCountryState(client, bus, log.Component("countries"))
			if err := countries.FetchCountries(ctx); err != nil {
				log.Warn().Err(err).Msg("Country catalog unavailable; use numeric country ids")
			}

			b := newBrowser(ctx, bus, listing, countries, cmd.OutOrStdout(), useCompact(), progress.NewStderrSpinner())
			defer b.close()

			fmt.Fprintln(cmd.OutOrStdout(), "Type 'help' for commands.")
			return b.run(cmd.InOrStdin())
		},
	}

	return cmd
}
