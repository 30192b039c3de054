package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sofiamatics/hospdir/internal/events"
	"github.com/sofiamatics/hospdir/internal/state"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantArg  string
	}{
		{"", "", ""},
		{"   ", "", ""},
		{"search st mary", "search", "st mary"},
		{"  SEARCH   general hospital  ", "search", "general hospital"},
		{"state Lagos", "state", "Lagos"},
		{"page 3", "page", "3"},
		{"n", "next", ""},
		{"p", "prev", ""},
		{"q", "quit", ""},
		{"exit", "quit", ""},
		{"?", "help", ""},
		{"perpage 20", "per-page", "20"},
		{"per-page 20", "per-page", "20"},
		{"search", "search", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := parseCommand(tt.line)
			if got.name != tt.wantName || got.arg != tt.wantArg {
				t.Errorf("parseCommand(%q) = {%q %q}, want {%q %q}", tt.line, got.name, got.arg, tt.wantName, tt.wantArg)
			}
		})
	}
}

type browserFixture struct {
	dir     *fakeDirectory
	listing *state.ListingState
	out     *bytes.Buffer
	b       *browser
}

func newBrowserFixture(t *testing.T, dir *fakeDirectory) *browserFixture {
	t.Helper()
	ctx := context.Background()
	bus := events.NewEventBus(0)
	t.Cleanup(bus.Close)

	listing := newListing(testConfig(), dir, bus)
	countries := state.NewCountryState(dir, bus, nil)
	if err := countries.FetchCountries(ctx); err != nil && dir.countriesErr == nil {
		t.Fatalf("FetchCountries: %v", err)
	}

	out := &bytes.Buffer{}
	b := newBrowser(ctx, bus, listing, countries, out, false, quietSpinner())
	t.Cleanup(b.close)
	return &browserFixture{dir: dir, listing: listing, out: out, b: b}
}

func (f *browserFixture) exec(t *testing.T, line string) error {
	t.Helper()
	quit, err := f.b.execute(parseCommand(line))
	if quit {
		t.Fatalf("%q should not quit", line)
	}
	return err
}

func TestBrowserFilterCommandsRefetch(t *testing.T) {
	f := newBrowserFixture(t, &fakeDirectory{})

	steps := []struct {
		line  string
		check func(t *testing.T)
	}{
		{"search general", func(t *testing.T) {
			if q := f.dir.lastQuery(); q.SearchTerm != "general" || q.Page != 1 {
				t.Errorf("unexpected query %+v", q)
			}
		}},
		{"state Lagos", func(t *testing.T) {
			if q := f.dir.lastQuery(); q.State != "Lagos" || q.SearchTerm != "general" {
				t.Errorf("unexpected query %+v", q)
			}
		}},
		{"country ghana", func(t *testing.T) {
			if q := f.dir.lastQuery(); q.CountryID != "83" {
				t.Errorf("unexpected query %+v", q)
			}
		}},
		{"per-page 40", func(t *testing.T) {
			if q := f.dir.lastQuery(); q.PerPage != 40 || q.Page != 1 {
				t.Errorf("unexpected query %+v", q)
			}
		}},
		{"page 3", func(t *testing.T) {
			if q := f.dir.lastQuery(); q.Page != 3 {
				t.Errorf("unexpected query %+v", q)
			}
		}},
		{"prev", func(t *testing.T) {
			if q := f.dir.lastQuery(); q.Page != 2 {
				t.Errorf("unexpected query %+v", q)
			}
		}},
		{"next", func(t *testing.T) {
			if q := f.dir.lastQuery(); q.Page != 3 {
				t.Errorf("unexpected query %+v", q)
			}
		}},
		{"clear", func(t *testing.T) {
			q := f.dir.lastQuery()
			if q.SearchTerm != "" || q.State != "" || q.CountryID != "166" || q.Page != 1 || q.PerPage != 10 {
				t.Errorf("unexpected query after clear %+v", q)
			}
		}},
	}

	for i, step := range steps {
		before := f.dir.queryCount()
		if err := f.exec(t, step.line); err != nil {
			t.Fatalf("%q: %v", step.line, err)
		}
		if f.dir.queryCount() != before+1 {
			t.Fatalf("step %d %q: expected exactly one fetch", i, step.line)
		}
		step.check(t)
	}
}

func TestBrowserRendersFromListener(t *testing.T) {
	f := newBrowserFixture(t, &fakeDirectory{})

	if err := f.exec(t, "refresh"); err != nil {
		t.Fatal(err)
	}
	got := f.out.String()
	for _, want := range []string{"[country: Nigeria]", "abbey Hospital", "Page [1] 2 3 >"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "Zenith Clinic") != 1 {
		t.Errorf("one fetch should draw the listing once:\n%s", got)
	}
}

func TestBrowserShowAndClose(t *testing.T) {
	f := newBrowserFixture(t, &fakeDirectory{})
	if err := f.exec(t, "refresh"); err != nil {
		t.Fatal(err)
	}

	if err := f.exec(t, "show 1"); err != nil {
		t.Fatalf("show 1: %v", err)
	}
	sel := f.listing.Snapshot().SelectedHospital
	if sel == nil || sel.HospitalName != "abbey Hospital" {
		t.Fatalf("expected row 1 selected, got %+v", sel)
	}
	if !strings.Contains(f.out.String(), "info@abbey.ng") {
		t.Errorf("detail panel not drawn:\n%s", f.out.String())
	}

	if err := f.exec(t, "close"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if f.listing.Snapshot().SelectedHospital != nil {
		t.Error("close should clear the selection")
	}
}

func TestBrowserCommandErrors(t *testing.T) {
	f := newBrowserFixture(t, &fakeDirectory{})
	if err := f.exec(t, "refresh"); err != nil {
		t.Fatal(err)
	}
	fetches := f.dir.queryCount()

	tests := []struct {
		line    string
		wantErr string
	}{
		{"page x", "usage: page <n>"},
		{"page 0", "usage: page <n>"},
		{"per-page 15", "invalid items per page"},
		{"per-page", "usage: per-page <n>"},
		{"show 9", "no row 9 on this page"},
		{"show", "usage: show <row>"},
		{"prev", "already on the first page"},
		{"country", "usage: country"},
		{"country atlantis", `unknown country "atlantis"`},
		{"country gui", "matches 2 countries"},
		{"frobnicate", `unknown command "frobnicate"`},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := f.exec(t, tt.line)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("%q: expected error containing %q, got %v", tt.line, tt.wantErr, err)
			}
		})
	}

	if f.dir.queryCount() != fetches {
		t.Errorf("rejected commands must not fetch: %d -> %d", fetches, f.dir.queryCount())
	}
}

func TestBrowserNextOnLastPage(t *testing.T) {
	f := newBrowserFixture(t, &fakeDirectory{})
	if err := f.exec(t, "page 3"); err != nil {
		t.Fatal(err)
	}
	if err := f.exec(t, "next"); err == nil || !strings.Contains(err.Error(), "already on the last page") {
		t.Errorf("expected last page error, got %v", err)
	}
}

func TestBrowserNextPastLastPage(t *testing.T) {
	f := newBrowserFixture(t, &fakeDirectory{})
	if err := f.exec(t, "page 9"); err != nil {
		t.Fatal(err)
	}
	fetches := f.dir.queryCount()

	if err := f.exec(t, "next"); err == nil || !strings.Contains(err.Error(), "already on the last page") {
		t.Errorf("expected last page error, got %v", err)
	}
	if page := f.listing.Snapshot().CurrentPage; page != 9 {
		t.Errorf("CurrentPage = %d, want 9", page)
	}
	if f.dir.queryCount() != fetches {
		t.Error("next past the last page must not fetch")
	}

	if err := f.exec(t, "prev"); err != nil {
		t.Fatal(err)
	}
	if q := f.dir.lastQuery(); q.Page != 8 {
		t.Errorf("prev fetched page %d, want 8", q.Page)
	}
}

func TestBrowserResolveCountry(t *testing.T) {
	f := newBrowserFixture(t, &fakeDirectory{})

	tests := []struct {
		arg  string
		want string
	}{
		{"166", "166"},
		{"999", "999"},
		{"NG", "166"},
		{"gh", "83"},
		{"nigeria", "166"},
		{"Guinea", "84"},
		{"bissau", "85"},
	}
	for _, tt := range tests {
		got, err := f.b.resolveCountry(tt.arg)
		if err != nil || got != tt.want {
			t.Errorf("resolveCountry(%q) = %q, %v; want %q", tt.arg, got, err, tt.want)
		}
	}
}

func TestBrowserFetchFailureShowsBanner(t *testing.T) {
	dir := &fakeDirectory{hospitalsErr: errUnavailable}
	f := newBrowserFixture(t, dir)

	if err := f.exec(t, "search x"); err != nil {
		t.Fatalf("fetch failures are shown, not returned: %v", err)
	}
	if !strings.Contains(f.out.String(), "Error: Failed to fetch: Service Unavailable") {
		t.Errorf("error banner missing:\n%s", f.out.String())
	}
	if f.listing.Snapshot().SearchQuery != "x" {
		t.Error("filters must survive a failed fetch")
	}
}

func TestBrowserCountriesCommand(t *testing.T) {
	f := newBrowserFixture(t, &fakeDirectory{})
	if err := f.exec(t, "countries gh"); err != nil {
		t.Fatal(err)
	}
	got := f.out.String()
	if !strings.Contains(got, "Ghana") || strings.Contains(got, "Nigeria") {
		t.Errorf("unexpected countries output:\n%s", got)
	}
}

func TestBrowserRun(t *testing.T) {
	f := newBrowserFixture(t, &fakeDirectory{})

	in := strings.NewReader("search abbey\nbogus\nquit\nsearch never\n")
	if err := f.b.run(in); err != nil {
		t.Fatalf("run: %v", err)
	}

	// initial fetch plus the search; nothing after quit
	if f.dir.queryCount() != 2 {
		t.Errorf("expected 2 fetches, got %d", f.dir.queryCount())
	}
	got := f.out.String()
	if !strings.Contains(got, browsePrompt) || !strings.Contains(got, `Error: unknown command "bogus"`) {
		t.Errorf("unexpected session output:\n%s", got)
	}
}

func TestBrowserRunEndOfInput(t *testing.T) {
	f := newBrowserFixture(t, &fakeDirectory{})
	if err := f.b.run(strings.NewReader("refresh\n")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.dir.queryCount() != 2 {
		t.Errorf("expected 2 fetches, got %d", f.dir.queryCount())
	}
}
