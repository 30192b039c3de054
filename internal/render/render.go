// Package render draws listing state as plain terminal text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/sofiamatics/hospdir/internal/models"
	"github.com/sofiamatics/hospdir/internal/pagination"
	"github.com/sofiamatics/hospdir/internal/state"
	"github.com/sofiamatics/hospdir/internal/util/sanitize"
	strutil "github.com/sofiamatics/hospdir/internal/util/strings"
)

const (
	// maxColumnWidth caps a table cell; longer values are cut with an ellipsis.
	maxColumnWidth = 32
	emptyCell      = "None"
	emptyDetail    = "N/A"
)

// Options controls how a listing is drawn.
type Options struct {
	Compact     bool   // narrow terminals: compact pager, fewer columns
	CountryName string // label for the active country filter, if known
}

// Listing draws the whole listing view: a loading line, or the error banner,
// or the table and pager, followed by the detail panel when a hospital is
// selected.
func Listing(w io.Writer, snap state.Snapshot, opts Options) {
	writeFilters(w, snap, opts)

	switch {
	case snap.Loading:
		fmt.Fprintln(w, "Loading hospitals...")
	case snap.Error != "":
		fmt.Fprintf(w, "Error: %s\n", sanitize.Field(snap.Error))
	default:
		if len(snap.Hospitals) == 0 {
			fmt.Fprintln(w, EmptyState(snap))
		} else {
			Table(w, snap.Hospitals, opts.Compact)
		}
		fmt.Fprintln(w)
		Pager(w, snap, opts.Compact)
	}

	if snap.SelectedHospital != nil {
		fmt.Fprintln(w)
		Detail(w, *snap.SelectedHospital)
	}
}

// writeFilters prints the active filters. Filter text is user input and is
// sanitized like API text before it reaches the terminal.
func writeFilters(w io.Writer, snap state.Snapshot, opts Options) {
	var parts []string
	country := snap.SelectedCountry
	if opts.CountryName != "" {
		country = opts.CountryName
	}
	if country = sanitize.Field(country); country != "" {
		parts = append(parts, "country: "+country)
	}
	if region := sanitize.Field(snap.SelectedState); region != "" {
		parts = append(parts, "state: "+region)
	}
	if search := sanitize.Field(snap.SearchQuery); search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", search))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "[%s]\n", strings.Join(parts, "  "))
	}
}

// EmptyState returns the message shown when a page has no hospitals.
func EmptyState(snap state.Snapshot) string {
	search := sanitize.Field(snap.SearchQuery)
	region := sanitize.Field(snap.SelectedState)
	switch {
	case search != "":
		return fmt.Sprintf("No hospitals found for %q", search)
	case region != "":
		return "No hospitals found in " + region
	default:
		return "No hospitals available. Data will appear here once loaded."
	}
}

// Table draws hospitals with a 1-based row number usable by "show <row>".
// Compact tables drop the email and country columns.
func Table(w io.Writer, hospitals []models.Hospital, compact bool) {
	headers := []string{"#", "Name", "Email", "Phone", "State", "Country"}
	if compact {
		headers = []string{"#", "Name", "Phone", "State"}
	}

	rows := make([][]string, 0, len(hospitals))
	for i, h := range hospitals {
		row := []string{
			fmt.Sprintf("%d", i+1),
			cell(h.HospitalName),
			cell(h.HospitalEmail),
			cell(h.Phone()),
			cell(h.State),
			cell(h.Country),
		}
		if compact {
			row = []string{row[0], row[1], row[3], row[4]}
		}
		rows = append(rows, row)
	}
	grid(w, headers, rows)
}

// Countries draws the country catalog. The ID column is the value accepted
// by the country filter.
func Countries(w io.Writer, countries []models.Country) {
	headers := []string{"ID", "Code", "Name", "Phone", "Currency"}
	rows := make([][]string, 0, len(countries))
	for _, c := range countries {
		rows = append(rows, []string{
			c.IDString(),
			cell(c.CountryCode),
			cell(c.Name),
			cell(c.PhoneCode),
			cell(c.NationalCurrency),
		})
	}
	grid(w, headers, rows)
}

// grid writes headers, a dashed separator and rows in aligned columns.
func grid(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = uniseg.StringWidth(h)
	}
	for _, row := range rows {
		for i, v := range row {
			if n := uniseg.StringWidth(v); n > widths[i] {
				widths[i] = n
			}
		}
	}

	writeRow(w, headers, widths)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}
	writeRow(w, sep, widths)
	for _, row := range rows {
		writeRow(w, row, widths)
	}
}

func writeRow(w io.Writer, row []string, widths []int) {
	var b strings.Builder
	b.WriteString("  ")
	for i, v := range row {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(v)
		if i < len(row)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-uniseg.StringWidth(v)))
		}
	}
	fmt.Fprintln(w, b.String())
}

func cell(v string) string {
	v = sanitize.Field(v)
	if v == "" {
		return emptyCell
	}
	return truncate(v, maxColumnWidth)
}

// truncate cuts s to at most width display columns, ending with "…" when cut.
func truncate(s string, width int) string {
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := g.Width()
		if used+cw > width-1 {
			break
		}
		b.WriteString(g.Str())
		used += cw
	}
	b.WriteString("…")
	return b.String()
}

// Pager draws the page window with the current page in brackets, followed by
// the page size and total count.
func Pager(w io.Writer, snap state.Snapshot, compact bool) {
	items := pagination.Window(snap.CurrentPage, snap.TotalPages, compact)

	parts := make([]string, 0, len(items)+2)
	if snap.CurrentPage > 1 {
		parts = append(parts, "<")
	}
	for _, it := range items {
		if !it.Ellipsis && it.Page == snap.CurrentPage {
			parts = append(parts, fmt.Sprintf("[%d]", it.Page))
			continue
		}
		parts = append(parts, it.String())
	}
	if snap.CurrentPage < snap.TotalPages {
		parts = append(parts, ">")
	}

	fmt.Fprintf(w, "  Page %s   %d/page   %d %s\n",
		strings.Join(parts, " "), snap.ItemsPerPage, snap.TotalCount, strutil.Pluralize("hospital", snap.TotalCount))
}

// Detail draws the detail panel of one hospital.
func Detail(w io.Writer, h models.Hospital) {
	name := sanitize.Field(h.HospitalName)
	fmt.Fprintln(w, name)
	fmt.Fprintln(w, strings.Repeat("=", max(uniseg.StringWidth(name), 8)))

	fields := []struct{ label, value string }{
		{"Phone", h.Phone()},
		{"Email", h.HospitalEmail},
		{"Address", h.Address},
		{"State", h.State},
		{"Country", countryLabel(h)},
		{"Longitude", h.Longitude.String()},
		{"Latitude", h.Latitude.String()},
	}
	if h.Type != "" {
		fields = append(fields, struct{ label, value string }{"Type", h.Type})
	}
	if d := distance(h); d != "" {
		fields = append(fields, struct{ label, value string }{"Distance", d})
	}

	for _, f := range fields {
		v := sanitize.Field(f.value)
		if v == "" {
			v = emptyDetail
		}
		fmt.Fprintf(w, "  %-10s %s\n", f.label, v)
	}
}

func countryLabel(h models.Hospital) string {
	if h.Country != "" && h.CountryCode != "" {
		return fmt.Sprintf("%s (%s)", h.Country, h.CountryCode)
	}
	return h.Country
}

func distance(h models.Hospital) string {
	switch {
	case h.FormattedDistance != nil && *h.FormattedDistance != "":
		return *h.FormattedDistance
	case h.DistanceInKm != nil:
		return fmt.Sprintf("%.1f km", *h.DistanceInKm)
	case h.DistanceInMeters != nil:
		return fmt.Sprintf("%.0f m", *h.DistanceInMeters)
	}
	return ""
}

// NextPage returns the page after the current one. On or past the last page
// it returns CurrentPage unchanged, so a page set beyond TotalPages never
// moves backwards.
func NextPage(snap state.Snapshot) int {
	if snap.CurrentPage >= snap.TotalPages {
		return snap.CurrentPage
	}
	return snap.CurrentPage + 1
}

// PrevPage returns the page before the current one, clamped to 1.
func PrevPage(snap state.Snapshot) int {
	if snap.CurrentPage <= 1 {
		return 1
	}
	return snap.CurrentPage - 1
}
