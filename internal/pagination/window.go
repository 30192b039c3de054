// Package pagination computes which page numbers a pager control displays.
package pagination

import "strconv"

// EllipsisText is how a gap between page numbers is displayed.
const EllipsisText = "..."

const (
	// maxVisiblePages is the page count up to which the full pager lists every page.
	maxVisiblePages = 5

	// maxCompactPages is the page count up to which the compact pager lists every page.
	maxCompactPages = 2
)

// Item is one slot in a page window: either a page number or an ellipsis.
type Item struct {
	Page     int
	Ellipsis bool
}

// PageItem returns a page-number slot.
func PageItem(page int) Item {
	return Item{Page: page}
}

// EllipsisItem returns a gap marker.
func EllipsisItem() Item {
	return Item{Ellipsis: true}
}

// String renders the slot as it appears in the pager.
func (i Item) String() string {
	if i.Ellipsis {
		return EllipsisText
	}
	return strconv.Itoa(i.Page)
}

// Window returns the page numbers and gaps to display for the given current
// page and total page count. A total of zero or less yields an empty window,
// and the caller should disable navigation.
//
// The compact and full layouts are separate rules, not two settings of one
// formula.
func Window(current, total int, compact bool) []Item {
	if total <= 0 {
		return []Item{}
	}
	if compact {
		return compactWindow(total)
	}
	return fullWindow(current, total)
}

// compactWindow always shows pages 1 and 2, a gap when more than three pages
// exist, and the last page when more than two exist.
func compactWindow(total int) []Item {
	if total <= maxCompactPages {
		return allPages(total)
	}

	items := []Item{PageItem(1), PageItem(2)}
	if total > 3 {
		items = append(items, EllipsisItem())
	}
	return append(items, PageItem(total))
}

// fullWindow shows page 1, a window around current, and the last page.
// Near either edge the window is pinned to pages 2-3 or (total-2)-(total-1),
// so page 1 of 10 draws "1 2 3 ... 10". The web pager this mirrors pins to
// 2-4 and (total-3)-(total-1), showing one more page at each edge;
// TestWindowFull fixes the narrower pin.
func fullWindow(current, total int) []Item {
	if total <= maxVisiblePages {
		return allPages(total)
	}

	start := max(2, current-1)
	end := min(total-1, current+1)

	if current <= 2 {
		end = min(total-1, 3)
	}
	if current >= total-1 {
		start = max(2, total-2)
	}

	items := make([]Item, 0, maxVisiblePages+2)
	items = append(items, PageItem(1))

	if start > 2 {
		items = append(items, EllipsisItem())
	}
	for page := start; page <= end; page++ {
		items = append(items, PageItem(page))
	}
	if end < total-1 {
		items = append(items, EllipsisItem())
	}

	return append(items, PageItem(total))
}

func allPages(total int) []Item {
	items := make([]Item, 0, total)
	for page := 1; page <= total; page++ {
		items = append(items, PageItem(page))
	}
	return items
}

// Strings renders a window as display text, e.g. ["1", "...", "4", "5"].
func Strings(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.String()
	}
	return out
}
