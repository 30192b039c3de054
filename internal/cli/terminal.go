package cli

import (
	"os"

	"golang.org/x/term"

	"github.com/sofiamatics/hospdir/internal/constants"
)

// terminalWidth returns the stdout width in columns, or 0 when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

// compactFor reports whether the compact layout applies at the given width.
// A width of 0 means unknown and keeps the full layout.
func compactFor(width int, forced bool) bool {
	if forced {
		return true
	}
	return width > 0 && width < constants.CompactWidthThreshold
}

func useCompact() bool {
	return compactFor(terminalWidth(), compact)
}
