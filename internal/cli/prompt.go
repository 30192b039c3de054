package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// promptString asks for a value, returning def when the answer is blank.
func promptString(r *bufio.Reader, w io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	input, _ := r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	return input
}

// promptInt asks for a positive integer, returning def for blank or invalid input.
func promptInt(r *bufio.Reader, w io.Writer, label string, def int) int {
	input := promptString(r, w, label, strconv.Itoa(def))
	v, err := strconv.Atoi(input)
	if err != nil || v <= 0 {
		fmt.Fprintf(w, "  Invalid number, using %d\n", def)
		return def
	}
	return v
}

// promptYesNo asks a yes/no question; anything but y/yes is no.
func promptYesNo(r *bufio.Reader, w io.Writer, label string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", label)
	input, _ := r.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}

// promptProxyPassword reads the proxy password from the terminal without echo.
func promptProxyPassword(user string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("proxy password required for user %q but stdin is not a terminal", user)
	}
	fmt.Fprintf(os.Stderr, "Proxy password for %s: ", user)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read proxy password: %w", err)
	}
	return string(password), nil
}
