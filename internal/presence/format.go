package presence

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	FlagStale  = "?"
	FlagRoot   = "#"
	FlagSystem = "<"

	// SystemUIDLimit is the first uid of a regular (global) account.
	SystemUIDLimit = 25000
)

// ContentType is served with the text table over HTTP.
const ContentType = "text/plain; charset=utf-8"

// ErrorLine replaces the table when the store could not be read.
const ErrorLine = "error: Failed to retrieve rwho data.\r\n"

const textFormat = "%-12s %1s %-12s %-8s %s\r\n"

// IsStale reports whether updated (epoch seconds) is older than maxAge at now.
func IsStale(updated int64, now time.Time, maxAge time.Duration) bool {
	return updated < now.Unix()-int64(maxAge/time.Second)
}

// Flag returns the one-character marker for a row. Staleness wins over
// privilege.
func Flag(r Row, now time.Time, maxAge time.Duration) string {
	switch {
	case IsStale(r.Updated, now, maxAge):
		return FlagStale
	case r.UID == 0:
		return FlagRoot
	case r.UID < SystemUIDLimit:
		return FlagSystem
	default:
		return ""
	}
}

// StripDomain returns host up to its first dot.
func StripDomain(host string) string {
	if i := strings.IndexByte(host, '.'); i >= 0 {
		return host[:i]
	}
	return host
}

// LineText is the LINE column: the terminal, or "{n}" for summary rows.
func (r Row) LineText() string {
	if r.IsSummary() {
		return "{" + r.Line + "}"
	}
	return r.Line
}

// FromText is the FROM column.
func (r Row) FromText() string {
	if r.Origin == "" {
		return "-"
	}
	return r.Origin
}

// RenderText writes rows as a fixed-width table in the order given. The user
// column is left blank when it repeats the previous row's user.
func RenderText(w io.Writer, rows []Row, now time.Time, maxAge time.Duration) error {
	if _, err := fmt.Fprintf(w, textFormat, "USER", "", "HOST", "LINE", "FROM"); err != nil {
		return err
	}

	var last string
	for i, r := range rows {
		user := r.User
		if i > 0 && user == last {
			user = ""
		}
		last = r.User

		_, err := fmt.Fprintf(w, textFormat,
			user,
			Flag(r, now, maxAge),
			StripDomain(r.Host),
			r.LineText(),
			r.FromText())
		if err != nil {
			return err
		}
	}
	return nil
}

// RenderError writes the single line shown instead of a table.
func RenderError(w io.Writer) error {
	_, err := io.WriteString(w, ErrorLine)
	return err
}
