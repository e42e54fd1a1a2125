// Package dateutil converts between front matter date strings and the two
// wire formats Micro.blog expects.
package dateutil

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrUnrecognizedDate is returned when a date string does not match the
// front matter date layout.
var ErrUnrecognizedDate = errors.New("unrecognized date format")

var dateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})[ T](\d{2}):(\d{2})(?::(\d{2}))?$`)

// Parse reads a front matter date of the form "YYYY-MM-DD HH:MM[:SS]" (a "T"
// separator is also accepted) into a wall-clock time built from the literal
// numeric fields. No timezone conversion happens here or in the formatters
// below: the legacy service being targeted stores whatever wall clock it is
// handed, so shifting the fields would move published posts across days.
func Parse(text string) (time.Time, error) {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedDate, text)
	}

	sec := 0
	if m[6] != "" {
		sec = atoi(m[6])
	}

	return time.Date(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]),
		atoi(m[4]), atoi(m[5]), sec, 0, time.Local), nil
}

// atoi converts a digits-only submatch. The regexp guarantees the input.
func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// UTCISO formats t as "YYYY-MM-DDTHH:MM:SSZ" for the micropub published
// field. The wall-clock fields are stamped as if they were already UTC;
// sub-second precision is dropped.
func UTCISO(t time.Time) string {
	return t.Format("2006-01-02T15:04:05") + "Z"
}

// Compact formats t as "YYYYMMDDTHH:MM:SS" for the XML-RPC dateCreated
// member, with the same stamp-as-UTC semantics as UTCISO.
func Compact(t time.Time) string {
	return t.Format("20060102T15:04:05")
}

// Display formats t as "YYYY-MM-DD HH:MM" for re-embedding into front
// matter. Display output round-trips through Parse.
func Display(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
