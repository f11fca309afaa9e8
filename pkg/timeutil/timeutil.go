package timeutil

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFormat is returned when a timestamp string does not match the
// wire format yyyy-MM-dd'T'HH:mm:ss.SSSX.
var ErrInvalidFormat = errors.New("invalid timestamp format")

// The wire format requires exactly three fractional-second digits and an
// explicit zone designator. The offset may be written as Z, +hh, +hhmm or
// +hh:mm, so parsing tries each accepted layout.
var parseLayouts = []string{
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05.000Z07",
}

const formatLayout = "2006-01-02T15:04:05.000Z0700"

// ParseTimestamp converts a timestamp string into UTC epoch milliseconds.
// The offset in the text is honored; no implicit timezone is assumed.
func ParseTimestamp(s string) (int64, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// FormatTimestamp converts epoch milliseconds into the wire format, always
// in UTC with the Z designator. It is total: every int64 in the representable
// date range formats without error, and ParseTimestamp(FormatTimestamp(t))
// returns t.
func FormatTimestamp(epochMilli int64) string {
	return time.UnixMilli(epochMilli).UTC().Format(formatLayout)
}
