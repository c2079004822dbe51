package planfact

import (
	"fmt"
	"time"

	"github.com/akulov/finbook/internal/common"
)

// timestampFormats is the ordered list of layouts the feed is known to
// emit. Multi-format tolerance is part of the external data contract:
// the API mixes fractional-second, whole-second, and date-only values
// within a single response.
var timestampFormats = []string{
	"2006-01-02T15:04:05.999999999", // with fractional seconds
	"2006-01-02T15:04:05",           // without fractional seconds
	"2006-01-02",                    // date only
}

// ParseTimestamp parses a feed timestamp, trying each accepted layout in
// order. A value matching none of them wraps common.ErrMalformedTimestamp;
// callers treat that as a feed contract break and abort the batch.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q matches no accepted format", common.ErrMalformedTimestamp, value)
}
