package ingest

import (
	"strconv"
)

// ExtractDuration reads a media duration hint (seconds) from og:video:duration
// or og:audio:duration and converts it to whole minutes, rounding up.
// ok is false when no usable hint exists; callers must not treat that as a
// zero-minute duration.
func ExtractDuration(html string) (minutes int, ok bool) {
	for _, prop := range []string{"og:video:duration", "og:audio:duration"} {
		raw := metaProperty(html, prop)
		if raw == "" {
			continue
		}
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			continue
		}
		return (seconds + 59) / 60, true
	}
	return 0, false
}
