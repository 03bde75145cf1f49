package resilience

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryAfter reads the first usable delay from the given headers. Values may be
// integer seconds or an HTTP-date. The result is capped at max when max > 0.
func RetryAfter(header http.Header, names []string, fallback, max time.Duration, now time.Time) time.Duration {
	delay := fallback
	for _, name := range names {
		raw := strings.TrimSpace(header.Get(name))
		if raw == "" {
			continue
		}
		if secs, err := strconv.Atoi(raw); err == nil {
			if secs > 0 {
				delay = time.Duration(secs) * time.Second
				break
			}
			continue
		}
		if at, err := http.ParseTime(raw); err == nil {
			if d := at.Sub(now); d > 0 {
				delay = d
				break
			}
		}
	}
	if max > 0 && delay > max {
		delay = max
	}
	return delay
}
