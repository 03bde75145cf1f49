package resilience

import (
	"net/http"
	"testing"
	"time"
)

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	names := []string{"Retry-After", "X-RequestCounter-Reset"}

	tests := []struct {
		name   string
		header http.Header
		want   time.Duration
	}{
		{name: "missing uses fallback", header: http.Header{}, want: 2 * time.Second},
		{name: "seconds", header: http.Header{"Retry-After": {"7"}}, want: 7 * time.Second},
		{name: "provider header", header: http.Header{"X-Requestcounter-Reset": {"12"}}, want: 12 * time.Second},
		{name: "http date", header: http.Header{"Retry-After": {now.Add(30 * time.Second).Format(http.TimeFormat)}}, want: 30 * time.Second},
		{name: "capped", header: http.Header{"Retry-After": {"3600"}}, want: time.Minute},
		{name: "garbage uses fallback", header: http.Header{"Retry-After": {"soon"}}, want: 2 * time.Second},
		{name: "zero skipped", header: http.Header{"Retry-After": {"0"}, "X-Requestcounter-Reset": {"5"}}, want: 5 * time.Second},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := RetryAfter(tc.header, names, 2*time.Second, time.Minute, now)
			if got != tc.want {
				t.Fatalf("expected %s, got=%s", tc.want, got)
			}
		})
	}
}
