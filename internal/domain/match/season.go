package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ExtractSeason turns a season start date ("2024-08-16" or RFC3339) into a
// "2024-25" label. Unparseable input yields "".
func ExtractSeason(seasonStartDate string) string {
	raw := strings.TrimSpace(seasonStartDate)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return SeasonLabelFromYear(ts.Year())
		}
	}
	if len(raw) >= 4 {
		if year, err := strconv.Atoi(raw[:4]); err == nil {
			return SeasonLabelFromYear(year)
		}
	}
	return ""
}

func SeasonLabelFromYear(year int) string {
	if year <= 0 {
		return ""
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// ParseMatchday pulls the round number out of labels such as
// "Regular Season - 12".
func ParseMatchday(label string) (int, bool) {
	end := -1
	for i := len(label) - 1; i >= 0; i-- {
		if unicode.IsDigit(rune(label[i])) {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return 0, false
	}
	start := end - 1
	for start > 0 && unicode.IsDigit(rune(label[start-1])) {
		start--
	}
	value, err := strconv.Atoi(label[start:end])
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
