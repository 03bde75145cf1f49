package match

import "testing"

func TestExtractSeason(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"2024-08-16":           "2024-25",
		"1999-08-07":           "1999-00",
		"2025-07-01T00:00:00Z": "2025-26",
		"2023":                 "2023-24",
		"":                     "",
		"soon":                 "",
	}
	for input, want := range tests {
		if got := ExtractSeason(input); got != want {
			t.Fatalf("ExtractSeason(%q): expected %q, got=%q", input, want, got)
		}
	}
}

func TestParseMatchday(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{label: "Regular Season - 12", want: 12, ok: true},
		{label: "7", want: 7, ok: true},
		{label: "Round of 16", want: 16, ok: true},
		{label: "Final", ok: false},
		{label: "", ok: false},
	}
	for _, tc := range tests {
		got, ok := ParseMatchday(tc.label)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseMatchday(%q): expected (%d, %v), got=(%d, %v)", tc.label, tc.want, tc.ok, got, ok)
		}
	}
}
