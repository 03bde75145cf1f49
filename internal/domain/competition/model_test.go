package competition

import (
	"errors"
	"testing"
)

func TestNormalizeType(t *testing.T) {
	t.Parallel()

	tests := map[string]Type{
		"LEAGUE":    TypeLeague,
		"League":    TypeLeague,
		"cup":       TypeCup,
		"SUPER_CUP": TypeCup,
		"PLAYOFFS":  TypePlayoffs,
		"":          TypeOther,
	}
	for input, want := range tests {
		if got := NormalizeType(input); got != want {
			t.Fatalf("NormalizeType(%q): expected %s, got=%s", input, want, got)
		}
	}
	if got := NormalizeCode(" pl "); got != "PL" {
		t.Fatalf("expected PL, got=%s", got)
	}
}

func TestCompetition_Validate(t *testing.T) {
	t.Parallel()

	valid := Competition{Code: "PL", Name: "Premier League", Source: "football-data", ExternalID: "football-data:2021"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid competition, got %v", err)
	}

	missingCode := valid
	missingCode.Code = " "
	if err := missingCode.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for missing code, got %v", err)
	}

	missingRef := valid
	missingRef.ExternalID = ""
	if err := missingRef.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for missing ref, got %v", err)
	}
}
