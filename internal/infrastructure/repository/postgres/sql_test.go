package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestPQErrorClassification(t *testing.T) {
	t.Run("unique violation through wrapping", func(t *testing.T) {
		err := fmt.Errorf("insert team: %w", &pq.Error{Code: pqUniqueViolation})
		if !isUniqueViolation(err) {
			t.Fatalf("expected unique violation")
		}
		if isForeignKeyViolation(err) {
			t.Fatalf("expected unique violation not to look like fk violation")
		}
	})

	t.Run("foreign key violation", func(t *testing.T) {
		if !isForeignKeyViolation(&pq.Error{Code: pqForeignKeyViolation}) {
			t.Fatalf("expected fk violation")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if pqErrorCode(errors.New("connection refused")) != "" {
			t.Fatalf("expected empty code for non pq error")
		}
	})
}

func TestNullableHelpers(t *testing.T) {
	if nullableString("  ") != nil {
		t.Fatalf("expected blank string to be nil")
	}
	if got := stringValue(nullableString(" Anfield ")); got != "Anfield" {
		t.Fatalf("expected trimmed value, got=%q", got)
	}
	if nullInt64ToIntPtr(sql.NullInt64{}) != nil {
		t.Fatalf("expected nil for null int")
	}
	v := 3
	if got := intPtrToNullInt64(&v); !got.Valid || got.Int64 != 3 {
		t.Fatalf("unexpected null int: %+v", got)
	}
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
}
