package rawdata

import (
	"testing"
	"time"
)

func TestNewPayload_HashIsStable(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewPayload("football-data", EntityMatch, "1001", []byte(`{"id":1001}`), at)
	b := NewPayload("football-data", EntityMatch, "1001", []byte(`{"id":1001}`), at.Add(time.Hour))
	if a.PayloadHash != b.PayloadHash {
		t.Fatalf("expected equal hashes, got=%s vs %s", a.PayloadHash, b.PayloadHash)
	}
	if len(a.PayloadHash) != 64 {
		t.Fatalf("expected hex sha256, got=%d chars", len(a.PayloadHash))
	}
	c := NewPayload("football-data", EntityMatch, "1001", []byte(`{"id":1002}`), at)
	if c.PayloadHash == a.PayloadHash {
		t.Fatalf("expected different payloads to hash differently")
	}
}
