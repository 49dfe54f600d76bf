package pipeline

import (
	"strings"
	"testing"
)

func TestNewULID_Format(t *testing.T) {
	id := NewULID()
	if len(id) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(id), id)
	}
	for i, c := range id {
		if !strings.ContainsRune(crockford, c) {
			t.Errorf("unexpected character %q at position %d in %q", c, i, id)
		}
	}
}

func TestNewULID_Unique(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := NewULID()
		if seen[id] {
			t.Fatalf("duplicate ULID %q", id)
		}
		seen[id] = true
	}
}

func TestNewULID_Monotonic(t *testing.T) {
	prev := NewULID()
	for i := 0; i < 200; i++ {
		id := NewULID()
		if id <= prev {
			t.Fatalf("expected %q > %q", id, prev)
		}
		prev = id
	}
}

func TestEncodeCrockford_KnownValues(t *testing.T) {
	var zero [16]byte
	if got := encodeCrockford(zero); got != strings.Repeat("0", 26) {
		t.Errorf("expected all zeros, got %q", got)
	}

	var ones [16]byte
	for i := range ones {
		ones[i] = 0xFF
	}
	// 128 set bits: the leading digit holds only 3 of its 5 bits.
	if got := encodeCrockford(ones); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("expected 7ZZZ..., got %q", got)
	}

	var one [16]byte
	one[15] = 1
	if got := encodeCrockford(one); got != strings.Repeat("0", 25)+"1" {
		t.Errorf("expected ...01, got %q", got)
	}
}
