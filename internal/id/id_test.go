package id

import (
	"strings"
	"testing"
	"time"
)

func TestNewIsUnique(t *testing.T) {
	a, b := New(), New()
	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
}

func TestNewRunIDSortsByTime(t *testing.T) {
	earlier := NewRunID(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	later := NewRunID(time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC))

	if !strings.HasPrefix(earlier, "20261019T090000-") {
		t.Fatalf("unexpected run id %s", earlier)
	}
	if earlier >= later {
		t.Fatalf("expected %s < %s", earlier, later)
	}
}
