package clock

import (
	"testing"
	"time"
)

func TestSystemClock_UsesLocation(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	now := NewSystem(loc).Now()

	if now.Location() != loc {
		t.Fatalf("expected location %s, got %s", loc, now.Location())
	}
}

func TestSystemClock_DefaultsToLocal(t *testing.T) {
	if NewSystem(nil).Now().Location() != time.Local {
		t.Fatal("expected time.Local for nil location")
	}
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	c := NewFixed(at)

	if !c.Now().Equal(at) {
		t.Fatalf("expected %s, got %s", at, c.Now())
	}
}
