package replay

import (
	"path/filepath"
	"testing"
)

func TestMonotonicAcceptsIncreasing(t *testing.T) {
	m, err := NewMonotonic(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !m.Accept("abcd1234", 1) {
		t.Error("expected first counter to be accepted")
	}
	if !m.Accept("abcd1234", 2) {
		t.Error("expected increasing counter to be accepted")
	}
	if m.Accept("abcd1234", 2) {
		t.Error("expected repeated counter to be rejected")
	}
	if m.Accept("abcd1234", 1) {
		t.Error("expected lower counter to be rejected")
	}
}

func TestMonotonicPerDeviceIndependence(t *testing.T) {
	m, err := NewMonotonic(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !m.Accept("device-a", 5) {
		t.Error("expected device-a counter 5 accepted")
	}
	if !m.Accept("device-b", 1) {
		t.Error("expected device-b counter 1 accepted despite device-a's higher counter")
	}
}

func TestMonotonicPersistsAcrossRestart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	m1, err := NewMonotonic(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !m1.Accept("devicehash", 10) {
		t.Fatal("expected counter 10 to be accepted")
	}

	m2, err := NewMonotonic(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m2.Accept("devicehash", 10) {
		t.Error("expected restart to reload last counter and reject a repeat")
	}
	if !m2.Accept("devicehash", 11) {
		t.Error("expected counter 11 to be accepted after restart")
	}
}

func TestNewMonotonicEmptyDirSkipsPersistence(t *testing.T) {
	m, err := NewMonotonic("")
	if err != nil {
		t.Fatal(err)
	}
	if !m.Accept("devicehash", 1) {
		t.Error("expected in-memory-only policy to still accept")
	}
}
