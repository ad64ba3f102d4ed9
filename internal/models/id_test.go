package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIDStringForm(t *testing.T) {
	id := NewID()
	s := id.String()

	if len(s) != 32 {
		t.Fatalf("String() length = %d, want 32", len(s))
	}
	if strings.Contains(s, "-") {
		t.Errorf("String() contains dashes: %s", s)
	}

	parsed, err := ParseID(s)
	if err != nil {
		t.Fatalf("ParseID(%q) failed: %v", s, err)
	}
	if parsed != id {
		t.Errorf("round trip changed id: %s != %s", parsed, id)
	}
}

func TestParseIDAcceptsDashedForm(t *testing.T) {
	dashed := "123e4567-e89b-12d3-a456-426614174000"
	id, err := ParseID(dashed)
	if err != nil {
		t.Fatalf("ParseID(%q) failed: %v", dashed, err)
	}
	if id.String() != "123e4567e89b12d3a456426614174000" {
		t.Errorf("String() = %s, want dashless form", id.String())
	}
}

func TestParseIDRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "zz", "123e4567e89b12d3a45642661417400"} {
		if _, err := ParseID(bad); err == nil {
			t.Errorf("ParseID(%q) succeeded, want error", bad)
		}
	}
}

func TestIDJSONRoundTrip(t *testing.T) {
	id := NewID()

	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `"` + id.String() + `"`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var decoded ID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded != id {
		t.Errorf("round trip changed id")
	}
}

func TestIDScanValue(t *testing.T) {
	id := NewID()

	v, err := id.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != id.String() {
		t.Errorf("Value = %v, want %s", v, id.String())
	}

	var scanned ID
	if err := scanned.Scan(id.String()); err != nil {
		t.Fatalf("Scan(string) failed: %v", err)
	}
	if scanned != id {
		t.Errorf("Scan(string) changed id")
	}

	var scannedBytes ID
	if err := scannedBytes.Scan([]byte(id.String())); err != nil {
		t.Fatalf("Scan([]byte) failed: %v", err)
	}
	if scannedBytes != id {
		t.Errorf("Scan([]byte) changed id")
	}

	if err := scanned.Scan(42); err == nil {
		t.Error("Scan(int) succeeded, want error")
	}
}
