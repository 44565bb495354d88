package id_test

import (
	"strings"
	"testing"

	"github.com/stereohaus/beatstore/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"BeatID", id.NewBeatID, "beat_"},
		{"GenreID", id.NewGenreID, "genre_"},
		{"SaleID", id.NewSaleID, "sale_"},
		{"CartID", id.NewCartID, "cart_"},
		{"PendingOrderID", id.NewPendingOrderID, "po_"},
		{"AccountID", id.NewAccountID, "user_"},
		{"VerificationID", id.NewVerificationID, "vc_"},
		{"ResetID", id.NewResetID, "rst_"},
		{"SessionID", id.NewSessionID, "sess_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"BeatID", id.NewBeatID, id.ParseBeatID},
		{"GenreID", id.NewGenreID, id.ParseGenreID},
		{"SaleID", id.NewSaleID, id.ParseSaleID},
		{"PendingOrderID", id.NewPendingOrderID, id.ParsePendingOrderID},
		{"AccountID", id.NewAccountID, id.ParseAccountID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		parseFn func(string) (id.ID, error)
	}{
		{"ParseBeatID rejects sale_", id.NewSaleID().String(), id.ParseBeatID},
		{"ParseSaleID rejects beat_", id.NewBeatID().String(), id.ParseSaleID},
		{"ParsePendingOrderID rejects user_", id.NewAccountID().String(), id.ParsePendingOrderID},
		{"ParseAccountID rejects po_", id.NewPendingOrderID().String(), id.ParseAccountID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parseFn(tt.input)
			if err == nil {
				t.Errorf("expected error for cross-type parse of %q, got nil", tt.input)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := id.Parse("")
	if err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
}

func TestMarshalUnmarshalText(t *testing.T) {
	original := id.NewBeatID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.ID
	if unmarshalErr := restored.UnmarshalText(data); unmarshalErr != nil {
		t.Fatalf("UnmarshalText failed: %v", unmarshalErr)
	}
	if restored.String() != original.String() {
		t.Errorf("mismatch: %q != %q", restored.String(), original.String())
	}
}

func TestValueScan(t *testing.T) {
	original := id.NewSaleID()
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.ID
	if scanErr := scanned.Scan(val); scanErr != nil {
		t.Fatalf("Scan failed: %v", scanErr)
	}
	if scanned.String() != original.String() {
		t.Errorf("mismatch: %q != %q", scanned.String(), original.String())
	}

	var scanned2 id.ID
	if err := scanned2.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if !scanned2.IsNil() {
		t.Error("expected nil after scan of nil")
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewBeatID()
	b := id.NewBeatID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewBeatID() calls returned the same ID: %q", a.String())
	}
}
