package identity

import (
	"testing"

	"extranet_rates/models"
)

func TestFingerprintIgnoresDashVariants(t *testing.T) {
	a := models.PricingRecord{RoomID: "100", DateRange: "May 1 - May 10", Price: "120"}
	b := models.PricingRecord{RoomID: "100", DateRange: "may 1–May  10", Price: "120"}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("expected equal fingerprints for %q and %q", a.DateRange, b.DateRange)
	}
	if len(Fingerprint(a)) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", Fingerprint(a))
	}

	c := a
	c.Price = "150"
	if Fingerprint(a) == Fingerprint(c) {
		t.Fatalf("different price should change the fingerprint")
	}
}

func TestNormalizeRoomName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Deluxe Double Room", "dlx dbl room"},
		{"  Family Suite (2 Bedroom) ", "family suite 2 br"},
		{"Standard Twin Room with Balcony", "std twn room w balcony"},
	}
	for _, tt := range tests {
		if got := NormalizeRoomName(tt.in); got != tt.want {
			t.Errorf("NormalizeRoomName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !SameRoomName("Deluxe Double Room", "deluxe double room!") {
		t.Fatalf("expected names to match")
	}
}
