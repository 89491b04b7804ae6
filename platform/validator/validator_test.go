package validator

import "testing"

type point struct {
	Lat float64 `validate:"latitude"`
	Lng float64 `validate:"longitude"`
}

func TestStructRejectsOutOfRangeCoordinates(t *testing.T) {
	v := New()

	if err := v.Struct(point{Lat: 25.03, Lng: 121.56}); err != nil {
		t.Fatalf("expected valid point, got %v", err)
	}

	err := v.Struct(point{Lat: 95, Lng: 200})
	if err == nil {
		t.Fatalf("expected out of range point to fail")
	}
	fields := FieldErrors(err)
	if fields["lat"] != "latitude" || fields["lng"] != "longitude" {
		t.Fatalf("unexpected field errors: %v", fields)
	}
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	if got := FieldErrors(nil); got != nil {
		t.Fatalf("expected nil map, got %v", got)
	}
}
