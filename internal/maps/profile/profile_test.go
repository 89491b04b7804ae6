package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBuiltinProfiles(t *testing.T) {
	r, err := Load("", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	def := r.Default()
	if def.Name != DefaultName || def.Zoom != 14 || def.FocusZoom != 17 {
		t.Fatalf("unexpected default profile %+v", def)
	}
	if def.Center.Lat != 25.033 || def.Center.Lng != 121.5654 {
		t.Fatalf("unexpected default center %+v", def.Center)
	}

	ontario, ok := r.Get("ontario")
	if !ok {
		t.Fatalf("expected ontario profile")
	}
	if ontario.Bounds == nil || ontario.Bounds.SouthWest.Lat != 43.18 || ontario.Bounds.NorthEast.Lng != -79.8 {
		t.Fatalf("unexpected ontario bounds %+v", ontario.Bounds)
	}

	req := ontario.Autocomplete("caf", "tok")
	if req.Restriction == nil || len(req.Countries) != 1 || req.Countries[0] != "CA" {
		t.Fatalf("expected region limits on autocomplete, got %+v", req)
	}
}

func TestLoadFileOverridesByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	data := []byte(`profiles:
  - name: default
    center: { lat: 52.37, lng: 4.89 }
    zoom: 12
  - name: extra
    center: { lat: 1, lng: 2 }
    zoom: 3
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	r, err := Load(path, "extra")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if r.Default().Name != "extra" {
		t.Fatalf("expected extra as default")
	}
	def, _ := r.Get(DefaultName)
	if def.Center.Lat != 52.37 || def.FocusZoom != 17 {
		t.Fatalf("expected overridden default with focus zoom fallback, got %+v", def)
	}
	if len(r.List()) != 4 {
		t.Fatalf("expected 4 profiles, got %d", len(r.List()))
	}
}

func TestLoadRejectsInvalidProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte("profiles:\n  - name: bad\n    center: { lat: 123, lng: 0 }\n"), 0o600); err != nil {
		t.Fatalf("write profiles: %v", err)
	}
	if _, err := Load(path, ""); err == nil {
		t.Fatalf("expected invalid latitude to be rejected")
	}

	if _, err := Load("", "missing"); err == nil {
		t.Fatalf("expected unknown default to be rejected")
	}
}
