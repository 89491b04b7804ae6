package sanitize

import "testing"

func TestQuery(t *testing.T) {
	cases := map[string]string{
		"":                         "",
		"   \t\n ":                 "",
		"  cafe   sol ":            "cafe sol",
		"taipei\x00 101":           "taipei 101",
		"ZZZ_no_such_place_123":    "ZZZ_no_such_place_123",
		"line\nbreak\tseparated  ": "line break separated",
	}
	for in, want := range cases {
		if got := Query(in); got != want {
			t.Fatalf("Query(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestStripHTML(t *testing.T) {
	got := StripHTML(`<b>Cafe</b> &lt;script&gt;x&lt;/script&gt;`)
	if got != "Cafe x" {
		t.Fatalf("expected tags stripped, got %q", got)
	}
}
