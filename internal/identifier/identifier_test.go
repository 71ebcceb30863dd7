package identifier

import "testing"

func TestParseDOI(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"DOI: 10.1000/XYZ123", "10.1000/xyz123"},
		{"https://doi.org/10.1145/1234567.1234568", "10.1145/1234567.1234568"},
		{"doi:10.48550/arXiv.1706.03762", "10.48550/arxiv.1706.03762"},
		{"  10.1000/182  ", "10.1000/182"},
	}
	for _, c := range cases {
		got, err := ParseDOI(c.raw)
		if err != nil {
			t.Fatalf("ParseDOI(%q): %v", c.raw, err)
		}
		if got.String() != c.want {
			t.Errorf("ParseDOI(%q) = %q, want %q", c.raw, got.String(), c.want)
		}
	}

	if got := (DOI{normalized: "10.1000/xyz123"}); got.URL() != "https://doi.org/10.1000/xyz123" {
		t.Errorf("URL() = %q", got.URL())
	}
}

func TestParseDOIInvalid(t *testing.T) {
	for _, raw := range []string{"", "not a doi", "10.", "10noSlash", "10.1000/"} {
		if _, err := ParseDOI(raw); err == nil {
			t.Errorf("ParseDOI(%q) expected error", raw)
		}
	}
}

func TestParseArxivNewFormat(t *testing.T) {
	got, err := ParseArxivID("arXiv:2301.04567v5")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "2301.04567" || got.Version != 5 {
		t.Errorf("got %+v", got)
	}
	if got.AbsURL() != "https://arxiv.org/abs/2301.04567v5" {
		t.Errorf("AbsURL = %q", got.AbsURL())
	}
}

func TestParseArxivOldFormat(t *testing.T) {
	got, err := ParseArxivID("math.GT/0309136")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "math.GT/0309136" || got.Category != "math.GT" {
		t.Errorf("got %+v", got)
	}
}

func TestParseArxivPDFURL(t *testing.T) {
	got, err := ParseArxivID("https://arxiv.org/pdf/2301.04567.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "2301.04567" {
		t.Errorf("got %+v", got)
	}
}

func TestParseISBN13(t *testing.T) {
	got, err := ParseISBN("978-0-306-40615-7")
	if err != nil {
		t.Fatal(err)
	}
	if got.ISBN13 != "9780306406157" {
		t.Errorf("isbn13 = %q", got.ISBN13)
	}
	if got.ISBN10 != "0306406152" {
		t.Errorf("isbn10 = %q", got.ISBN10)
	}
}

func TestParseISBN10(t *testing.T) {
	got, err := ParseISBN("0306406152")
	if err != nil {
		t.Fatal(err)
	}
	if got.ISBN13 != "9780306406157" {
		t.Errorf("isbn13 = %q", got.ISBN13)
	}
}

func TestParseISBNInvalidChecksum(t *testing.T) {
	if _, err := ParseISBN("0306406153"); err == nil {
		t.Error("expected checksum failure")
	}
}

func TestISBNFormatted(t *testing.T) {
	got, err := ParseISBN("9780306406157")
	if err != nil {
		t.Fatal(err)
	}
	if got.Formatted() != "978-0-3064-0615-7" {
		t.Errorf("Formatted() = %q", got.Formatted())
	}
}
