// Package identifier parses the canonical external identifier kinds a
// BookCard may carry: DOI, arXiv ID, and ISBN. Each kind is constructed
// only through its Parse function, which returns either a valid value or
// an *errs.InvalidIdentifier carrying the original input untouched.
package identifier

import (
	"strings"

	"github.com/omniscope/omniscope/internal/errs"
)

// doiPrefixes are surface-form prefixes stripped before validation. The
// first one that matches is stripped; "doi: " is listed before "doi:" so
// the spaced form is consumed whole.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi: ",
	"DOI: ",
	"doi:",
	"DOI:",
}

// DOI is a normalized, validated Digital Object Identifier.
type DOI struct {
	normalized string // lower-cased, no prefix, e.g. "10.1000/xyz123"
}

// String returns the normalized DOI string.
func (d DOI) String() string { return d.normalized }

// URL returns the canonical resolver URL for this DOI.
func (d DOI) URL() string { return "https://doi.org/" + d.normalized }

// ParseDOI accepts any documented surface form and returns the normalized DOI.
func ParseDOI(raw string) (DOI, error) {
	s := strings.TrimSpace(raw)
	for _, p := range doiPrefixes {
		if strings.HasPrefix(s, p) {
			s = s[len(p):]
			break
		}
	}
	s = strings.TrimSpace(s)

	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "10.") {
		return DOI{}, &errs.InvalidIdentifier{Kind: "doi", Raw: raw}
	}
	slash := strings.Index(lower, "/")
	if slash < 0 {
		return DOI{}, &errs.InvalidIdentifier{Kind: "doi", Raw: raw}
	}
	if slash == len(lower)-1 {
		return DOI{}, &errs.InvalidIdentifier{Kind: "doi", Raw: raw}
	}
	// The suffix after the first slash is non-empty (checked above); reject
	// embedded whitespace anywhere.
	if strings.ContainsAny(lower, " \t\n") {
		return DOI{}, &errs.InvalidIdentifier{Kind: "doi", Raw: raw}
	}

	return DOI{normalized: lower}, nil
}
