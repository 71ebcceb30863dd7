package identifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/omniscope/omniscope/internal/errs"
)

// arxivNewFormat matches "YYMM.NNNNN" or "YYMM.NNNN" with an optional version.
var arxivNewFormat = regexp.MustCompile(`^(\d{4}\.\d{4,5})(?:v(\d+))?$`)

// arxivOldFormat matches "<category>/YYMMNNN" with an optional version.
// The category may carry a subcategory, e.g. "math.GT", "cond-mat".
var arxivOldFormat = regexp.MustCompile(`^([a-zA-Z-]+(?:\.[A-Z]{2})?)/(\d{7})(?:v(\d+))?$`)

var arxivURLPrefixes = []string{
	"https://arxiv.org/abs/",
	"http://arxiv.org/abs/",
	"https://arxiv.org/pdf/",
	"http://arxiv.org/pdf/",
}

// ArxivID is a parsed arXiv identifier.
type ArxivID struct {
	ID       string // bare id, e.g. "2301.04567" or "math.GT/0309136"
	Version  int    // 0 if unspecified
	Category string // old-format category; empty for new-format ids
}

// String returns the bare id (no version, no prefix).
func (a ArxivID) String() string { return a.ID }

// AbsURL returns the canonical arxiv.org abstract-page URL.
func (a ArxivID) AbsURL() string { return "https://arxiv.org/abs/" + a.versioned() }

// PDFURL returns the canonical arxiv.org PDF URL.
func (a ArxivID) PDFURL() string { return "https://arxiv.org/pdf/" + a.versioned() + ".pdf" }

func (a ArxivID) versioned() string {
	if a.Version == 0 {
		return a.ID
	}
	return a.ID + "v" + strconv.Itoa(a.Version)
}

// ParseArxivID accepts any documented surface form and returns the parsed id.
func ParseArxivID(raw string) (ArxivID, error) {
	s := strings.TrimSpace(raw)
	for _, p := range arxivURLPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSuffix(s[len(p):], ".pdf")
			break
		}
	}
	s = strings.TrimPrefix(s, "arXiv:")
	s = strings.TrimPrefix(s, "arxiv:")
	s = strings.TrimSpace(s)

	if m := arxivNewFormat.FindStringSubmatch(s); m != nil {
		var ver int
		if m[2] != "" {
			ver, _ = strconv.Atoi(m[2])
		}
		return ArxivID{ID: m[1], Version: ver}, nil
	}

	if m := arxivOldFormat.FindStringSubmatch(s); m != nil {
		var ver int
		if m[3] != "" {
			ver, _ = strconv.Atoi(m[3])
		}
		return ArxivID{ID: m[1] + "/" + m[2], Version: ver, Category: m[1]}, nil
	}

	return ArxivID{}, &errs.InvalidIdentifier{Kind: "arxiv", Raw: raw}
}
