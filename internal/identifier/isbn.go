package identifier

import (
	"strconv"
	"strings"

	"github.com/omniscope/omniscope/internal/errs"
)

// ISBN holds both the ISBN-13 form (always present) and, when derivable,
// the ISBN-10 equivalent (only for the 978 prefix class).
type ISBN struct {
	ISBN13 string
	ISBN10 string // empty when not derivable
}

// Formatted renders isbn13 with a fixed 3-1-4-4-1 hyphen split.
func (i ISBN) Formatted() string {
	s := i.ISBN13
	if len(s) != 13 {
		return s
	}
	return s[0:3] + "-" + s[3:4] + "-" + s[4:8] + "-" + s[8:12] + "-" + s[12:13]
}

// ParseISBN accepts an ISBN-10 or ISBN-13 in any punctuation and returns the
// canonical form. It always derives ISBN13; ISBN10 is populated only when
// the value belongs to the 978 prefix class (either supplied directly as
// ISBN-10, or convertible from a 978-prefixed ISBN-13).
func ParseISBN(raw string) (ISBN, error) {
	cleaned := stripNonAlnum(raw)
	switch len(cleaned) {
	case 10:
		if !validISBN10(cleaned) {
			return ISBN{}, &errs.InvalidIdentifier{Kind: "isbn", Raw: raw}
		}
		isbn13 := isbn10To13(cleaned)
		return ISBN{ISBN13: isbn13, ISBN10: cleaned}, nil
	case 13:
		if !validISBN13(cleaned) {
			return ISBN{}, &errs.InvalidIdentifier{Kind: "isbn", Raw: raw}
		}
		out := ISBN{ISBN13: cleaned}
		if strings.HasPrefix(cleaned, "978") {
			if isbn10, ok := isbn13To10(cleaned); ok {
				out.ISBN10 = isbn10
			}
		}
		return out, nil
	default:
		return ISBN{}, &errs.InvalidIdentifier{Kind: "isbn", Raw: raw}
	}
}

func stripNonAlnum(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validISBN10 checks the weighted-sum-mod-11 checksum; the last digit may be 'X' (value 10).
func validISBN10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 10; i++ {
		var v int
		if s[i] == 'X' {
			if i != 9 {
				return false
			}
			v = 10
		} else if s[i] >= '0' && s[i] <= '9' {
			v = int(s[i] - '0')
		} else {
			return false
		}
		sum += (10 - i) * v
	}
	return sum%11 == 0
}

// validISBN13 checks the alternating-weight-mod-10 checksum.
func validISBN13(s string) bool {
	if len(s) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		v := int(s[i] - '0')
		if i%2 == 0 {
			sum += v
		} else {
			sum += v * 3
		}
	}
	return sum%10 == 0
}

// isbn10To13 prefixes "978" and recomputes the ISBN-13 check digit.
func isbn10To13(isbn10 string) string {
	body := "978" + isbn10[:9]
	return body + strconv.Itoa(isbn13CheckDigit(body))
}

// isbn13To10 strips the 978 prefix and recomputes the ISBN-10 check digit.
// ok is false if the input is not in the 978 prefix class.
func isbn13To10(isbn13 string) (string, bool) {
	if !strings.HasPrefix(isbn13, "978") {
		return "", false
	}
	body := isbn13[3:12]
	return body + isbn10CheckDigit(body), true
}

func isbn13CheckDigit(body string) int {
	sum := 0
	for i := 0; i < len(body); i++ {
		v := int(body[i] - '0')
		if i%2 == 0 {
			sum += v
		} else {
			sum += v * 3
		}
	}
	check := (10 - sum%10) % 10
	return check
}

func isbn10CheckDigit(body string) string {
	sum := 0
	for i := 0; i < len(body); i++ {
		v := int(body[i] - '0')
		sum += (10 - i) * v
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return "X"
	}
	return strconv.Itoa(check)
}
