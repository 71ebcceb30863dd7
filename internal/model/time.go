package model

import (
	"strings"
	"time"
)

// Time wraps time.Time, always marshalling/unmarshalling as RFC 3339 UTC so
// on-disk cards are stable regardless of the host's local timezone (spec.md
// §3: "updated_at >= created_at; both in UTC").
type Time struct {
	time.Time
}

// Now returns the current instant, truncated to the UTC second.
func Now() Time {
	return Time{time.Now().UTC().Truncate(time.Second)}
}

// NewTime wraps t, normalizing it to UTC.
func NewTime(t time.Time) Time {
	return Time{t.UTC()}
}

func (t Time) MarshalJSON() ([]byte, error) {
	s := t.UTC().Format(time.RFC3339)
	return []byte(`"` + s + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

// IsZero reports whether the wrapped time is the zero value.
func (t Time) IsZero() bool { return t.Time.IsZero() }
