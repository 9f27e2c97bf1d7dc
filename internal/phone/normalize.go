// Package phone converts loosely formatted phone input into the two forms the
// caller needs: an E.164 dial string and a digits-only CRM lookup key.
package phone

import "strings"

// Normalized holds both canonical forms of one raw phone input
type Normalized struct {
	// Dialable is the E.164 form ("+" country code digits). Empty when Valid is false.
	Dialable string
	// Valid is false when the input matches no supported country pattern
	Valid bool
	// TaggingKey is every digit of the input, never prefixed with "+"
	TaggingKey string
}

// Empty reports whether the input carried no digits at all
func (n Normalized) Empty() bool {
	return n.TaggingKey == ""
}

// Normalize is pure and total. Supported patterns are 10-digit implicit US,
// explicit country code 1 (11+ digits) and explicit 63; anything else is
// reported as not dialable.
func Normalize(raw string) Normalized {
	digits := Digits(raw)
	n := Normalized{TaggingKey: digits}

	switch {
	case strings.HasPrefix(digits, "63"):
		n.Dialable = "+" + digits
	case len(digits) == 10:
		n.Dialable = "+1" + digits
	case len(digits) >= 11 && strings.HasPrefix(digits, "1"):
		n.Dialable = "+" + digits
	}
	n.Valid = n.Dialable != ""
	return n
}

// Digits strips every non-digit character
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
