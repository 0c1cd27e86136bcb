package numbering

import "strings"

// ErrorKind classifies why a raw phone record was rejected.
type ErrorKind string

const (
	ErrNotE164Prefixed     ErrorKind = "NOT_E164_PREFIXED"
	ErrInvalidCharacters   ErrorKind = "INVALID_CHARACTERS"
	ErrTooShort            ErrorKind = "TOO_SHORT"
	ErrDialCodeUnresolvable ErrorKind = "DIAL_CODE_UNRESOLVABLE"
	ErrCountryMismatch     ErrorKind = "COUNTRY_MISMATCH"
	ErrInvalidLength       ErrorKind = "INVALID_LENGTH"
)

// Generic length bounds applied when no country rule exists, counting every
// digit of the full E.164 number.
const (
	genericMinDigits = 8
	genericMaxDigits = 15
)

// ValidationOutcome is the tagged result of validating one raw phone record.
// Either Valid is true and E164 holds the normalized number, or Valid is
// false and Reason names the rejection.
type ValidationOutcome struct {
	Valid  bool      `json:"valid"`
	E164   string    `json:"e164,omitempty"`
	Reason ErrorKind `json:"reason,omitempty"`
}

func rejected(reason ErrorKind) ValidationOutcome {
	return ValidationOutcome{Reason: reason}
}

// Validate checks a raw phone string against its declared country. It is a
// pure function: duplicates across records are not its concern, and no batch
// state is kept.
func Validate(rawPhone, countryLabel string) ValidationOutcome {
	if rawPhone == "" || !strings.HasPrefix(rawPhone, "+") {
		return rejected(ErrNotE164Prefixed)
	}

	rest := rawPhone[1:]
	for _, r := range rest {
		if r < '0' || r > '9' {
			return rejected(ErrInvalidCharacters)
		}
	}

	digitsOnly := digitsOf(rest)
	if len(digitsOnly) < genericMinDigits {
		return rejected(ErrTooShort)
	}

	split, ok := ResolveDialCode(digitsOnly)
	if !ok {
		return rejected(ErrDialCodeUnresolvable)
	}

	// A dial code may legitimately belong to several countries (NANP). The
	// declared country must be one of them when the dial code is known to
	// the rule table at all.
	canonical := Canonical(countryLabel)
	if countries := CountriesForDialCode(split.DialCode); len(countries) > 0 {
		found := false
		for _, c := range countries {
			if c == canonical {
				found = true
				break
			}
		}
		if !found {
			return rejected(ErrCountryMismatch)
		}
	}

	min, max := genericMinDigits, genericMaxDigits
	if rule, ok := Lookup(canonical); ok {
		min, max = rule.MinDigits, rule.MaxDigits
	}
	if len(digitsOnly) < min || len(digitsOnly) > max {
		return rejected(ErrInvalidLength)
	}

	return ValidationOutcome{Valid: true, E164: "+" + digitsOnly}
}

// digitsOf strips every non-digit rune from s.
func digitsOf(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
