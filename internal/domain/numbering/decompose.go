package numbering

import "strings"

// NormalizedPhone is the structural decomposition of a valid E.164 number.
// CountryCode carries the dial code plus any consumed mobile indicator, so
// CountryCode+AreaCode+LocalNumber reconstructs the digits of FullE164.
type NormalizedPhone struct {
	CountryCode string `json:"country_code"`
	AreaCode    string `json:"area_code"`
	LocalNumber string `json:"local_number"`
	FullE164    string `json:"full_e164"`
}

// Decompose splits an E.164 number into its components using the declared
// country's structural rules. Input is assumed already validated; on any
// structural mismatch the result degrades (empty area code, whole national
// number as subscriber) instead of failing, so export pipelines never block.
func Decompose(e164, countryLabel string) NormalizedPhone {
	digits := digitsOf(strings.TrimPrefix(e164, "+"))
	full := "+" + digits

	dialCode, national, ok := splitByCountry(digits, countryLabel)
	if !ok {
		return NormalizedPhone{LocalNumber: digits, FullE164: full}
	}

	rule, _ := Lookup(countryLabel)
	p, known := plansByDialCode[dialCode]
	if !known {
		return NormalizedPhone{CountryCode: dialCode, LocalNumber: national, FullE164: full}
	}

	parts := p.split(rule, dialCode, national)
	return NormalizedPhone{
		CountryCode: parts.CountryCode,
		AreaCode:    parts.AreaCode,
		LocalNumber: parts.Local,
		FullE164:    full,
	}
}

// splitByCountry prefers the declared country's dial code and falls back to
// generic resolution when the country is unknown or its code does not match.
func splitByCountry(digits, countryLabel string) (dialCode, national string, ok bool) {
	if rule, found := Lookup(countryLabel); found && strings.HasPrefix(digits, rule.DialCode) {
		return rule.DialCode, digits[len(rule.DialCode):], true
	}
	split, resolved := ResolveDialCode(digits)
	if !resolved {
		return "", "", false
	}
	return split.DialCode, split.NationalNumber, true
}

// IsDegraded reports whether a decomposition fell back to the whole-national-
// number form for a country whose plan defines an area-code concept.
func IsDegraded(np NormalizedPhone, countryLabel string) bool {
	rule, ok := Lookup(countryLabel)
	if !ok {
		return false
	}
	p, known := plansByDialCode[rule.DialCode]
	return known && p.areaExpected && np.AreaCode == ""
}

// Prefix returns the dedup/grouping key for an E.164 number: the country
// code (dial code plus any consumed mobile indicator) concatenated with the
// area-granularity segment of its plan. Plans without an area concept, and
// unknown plans, key on the first two national digits.
func Prefix(e164, countryLabel string) string {
	np := Decompose(e164, countryLabel)
	if np.AreaCode != "" {
		return np.CountryCode + np.AreaCode
	}
	local := np.LocalNumber
	if len(local) > 2 {
		local = local[:2]
	}
	return np.CountryCode + local
}
