// Package numbering implements the country-rule-driven phone number engine:
// dial-code resolution, structural validation, area/subscriber decomposition,
// collision-free generation, and prefix-based batch grouping.
package numbering

// CountryRule describes the numbering plan for one country. Rules are loaded
// once at init and never mutated.
type CountryRule struct {
	// Country is the canonical key, e.g. "Mexico".
	Country string
	// DialCode is the 1-3 digit E.164 country calling code.
	DialCode string
	// MinDigits/MaxDigits bound the digit count of the full E.164 number,
	// dial code included.
	MinDigits int
	MaxDigits int
	// AreaCodes lists known area codes (varying lengths) for plans that
	// decompose by longest match. Empty for plans without an area concept.
	AreaCodes []string
	// MobileIndicator is a digit inserted between dial code and area code
	// on mobile numbers (Argentina's "9") or a fixed leading mobile digit
	// (Chile/Peru's "9").
	MobileIndicator string
}

// HasAreaCode reports whether code is one of the rule's known area codes.
func (r CountryRule) HasAreaCode(code string) bool {
	for _, ac := range r.AreaCodes {
		if ac == code {
			return true
		}
	}
	return false
}

var countryRules = map[string]CountryRule{
	"USA": {
		Country:   "USA",
		DialCode:  "1",
		MinDigits: 11,
		MaxDigits: 11,
	},
	"Canada": {
		Country:   "Canada",
		DialCode:  "1",
		MinDigits: 11,
		MaxDigits: 11,
	},
	"Dominican Republic": {
		Country:   "Dominican Republic",
		DialCode:  "1",
		MinDigits: 11,
		MaxDigits: 11,
	},
	"Argentina": {
		Country:   "Argentina",
		DialCode:  "54",
		MinDigits: 12,
		MaxDigits: 13,
		AreaCodes: []string{
			// 2-digit
			"11",
			// 3-digit
			"221", "223", "261", "264", "266", "280", "291", "294", "299",
			"341", "342", "343", "345", "351", "358", "362", "364", "370",
			"376", "379", "381", "383", "385", "387", "388",
			// 4-digit
			"2202", "2221", "2241", "2257", "2284", "2320", "2474", "2652",
			"2901", "2920", "2944", "2954", "2964", "2965", "2966", "2972",
			"3327", "3400", "3435", "3476", "3489", "3492", "3498",
		},
		MobileIndicator: "9",
	},
	"Mexico": {
		Country:   "Mexico",
		DialCode:  "52",
		MinDigits: 12,
		MaxDigits: 13,
		AreaCodes: []string{
			// 2-digit
			"33", "55", "56", "81",
			// 3-digit
			"222", "228", "229", "246", "271", "312", "314", "322", "331",
			"442", "444", "449", "461", "477", "493", "614", "618", "644",
			"656", "662", "664", "667", "686", "722", "744", "771", "777",
			"867", "868", "871", "899", "961", "981", "984", "998", "999",
		},
	},
	"Spain": {
		Country:   "Spain",
		DialCode:  "34",
		MinDigits: 11,
		MaxDigits: 11,
	},
	"Colombia": {
		Country:   "Colombia",
		DialCode:  "57",
		MinDigits: 12,
		MaxDigits: 12,
		AreaCodes: []string{
			"300", "301", "302", "304", "305", "310", "311", "312", "313",
			"314", "315", "316", "317", "318", "319", "320", "321", "322",
			"323", "350", "351",
		},
	},
	"Chile": {
		Country:         "Chile",
		DialCode:        "56",
		MinDigits:       11,
		MaxDigits:       11,
		MobileIndicator: "9",
	},
	"Peru": {
		Country:         "Peru",
		DialCode:        "51",
		MinDigits:       11,
		MaxDigits:       11,
		MobileIndicator: "9",
	},
	// Minimal entries: dial code and length bounds only. Decomposition
	// degrades and generation uses the generic dial-code fallback.
	"Brazil": {
		Country:   "Brazil",
		DialCode:  "55",
		MinDigits: 12,
		MaxDigits: 13,
	},
	"Uruguay": {
		Country:   "Uruguay",
		DialCode:  "598",
		MinDigits: 11,
		MaxDigits: 11,
	},
}

// countryAliases maps free-text spellings to canonical rule keys. Matching is
// exact: case- and accent-sensitive against this fixed synonym list.
var countryAliases = map[string]string{
	"United States":        "USA",
	"United States of America": "USA",
	"Estados Unidos":       "USA",
	"EEUU":                 "USA",
	"EE.UU.":               "USA",
	"US":                   "USA",
	"Canadá":               "Canada",
	"República Dominicana": "Dominican Republic",
	"Republica Dominicana": "Dominican Republic",
	"México":               "Mexico",
	"Méjico":               "Mexico",
	"España":               "Spain",
	"Espana":               "Spain",
	"Perú":                 "Peru",
	"Brasil":               "Brazil",
}

// dialCodeCountries indexes canonical country names by dial code, built once
// at init. A dial code may map to several countries (NANP).
var dialCodeCountries = func() map[string][]string {
	idx := make(map[string][]string)
	for _, name := range []string{
		// Deterministic order: NANP members first, then by dial code.
		"USA", "Canada", "Dominican Republic",
		"Spain", "Peru", "Mexico", "Argentina", "Brazil", "Chile",
		"Colombia", "Uruguay",
	} {
		rule := countryRules[name]
		idx[rule.DialCode] = append(idx[rule.DialCode], name)
	}
	return idx
}()

// Canonical resolves a free-text country label to its canonical rule key.
// Labels that are already canonical pass through unchanged; unknown labels
// are returned as-is so callers can still report them.
func Canonical(countryLabel string) string {
	if canon, ok := countryAliases[countryLabel]; ok {
		return canon
	}
	return countryLabel
}

// Lookup returns the numbering rule for a country label, passing the label
// through the alias mapping first. The second return is false when no rule
// exists; callers must treat that as "no structural rule available", not as
// an error by itself.
func Lookup(countryLabel string) (CountryRule, bool) {
	rule, ok := countryRules[Canonical(countryLabel)]
	return rule, ok
}

// CountriesForDialCode returns the canonical countries sharing a dial code,
// or nil when the dial code is not covered by the rule table.
func CountriesForDialCode(dialCode string) []string {
	return dialCodeCountries[dialCode]
}
