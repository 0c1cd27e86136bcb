package numbering

import (
	"math/rand"
	"strings"
)

// NationalParts is the structural split of one national number.
type NationalParts struct {
	// CountryCode is the dial code plus any mobile indicator consumed
	// during the split (Argentina's "549"), so that
	// CountryCode+AreaCode+Local always reconstructs the E.164 digits.
	CountryCode string
	AreaCode    string
	Local       string
}

// plan holds the structural conventions of one numbering plan. The table
// below is the closed set of supported plans, keyed by dial code: adding a
// country is one entry here plus its CountryRule.
type plan struct {
	// split divides a national number into parts. It never fails; on a
	// structural mismatch it returns the whole national number as Local
	// with an empty AreaCode.
	split func(rule CountryRule, dialCode, national string) NationalParts
	// synthesize returns random national digits conforming to the plan,
	// mobile indicator included where the plan has one.
	synthesize func(rng *rand.Rand, rule CountryRule) string
	// areaExpected is false only for plans without an area-code concept
	// (Spain); it distinguishes a legitimate empty area from a degraded
	// split.
	areaExpected bool
}

var plansByDialCode = map[string]plan{
	"1":  {split: splitNANP, synthesize: synthNANP, areaExpected: true},
	"54": {split: splitArgentina, synthesize: synthArgentina, areaExpected: true},
	"52": {split: splitMexico, synthesize: synthMexico, areaExpected: true},
	"34": {split: splitSpain, synthesize: synthSpain},
	"57": {split: splitColombia, synthesize: synthColombia, areaExpected: true},
	"56": {split: splitLeadingNine, synthesize: synthLeadingNine, areaExpected: true},
	"51": {split: splitLeadingNine, synthesize: synthLeadingNine, areaExpected: true},
}

func degraded(dialCode, national string) NationalParts {
	return NationalParts{CountryCode: dialCode, Local: national}
}

// NANP: exactly 10 national digits, 3-digit NPA + 7-digit subscriber.
func splitNANP(_ CountryRule, dialCode, national string) NationalParts {
	if len(national) != 10 {
		return degraded(dialCode, national)
	}
	return NationalParts{CountryCode: dialCode, AreaCode: national[:3], Local: national[3:]}
}

// Argentina: mobiles insert a "9" after the dial code. An 11-digit national
// number starting with 9 is stripped to 10 area+local digits; a 10-digit one
// is used as-is. The area code is found by testing lengths 4, 3, 2 against
// the known list ("11" for Buenos Aires is always 2 digits), accepting only
// candidates whose first digit is 2-9.
func splitArgentina(rule CountryRule, dialCode, national string) NationalParts {
	cc := dialCode
	ten := national
	switch {
	case len(national) == 11 && national[0] == '9':
		cc = dialCode + "9"
		ten = national[1:]
	case len(national) == 10:
	default:
		return degraded(dialCode, national)
	}

	if strings.HasPrefix(ten, "11") {
		return NationalParts{CountryCode: cc, AreaCode: "11", Local: ten[2:]}
	}
	if ten[0] < '2' {
		return degraded(cc, ten)
	}
	for _, l := range []int{4, 3, 2} {
		if rule.HasAreaCode(ten[:l]) {
			return NationalParts{CountryCode: cc, AreaCode: ten[:l], Local: ten[l:]}
		}
	}
	// No table match: the longest candidate starting 2-9 wins.
	return NationalParts{CountryCode: cc, AreaCode: ten[:4], Local: ten[4:]}
}

// Mexico: 10 national digits, longest match of 3- then 2-digit area codes
// against the known list, defaulting to a 2-digit area.
func splitMexico(rule CountryRule, dialCode, national string) NationalParts {
	if len(national) != 10 {
		return degraded(dialCode, national)
	}
	for _, l := range []int{3, 2} {
		if rule.HasAreaCode(national[:l]) {
			return NationalParts{CountryCode: dialCode, AreaCode: national[:l], Local: national[l:]}
		}
	}
	return NationalParts{CountryCode: dialCode, AreaCode: national[:2], Local: national[2:]}
}

// Spain: no area-code concept for mobiles; the whole national number is the
// subscriber number.
func splitSpain(_ CountryRule, dialCode, national string) NationalParts {
	return NationalParts{CountryCode: dialCode, Local: national}
}

// Colombia: 10 national digits in the 3XX mobile block; the block is the
// area code.
func splitColombia(_ CountryRule, dialCode, national string) NationalParts {
	if len(national) != 10 || national[0] != '3' {
		return degraded(dialCode, national)
	}
	return NationalParts{CountryCode: dialCode, AreaCode: national[:3], Local: national[3:]}
}

// Chile and Peru: 9 national digits starting with the mobile 9; that single
// digit is the area code.
func splitLeadingNine(_ CountryRule, dialCode, national string) NationalParts {
	if len(national) != 9 || national[0] != '9' {
		return degraded(dialCode, national)
	}
	return NationalParts{CountryCode: dialCode, AreaCode: "9", Local: national[1:]}
}

func randomDigits(rng *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + rng.Intn(10)))
	}
	return b.String()
}

// digit in [lo, hi]
func randomDigitBetween(rng *rand.Rand, lo, hi byte) byte {
	return lo + byte(rng.Intn(int(hi-lo)+1))
}

func synthNANP(rng *rand.Rand, _ CountryRule) string {
	var b strings.Builder
	b.WriteByte(randomDigitBetween(rng, '2', '9'))
	b.WriteString(randomDigits(rng, 2))
	b.WriteByte(randomDigitBetween(rng, '2', '9'))
	// Central-office code must not land in the reserved N11 block.
	for {
		mid := randomDigits(rng, 2)
		if mid != "11" {
			b.WriteString(mid)
			break
		}
	}
	b.WriteString(randomDigits(rng, 4))
	return b.String()
}

func synthArgentina(rng *rand.Rand, rule CountryRule) string {
	area := rule.AreaCodes[rng.Intn(len(rule.AreaCodes))]
	var b strings.Builder
	b.WriteString(rule.MobileIndicator)
	b.WriteString(area)
	// Leading subscriber digit is redrawn while zero.
	b.WriteByte(randomDigitBetween(rng, '1', '9'))
	b.WriteString(randomDigits(rng, 10-len(area)-1))
	return b.String()
}

func synthMexico(rng *rand.Rand, rule CountryRule) string {
	area := rule.AreaCodes[rng.Intn(len(rule.AreaCodes))]
	return area + randomDigits(rng, 10-len(area))
}

var spainMobileLeads = []byte{'6', '7', '9'}

func synthSpain(rng *rand.Rand, _ CountryRule) string {
	lead := spainMobileLeads[rng.Intn(len(spainMobileLeads))]
	return string(lead) + randomDigits(rng, 8)
}

func synthColombia(rng *rand.Rand, rule CountryRule) string {
	block := rule.AreaCodes[rng.Intn(len(rule.AreaCodes))]
	return block + randomDigits(rng, 7)
}

func synthLeadingNine(rng *rand.Rand, rule CountryRule) string {
	return rule.MobileIndicator + randomDigits(rng, 8)
}
