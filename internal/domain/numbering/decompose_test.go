package numbering

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		name    string
		e164    string
		country string
		cc      string
		area    string
		local   string
	}{
		{
			name:    "nanp",
			e164:    "+12125551234",
			country: "USA",
			cc:      "1",
			area:    "212",
			local:   "5551234",
		},
		{
			name:    "argentina mobile strips inserted nine",
			e164:    "+5491122334455",
			country: "Argentina",
			cc:      "549",
			area:    "11",
			local:   "22334455",
		},
		{
			name:    "argentina landline buenos aires",
			e164:    "+541143215678",
			country: "Argentina",
			cc:      "54",
			area:    "11",
			local:   "43215678",
		},
		{
			name:    "argentina three digit area from table",
			e164:    "+5493514567890",
			country: "Argentina",
			cc:      "549",
			area:    "351",
			local:   "4567890",
		},
		{
			name:    "argentina four digit area from table",
			e164:    "+5492965123456",
			country: "Argentina",
			cc:      "549",
			area:    "2965",
			local:   "123456",
		},
		{
			name:    "argentina unknown area defaults to longest candidate",
			e164:    "+5498812345678",
			country: "Argentina",
			cc:      "549",
			area:    "8812",
			local:   "345678",
		},
		{
			name:    "mexico three digit area wins over two",
			e164:    "+523221234567",
			country: "Mexico",
			cc:      "52",
			area:    "322",
			local:   "1234567",
		},
		{
			name:    "mexico city two digit area",
			e164:    "+525512345678",
			country: "Mexico",
			cc:      "52",
			area:    "55",
			local:   "12345678",
		},
		{
			name:    "mexico unknown area defaults to two digits",
			e164:    "+524012345678",
			country: "Mexico",
			cc:      "52",
			area:    "40",
			local:   "12345678",
		},
		{
			name:    "spain has no area concept",
			e164:    "+34612345678",
			country: "España",
			cc:      "34",
			area:    "",
			local:   "612345678",
		},
		{
			name:    "colombia mobile block",
			e164:    "+573001234567",
			country: "Colombia",
			cc:      "57",
			area:    "300",
			local:   "1234567",
		},
		{
			name:    "colombia non mobile degrades",
			e164:    "+576012345678",
			country: "Colombia",
			cc:      "57",
			area:    "",
			local:   "6012345678",
		},
		{
			name:    "chile leading nine",
			e164:    "+56912345678",
			country: "Chile",
			cc:      "56",
			area:    "9",
			local:   "12345678",
		},
		{
			name:    "peru leading nine",
			e164:    "+51987654321",
			country: "Peru",
			cc:      "51",
			area:    "9",
			local:   "87654321",
		},
		{
			name:    "nanp wrong length degrades",
			e164:    "+1212555123",
			country: "USA",
			cc:      "1",
			area:    "",
			local:   "212555123",
		},
		{
			name:    "country without plan degrades",
			e164:    "+5511987654321",
			country: "Brazil",
			cc:      "55",
			area:    "",
			local:   "11987654321",
		},
		{
			name:    "unknown country unresolvable dial code",
			e164:    "+123456789",
			country: "Narnia",
			cc:      "",
			area:    "",
			local:   "123456789",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			np := Decompose(tt.e164, tt.country)
			assert.Equal(t, tt.cc, np.CountryCode)
			assert.Equal(t, tt.area, np.AreaCode)
			assert.Equal(t, tt.local, np.LocalNumber)
			assert.Equal(t, tt.e164, np.FullE164)
		})
	}
}

// Reconcatenating the components of any validated number must reproduce its
// digits exactly, for every country with a structural rule.
func TestDecomposeRoundTrip(t *testing.T) {
	numbers := map[string]string{
		"USA":       "+12125551234",
		"Canada":    "+14165551234",
		"Argentina": "+5491122334455",
		"Mexico":    "+523221234567",
		"Spain":     "+34612345678",
		"Colombia":  "+573001234567",
		"Chile":     "+56912345678",
		"Peru":      "+51987654321",
	}

	for country, e164 := range numbers {
		t.Run(country, func(t *testing.T) {
			out := Validate(e164, country)
			assert.True(t, out.Valid, "reason: %s", out.Reason)

			np := Decompose(out.E164, country)
			digits := strings.TrimPrefix(e164, "+")
			assert.Equal(t, digits, np.CountryCode+np.AreaCode+np.LocalNumber)
		})
	}
}

func TestIsDegraded(t *testing.T) {
	assert.True(t, IsDegraded(Decompose("+1212555123", "USA"), "USA"))
	assert.False(t, IsDegraded(Decompose("+12125551234", "USA"), "USA"))
	// Spain legitimately has no area code.
	assert.False(t, IsDegraded(Decompose("+34612345678", "Spain"), "Spain"))
	// Countries without a plan never count as degraded.
	assert.False(t, IsDegraded(Decompose("+5511987654321", "Brazil"), "Brazil"))
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		name    string
		e164    string
		country string
		prefix  string
	}{
		{name: "nanp npa", e164: "+12125551234", country: "USA", prefix: "1212"},
		{name: "argentina mobile", e164: "+5491122334455", country: "Argentina", prefix: "54911"},
		{name: "mexico area", e164: "+523221234567", country: "Mexico", prefix: "52322"},
		{name: "spain first two national digits", e164: "+34612345678", country: "Spain", prefix: "3461"},
		{name: "colombia mobile block", e164: "+573001234567", country: "Colombia", prefix: "57300"},
		{name: "chile single nine", e164: "+56912345678", country: "Chile", prefix: "569"},
		{name: "fallback plan first two digits", e164: "+5511987654321", country: "Brazil", prefix: "5511"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.prefix, Prefix(tt.e164, tt.country))
		})
	}
}
