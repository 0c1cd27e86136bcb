package numbering

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededGenerator(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)))
}

// Generation is randomized, so tests assert set and length properties
// against a seeded source, never exact values.

func TestGenerateProducesValidNumbers(t *testing.T) {
	countries := []string{"USA", "Argentina", "Mexico", "Spain", "Colombia", "Chile", "Peru"}

	for _, country := range countries {
		t.Run(country, func(t *testing.T) {
			g := seededGenerator(1)
			sets := NewUniquenessSets()
			numbers := g.Generate(country, 3, sets)
			require.NotEmpty(t, numbers)

			for _, e164 := range numbers {
				out := Validate(e164, country)
				assert.True(t, out.Valid, "%s generated invalid %s (%s)", country, e164, out.Reason)

				// Generated numbers decompose without degradation:
				// synthesis mirrors the structural split.
				np := Decompose(e164, country)
				assert.False(t, IsDegraded(np, country), "degraded decomposition for %s", e164)
				assert.Equal(t, strings.TrimPrefix(e164, "+"),
					np.CountryCode+np.AreaCode+np.LocalNumber)
			}
		})
	}
}

func TestGenerateUniquenessProperties(t *testing.T) {
	g := seededGenerator(7)
	sets := NewUniquenessSets()
	sets.AddFull("+573001234567")
	sets.AddPrefix("57300")

	numbers := g.Generate("Colombia", 10, sets)
	require.Len(t, numbers, 10, "Colombia has 21 mobile blocks, 10 must fit")

	seenFull := make(map[string]bool)
	seenPrefix := make(map[string]bool)
	for _, e164 := range numbers {
		assert.NotEqual(t, "+573001234567", e164)
		prefix := Prefix(e164, "Colombia")
		assert.NotEqual(t, "57300", prefix, "pre-seeded prefix must not be reused")
		assert.False(t, seenFull[e164], "duplicate full number %s", e164)
		assert.False(t, seenPrefix[prefix], "duplicate prefix %s", prefix)
		seenFull[e164] = true
		seenPrefix[prefix] = true
	}
}

func TestGenerateExhaustionIsDegradedSuccess(t *testing.T) {
	// Chile's prefix granularity is the single mobile 9: one prefix total.
	// Asking for five must return one number, not an error.
	g := seededGenerator(3)
	numbers := g.Generate("Chile", 5, NewUniquenessSets())
	assert.Len(t, numbers, 1)
}

func TestGenerateUnknownCountry(t *testing.T) {
	g := seededGenerator(3)
	assert.Empty(t, g.Generate("Narnia", 5, NewUniquenessSets()))
}

func TestGenerateFallbackForMinimalRule(t *testing.T) {
	// Brazil has a dial code but no structural plan: the generic fallback
	// emits dial code plus 8-12 random digits.
	g := seededGenerator(11)
	numbers := g.Generate("Brazil", 3, NewUniquenessSets())
	require.NotEmpty(t, numbers)
	for _, e164 := range numbers {
		assert.True(t, strings.HasPrefix(e164, "+55"))
		national := strings.TrimPrefix(e164, "+55")
		assert.GreaterOrEqual(t, len(national), 8)
		assert.LessOrEqual(t, len(national), 12)
	}
}

func TestGenerateBatchSharesUniquenessAcrossCountries(t *testing.T) {
	g := seededGenerator(5)
	batch := g.GenerateBatch(map[string]int{"Colombia": 5, "Mexico": 5})
	require.Len(t, batch, 10)

	fulls := make(map[string]bool)
	prefixes := make(map[string]bool)
	for _, gen := range batch {
		assert.False(t, fulls[gen.E164], "duplicate %s across countries", gen.E164)
		fulls[gen.E164] = true

		prefix := Prefix(gen.E164, gen.Country)
		assert.False(t, prefixes[prefix], "duplicate prefix %s across countries", prefix)
		prefixes[prefix] = true
	}
}

func TestGenerateBatchDeterministicWithSeed(t *testing.T) {
	counts := map[string]int{"Argentina": 4, "Spain": 4, "USA": 4}
	first := seededGenerator(42).GenerateBatch(counts)
	second := seededGenerator(42).GenerateBatch(counts)
	assert.Equal(t, first, second, "sorted country order plus a fixed seed must reproduce the batch")
}

func TestGenerateBatchCanonicalizesCountry(t *testing.T) {
	g := seededGenerator(9)
	batch := g.GenerateBatch(map[string]int{"España": 2})
	require.Len(t, batch, 2)
	for _, gen := range batch {
		assert.Equal(t, "Spain", gen.Country)
		assert.True(t, strings.HasPrefix(gen.E164, "+34"))
	}
}

func TestGeneratorDoesNotClearCallerSets(t *testing.T) {
	g := seededGenerator(13)
	sets := NewUniquenessSets()
	sets.AddFull("+12125551234")
	sets.AddPrefix("1212")

	g.Generate("USA", 2, sets)
	_, fullKept := sets.FullNumbers["+12125551234"]
	_, prefixKept := sets.Prefixes["1212"]
	assert.True(t, fullKept)
	assert.True(t, prefixKept)
	assert.GreaterOrEqual(t, len(sets.FullNumbers), 3)
}
