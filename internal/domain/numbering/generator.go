package numbering

import (
	"math/rand"
	"sort"
	"time"
)

// attemptsPerNumber caps rejection sampling: generation for a country stops
// after count×attemptsPerNumber draws and returns whatever was accumulated.
// Plans with few area codes exhaust their prefix space quickly under the
// prefix-uniqueness constraint, so a short result is degraded success, not
// an error.
const attemptsPerNumber = 100

// Bounds of the generic fallback's random national number length.
const (
	fallbackMinNational = 8
	fallbackMaxNational = 12
)

// GeneratedNumber is one synthesized phone number.
type GeneratedNumber struct {
	Country string `json:"country"`
	E164    string `json:"e164"`
}

// UniquenessSets tracks every full number and every prefix observed in a
// generation scope. The caller owns the pair and controls its lifetime
// (per request, per process, or seeded from storage); the generator only
// reads and inserts, never clears.
type UniquenessSets struct {
	FullNumbers map[string]struct{}
	Prefixes    map[string]struct{}
}

// NewUniquenessSets returns an empty set pair.
func NewUniquenessSets() *UniquenessSets {
	return &UniquenessSets{
		FullNumbers: make(map[string]struct{}),
		Prefixes:    make(map[string]struct{}),
	}
}

// AddFull records a full E.164 number.
func (u *UniquenessSets) AddFull(e164 string) { u.FullNumbers[e164] = struct{}{} }

// AddPrefix records a prefix key.
func (u *UniquenessSets) AddPrefix(prefix string) { u.Prefixes[prefix] = struct{}{} }

// Seen reports whether either the full number or its prefix is taken.
func (u *UniquenessSets) Seen(e164, prefix string) bool {
	if _, ok := u.FullNumbers[e164]; ok {
		return true
	}
	_, ok := u.Prefixes[prefix]
	return ok
}

// Generator synthesizes structurally valid phone numbers. Randomness is the
// sole source of non-determinism; pass a seeded source for reproducible
// tests.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator backed by rng, or a time-seeded source
// when rng is nil.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate synthesizes up to count numbers for one country, accepting only
// candidates whose full number and prefix are both absent from the shared
// sets. Accepted candidates are inserted immediately so later calls sharing
// the sets observe them. Countries without any rule yield an empty list;
// countries with a rule but no structural plan use the generic dial-code
// fallback.
func (g *Generator) Generate(countryLabel string, count int, sets *UniquenessSets) []string {
	rule, ok := Lookup(countryLabel)
	if !ok || count <= 0 {
		return nil
	}

	p, hasPlan := plansByDialCode[rule.DialCode]
	out := make([]string, 0, count)
	for attempts := 0; len(out) < count && attempts < count*attemptsPerNumber; attempts++ {
		var national string
		if hasPlan {
			national = p.synthesize(g.rng, rule)
		} else {
			national = g.fallbackNational()
		}
		e164 := "+" + rule.DialCode + national
		prefix := Prefix(e164, countryLabel)
		if sets.Seen(e164, prefix) {
			continue
		}
		sets.AddFull(e164)
		sets.AddPrefix(prefix)
		out = append(out, e164)
	}
	return out
}

// GenerateBatch runs Generate per country in sorted order, threading one
// shared set pair across the whole batch so numbers produced for one country
// cannot collide, on full value or prefix, with those of another.
func (g *Generator) GenerateBatch(counts map[string]int) []GeneratedNumber {
	return g.GenerateBatchWith(counts, NewUniquenessSets())
}

// GenerateBatchWith is GenerateBatch against caller-owned sets, letting the
// caller widen the uniqueness scope beyond one batch.
func (g *Generator) GenerateBatchWith(counts map[string]int, sets *UniquenessSets) []GeneratedNumber {
	countries := make([]string, 0, len(counts))
	for c := range counts {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	var out []GeneratedNumber
	for _, country := range countries {
		for _, e164 := range g.Generate(country, counts[country], sets) {
			out = append(out, GeneratedNumber{Country: Canonical(country), E164: e164})
		}
	}
	return out
}

// fallbackNational draws 8-12 random digits with a nonzero lead for plans
// known only by dial code.
func (g *Generator) fallbackNational() string {
	n := fallbackMinNational + g.rng.Intn(fallbackMaxNational-fallbackMinNational+1)
	return string(randomDigitBetween(g.rng, '1', '9')) + randomDigits(g.rng, n-1)
}
