package numbering

import "fmt"

// RawRecord is one input contact row as delivered by the CSV collaborator.
// The engine consumes it read-only.
type RawRecord struct {
	Phone   string `json:"phone"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// Group assigns contacts to the generated number they should originate from.
type Group struct {
	OriginatingNumber string      `json:"originating_number"`
	Nickname          string      `json:"nickname"`
	Contacts          []RawRecord `json:"contacts"`
}

// GroupDiagnostics surfaces contacts that matched no generated number and
// were therefore left out of every group. Dropping them silently is the
// preserved behavior; this report exists so callers can see what fell out.
type GroupDiagnostics struct {
	DroppedContacts []RawRecord `json:"dropped_contacts,omitempty"`
}

// GroupByPrefix assigns each contact to a generated number sharing its
// numbering-plan prefix, falling back to the first generated number sharing
// the contact's dial code, and dropping contacts that match neither way.
// Group order follows pool order; groups that attract no contacts are
// omitted.
func GroupByPrefix(contacts []RawRecord, pool []GeneratedNumber) ([]Group, GroupDiagnostics) {
	type poolEntry struct {
		gen      GeneratedNumber
		prefix   string
		dialCode string
	}
	entries := make([]poolEntry, 0, len(pool))
	for _, gen := range pool {
		e := poolEntry{gen: gen, prefix: Prefix(gen.E164, gen.Country)}
		if rule, ok := Lookup(gen.Country); ok {
			e.dialCode = rule.DialCode
		} else if split, ok := ResolveDialCode(digitsOf(gen.E164)); ok {
			e.dialCode = split.DialCode
		}
		entries = append(entries, e)
	}

	groups := make(map[string]*Group, len(entries))
	order := make([]string, 0, len(entries))
	var diag GroupDiagnostics

	for _, contact := range contacts {
		digits := digitsOf(contact.Phone)
		prefix := Prefix(contact.Phone, contact.Country)

		match := -1
		for i, e := range entries {
			if e.prefix == prefix {
				match = i
				break
			}
		}
		if match < 0 {
			var dialCode string
			if split, ok := ResolveDialCode(digits); ok {
				dialCode = split.DialCode
			}
			for i, e := range entries {
				if dialCode != "" && e.dialCode == dialCode {
					match = i
					break
				}
			}
		}
		if match < 0 {
			diag.DroppedContacts = append(diag.DroppedContacts, contact)
			continue
		}

		e := entries[match]
		g, ok := groups[e.gen.E164]
		if !ok {
			g = &Group{
				OriginatingNumber: e.gen.E164,
				Nickname:          fmt.Sprintf("%s %d", e.gen.Country, len(order)+1),
			}
			groups[e.gen.E164] = g
			order = append(order, e.gen.E164)
		}
		g.Contacts = append(g.Contacts, contact)
	}

	out := make([]Group, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out, diag
}
