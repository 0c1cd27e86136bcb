// Package values holds validated value objects shared across layers.
package values

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fieldtel/number-provisioning-backend/internal/domain/numbering"
)

// PhoneNumber is a phone number validated against its country's numbering
// plan, stored in E.164 form.
type PhoneNumber struct {
	number  string
	country string
}

// NewPhoneNumber validates raw against the declared country and returns the
// normalized value object.
func NewPhoneNumber(raw, country string) (PhoneNumber, error) {
	out := numbering.Validate(raw, country)
	if !out.Valid {
		return PhoneNumber{}, PhoneValidationError{Number: raw, Reason: out.Reason}
	}
	return PhoneNumber{number: out.E164, country: numbering.Canonical(country)}, nil
}

// MustNewPhoneNumber panics on invalid input; for fixtures and tests.
func MustNewPhoneNumber(raw, country string) PhoneNumber {
	p, err := NewPhoneNumber(raw, country)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the E.164 form.
func (p PhoneNumber) String() string { return p.number }

// E164 returns the E.164 form.
func (p PhoneNumber) E164() string { return p.number }

// Country returns the canonical country the number was validated for.
func (p PhoneNumber) Country() string { return p.country }

func (p PhoneNumber) IsEmpty() bool { return p.number == "" }

func (p PhoneNumber) Equal(other PhoneNumber) bool { return p.number == other.number }

// Normalized decomposes the number into dial-code/area/subscriber parts.
func (p PhoneNumber) Normalized() numbering.NormalizedPhone {
	return numbering.Decompose(p.number, p.country)
}

// Prefix returns the number's dedup/grouping key.
func (p PhoneNumber) Prefix() string {
	return numbering.Prefix(p.number, p.country)
}

// DialCode returns the number's resolved dial code, or "" when the digits
// cannot be split.
func (p PhoneNumber) DialCode() string {
	split, ok := numbering.ResolveDialCode(strings.TrimPrefix(p.number, "+"))
	if !ok {
		return ""
	}
	return split.DialCode
}

// MarshalJSON encodes the E.164 string.
func (p PhoneNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.number)
}

// Value implements driver.Valuer for database storage.
func (p PhoneNumber) Value() (driver.Value, error) {
	if p.number == "" {
		return nil, nil
	}
	return p.number, nil
}

// Scan implements sql.Scanner. Stored values are already E.164 so the scan
// only checks shape, not country compatibility.
func (p *PhoneNumber) Scan(value interface{}) error {
	if value == nil {
		*p = PhoneNumber{}
		return nil
	}

	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into PhoneNumber", value)
	}

	if str == "" {
		*p = PhoneNumber{}
		return nil
	}
	if !strings.HasPrefix(str, "+") {
		return fmt.Errorf("stored phone number %q is not E.164", str)
	}
	*p = PhoneNumber{number: str}
	return nil
}

// PhoneValidationError reports why a raw phone string was rejected.
type PhoneValidationError struct {
	Number string
	Reason numbering.ErrorKind
}

func (e PhoneValidationError) Error() string {
	return fmt.Sprintf("invalid phone number %q: %s", e.Number, e.Reason)
}
