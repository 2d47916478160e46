// Package phone canonicalizes raw dialed numbers into comparable lookup keys.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalizer converts raw phone number strings into canonical E.164 keys.
// The default region stands in for the device SIM/network country and is
// fixed configuration for the lifetime of the normalizer.
type Normalizer struct {
	region string
}

// NewNormalizer creates a normalizer for the given ISO 3166-1 region code.
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = "US"
	}
	return &Normalizer{region: region}
}

// Region returns the configured default region.
func (n *Normalizer) Region() string {
	return n.region
}

// Normalize returns the canonical form of raw, usable as an equality key.
// Parseable numbers are formatted to E.164; anything else falls back to
// stripping all characters except digits and a leading plus. Never fails.
func (n *Normalizer) Normalize(raw string) string {
	parsed, err := phonenumbers.Parse(raw, n.region)
	if err == nil {
		return phonenumbers.Format(parsed, phonenumbers.E164)
	}
	return stripToDigits(raw)
}

// IsValid reports whether raw is acceptable as a list entry. The check is
// deliberately permissive: seven or more digits always passes, so legitimate
// numbers are never rejected from being whitelisted.
func (n *Normalizer) IsValid(raw string) bool {
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits >= 7 {
		return true
	}
	parsed, err := phonenumbers.Parse(raw, n.region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}

// Match reports whether two raw numbers normalize to the same key.
func (n *Normalizer) Match(a, b string) bool {
	return n.Normalize(a) == n.Normalize(b)
}

// stripToDigits keeps digits and a leading plus only.
func stripToDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && b.Len() == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HasUsableKey reports whether a normalized string can serve as a lookup key,
// meaning it contains at least one digit.
func HasUsableKey(normalized string) bool {
	for _, r := range normalized {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
