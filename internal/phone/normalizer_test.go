package phone

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestNormalize_E164(t *testing.T) {
	n := NewNormalizer("US")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"national format", "(555) 012-3456", "+15550123456"},
		{"already e164", "+15550123456", "+15550123456"},
		{"with country code", "1-555-012-3456", "+15550123456"},
		{"international", "+44 20 7946 0958", "+442079460958"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestNormalize_FallbackStripping(t *testing.T) {
	n := NewNormalizer("US")

	// Too short to parse; falls back to digit stripping.
	assert.Equal(t, "12", n.Normalize("1-2"))
	assert.Equal(t, "", n.Normalize("no digits here"))
	assert.Equal(t, "+12", n.Normalize("+1x2"))
}

func TestNormalize_NeverPanics(t *testing.T) {
	n := NewNormalizer("US")
	for _, raw := range []string{"", " ", "+", "++", "abc", "☎", "-1", "0"} {
		_ = n.Normalize(raw)
	}
}

func TestIsValid(t *testing.T) {
	n := NewNormalizer("US")

	tests := []struct {
		raw  string
		want bool
	}{
		{"5550123456", true}, // 10 digits
		{"555-0123", true},   // 7 digits, permissive length rule
		{"(555) 012", false}, // 6 digits, parser rejects too
		{"", false},
		{"hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, n.IsValid(tt.raw))
		})
	}
}

func TestMatch(t *testing.T) {
	n := NewNormalizer("US")
	assert.True(t, n.Match("(555) 012-3456", "+15550123456"))
	assert.False(t, n.Match("(555) 012-3456", "(555) 012-3457"))
}

func TestHasUsableKey(t *testing.T) {
	assert.True(t, HasUsableKey("+15550123456"))
	assert.True(t, HasUsableKey("12"))
	assert.False(t, HasUsableKey(""))
	assert.False(t, HasUsableKey("+"))
}

// Property: Normalize is idempotent over phone-shaped input.
func TestNormalize_Idempotent(t *testing.T) {
	n := NewNormalizer("US")
	properties := gopter.NewProperties(nil)

	phoneChars := gen.OneConstOf("0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "-", " ", "(", ")", ".")
	rawNumber := gen.SliceOfN(12, phoneChars).Map(func(parts []string) string {
		out := ""
		for _, p := range parts {
			out += p
		}
		return out
	})

	properties.Property("normalize(normalize(x)) == normalize(x)", prop.ForAll(
		func(raw string) bool {
			once := n.Normalize(raw)
			return n.Normalize(once) == once
		},
		rawNumber,
	))

	properties.Property("idempotent with leading plus", prop.ForAll(
		func(raw string) bool {
			once := n.Normalize("+" + raw)
			return n.Normalize(once) == once
		},
		rawNumber,
	))

	properties.TestingRun(t)
}
