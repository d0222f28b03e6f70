package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSanitizeTerm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Vaal Robe", "Vaal Robe"},
		{"  trimmed  ", "trimmed"},
		{"O'Connell's Band", "O'Connell's Band"},
		{"semi;colon", "semicolon"},
		{"drop table--", "drop table--"},
		{"pct%stripped", "pctstripped"},
		{"under_score", "under_score"},
		{"tab\there", "tabhere"},
		{";;%%&&", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeTerm(tt.in), "input %q", tt.in)
	}
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, `50\% more`, escapeLikePattern("50% more"))
	assert.Equal(t, `under\_score`, escapeLikePattern("under_score"))
	assert.Equal(t, `back\\slash`, escapeLikePattern(`back\slash`))
	assert.Equal(t, "plain", escapeLikePattern("plain"))
}

// Property: sanitized output never contains characters outside the allowed
// alphabet, and escaping leaves no unescaped wildcards.
func TestPropertySanitizeThenEscapeIsLiteral(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "input")
		out := escapeLikePattern(sanitizeTerm(in))

		for i := 0; i < len(out); i++ {
			if out[i] == '%' || out[i] == '_' {
				if i == 0 || out[i-1] != '\\' {
					t.Fatalf("unescaped wildcard in %q from input %q", out, in)
				}
			}
		}
		if strings.ContainsAny(out, ";\x00\n") {
			t.Fatalf("forbidden character survived in %q from input %q", out, in)
		}
	})
}
