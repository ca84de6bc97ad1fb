package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLikePrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"plain", "consent/ADDR1/", `consent/ADDR1/`},
		{"underscore in scope key", "consent/ADDR1/my_scope", `consent/ADDR1/my\_scope`},
		{"percent", "tx/100%", `tx/100\%`},
		{"backslash", `a\b`, `a\\b`},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, escapeLikePrefix(tc.prefix))
		})
	}
}
