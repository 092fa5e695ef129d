package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		key     string
		want    bool
	}{
		{"prefix wildcard", "user:*", "user:123", true},
		{"empty tail", "user:*", "user:", true},
		{"leading garbage", "user:*", "xuser:123", false},
		{"literal", "user:1", "user:1", true},
		{"literal is anchored", "user:1", "user:12", false},
		{"middle wildcard", "i18n:*:en", "i18n:common:en", true},
		{"middle wildcard tail mismatch", "i18n:*:en", "i18n:common:en-GB", false},
		{"regex metacharacters are literal", "a.b+(c)*", "a.b+(c)zzz", true},
		{"dot is not any char", "a.b*", "axb1", false},
		{"question mark literal", "what?*", "what?now", true},
		{"only wildcard", "*", "anything", true},
		{"double wildcard", "**", "", true},
		{"head and tail overlap", "ab*ba", "aba", false},
		{"middle parts in order", "*a*b*", "xxbxa", false},
		{"middle parts found", "*a*b*", "xaxbx", true},
		{"newline under wildcard", "k:*", "k:\nv", true},
		{"invalid utf-8 prefix", "k\xff:*", "k\xff:1", true},
		{"invalid utf-8 literal", "k\xff", "k\xfe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.key))
		})
	}
}

func TestToGlob(t *testing.T) {
	assert.Equal(t, "profile:*", ToGlob("profile:*"))
	assert.Equal(t, `a\?b\[c\]\\*`, ToGlob(`a?b[c]\*`))
	assert.Equal(t, "k\xff:*", ToGlob("k\xff:*"), "bytes pass through unchanged")
}

func TestQuoteGlob(t *testing.T) {
	assert.Equal(t, `tenant\*a:`, QuoteGlob("tenant*a:"))
	assert.Equal(t, `a\?\[\]`, QuoteGlob("a?[]"))
}

func TestIsLiteral(t *testing.T) {
	assert.True(t, IsLiteral("user:1"))
	assert.False(t, IsLiteral("user:*"))
}
