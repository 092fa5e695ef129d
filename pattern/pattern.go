// Package pattern converts cache invalidation patterns into matchers.
//
// A pattern uses a single wildcard, '*', meaning zero or more bytes.
// Every other byte is literal and the match covers the whole key. Keys and
// patterns are opaque byte strings; they need not be valid UTF-8.
package pattern

import "strings"

// Wildcard is the only special token in a pattern.
const Wildcard = "*"

// Matcher is a compiled pattern.
type Matcher struct {
	parts []string
}

// Compile splits p on the wildcard.
func Compile(p string) Matcher {
	return Matcher{parts: strings.Split(p, Wildcard)}
}

// Match reports whether key matches the whole pattern.
func (m Matcher) Match(key string) bool {
	if len(m.parts) == 1 {
		return key == m.parts[0]
	}

	first, last := m.parts[0], m.parts[len(m.parts)-1]
	if len(key) < len(first)+len(last) ||
		!strings.HasPrefix(key, first) || !strings.HasSuffix(key, last) {
		return false
	}

	// Middle parts are matched leftmost-first in what is left between the
	// fixed head and tail.
	rest := key[len(first) : len(key)-len(last)]
	for _, part := range m.parts[1 : len(m.parts)-1] {
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	return true
}

// Match reports whether key matches p.
func Match(p, key string) bool {
	return Compile(p).Match(key)
}

// IsLiteral reports whether p contains no wildcard.
func IsLiteral(p string) bool {
	return !strings.Contains(p, Wildcard)
}

// ToGlob rewrites p as a Redis glob. Redis treats '?', '[', ']' and '\' as
// special, so they are escaped and only '*' keeps its meaning.
func ToGlob(p string) string {
	return escape(p, "?[]\\")
}

// QuoteGlob escapes p so every byte, '*' included, matches literally.
func QuoteGlob(p string) string {
	return escape(p, "*?[]\\")
}

func escape(p, special string) string {
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		if strings.IndexByte(special, p[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(p[i])
	}
	return b.String()
}
