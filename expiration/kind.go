package expiration

import (
	"fmt"
	"strings"
	"time"
)

// Kind names a Strategy so it can be picked from configuration.
type Kind string

const (
	// Fixed selects FixedTTL.
	Fixed Kind = "fixed"

	// Sliding selects ExpireAfterAccess.
	Sliding Kind = "sliding"
)

// ParseKind accepts a kind in any case. An empty name means Fixed.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return Fixed, nil
	case Fixed, Sliding:
		return k, nil
	default:
		return "", fmt.Errorf("unknown expiration strategy %q", s)
	}
}

// New returns the Strategy for k. maxAge caps sliding lifetimes (<= 0 means
// no cap) and is ignored by Fixed.
func New(k Kind, maxAge time.Duration) Strategy {
	switch k {
	case Sliding:
		return &ExpireAfterAccess{MaxAge: maxAge}
	default:
		return FixedTTL{}
	}
}
