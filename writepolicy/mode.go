package writepolicy

import (
	"fmt"
	"strings"
	"time"
)

// Mode names a write policy so it can be picked from configuration.
type Mode string

const (
	Through Mode = "through"
	Back    Mode = "back"
)

// DefaultBuffer is the write-back queue length used by New.
const DefaultBuffer = 1024

// ParseMode accepts a mode in any case. An empty name means Through.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Through, nil
	case Through, Back:
		return m, nil
	default:
		return "", fmt.Errorf("unknown write policy %q", s)
	}
}

// New builds the policy for m forwarding to target. timeout bounds each
// write-back forward and is ignored by Through.
func New(m Mode, target Target, timeout time.Duration) WritePolicy {
	if m == Back {
		return NewWriteBackPolicy(target, DefaultBuffer, timeout)
	}
	return NewWriteThroughPolicy(target)
}
