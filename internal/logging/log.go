// Package logging configures apex/log for the cacheprovider binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// EnvLevel names the variable holding the log level.
const EnvLevel = "CACHE_LOG"

// Init sets up apex/log with a Handler on stderr and a level from CACHE_LOG.
// An unset or unknown level means error.
func Init() {
	log.SetHandler(&Handler{Writer: os.Stderr})
	log.SetLevel(Level())
}

// Level returns the level named by CACHE_LOG.
func Level() log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(os.Getenv(EnvLevel)))
	if err != nil {
		return log.ErrorLevel
	}
	return lvl
}

// Handler writes one line per entry: timestamp, level initial, message,
// then fields in key order.
type Handler struct {
	Writer io.Writer

	mu sync.Mutex
}

// HandleLog implements the log.Handler interface
func (h *Handler) HandleLog(e *log.Entry) error {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", e.Timestamp.Format(time.DateTime), strings.ToUpper(e.Level.String()), e.Message)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields[name])
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.Writer, b.String())
	return err
}
