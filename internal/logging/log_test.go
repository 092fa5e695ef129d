package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		env  string
		want log.Level
	}{
		{"", log.ErrorLevel},
		{"debug", log.DebugLevel},
		{"WARN", log.WarnLevel},
		{"bogus", log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(EnvLevel, tt.env)
			assert.Equal(t, tt.want, Level())
		})
	}
}

func TestHandlerFormatsFieldsInOrder(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{Writer: &buf}

	err := h.HandleLog(&log.Entry{
		Level:     log.WarnLevel,
		Message:   "evicted",
		Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Fields:    log.Fields{"key": "a", "backend": "local"},
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-01-02 03:04:05 W evicted backend=local key=a\n", buf.String())
}
