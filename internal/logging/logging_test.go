package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{in: "debug", want: slog.LevelDebug, ok: true},
		{in: "INFO", want: slog.LevelInfo, ok: true},
		{in: " warn ", want: slog.LevelWarn, ok: true},
		{in: "error", want: slog.LevelError, ok: true},
		{in: "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", FormatJSON, &buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "table", "gender")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"table":"gender"`)

	buf.Reset()
	logger, err = New("debug", "", &buf)
	require.NoError(t, err)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")

	_, err = New("info", "xml", &buf)
	assert.Error(t, err)
	_, err = New("nope", FormatText, &buf)
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(t.Context(), slog.LevelError))
}
