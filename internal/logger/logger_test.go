package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Config{Level: "info", Format: "json", Output: buf})

	log.Info().Str("key", "docs/report.pdf").Msg("object uploaded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "object uploaded", entry["message"])
	assert.Equal(t, "docs/report.pdf", entry["key"])
	assert.Equal(t, "stashdrive", entry["service"])
	assert.NotEmpty(t, entry["time"])
}

func TestNew_ErrorField(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Config{Level: "error", Format: "json", Output: buf})

	log.Error().Err(errors.New("bucket unreachable")).Msg("list failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bucket unreachable", entry["error"])
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		log    func(zerolog.Logger)
		expect bool
	}{
		{"debug logs debug", "debug", func(l zerolog.Logger) { l.Debug().Msg("d") }, true},
		{"info skips debug", "info", func(l zerolog.Logger) { l.Debug().Msg("d") }, false},
		{"error logs error", "error", func(l zerolog.Logger) { l.Error().Msg("e") }, true},
		{"error skips info", "error", func(l zerolog.Logger) { l.Info().Msg("i") }, false},
		{"unknown falls back to info", "verbose", func(l zerolog.Logger) { l.Info().Msg("i") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.log(New(Config{Level: tt.level, Format: "json", Output: buf}))
			if tt.expect {
				assert.NotEmpty(t, buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(Config{Level: "info", Format: "console", Output: buf})
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}
