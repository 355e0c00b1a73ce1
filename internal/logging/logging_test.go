package logging

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		" warn ":  zerolog.WarnLevel,
		"Error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewJSONRespectsLevelAndComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(&buf, "warn", "json"), "ledger")

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len(), "info should be filtered at warn level")

	log.Warn().Str("step", "sign").Msg("kept")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "ledger", line["component"])
	assert.Equal(t, "sign", line["step"])
	assert.Contains(t, line, "time")
}

func TestLoggersBuiltConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	bufs := make([]bytes.Buffer, 8)
	for i := range bufs {
		wg.Add(1)
		go func(buf *bytes.Buffer) {
			defer wg.Done()
			log := New(buf, "info", "json")
			log.Info().Msg("ready")
		}(&bufs[i])
	}
	wg.Wait()
	for i := range bufs {
		var line map[string]any
		require.NoError(t, json.Unmarshal(bufs[i].Bytes(), &line))
		ts, err := time.Parse(time.RFC3339, line["time"].(string))
		require.NoError(t, err)
		_, offset := ts.Zone()
		assert.Zero(t, offset, "timestamps are UTC")
	}
}

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "console")
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "console output should not be JSON")
}
