package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warning "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestNop_DiscardsEvents(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Info().Str("op", "inbound").Msg("ignored")
		l.Named("ledger").Warn().Msg("ignored")
	})
}

func TestNew_JSONLinesCarryAppAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", App: "ricemill", Output: &buf})

	l.Named("ledger").Info().Msg("below level")
	l.Named("ledger").Warn().Str("op", "outbound").Msg("lock wait")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), buf.String())
	assert.Equal(t, "ricemill", line["app"])
	assert.Equal(t, "ledger", line["component"])
	assert.Equal(t, "outbound", line["op"])
	assert.Equal(t, "lock wait", line["message"])
}
