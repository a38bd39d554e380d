package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel(" warning "))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestNewWritesJSONWithService(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Service: "pairline"}, &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("room_id", "r1").Msg("room created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "room created", entry["message"])
	require.Equal(t, "pairline", entry["service"])
	require.Equal(t, "r1", entry["room_id"])
}
