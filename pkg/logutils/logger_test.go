package logutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "tinydiff.log")

	l, closer, err := New("info", file)
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("repo", "/tmp/r").Msg("opened")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "opened", entry["message"])
	assert.Equal(t, "/tmp/r", entry["repo"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_AppendsAcrossRuns(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tinydiff.log")

	for range 2 {
		l, closer, err := New("info", file)
		require.NoError(t, err)
		l.Info().Msg("run")
		closer()
	}

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), `"run"`))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	require.Error(t, err)
	closer()
}

func TestNew_Level(t *testing.T) {
	l, closer, err := New("warn", "")
	require.NoError(t, err)
	defer closer()

	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
}

func TestNew_TruncatesOversizedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tinydiff.log")
	require.NoError(t, os.WriteFile(file, make([]byte, MaxFileSize+1), 0o644))

	l, closer, err := New("info", file)
	require.NoError(t, err)
	l.Info().Msg("fresh")
	closer()

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(1024))
}
