package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFieldsAndCaller(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})

	WithContext(map[string]interface{}{"request_id": "req-1"}).
		Info("set created", map[string]interface{}{"set_id": "SET-0001"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "set created", entry["message"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "SET-0001", entry["set_id"])
	assert.Contains(t, entry["caller"], "logger_test.go")
}

func TestLogger_ErrorCarriesCause(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})

	Error("upload failed", errors.New("bucket unreachable"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "bucket unreachable", entry["error"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "warn", Format: "json", Output: &buf})

	Debug("hidden")
	Info("hidden")
	assert.Zero(t, buf.Len())

	Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	Initialize(Config{Level: "debug", Format: "json", Output: &buf})
}
