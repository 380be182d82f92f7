package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorEntryFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("svc", "debug", &buf)

	l.Error("booking", "settlement failed", "service.confirm", "booking=7")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "settlement failed", entry["msg"])
	assert.Equal(t, "svc", entry["service"])
	assert.Equal(t, "booking", entry["context"])
	assert.Equal(t, "service.confirm", entry["scope"])
	assert.Equal(t, "booking=7", entry["meta"])
	assert.Contains(t, entry["file"], "logger_test.go")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New("svc", "error", &buf)
	l.Info("ctx", "hidden", "scope", "")
	assert.Zero(t, buf.Len())

	l = New("svc", "not-a-level", &buf)
	l.Info("ctx", "shown", "scope", "")
	assert.NotZero(t, buf.Len())
}
