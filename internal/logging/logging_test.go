package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allbin/go-lever/internal/config"
)

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(config.Log{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	log.Info("hidden")
	log.Warn("lever demoted", "handle", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "lever demoted")
	assert.Contains(t, buf.String(), "handle=1")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(config.Log{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("opened", "port", "/dev/ttyUSB0")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "opened", rec["msg"])
	assert.Equal(t, "/dev/ttyUSB0", rec["port"])
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leverctl.log")
	log, closer, err := New(config.Log{Level: "info", Format: "text", File: path, MaxSizeMB: 1, MaxBackups: 1}, nil)
	require.NoError(t, err)

	log.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNewBadLevel(t *testing.T) {
	_, _, err := New(config.Log{Level: "loud"}, nil)
	assert.Error(t, err)
}
