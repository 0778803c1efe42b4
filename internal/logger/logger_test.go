package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/simplewebserver/internal/config"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// decodeLines parses every line of buf as a JSON object.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), "line: %s", sc.Text())
		entries = append(entries, m)
	}
	return entries
}

func TestNewLogger_NilConfig(t *testing.T) {
	_, err := NewLogger(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging configuration cannot be nil")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var errBuf bytes.Buffer
	lg := NewFromWriters(config.LogLevelWarning, &errBuf, nil)

	lg.Debug("debug message")
	lg.Info("info message")
	lg.Warn("warn message", LogFields{"path": "/index.html"})
	lg.Error("error message", LogFields{"error": "boom"})

	entries := decodeLines(t, &errBuf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "warn message", entries[0]["message"])
	assert.Equal(t, "/index.html", entries[0]["path"])
	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestLogger_Access(t *testing.T) {
	var accessBuf bytes.Buffer
	lg := NewFromWriters(config.LogLevelInfo, &bytes.Buffer{}, &accessBuf)

	req := httptest.NewRequest("GET", "/app.wasm", nil)
	req.RemoteAddr = "127.0.0.1:54321"
	req.Header.Set("User-Agent", "test-agent")

	lg.Access(req, 200, "served", 200, 15*time.Millisecond)

	entries := decodeLines(t, &accessBuf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "127.0.0.1", e["remote_addr"])
	assert.Equal(t, "54321", e["remote_port"])
	assert.Equal(t, "GET", e["method"])
	assert.Equal(t, "/app.wasm", e["uri"])
	assert.EqualValues(t, 200, e["status"])
	assert.Equal(t, "served", e["outcome"])
	assert.EqualValues(t, 200, e["resp_bytes"])
	assert.EqualValues(t, 15, e["duration_ms"])
	assert.Equal(t, "test-agent", e["user_agent"])
	assert.Contains(t, e, "time")
}

func TestLogger_AccessDisabled(t *testing.T) {
	var errBuf bytes.Buffer
	lg := NewFromWriters(config.LogLevelInfo, &errBuf, nil)
	lg.Access(httptest.NewRequest("GET", "/", nil), 404, "not_found", 0, 0)
	assert.Zero(t, errBuf.Len())
}

func TestLogger_ConcurrentWritesDoNotInterleave(t *testing.T) {
	var accessBuf bytes.Buffer
	lg := NewFromWriters(config.LogLevelInfo, &bytes.Buffer{}, &accessBuf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest("GET", fmt.Sprintf("/file-%d.js", i), nil)
			lg.Access(req, 200, "served", int64(i), time.Millisecond)
		}(i)
	}
	wg.Wait()

	assert.Len(t, decodeLines(t, &accessBuf), 50)
}

func TestNewLogger_FileTargets(t *testing.T) {
	dir := t.TempDir()
	errorPath := filepath.Join(dir, "error.log")
	accessPath := filepath.Join(dir, "access.log")

	lg, err := NewLogger(&config.LoggingConfig{
		LogLevel: config.LogLevelDebug,
		AccessLog: &config.AccessLogConfig{
			Enabled: boolPtr(true),
			Target:  strPtr(accessPath),
			Format:  config.LogFormatJSON,
		},
		ErrorLog: &config.ErrorLogConfig{Target: strPtr(errorPath)},
	})
	require.NoError(t, err)

	lg.Debug("to file")
	lg.Access(httptest.NewRequest("GET", "/", nil), 403, "forbidden", 39, 0)
	require.NoError(t, lg.CloseLogFiles())

	errData, err := os.ReadFile(errorPath)
	require.NoError(t, err)
	assert.Contains(t, string(errData), `"message":"to file"`)

	accessData, err := os.ReadFile(accessPath)
	require.NoError(t, err)
	assert.Contains(t, string(accessData), `"outcome":"forbidden"`)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	lg, err := NewLogger(&config.LoggingConfig{
		LogLevel: config.LogLevelInfo,
		ErrorLog: &config.ErrorLogConfig{Target: strPtr(path), Format: config.LogFormatConsole},
	})
	require.NoError(t, err)
	lg.Info("listening", LogFields{"address": "localhost:8080"})
	require.NoError(t, lg.CloseLogFiles())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, "listening")
	assert.Contains(t, line, "localhost:8080")
	assert.False(t, strings.HasPrefix(line, "{"), "console format should not be JSON: %s", line)
}

func TestNewLogger_BadFileTarget(t *testing.T) {
	_, err := NewLogger(&config.LoggingConfig{
		ErrorLog: &config.ErrorLogConfig{Target: strPtr(filepath.Join(t.TempDir(), "missing", "dir", "e.log"))},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open error log")
}

func TestConsole_Log(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Log("Forbidden.", ColorRed)
	c.Logf(ColorGray, "Serving: %s", "/index.html")
	c.PrintBanner()

	out := buf.String()
	assert.Contains(t, out, "Forbidden.")
	assert.Contains(t, out, "Serving: /index.html")
	assert.Contains(t, out, "|_____|")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 3)

	var nilConsole *Console
	assert.NotPanics(t, func() { nilConsole.Log("ignored", ColorDefault) })
}
