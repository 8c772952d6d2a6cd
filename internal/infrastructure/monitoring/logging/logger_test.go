package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// newTestLogger writes JSON entries into a buffer for verification.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info", Format: "json", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/x/y.log"}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestZapLogger_WritesFields(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Info("page rendered",
		String("slug", "1-round-vs-1.5-oval"),
		Int("paragraphs", 3),
		Float64("percent", 42),
		Bool("cached", true),
		Duration("took", 5*time.Millisecond),
	)

	lines := buf.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg":"page rendered"`)
	assert.Contains(t, lines[0], `"slug":"1-round-vs-1.5-oval"`)
	assert.Contains(t, lines[0], `"paragraphs":3`)
	assert.Contains(t, lines[0], `"cached":true`)
}

func TestZapLogger_ErrField(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Error("decode failed", Err(errors.New("bad slug")))
	l.Warn("nil error", Err(nil))

	lines := buf.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"error":"bad slug"`)
	assert.Contains(t, lines[1], `"error":"<nil>"`)
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	root := NewLoggerFromCore(core)

	child := root.Named("http").With(String("component", "router"))
	child.Debug("route registered", String("path", "/compare/:slug"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "http", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "router", ctx["component"])
	assert.Equal(t, "/compare/:slug", ctx["path"])
}

func TestSetLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)

	zl := l.(*zapLogger)
	assert.False(t, zl.z.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, SetLevel(l, "debug"))
	assert.True(t, zl.z.Core().Enabled(zapcore.DebugLevel))

	child := l.Named("child").(*zapLogger)
	assert.True(t, child.z.Core().Enabled(zapcore.DebugLevel))

	assert.False(t, SetLevel(NewNopLogger(), "debug"))
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.NoError(t, l.Sync())
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.log")
	l, err := NewLogger(LogConfig{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("sitemap built", Int("urls", 1227), Duration("took", 1500*time.Microsecond))
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg":"sitemap built"`)
	assert.Contains(t, lines[0], `"urls":1227`)
	assert.Contains(t, lines[0], `"took":1.5`)
	assert.Contains(t, lines[0], `"ts":`)
}

func TestNewLogger_Sampling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sampled.log")
	l, err := NewLogger(LogConfig{Sampling: true, OutputPaths: []string{path}})
	require.NoError(t, err)

	for i := 0; i < 150; i++ {
		l.Info("request")
	}
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	n := strings.Count(string(raw), `"msg":"request"`)
	assert.Less(t, n, 150)
	assert.GreaterOrEqual(t, n, 100)
}
