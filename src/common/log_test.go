package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(LogOptions{Dir: dir, File: true})
	logger.Sugar().Infof("[sync] moved %d  failed %d", 3, 0)
	logger.Sugar().Debugf("not written at info level")
	_ = logger.Sync()

	b, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	require.Contains(t, string(b), `"msg":"[sync] moved 3  failed 0"`)
	require.NotContains(t, string(b), "not written")
}

func TestHandlePanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	prev := Logger
	Logger = zap.New(core)
	defer func() { Logger = prev }()

	require.NotPanics(t, func() {
		defer HandlePanic("sentiment")
		panic("boom")
	})
	require.Equal(t, 1, logs.Len())
	msg := logs.All()[0].Message
	require.Contains(t, msg, "[sentiment] catch panic: boom")

	require.NotPanics(t, func() {
		defer HandlePanic("crypto")
	})
	require.Equal(t, 1, logs.Len())
}
