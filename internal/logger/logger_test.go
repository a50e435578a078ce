package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrapFormatsMessages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Wrap(zap.New(core))

	log.Debug("loaded %d rows", 3)
	log.Info("catalog has %d jobs", 2)
	log.Warn("unknown department %q", "X")
	log.Error("failed: %v", "boom")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, "loaded 3 rows", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, `unknown department "X"`, entries[2].Message)
	assert.Equal(t, "failed: boom", entries[3].Message)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	log, err := New(Options{Level: "error", Verbose: true})
	require.NoError(t, err)

	assert.True(t, log.Zap().Core().Enabled(zapcore.DebugLevel))
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Info("ignored %s", "message")
	})
}
