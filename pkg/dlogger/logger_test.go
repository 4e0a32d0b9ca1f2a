package dlogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetLogger(t *testing.T) {
	t.Setenv(DebugEnv, "")

	l, err := GetLogger(LogLevelInfo)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = GetLogger(LogLevelNone)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))

	_, err = GetLogger("chatty")
	require.Error(t, err)
}

func TestDebugForced(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE"} {
		t.Setenv(DebugEnv, v)
		assert.True(t, DebugForced())

		l := MustGetLogger(LogLevelNone)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	}

	t.Setenv(DebugEnv, "no")
	assert.False(t, DebugForced())
}
