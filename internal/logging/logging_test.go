// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/scholar-audit/pkg/types"
)

func TestNew_Defaults(t *testing.T) {
	log, err := New(types.LogConfig{})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_LevelAndFormat(t *testing.T) {
	tests := []struct {
		cfg     types.LogConfig
		enabled zapcore.Level
		off     zapcore.Level
	}{
		{types.LogConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{types.LogConfig{Level: "WARN", Format: "json"}, zapcore.WarnLevel, zapcore.InfoLevel},
		{types.LogConfig{Level: "error"}, zapcore.ErrorLevel, zapcore.WarnLevel},
	}
	for _, tt := range tests {
		log, err := New(tt.cfg)
		require.NoError(t, err, "config %+v", tt.cfg)
		assert.True(t, log.Core().Enabled(tt.enabled))
		assert.False(t, log.Core().Enabled(tt.off))
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(types.LogConfig{Level: "chatty"})
	assert.Error(t, err)

	_, err = New(types.LogConfig{Format: "xml"})
	assert.Error(t, err)
}
