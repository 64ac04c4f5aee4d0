package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	saved := Logger
	t.Cleanup(func() { Logger = saved })

	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
		wantLevel  zapcore.Level
	}{
		{"json", true, 0, zapcore.WarnLevel},
		{"console", false, 1, zapcore.InfoLevel},
		{"console debug", false, 2, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			core := Logger.Desugar().Core()
			assert.True(t, core.Enabled(tt.wantLevel))
			assert.False(t, core.Enabled(tt.wantLevel-1))
			Cleanup()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := map[int]zapcore.Level{
		-1: zapcore.WarnLevel,
		0:  zapcore.WarnLevel,
		1:  zapcore.InfoLevel,
		2:  zapcore.DebugLevel,
		7:  zapcore.DebugLevel,
	}
	for verbosity, want := range tests {
		assert.Equal(t, want, VerbosityToLevel(verbosity), "verbosity %d", verbosity)
	}
}

func TestFieldsFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, FieldsFromContext(ctx))
	assert.Empty(t, FieldsFromContext(WithCrate(ctx, "")))
	assert.Equal(t, []interface{}{FieldCrate, "shared"}, FieldsFromContext(WithCrate(ctx, "shared")))
}

func TestComponentLoggerIsSafeBeforeInitialize(t *testing.T) {
	assert.NotPanics(t, func() {
		ComponentLogger("codegen").Infow("message", FieldCount, 1)
		Cleanup()
	})
}
