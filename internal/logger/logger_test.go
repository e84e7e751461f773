package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/aliskhannn/hafiz-bot/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		enabled zapcore.Level
		hidden  zapcore.Level
		wantErr bool
	}{
		{name: "development", cfg: config.Config{Env: "local"}, enabled: zapcore.DebugLevel},
		{name: "production", cfg: config.Config{Env: "production"}, enabled: zapcore.InfoLevel, hidden: zapcore.DebugLevel},
		{name: "explicit level", cfg: config.Config{Env: "local", LogLevel: "warn"}, enabled: zapcore.WarnLevel, hidden: zapcore.InfoLevel},
		{name: "bad level", cfg: config.Config{LogLevel: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.True(t, log.Core().Enabled(tt.enabled))
			if tt.hidden != tt.enabled && tt.hidden < tt.enabled {
				assert.False(t, log.Core().Enabled(tt.hidden))
			}
		})
	}
}

func TestNewCLI(t *testing.T) {
	log, err := NewCLI(&config.Config{})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}
