package zap

import (
	"testing"
	"time"

	"github.com/lintang-b-s/drive-search/pkg/logger/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Configuration
		wantErr bool
		enabled zapcore.Level
	}{
		{name: "info", cfg: config.Configuration{Level: config.INFO_LEVEL, TimeFormat: time.RFC3339Nano}, enabled: zapcore.InfoLevel},
		{name: "debug", cfg: config.Configuration{Level: config.DEBUG_LEVEL, TimeFormat: time.RFC3339}, enabled: zapcore.DebugLevel},
		{name: "level too high", cfg: config.Configuration{Level: 9, TimeFormat: time.RFC3339}, wantErr: true},
		{name: "no time format", cfg: config.Configuration{Level: config.INFO_LEVEL}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.enabled))
			assert.False(t, log.Core().Enabled(tt.enabled-1))
		})
	}
}
