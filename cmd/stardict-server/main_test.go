package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/stardict/internal/config"
)

func TestNewLogHandler(t *testing.T) {
	tests := []struct {
		name         string
		cfg          config.LogConfig
		appEnv       string
		wantDebug    bool
		wantInfo     bool
		wantJSON     bool
		wantContains string
	}{
		{
			name:         "text at info",
			cfg:          config.LogConfig{Level: "info", Format: "text"},
			wantInfo:     true,
			wantContains: "msg=hello",
		},
		{
			name:      "json at debug",
			cfg:       config.LogConfig{Level: "debug", Format: "json"},
			wantDebug: true,
			wantInfo:  true,
			wantJSON:  true,
		},
		{
			name: "warn drops info",
			cfg:  config.LogConfig{Level: "warn", Format: "text"},
		},
		{
			name:         "dev environment uses tint",
			cfg:          config.LogConfig{Level: "info", Format: "json"},
			appEnv:       "dev",
			wantInfo:     true,
			wantContains: "INF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := newLogHandler(&buf, tt.cfg, tt.appEnv)

			assert.Equal(t, tt.wantDebug, handler.Enabled(context.Background(), slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, handler.Enabled(context.Background(), slog.LevelInfo))
			assert.True(t, handler.Enabled(context.Background(), slog.LevelError))

			slog.New(handler).Error("hello")
			if tt.wantJSON {
				var entry map[string]any
				require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
				assert.Equal(t, "hello", entry["msg"])
				assert.Contains(t, entry, "source")
			}
			if tt.wantContains != "" {
				buf.Reset()
				slog.New(handler).Info("hello")
				assert.Contains(t, buf.String(), tt.wantContains)
			}
		})
	}
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	err := fmt.Errorf("lexicon.Open > %w", errors.New("no snapshot"))
	reportError(&buf, err)
	assert.Equal(t, "failed to execute a command: lexicon.Open > no snapshot\n", buf.String())
}
