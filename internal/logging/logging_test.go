// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_DisabledIsNop(t *testing.T) {
	logger, err := New(Options{Enabled: false, Level: "debug"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "aisle.log")

	logger, err := New(Options{Enabled: true, Level: "info", Path: path})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("cart updated", zap.Int("items", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"cart updated"`)
	assert.Contains(t, out, `"items":3`)
	assert.Contains(t, out, `"logger":"aisle"`)
	assert.False(t, strings.Contains(out, "hidden"), "debug filtered at info level")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Enabled: true, Level: "loud", Path: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
