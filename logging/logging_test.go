// Copyright 2025 The Vex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(WithOutput(&buf), WithFormat(FormatJSON))
	require.NoError(t, err)

	logger.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNew_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(WithOutput(&buf), WithFormat(FormatText))
	require.NoError(t, err)

	logger.Info("hello", "key", "value")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "key=value")
}

func TestNew_ServiceAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(
		WithOutput(&buf),
		WithService("orders", "1.2.3"),
	)
	require.NoError(t, err)

	logger.Info("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "orders", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
}

func TestNew_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(WithOutput(&buf), WithLevel(LevelWarn))
	require.NoError(t, err)

	logger.Info("filtered")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_InvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := New(WithFormat("yaml"))

	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestNew_NilOutput(t *testing.T) {
	t.Parallel()

	_, err := New(WithOutput(nil))

	assert.ErrorIs(t, err, ErrNilOutput)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"", LevelInfo},
		{"WARN", LevelWarn},
		{"warning", LevelWarn},
		{"Error", LevelError},
	}
	for _, tt := range tests {
		level, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, level, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestNoop_DiscardsEverything(t *testing.T) {
	t.Parallel()

	logger := Noop()
	logger.Info("dropped")

	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
