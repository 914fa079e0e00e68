// Copyright 2025 The Pippo Authors
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
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(
		WithOutput(&buf),
		WithService("shop", "1.4.0"),
	)
	require.NoError(t, err)

	logger.Info("started", "port", 8080)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "started", record["msg"])
	assert.Equal(t, "shop", record["service"])
	assert.Equal(t, "1.4.0", record["version"])
	assert.EqualValues(t, 8080, record["port"])
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(WithOutput(&buf), WithFormat(FormatText))
	require.NoError(t, err)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf), WithLevel(slog.LevelWarn))

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestUnknownFormatFails(t *testing.T) {
	_, err := New(WithFormat("xml"))
	require.Error(t, err)
	assert.Panics(t, func() { MustNew(WithFormat("xml")) })
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	got, err := ParseFormat("TEXT")
	require.NoError(t, err)
	assert.Equal(t, FormatText, got)

	got, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, got)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}
