/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{OFF, "OFF"},
		{Level(999), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" debug ")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, level)

	level, err = ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, WARN, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(WARN, &buf)

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("visible %s", "warning")
	log.Error("visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] visible warning")
	assert.Contains(t, out, "[ERROR] visible error")

	buf.Reset()
	log.SetLevel(OFF)
	log.Error("dropped")
	assert.Empty(t, buf.String())
}

func TestLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	root := NewLogger(DEBUG, &buf)
	child := root.With("visitor").With("median")

	child.Debug("sorted %d values", 4)
	assert.Contains(t, buf.String(), "[DEBUG] [visitor.median] sorted 4 values")

	// children share the parent's level
	buf.Reset()
	root.SetLevel(ERROR)
	child.Info("suppressed")
	assert.Empty(t, buf.String())
}

func TestNamedFollowsDefault(t *testing.T) {
	original := GetDefault()
	defer SetDefault(original)

	var buf bytes.Buffer
	named := Named("collector")

	SetDefault(NewLogger(INFO, &buf))
	named.Info("partition %d done", 2)
	assert.Contains(t, buf.String(), "[collector] partition 2 done")

	buf.Reset()
	SetDefault(NewDiscardLogger())
	named.Error("nothing")
	assert.Empty(t, buf.String())
}
