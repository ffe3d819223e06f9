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

package featureagg

import (
	"io"

	"github.com/rulego/featureagg/logger"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger replaces the process wide logger.
//
// Example:
//
//	engine := featureagg.New(featureagg.WithLogger(logger.NewLogger(logger.DEBUG, os.Stderr)))
func WithLogger(log logger.Logger) Option {
	return func(*Engine) {
		logger.SetDefault(log)
	}
}

// WithLogLevel sets the level of the current default logger.
func WithLogLevel(level logger.Level) Option {
	return func(*Engine) {
		logger.GetDefault().SetLevel(level)
	}
}

// WithLogOutput installs a default logger writing to output.
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(*Engine) {
		logger.SetDefault(logger.NewLogger(level, output))
	}
}

// WithDiscardLog disables logging.
func WithDiscardLog() Option {
	return func(*Engine) {
		logger.SetDefault(logger.NewDiscardLogger())
	}
}

// WithConcurrency bounds how many sources are scanned at once. Zero or less
// scans every source on its own goroutine.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithPartitions sets how many sources Records splits a slice into.
func WithPartitions(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.partitions = n
		}
	}
}
