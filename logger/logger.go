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

// Package logger provides leveled logging for the aggregation engine.
// Every package logs through a component-scoped logger obtained with Named,
// so output can be traced back to the visitor, group-by engine or collector
// that produced it.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level defines log levels
type Level int

const (
	// DEBUG shows per-record diagnostics such as skipped NaN or null values
	DEBUG Level = iota
	// INFO shows lifecycle information such as partition scans
	INFO
	// WARN shows recoverable anomalies
	WARN
	// ERROR shows failed merges and visits
	ERROR
	// OFF disables logging
	OFF
)

// String returns string representation of log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case OFF:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name into a Level, ignoring case.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "OFF", "NONE":
		return OFF, nil
	default:
		return OFF, fmt.Errorf("unknown log level %q", name)
	}
}

// Logger interface defines basic methods for logging
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	SetLevel(level Level)
	// With returns a logger that prefixes every line with the component name.
	// The returned logger shares level and output with its parent.
	With(component string) Logger
}

type sink struct {
	mu     sync.RWMutex
	level  Level
	logger *log.Logger
}

type defaultLogger struct {
	sink      *sink
	component string
}

// NewLogger creates a new logger writing to output.
//
// Example:
//
//	log := NewLogger(INFO, os.Stdout).With("groupby")
//	log.Info("merged %d groups", n)
func NewLogger(level Level, output io.Writer) Logger {
	return &defaultLogger{
		sink: &sink{
			level:  level,
			logger: log.New(output, "", 0),
		},
	}
}

func (l *defaultLogger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

func (l *defaultLogger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

func (l *defaultLogger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

func (l *defaultLogger) SetLevel(level Level) {
	l.sink.mu.Lock()
	l.sink.level = level
	l.sink.mu.Unlock()
}

func (l *defaultLogger) With(component string) Logger {
	name := component
	if l.component != "" {
		name = l.component + "." + component
	}
	return &defaultLogger{sink: l.sink, component: name}
}

func (l *defaultLogger) enabled(level Level) bool {
	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()
	return l.sink.level != OFF && l.sink.level <= level
}

func (l *defaultLogger) log(level Level, format string, args ...interface{}) {
	if !l.enabled(level) {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, args...)
	if l.component != "" {
		l.sink.logger.Printf("[%s] [%s] [%s] %s", timestamp, level.String(), l.component, message)
		return
	}
	l.sink.logger.Printf("[%s] [%s] %s", timestamp, level.String(), message)
}

type discardLogger struct{}

// NewDiscardLogger creates a logger that discards all logs
func NewDiscardLogger() Logger {
	return discardLogger{}
}

func (discardLogger) Debug(format string, args ...interface{}) {}
func (discardLogger) Info(format string, args ...interface{})  {}
func (discardLogger) Warn(format string, args ...interface{})  {}
func (discardLogger) Error(format string, args ...interface{}) {}
func (discardLogger) SetLevel(level Level)                     {}
func (d discardLogger) With(component string) Logger           { return d }

var (
	defaultMu       sync.RWMutex
	defaultInstance Logger = NewLogger(WARN, os.Stderr)
)

// SetDefault sets the global default logger. Loggers returned by Named
// follow the new default from their next call on.
func SetDefault(logger Logger) {
	defaultMu.Lock()
	defaultInstance = logger
	defaultMu.Unlock()
}

// GetDefault gets the global default logger
func GetDefault() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultInstance
}

// Named returns a component logger that resolves the global default lazily,
// so packages can hold one in a package variable and still follow SetDefault.
func Named(component string) Logger {
	return &namedLogger{component: component}
}

type namedLogger struct {
	component string
}

func (n *namedLogger) current() Logger {
	return GetDefault().With(n.component)
}

func (n *namedLogger) Debug(format string, args ...interface{}) {
	n.current().Debug(format, args...)
}

func (n *namedLogger) Info(format string, args ...interface{}) {
	n.current().Info(format, args...)
}

func (n *namedLogger) Warn(format string, args ...interface{}) {
	n.current().Warn(format, args...)
}

func (n *namedLogger) Error(format string, args ...interface{}) {
	n.current().Error(format, args...)
}

func (n *namedLogger) SetLevel(level Level) {
	GetDefault().SetLevel(level)
}

func (n *namedLogger) With(component string) Logger {
	return &namedLogger{component: n.component + "." + component}
}

// Debug uses the default logger to record debug information
func Debug(format string, args ...interface{}) {
	GetDefault().Debug(format, args...)
}

// Info uses the default logger to record information
func Info(format string, args ...interface{}) {
	GetDefault().Info(format, args...)
}

// Warn uses the default logger to record warnings
func Warn(format string, args ...interface{}) {
	GetDefault().Warn(format, args...)
}

// Error uses the default logger to record errors
func Error(format string, args ...interface{}) {
	GetDefault().Error(format, args...)
}
