// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is a logger customised for the toolbox output.
// In particular, it prints the time elapsed since the start of the program.
type Log struct {
	start  time.Time
	logger *zap.SugaredLogger
}

// NewLog creates a new logger writing to stderr at the given level.
func NewLog(level string) (*Log, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	c := zap.NewDevelopmentConfig()
	c.Level = lvl
	c.DisableStacktrace = true
	c.EncoderConfig.EncodeTime = func(time.Time, zapcore.PrimitiveArrayEncoder) {}
	logger, err := c.Build()
	if err != nil {
		return nil, err
	}
	return newLogWith(logger), nil
}

func newLogWith(logger *zap.Logger) *Log {
	return &Log{start: time.Now(), logger: logger.Sugar()}
}

func (l *Log) prefix(msg string) string {
	t := uint64(time.Since(l.start).Seconds())
	return fmt.Sprintf("[t=%4d:%02d] - %s", t/60, t%60, msg)
}

// Print logs a message that includes the time elapsed since the start of the
// program, followed by structured key/value pairs.
func (l *Log) Print(msg string, keysAndValues ...any) {
	l.logger.Infow(l.prefix(msg), keysAndValues...)
}

// Printf logs a formatted message that includes the time elapsed since the start of the program.
func (l *Log) Printf(format string, v ...any) {
	l.Print(fmt.Sprintf(format, v...))
}

// Debug logs a message only shown at debug level.
func (l *Log) Debug(msg string, keysAndValues ...any) {
	l.logger.Debugw(l.prefix(msg), keysAndValues...)
}

// Sync flushes buffered log entries.
func (l *Log) Sync() {
	// syncing stderr fails on some platforms, there is nothing to recover
	_ = l.logger.Sync()
}
