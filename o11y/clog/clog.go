// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package clog provides context aware logging.
// It can store arbitrary labels to each context, e.g. the Makefile
// being scanned, so every log entry carries them automatically.
package clog

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

type contextKeyType int

var contextKey contextKeyType

// Logger holds arbitrary labels of the context.
type Logger struct {
	l      *log.Logger
	labels map[string]string
}

// New creates a new Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{
		l: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
		}),
	}
}

// NewContext sets the given logger to the context.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// NewSpan sets a new logger with the given labels to the context.
func NewSpan(ctx context.Context, labels map[string]string) context.Context {
	return NewContext(ctx, FromContext(ctx).Span(labels))
}

// FromContext returns a logger in the context, or a logger on the
// default charmbracelet logger if it's not set.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey).(*Logger)
	if !ok {
		return &Logger{l: log.Default()}
	}
	return logger
}

// Span returns a sub logger with labels added to the labels of l.
func (l *Logger) Span(labels map[string]string) *Logger {
	merged := make(map[string]string, len(l.labels)+len(labels))
	for k, v := range l.labels {
		merged[k] = v
	}
	var keyvals []any
	for k, v := range labels {
		merged[k] = v
		keyvals = append(keyvals, k, v)
	}
	return &Logger{
		l:      l.l.With(keyvals...),
		labels: merged,
	}
}

// Labels returns the labels attached to the logger.
func (l *Logger) Labels() map[string]string {
	return l.labels
}

// SetVerbose enables debug level logging.
func (l *Logger) SetVerbose(v bool) {
	if v {
		l.l.SetLevel(log.DebugLevel)
		return
	}
	l.l.SetLevel(log.InfoLevel)
}

// V reports whether debug level logging is enabled.
func (l *Logger) V() bool {
	return l.l.GetLevel() <= log.DebugLevel
}

// Debugf logs at debug log level in the manner of fmt.Printf.
func (l *Logger) Debugf(format string, args ...any) {
	l.l.Helper()
	l.l.Debugf(format, args...)
}

// Infof logs at info log level in the manner of fmt.Printf.
func (l *Logger) Infof(format string, args ...any) {
	l.l.Helper()
	l.l.Infof(format, args...)
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func (l *Logger) Warningf(format string, args ...any) {
	l.l.Helper()
	l.l.Warnf(format, args...)
}

// Errorf logs at error log level in the manner of fmt.Printf.
func (l *Logger) Errorf(format string, args ...any) {
	l.l.Helper()
	l.l.Errorf(format, args...)
}

// Debugf logs at debug log level in the manner of fmt.Printf.
func Debugf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Debugf(format, args...)
}

// Infof logs at info log level in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Infof(format, args...)
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func Warningf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Warningf(format, args...)
}

// Errorf logs at error log level in the manner of fmt.Printf.
func Errorf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Errorf(format, args...)
}
