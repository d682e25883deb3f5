// Copyright 2022 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package logger

import (
	"context"
	"os"

	easyFormatter "github.com/t-tomalak/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

// L is an alias for the the standard logger.
var L = logrus.NewEntry(logrus.StandardLogger())

// Init configures the standard logger to print bare "[run_id] message"
// lines on stdout, the way the CLI surface requires, and returns an entry
// scoped to runID for callers to thread through a context.
func Init(runID string) *logrus.Entry {
	l := logrus.StandardLogger()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&easyFormatter.Formatter{
		LogFormat: "%msg%\n",
	})
	L = logrus.NewEntry(l)
	return L.WithField("run_id", runID)
}

// WithContext returns a new context with the provided logger. Use in
// combination with logger.WithField(s) for great effect.
func WithContext(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the current logger from the context. If no
// logger is available, the default logger is returned.
func FromContext(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(loggerKey{})
	if logger == nil {
		return L
	}
	return logger.(*logrus.Entry)
}

// Line formats a message the way the CLI requires: prefixed with the run
// id in brackets, regardless of the structured fields attached to entry.
func Line(runID, msg string) string {
	return "[" + runID + "] " + msg
}
