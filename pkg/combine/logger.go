// SPDX-License-Identifier: Apache-2.0

package combine

import "github.com/pterm/pterm"

// Logger reports scan progress and the per-file failures a scan absorbs.
type Logger interface {
	LogScanStart(dir, machine, compiler string)
	LogMetricsReadError(path string, err error)

	Info(msg string, args ...any)
}

type scanLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

func NewLogger() Logger {
	return &scanLogger{logger: pterm.DefaultLogger}
}

func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *scanLogger) LogScanStart(dir, machine, compiler string) {
	l.logger.Info("scanning run directory", l.logger.Args(
		"dir", dir,
		"machine", machine,
		"compiler", compiler,
	))
}

func (l *scanLogger) LogMetricsReadError(path string, err error) {
	l.logger.Warn("could not read counter file", l.logger.Args(
		"path", path,
		"error", err.Error(),
	))
}

func (l *scanLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args...))
}

func (l *noopLogger) LogScanStart(dir, machine, compiler string) {}
func (l *noopLogger) LogMetricsReadError(path string, err error) {}
func (l *noopLogger) Info(msg string, args ...any)               {}
