package logger

import corelogger "github.com/kilianp07/chargeflow/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger mirrors the core no-op logger for tests.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. The output format is picked
// from the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
