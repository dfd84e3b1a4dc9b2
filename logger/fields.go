package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across callgen.
const (
	FieldComponent = "component"
	FieldInterface = "interface"
	FieldMethod    = "method"
	FieldEntry     = "entry_point"
	FieldReceiver  = "receiver"
	FieldFormat    = "format"
	FieldCallID    = "call_id"

	FieldFile       = "file"
	FieldPath       = "path"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldDurationMS = "duration_ms"

	FieldError     = "error"
	FieldErrorKind = "error_kind"
)

// ComponentLogger returns a named logger for a specific component.
//
//	type Contract struct {
//	    logger *zap.SugaredLogger
//	}
//
//	c := &Contract{logger: logger.ComponentLogger("wasmhost")}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
