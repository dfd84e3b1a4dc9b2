// Package errors provides error handling for callgen.
//
// This package re-exports github.com/cockroachdb/errors and adds the
// generation and dispatch failure taxonomy. Every failure callgen reports
// is marked with exactly one of the sentinels below, so callers branch with
// errors.Is regardless of how much context was wrapped around it:
//
//	if errors.Is(err, errors.ArgsDeserializationFailed) {
//	    // the payload did not match the method's Args shape
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
	Join         = crdb.Join
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails

	GetReportableStackTrace = crdb.GetReportableStackTrace
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Generation-time failures. Fatal to the method being generated, never to
// its siblings.
var (
	// DuplicateParameterName: a generic parameter name appears twice in the
	// merged trait+method parameter set.
	DuplicateParameterName = New("duplicate generic parameter name")

	// UnsupportedArgumentPattern: an argument binding cannot be lifted into
	// a struct field (destructuring, wildcard, non-identifier).
	UnsupportedArgumentPattern = New("unsupported argument pattern")

	// MissingSerializerFormat: no resolvable wire format and no default.
	MissingSerializerFormat = New("missing serializer format")

	// UnsatisfiedCapability: a concrete receiver does not declare a
	// capability the binding requires.
	UnsatisfiedCapability = New("unsatisfied receiver capability")

	// InvalidDescriptor covers structural descriptor problems.
	InvalidDescriptor = New("invalid interface descriptor")
)

// Dispatch-time failures. Fatal to the current call; nothing has been
// written to the host when one of these is returned.
var (
	InputUnavailable          = New("input unavailable")
	ArgsDeserializationFailed = New("args deserialization failed")
	StateLoadFailed           = New("state load failed")
	ReturnSerializationFailed = New("return serialization failed")
	OutputWriteFailed         = New("output write failed")
	EntryPointNotFound        = New("entry point not found")
)

// CallFailed: a remote call completed without a decodable result.
var CallFailed = New("call failed")

// CallAborted: the guest aborted the call; staged state was discarded.
var CallAborted = New("call aborted")

// MarkAs wraps err with msg and marks it with kind so errors.Is(err, kind)
// holds. A nil err yields a fresh error carrying only kind and msg.
func MarkAs(err error, kind error, msg string) error {
	if err == nil {
		return Mark(New(msg), kind)
	}
	return Mark(Wrap(err, msg), kind)
}

// MarkAsf is MarkAs with a format string.
func MarkAsf(err error, kind error, format string, args ...interface{}) error {
	if err == nil {
		return Mark(Newf(format, args...), kind)
	}
	return Mark(Wrapf(err, format, args...), kind)
}

// Kind returns the taxonomy sentinel err is marked with, or nil.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if Is(err, k) {
			return k
		}
	}
	return nil
}

var kinds = []error{
	DuplicateParameterName,
	UnsupportedArgumentPattern,
	MissingSerializerFormat,
	UnsatisfiedCapability,
	InvalidDescriptor,
	InputUnavailable,
	ArgsDeserializationFailed,
	StateLoadFailed,
	ReturnSerializationFailed,
	OutputWriteFailed,
	EntryPointNotFound,
	CallFailed,
	CallAborted,
}
