// Package errors provides error handling for cruxgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints
//
// Usage:
//
//	if err := index.Load(ctx, path); err != nil {
//	    return errors.Wrapf(err, "failed to load %s", path)
//	}
//
//	return errors.WithHint(errors.ErrNotFound, "run `cargo build` first")
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
	Mark           = crdb.Mark

	GetReportableStackTrace = crdb.GetReportableStackTrace
)

// AssertionFailedf reports an internal invariant violation.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors for use across cruxgen.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates a workspace package, manifest or documentation artifact does not exist
	ErrNotFound = New("not found")

	// ErrDeserialize indicates the rustdoc JSON could not be decoded
	ErrDeserialize = New("failed to deserialize rustdoc JSON")

	// ErrUnsupportedFormatVersion indicates the rustdoc JSON format_version is outside the accepted range
	ErrUnsupportedFormatVersion = New("unsupported rustdoc format version")

	// ErrUnsupportedType indicates a Rust type shape that has no registry format.
	// Fields and variants carrying such a type are dropped, never fatal.
	ErrUnsupportedType = New("unsupported type")

	// ErrPrimitiveWidth indicates isize/usize was requested for a pointer width other than 32 or 64
	ErrPrimitiveWidth = New("unsupported pointer width")

	// ErrUnknownSerdeWith indicates a #[serde(with = "...")] module other than serde_bytes
	ErrUnknownSerdeWith = New("unsupported serde with module")

	// ErrOutOfDate indicates a committed registry differs from the generated one
	ErrOutOfDate = New("types are out of date")

	// ErrInvalidConfig indicates a configuration value failed validation
	ErrInvalidConfig = New("invalid configuration")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsUnsupported checks if an error only marks an unsupported type shape.
func IsUnsupported(err error) bool {
	return err != nil && Is(err, ErrUnsupportedType)
}

// IsFatal reports whether err should abort code generation.
// Everything except an unsupported type shape is fatal.
func IsFatal(err error) bool {
	return err != nil && !IsUnsupported(err)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewUnsupportedError creates an unsupported-type error with a formatted message
func NewUnsupportedError(format string, args ...interface{}) error {
	return Wrap(ErrUnsupportedType, Newf(format, args...).Error())
}
