package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across cruxgen.
const (
	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError  = "error"
	FieldReason = "reason"

	// Counts and sizes
	FieldCount  = "count"
	FieldSize   = "size"
	FieldRounds = "rounds"

	// Files and paths
	FieldFile     = "file"
	FieldManifest = "manifest"

	// Rust items
	FieldCrate    = "crate"
	FieldItem     = "item"
	FieldItemID   = "item_id"
	FieldRelation = "relation"
	FieldVersion  = "format_version"
)

type contextKey struct{}

var crateKey contextKey

// WithCrate records the crate being processed for FieldsFromContext.
func WithCrate(ctx context.Context, crate string) context.Context {
	return context.WithValue(ctx, crateKey, crate)
}

// FieldsFromContext returns the key-value pairs recorded on ctx, ready for
// Infow and friends or SugaredLogger.With.
func FieldsFromContext(ctx context.Context) []interface{} {
	if crate, ok := ctx.Value(crateKey).(string); ok && crate != "" {
		return []interface{}{FieldCrate, crate}
	}
	return nil
}

// ComponentLogger returns a named logger for a specific component.
//
// Example:
//
//	func NewStore(db *sql.DB) *Store {
//	    return &Store{db: db, log: logger.ComponentLogger("snapshot")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
