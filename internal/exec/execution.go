// Package exec holds the externally owned query execution descriptor and
// the classification of its result into one of the closed set of physical
// result shapes.
package exec

import "strings"

// State is the lifecycle state of an asynchronous query execution.
type State string

const (
	StateQueued    State = "QUEUED"
	StateRunning   State = "RUNNING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
	StateCancelled State = "CANCELLED"
)

// QueryExecution is the immutable execution descriptor produced by the
// upstream polling state machine. Only State, OutputLocation and Query are
// consumed here; DataManifestLocation is optional and derived from the
// output location when absent.
type QueryExecution struct {
	ID                   string
	Query                string
	State                State
	OutputLocation       string
	DataManifestLocation string
}

// ColumnInfo is one entry of the ordered column description. Type is the
// query engine's declared logical type, lowercase (for example "bigint" or
// "timestamp with time zone").
type ColumnInfo struct {
	Name string
	Type string
}

// Shape is the physical encoding of a query's result.
type Shape int

const (
	// ShapeEmpty means the execution produced nothing to materialize.
	ShapeEmpty Shape = iota
	// ShapeDelimited means a single row-oriented delimited text file.
	ShapeDelimited
	// ShapeColumnar means an UNLOAD parquet fan-out under a manifest.
	ShapeColumnar
)

func (s Shape) String() string {
	switch s {
	case ShapeDelimited:
		return "delimited"
	case ShapeColumnar:
		return "columnar"
	default:
		return "empty"
	}
}

// IsUnloadQuery reports whether the SQL text is an UNLOAD statement,
// ignoring leading whitespace and case.
func IsUnloadQuery(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "UNLOAD")
}

// Classify resolves the result shape exactly once, before any
// materialization. Only a succeeded execution with an output location has
// a non-empty shape; the columnar path additionally requires the unload
// flag and an UNLOAD statement.
func Classify(execution QueryExecution, unloadEnabled bool) Shape {
	if execution.State != StateSucceeded || execution.OutputLocation == "" {
		return ShapeEmpty
	}
	if unloadEnabled && IsUnloadQuery(execution.Query) {
		return ShapeColumnar
	}
	return ShapeDelimited
}

// ManifestLocation returns the descriptor's data manifest location,
// deriving "<output_location>-manifest.csv" when the upstream did not
// report one.
func (e QueryExecution) ManifestLocation() string {
	if e.DataManifestLocation != "" {
		return e.DataManifestLocation
	}
	if e.OutputLocation == "" {
		return ""
	}
	return e.OutputLocation + "-manifest.csv"
}
