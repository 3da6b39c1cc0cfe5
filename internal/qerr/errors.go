// Package qerr defines the error taxonomy shared by the materialization
// pipeline: programming errors (bad caller inputs), operational errors
// (failed reads, wrapping their cause) and engine availability errors.
package qerr

import (
	"fmt"
	"strings"
)

// ProgrammingError reports invalid caller input. Not retryable.
type ProgrammingError struct {
	Message string
}

func NewProgrammingError(format string, args ...any) *ProgrammingError {
	return &ProgrammingError{Message: fmt.Sprintf(format, args...)}
}

func (e *ProgrammingError) Error() string {
	return e.Message
}

// OperationalError wraps a failure encountered while reading or decoding
// query output. The target location is carried for diagnosis.
type OperationalError struct {
	Op       string
	Location string
	Err      error
}

func NewOperationalError(op, location string, err error) *OperationalError {
	return &OperationalError{Op: op, Location: location, Err: err}
}

func (e *OperationalError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Location, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationalError) Unwrap() error {
	return e.Err
}

// EngineProbe records one attempted engine and why it was unusable.
type EngineProbe struct {
	Name string
	Err  error
}

// AvailabilityError reports that no columnar engine could be resolved.
// The message enumerates every probed engine and its failure verbatim.
type AvailabilityError struct {
	Probes []EngineProbe
}

func (e *AvailabilityError) Error() string {
	names := make([]string, 0, len(e.Probes))
	for _, probe := range e.Probes {
		names = append(names, fmt.Sprintf("%q", probe.Name))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "unable to find a usable parquet engine; tried: %s", strings.Join(names, ", "))
	for _, probe := range e.Probes {
		fmt.Fprintf(&b, "\n - %s: %v", probe.Name, probe.Err)
	}
	return b.String()
}
