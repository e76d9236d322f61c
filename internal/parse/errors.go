package parse

import "fmt"

// DecodeError reports a line that is not a JSON object. The line is skipped.
type DecodeError struct {
	Path string
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s:%d: invalid json: %v", e.Path, e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EmptyFileError is returned when a file holds no decodable record.
type EmptyFileError struct {
	Path    string
	Skipped int
}

func (e *EmptyFileError) Error() string {
	if e.Skipped > 0 {
		return fmt.Sprintf("no valid records in %s (%d undecodable lines)", e.Path, e.Skipped)
	}
	return fmt.Sprintf("no valid records in %s", e.Path)
}

// MissingFileError is returned when the file does not exist or cannot be read.
type MissingFileError struct {
	Path string
	Err  error
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("conversation file not found: %s: %v", e.Path, e.Err)
}

func (e *MissingFileError) Unwrap() error { return e.Err }

// SchemaDeviationError reports a record whose shape differs from what the
// normalizer expects. The record is still parsed with defaults.
type SchemaDeviationError struct {
	Line   int
	Field  string
	Reason string
}

func (e *SchemaDeviationError) Error() string {
	return fmt.Sprintf("line %d: field %q: %s", e.Line, e.Field, e.Reason)
}

// UnknownModelError reports a model id missing from the price table.
// Cost is computed with the default entry.
type UnknownModelError struct {
	Line     int
	Model    string
	Fallback string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("line %d: unknown model %q, priced as %s", e.Line, e.Model, e.Fallback)
}

// RecordError wraps any other failure while normalizing a single record.
// The record is dropped.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
