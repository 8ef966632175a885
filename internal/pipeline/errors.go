package pipeline

import "fmt"

// MalformedInputError means the uploaded bytes are not a readable sheet.
// Nothing has been written when it is returned.
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed input: %s: %v", e.Reason, e.Err)
	}
	return "malformed input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// RowError is a persistence failure on one sheet row. The job stops at the
// first one; rows committed before it stay committed.
type RowError struct {
	Row        int
	CareerName string
	Err        error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.CareerName, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
