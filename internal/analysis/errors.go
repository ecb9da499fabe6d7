package analysis

import "errors"

var (
	// ErrInvalidColumn is returned when a column index or name does not exist.
	ErrInvalidColumn = errors.New("invalid column")
	// ErrUnknownOp is returned by ParseOp and Dispatch for unrecognised operations.
	ErrUnknownOp = errors.New("unknown operation")
)
