package analyzers

import "errors"

// Error kinds surfaced to callers. Wrap them with fmt.Errorf("%w: ...") and
// test with errors.Is.
var (
	// ErrMissingDependency means a required backend (the UI-Automation binding) is unavailable.
	ErrMissingDependency = errors.New("dependency unavailable")
	// ErrInvalidArgument means a required path or title was not supplied.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound means a target file, mock-data file or window does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMalformedInput means input parsed but has the wrong shape.
	ErrMalformedInput = errors.New("malformed input")
)
