package workspace

import "errors"

var (
	// ErrDisposed indicates an operation was invoked after teardown. This is
	// always surfaced, never swallowed: it points at a lifecycle bug in the
	// caller.
	ErrDisposed = errors.New("workspace service is disposed")

	// ErrNoFormatter indicates no folder or global binding claims the
	// document. The host leaves the document unchanged.
	ErrNoFormatter = errors.New("no formatter available for document")
)
