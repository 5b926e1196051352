package cms

import (
	"errors"

	"github.com/kovidgoyal/colorbridge/errstate"
)

// Failure kinds recorded by this family's fallible entry points. Recorded
// errors wrap one of these, so callers can classify with errors.Is while the
// message keeps the engine detail.
var (
	ErrInvalidArgument = errors.New("cms: invalid argument")
	ErrConfigMissing   = errors.New("cms: environment designation missing")
	ErrLoad            = errors.New("cms: config load failed")
	ErrResolution      = errors.New("cms: transform resolution failed")
	ErrCompile         = errors.New("cms: evaluator compilation failed")
)

// The Configuration/Transform/Evaluator family shares one last-error slot.
var lastError errstate.Cell

// LastError returns the most recent failure recorded by this family, or nil
// when the last fallible call succeeded. The read is non-consuming.
func LastError() error { return lastError.Last() }
