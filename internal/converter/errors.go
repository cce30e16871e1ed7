package converter

import "errors"

var (
	// ErrInit reports a converter that could not be created, usually an
	// unknown system or target unit.
	ErrInit = errors.New("converter initialization failed")
	// ErrLoad reports a session id with no stored session, including ids of
	// batches already finalized.
	ErrLoad = errors.New("converter session not found")
)
