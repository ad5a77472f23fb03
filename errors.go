package bundle

import "errors"

// Sentinel errors for bundle operations.
var (
	// ErrOverrideTooLarge is returned when override content does not fit
	// the format's 32-bit size fields (it must be below 2 GiB).
	ErrOverrideTooLarge = errors.New("bundle: override content exceeds 2 GiB limit")

	// ErrNoPayload is returned when an entry's payload is requested
	// before the payload section has been loaded.
	ErrNoPayload = errors.New("bundle: payload not loaded")
)
