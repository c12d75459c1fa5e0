package drill

import "errors"

// Gate errors.
var (
	ErrInvalidTransition = errors.New("phase is not the immediate successor of the current phase")
	ErrPhaseNotEnabled   = errors.New("phase is not unlocked yet")
)

// Record builder and formatter errors.
var (
	ErrPreconditionNotMet = errors.New("required record section is not populated")
	ErrIncompleteRecord   = errors.New("record section is missing")
)

// Session errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("session limit reached")
	ErrNoCheckpoint    = errors.New("phase has no checkpoint")
)
