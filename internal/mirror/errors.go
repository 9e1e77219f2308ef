package mirror

import "errors"

// Sentinel errors for the mirror package.
var (
	// ErrMirrorUnavailable is returned when the counts document cannot be read.
	ErrMirrorUnavailable = errors.New("mirror unavailable")

	// ErrExistenceCheckFailed is returned when the id check endpoint fails.
	ErrExistenceCheckFailed = errors.New("existence check failed")

	// ErrItemSyncFailed is returned when a single item cannot be appended.
	ErrItemSyncFailed = errors.New("item sync failed")
)
