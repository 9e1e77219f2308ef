package catalog

import "errors"

var (
	// ErrRemoteUnavailable is returned when the catalog cannot produce a page,
	// whether from a transport error, a failing status, or an unreadable body.
	ErrRemoteUnavailable = errors.New("catalog unavailable")

	// ErrUnknownCategory is returned for categories other than movie and show.
	ErrUnknownCategory = errors.New("unknown category")
)
