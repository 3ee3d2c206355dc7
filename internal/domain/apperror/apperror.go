package apperror

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable code carried in error responses.
type Kind string

const (
	KindInvalidRange      Kind = "INVALID_RANGE"
	KindNotFound          Kind = "NOT_FOUND"
	KindLocked            Kind = "LOCKED"
	KindConflict          Kind = "CONFLICT"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindForbidden         Kind = "FORBIDDEN"
	KindTimeout           Kind = "TIMEOUT"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindInternal          Kind = "INTERNAL_ERROR"
)

var (
	ErrInvalidRange      = errors.New("end must be after start")
	ErrNotFound          = errors.New("not found")
	ErrLocked            = errors.New("locked by a live appointment")
	ErrConflict          = errors.New("conflicts with an existing booking or block")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrTimeout           = errors.New("storage call timed out")
	ErrValidation        = errors.New("invalid input")
)

// Specific failures. Each wraps one of the sentinels above.
var (
	ErrSlotNotFound          = fmt.Errorf("%w: time slot", ErrNotFound)
	ErrAppointmentNotFound   = fmt.Errorf("%w: appointment", ErrNotFound)
	ErrServiceNotFound       = fmt.Errorf("%w: service", ErrNotFound)
	ErrServiceOptionNotFound = fmt.Errorf("%w: service option", ErrNotFound)
	ErrMasterNotFound        = fmt.Errorf("%w: master profile", ErrNotFound)

	ErrSlotOverlap       = fmt.Errorf("%w: range overlaps a blocked slot", ErrConflict)
	ErrOfferUnavailable  = fmt.Errorf("%w: no open slot covers the requested time", ErrConflict)
	ErrRangeTaken        = fmt.Errorf("%w: range overlaps a live appointment or block", ErrConflict)
	ErrSlotLocked        = fmt.Errorf("%w: resolve the appointment first", ErrLocked)
	ErrBlockedSlotLocked = fmt.Errorf("%w: unblock the slot before deleting it", ErrLocked)

	ErrServiceOptionRequired   = fmt.Errorf("%w: service_option_id is required for this service", ErrValidation)
	ErrServiceOptionNotAllowed = fmt.Errorf("%w: service has no options", ErrValidation)
	ErrServiceMisconfigured    = fmt.Errorf("%w: service has no usable duration", ErrValidation)
)

// KindOf classifies err into the taxonomy. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRange):
		return KindInvalidRange
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrLocked):
		return KindLocked
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindInternal
	}
}

// Retryable reports whether a caller may retry. Conflict requires re-reading
// current availability first.
func Retryable(err error) bool {
	k := KindOf(err)
	return k == KindConflict || k == KindTimeout
}
