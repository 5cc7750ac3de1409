package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrReferenceImageRequired = errors.New("reference image required")
	ErrMalformedResponse      = errors.New("malformed ai response")
	ErrContentBlocked         = errors.New("content blocked by safety filter")
	ErrProviderFailure        = errors.New("provider failure")
	ErrOperationInProgress    = errors.New("operation in progress")
	ErrStaleOperation         = errors.New("stale operation")
)

// ErrorKind classifies an error into the stable codes exposed to clients and
// recorded on failed proposals.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation), errors.Is(err, ErrReferenceImageRequired):
		return "validation_failed"
	case errors.Is(err, ErrContentBlocked):
		return "content_blocked"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_ai_response"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrOperationInProgress):
		return "operation_in_progress"
	case errors.Is(err, ErrStaleOperation):
		return "stale_operation"
	default:
		return "provider_failure"
	}
}
