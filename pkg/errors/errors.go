package errors

import "fmt"

// Response codes used by the unified envelope.
const (
	CodeSuccess = 200
)

// HTTP layer codes (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// Kind classifies a domain error.
type Kind string

const (
	KindNotFound          Kind = "not_found"          // entity absent
	KindForbidden         Kind = "forbidden"          // caller is not a party to the entity
	KindInvalidState      Kind = "invalid_state"      // transition attempted from the wrong status
	KindValidation        Kind = "validation"         // missing/malformed fields, cross-entity role mismatch
	KindConflict          Kind = "conflict"           // duplicate open request for (tenant, property)
	KindPartialAssignment Kind = "partial_assignment" // assignment cascade applied only some of its writes
	KindInternal          Kind = "internal"
)

// AppError is a domain error with a machine kind and a human message.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Code maps the error kind to a response code. Forbidden deliberately maps to
// the not-found code: owner scoped lookups must not leak existence. Handlers
// that legitimately answer 403 (a viewer who is neither party) use
// CodeForbidden directly.
func (e *AppError) Code() int {
	switch e.Kind {
	case KindNotFound, KindForbidden:
		return CodeNotFound
	case KindInvalidState, KindValidation:
		return CodeInvalidParam
	case KindConflict:
		return CodeConflict
	default:
		return CodeServerError
	}
}

func NotFound(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// PartialAssignment reports an assignment cascade that applied only some of
// its writes. Applied lists the entities whose write succeeded before the
// failure ("request", "property", "user").
type PartialAssignmentError struct {
	AppError
	Applied []string
}

func PartialAssignment(applied []string, err error) *PartialAssignmentError {
	return &PartialAssignmentError{
		AppError: AppError{
			Kind:    KindPartialAssignment,
			Message: "assignment cascade partially applied",
			Err:     err,
		},
		Applied: applied,
	}
}

// AsAppError extracts an *AppError from err, if it is one.
func AsAppError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	if partial, ok := err.(*PartialAssignmentError); ok {
		return &partial.AppError, true
	}
	return nil, false
}
