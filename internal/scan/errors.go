package scan

import (
	"errors"
	"net/http"
)

// Kind classifies the outcome of a scan request.
type Kind string

const (
	KindSuccess          Kind = "Success"
	KindScriptNotFound   Kind = "ScriptNotFound"
	KindBadRequest       Kind = "BadRequest"
	KindInvalidInterface Kind = "InvalidInterface"
	KindBusy             Kind = "Busy"
	KindTimeout          Kind = "Timeout"
	KindScriptFailed     Kind = "ScriptFailed"
	KindUnexpected       Kind = "UnexpectedError"
)

// HTTPStatus maps a kind to the response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindSuccess:
		return http.StatusOK
	case KindBadRequest, KindInvalidInterface:
		return http.StatusBadRequest
	case KindBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failed scan request. Message is safe to show to clients;
// Details carries the script's stderr for KindScriptFailed.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind carried by err, KindSuccess for nil and
// KindUnexpected for anything that is not a *Error.
func KindOf(err error) Kind {
	if err == nil {
		return KindSuccess
	}
	var scanErr *Error
	if errors.As(err, &scanErr) {
		return scanErr.Kind
	}
	return KindUnexpected
}
