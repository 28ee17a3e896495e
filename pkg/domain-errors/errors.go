// Package domainerrors defines the coded errors services return to callers.
//
// Stores return infrastructure sentinels (see pkg/platform/sentinel); services
// translate them into one of the codes below so callers can branch on intent
// without string matching.
package domainerrors

import (
	"errors"
	"strings"
)

// Code classifies an error by what the caller should do about it.
type Code string

const (
	// CodeDenied: a check-in was refused. Reasons carries every failing rule.
	CodeDenied Code = "denied"
	// CodeConfirmationRequired: the operation can proceed only after the
	// operator explicitly confirms an immediate authorization grant.
	CodeConfirmationRequired Code = "confirmation_required"
	CodeInvalidInput         Code = "invalid_input"
	CodeInvalidState         Code = "invalid_state"
	CodeConflict             Code = "conflict"
	CodeNotFound             Code = "not_found"
	CodeForbidden            Code = "forbidden"
	CodeTimeout              Code = "timeout"
	CodeInternal             Code = "internal"
)

// Error is the concrete coded error.
type Error struct {
	Code    Code
	Message string
	// Reasons lists human-readable denial reasons (CodeDenied only).
	Reasons []string
	// Ref identifies the conflicting or affected record, when known.
	Ref string
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Reasons) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Reasons, "; "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error. A nil err yields nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// Denied builds a CodeDenied error carrying a copy of reasons.
func Denied(reasons []string) error {
	return &Error{
		Code:    CodeDenied,
		Message: "check-in denied",
		Reasons: append([]string(nil), reasons...),
	}
}

// Conflict builds a CodeConflict error pointing at the existing record.
func Conflict(message, ref string) error {
	return &Error{Code: CodeConflict, Message: message, Ref: ref}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Code == code {
				return true
			}
			err = e.Err
			continue
		}
		return false
	}
	return false
}

// CodeOf returns the outermost code in err's chain, or CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Reasons returns the denial reasons carried by err, if any.
func Reasons(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reasons
	}
	return nil
}

// Ref returns the record reference carried by err, if any.
func Ref(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Ref
	}
	return ""
}
