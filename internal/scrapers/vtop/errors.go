package vtop

import (
	"errors"
	"fmt"
)

// Code is the stable machine readable kind of an Error.
type Code string

const (
	CodeSessionExpired      Code = "session_expired"
	CodeInvalidCaptcha      Code = "invalid_captcha"
	CodeInvalidCredentials  Code = "invalid_credentials"
	CodeAccountLocked       Code = "account_locked"
	CodeMissingIdentity     Code = "missing_identity"
	CodeUpstreamTimeout     Code = "upstream_timeout"
	CodeUpstreamUnavailable Code = "upstream_unavailable"
	CodeUpstreamError       Code = "upstream_error"
	CodeParseFailure        Code = "parse_failure"
)

// Error is the error type of every client operation.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("vtop: %s", e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrSessionExpired      = &Error{Code: CodeSessionExpired}
	ErrInvalidCaptcha      = &Error{Code: CodeInvalidCaptcha}
	ErrInvalidCredentials  = &Error{Code: CodeInvalidCredentials}
	ErrAccountLocked       = &Error{Code: CodeAccountLocked}
	ErrMissingIdentity     = &Error{Code: CodeMissingIdentity}
	ErrUpstreamTimeout     = &Error{Code: CodeUpstreamTimeout}
	ErrUpstreamUnavailable = &Error{Code: CodeUpstreamUnavailable}
	ErrUpstreamError       = &Error{Code: CodeUpstreamError}
	ErrParseFailure        = &Error{Code: CodeParseFailure}
)

func newError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, "" if there is
// none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsRetryable reports whether trying the same operation again may succeed.
// Expired sessions, rejected input and unparsable pages never get better by
// retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch CodeOf(err) {
	case CodeSessionExpired,
		CodeInvalidCaptcha,
		CodeInvalidCredentials,
		CodeAccountLocked,
		CodeMissingIdentity,
		CodeParseFailure:
		return false
	}
	return true
}

// RequiresReauth reports whether the caller has to log in again before
// anything else can succeed.
func RequiresReauth(err error) bool {
	switch CodeOf(err) {
	case CodeSessionExpired, CodeMissingIdentity:
		return true
	}
	return false
}
