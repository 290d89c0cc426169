package apperror

import "errors"

type Kind string

const (
	ParseError       Kind = "PARSE_ERROR"
	SelectorNotFound Kind = "SELECTOR_NOT_FOUND"
	SaveRejected     Kind = "SAVE_REJECTED"
	Verification     Kind = "VERIFICATION_FAILED"
	ModalLifecycle   Kind = "MODAL_LIFECYCLE"
	LedgerIO         Kind = "LEDGER_IO"
	SessionBootstrap Kind = "SESSION_BOOTSTRAP"
)

type Error struct {
	kind    Kind
	message string
	err     error
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{kind: kind, message: message, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *Error) Kind() Kind      { return e.kind }
func (e *Error) Message() string { return e.message }
func (e *Error) Unwrap() error   { return e.err }

// Fatal reports whether the run must stop. A ledger write that failed means
// the remote side could drift from what is recorded; a failed bootstrap means
// there is no session to drive.
func (e *Error) Fatal() bool {
	return e.kind == LedgerIO || e.kind == SessionBootstrap
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func IsFatal(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Fatal()
}
