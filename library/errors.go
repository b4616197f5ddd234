package library

import "errors"

// Kind classifies a service failure.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindAlreadyExists
	KindNotAvailable
	KindInvalid
	KindMissingPaymentInfo
	KindUnauthorized
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindNotAvailable:
		return "not available"
	case KindInvalid:
		return "invalid"
	case KindMissingPaymentInfo:
		return "missing payment info"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstream:
		return "upstream"
	}
	return "internal"
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrAlreadyExists      = &Error{Kind: KindAlreadyExists}
	ErrNotAvailable       = &Error{Kind: KindNotAvailable}
	ErrInvalid            = &Error{Kind: KindInvalid}
	ErrMissingPaymentInfo = &Error{Kind: KindMissingPaymentInfo}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrUpstream           = &Error{Kind: KindUpstream}
)

// Error is a classified failure with a caller-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func newError(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
