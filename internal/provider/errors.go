package provider

import "fmt"

// ErrorKind classifies provider failures. The resolver treats every kind the
// same (soft-fail, continue down the chain); the API boundary uses the kind
// to phrase user-facing messages.
type ErrorKind string

const (
	KindNetwork       ErrorKind = "network"
	KindServer        ErrorKind = "server"
	KindParse         ErrorKind = "parse"
	KindNotFound      ErrorKind = "not_found"
	KindInvalidConfig ErrorKind = "invalid_config"
	KindOther         ErrorKind = "other"
)

// Error is the typed failure every provider operation returns.
type Error struct {
	Kind       ErrorKind
	StatusCode int // set for KindServer only
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServer:
		return fmt.Sprintf("server error: %d - %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NetworkError(err error, format string, args ...any) *Error {
	return &Error{Kind: KindNetwork, Message: fmt.Sprintf(format, args...), Err: err}
}

func ServerError(statusCode int, format string, args ...any) *Error {
	return &Error{Kind: KindServer, StatusCode: statusCode, Message: fmt.Sprintf(format, args...)}
}

func ParseError(err error, format string, args ...any) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidConfigError(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidConfig, Message: fmt.Sprintf(format, args...)}
}

func OtherError(format string, args ...any) *Error {
	return &Error{Kind: KindOther, Message: fmt.Sprintf(format, args...)}
}
