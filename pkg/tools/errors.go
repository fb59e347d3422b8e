package tools

import "errors"

// ErrInvalidParams matches every ParamsError.
var ErrInvalidParams = errors.New("invalid params")

// ParamsError is a tool failure caused by the caller's arguments. Callers
// answering JSON-RPC directly report it as an invalid params error.
type ParamsError string

func (e ParamsError) Error() string {
	return string(e)
}

func (e ParamsError) Is(target error) bool {
	return target == ErrInvalidParams //nolint:errorlint
}
