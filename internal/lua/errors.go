package lua

import "errors"

var (
	// ErrNilRuntime is returned when a nil runtime is passed to RegisterAPI
	// and by Runtime methods called after Close.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrFunctionNotFound is returned by CallFunction for an undefined global.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrResourceLimit is returned when a script exceeds its CPU or memory limit.
	ErrResourceLimit = errors.New("Lua resource limit exceeded")
)
