package mexer

import (
	"errors"
	"strconv"
)

var (
	// ErrDivisionByZero is the error from dividing by exactly zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrModuloByZero is the error from taking a remainder modulo exactly
	// zero.
	ErrModuloByZero = errors.New("modulo by zero")
)

// NameError is an error from a lookup for a variable that is missing from the
// evaluation scope and environment.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// FuncError is an error from a call to a name that is neither a function nor,
// for a single argument, a variable to multiply.
type FuncError struct {
	// Name is the function name that was missing.
	Name string
}

func (err *FuncError) Error() string {
	return "undefined function: " + strconv.Quote(err.Name)
}

// CallError is an error indicating a function call with the wrong number of
// arguments.
type CallError struct {
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments in the call.
	Len int
	// Want is the number of parameters of a user-defined function, or -1 for
	// a built-in function.
	Want int
}

func (err *CallError) Error() string {
	s := "cannot call " + err.Func + " with " + strconv.Itoa(err.Len) + " arguments"
	if err.Want >= 0 {
		s += " (want " + strconv.Itoa(err.Want) + ")"
	}
	return s
}

// DepthError is an error indicating that user-defined functions called each
// other too deeply, which always means unbounded recursion.
type DepthError struct {
	// Func is the function whose call exceeded the limit.
	Func string
	// Depth is the limit.
	Depth int
}

func (err *DepthError) Error() string {
	return "call depth " + strconv.Itoa(err.Depth) + " exceeded calling " + err.Func
}
