package mexer

import (
	"errors"
	"math"
	"strconv"

	"github.com/samber/mo"
)

// Digits is the number of significant digits Format uses for values that are
// not integers.
const Digits = 12

// ErrorPrefix begins every string that FormatError produces.
const ErrorPrefix = "Error"

// Format renders a number for display. Values within a relative 1e-12 of a
// nonzero integer render as that integer. Others render with up to Digits significant
// digits, in exponential form when very large or small.
func Format(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	if v == 0 {
		// No negative zero.
		return "0"
	}
	a := math.Abs(v)
	if r := math.Round(v); r != 0 && a < 1e15 && math.Abs(v-r) <= 1e-12*a {
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', Digits, 64)
}

// FormatError renders an error for display. The result always begins with
// ErrorPrefix.
func FormatError(err error) string {
	var (
		name  *NameError
		fn    *FuncError
		call  *CallError
		depth *DepthError
		lexe  *LexError
	)
	switch {
	case errors.Is(err, ErrDivisionByZero):
		return ErrorPrefix + ": Division by zero"
	case errors.Is(err, ErrModuloByZero):
		return ErrorPrefix + ": Modulo by zero"
	case errors.As(err, &name):
		return ErrorPrefix + ": Undefined variable: " + name.Name
	case errors.As(err, &fn):
		return ErrorPrefix + ": Undefined function: " + fn.Name
	case errors.As(err, &call):
		return ErrorPrefix + ": Arity mismatch: " + call.Error()
	case errors.As(err, &depth):
		return ErrorPrefix + ": Recursion too deep: " + depth.Error()
	case errors.As(err, &lexe):
		return ErrorPrefix + ": Lex error: " + lexe.Error()
	case errors.Is(err, ErrSyntax):
		return ErrorPrefix + ": Syntax error at column " + err.Error()
	default:
		return ErrorPrefix + ": " + err.Error()
	}
}

// FormatResult renders the result of a scalar evaluation for display.
func FormatResult(r mo.Result[float64]) string {
	if r.IsError() {
		return FormatError(r.Error())
	}
	return Format(r.MustGet())
}

// EvaluateExpression runs src and renders its result or error for display.
func (s *Session) EvaluateExpression(src string) string {
	return FormatResult(s.Result(src))
}
