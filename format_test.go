package mexer_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"

	"github.com/zephyrtronium/mexer"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-14, "-14"},
		{1002, "1002"},
		{0.1 + 0.2, "0.3"},
		{1 - 1e-14, "1"},
		{0.5, "0.5"},
		{-0.25, "-0.25"},
		{1.0 / 3, "0.333333333333"},
		{math.Pi, "3.14159265359"},
		{123456789012, "123456789012"},
		{1e20, "1e+20"},
		{1.5e-7, "1.5e-07"},
		{1e-13, "1e-13"},
		{-1e-12, "-1e-12"},
		{6.626e-34, "6.626e-34"},
		{math.SmallestNonzeroFloat64, "4.94065645841e-324"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, mexer.Format(c.v), "formatting %v", c.v)
	}
}

func TestFormatError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{mexer.ErrDivisionByZero, "Error: Division by zero"},
		{mexer.ErrModuloByZero, "Error: Modulo by zero"},
		{&mexer.NameError{Name: "q"}, "Error: Undefined variable: q"},
		{&mexer.FuncError{Name: "g"}, "Error: Undefined function: g"},
		{&mexer.CallError{Func: "f", Len: 2, Want: 1}, "Error: Arity mismatch: cannot call f with 2 arguments (want 1)"},
		{&mexer.DepthError{Func: "f", Depth: 4}, "Error: Recursion too deep: call depth 4 exceeded calling f"},
		{&mexer.BracketError{Col: 3, Left: "("}, "Error: Syntax error at column 3: open bracket ( with no close bracket"},
		{errors.New("boom"), "Error: boom"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, mexer.FormatError(c.err))
	}
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "42", mexer.FormatResult(mo.Ok(42.0)))
	assert.Equal(t, "Error: Division by zero", mexer.FormatResult(mo.Err[float64](mexer.ErrDivisionByZero)))
}

func TestEvaluateExpression(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"2+3*4", "14"},
		{"(2+3)*4", "20"},
		{"2(3+4)", "14"},
		{"1e3+2", "1002"},
		{"10/0", "Error: Division by zero"},
		{"5%0", "Error: Modulo by zero"},
		{"q", "Error: Undefined variable: q"},
		{"g(1, 2)", "Error: Undefined function: g"},
		{"", "Error: Syntax error at column 1: no expression"},
		{";;", "Error: Syntax error at column 3: no expression at end"},
		{"2 * (3", "Error: Syntax error at column 5: open bracket ( with no close bracket"},
		{"1 $ 2", "Error: Lex error: invalid character at column 3: \"$\""},
		{"sqrt(-1)", "NaN"},
		{"2^1024", "Infinity"},
		{"-2^1024", "-Infinity"},
		{"0.1+0.2", "0.3"},
		{"1e-13", "1e-13"},
		{"2^-50", "8.881784197e-16"},
		{"3e-12", "3e-12"},
	}
	for _, c := range cases {
		s := mexer.NewSession()
		assert.Equal(t, c.want, s.EvaluateExpression(c.src), "evaluating %q", c.src)
	}
}
