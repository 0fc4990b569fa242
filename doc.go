// Package mexer implements a small calculator language over float64, for
// evaluating one expression or sampling it at many values of x.
//
// Syntax is the arithmetic you would write in your notes. The operators are
// + - * / % and ^, where "a^b" is exponentiation and binds tightest, so
// "-2^2" is "-(2^2)". Juxtaposition multiplies: "2x", "2(3+4)", and "3 pi"
// are all products. A name directly followed by parentheses is a call if the
// name is a function and a product if it is a variable.
//
// A program is a list of statements separated by semicolons. A statement is
// an expression, an assignment "y = 2x", or a function definition
// "f(a, b) = a^2 + b". Assignments and definitions persist in the Session's
// Env, so later programs can use them. The value of a program is the value of
// its last statement; definitions have the value 0.
//
// For plotting, Session.Prepare parses a program once and returns a Plot that
// evaluates its last statement with x bound to each sample. Points that fail
// or are not finite become NaN instead of errors.
package mexer
