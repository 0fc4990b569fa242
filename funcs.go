package mexer

import "math"

// Func is a built-in function from reals to reals. User-defined functions
// take precedence over built-in functions with the same name.
type Func interface {
	// Call evaluates the function. args has a length for which CanCall
	// returned true. Out-of-domain arguments should produce NaN rather than
	// an error, following IEEE semantics.
	Call(args []float64) float64

	// CanCall returns whether the function can be called with n arguments.
	// Calls with any other number of arguments fail with a *CallError.
	CanCall(n int) bool
}

var globalfuncs = map[string]Func{
	"exp":   Monadic(math.Exp),
	"ln":    Monadic(math.Log),
	"log":   logfn{},
	"sqrt":  Monadic(math.Sqrt),
	"abs":   Monadic(math.Abs),
	"floor": Monadic(math.Floor),
	"ceil":  Monadic(math.Ceil),
	"round": Monadic(math.Round),

	// trig
	"cos":  Monadic(math.Cos),
	"sin":  Monadic(math.Sin),
	"tan":  Monadic(math.Tan),
	"acos": Monadic(math.Acos),
	"asin": Monadic(math.Asin),
	"atan": Monadic(math.Atan),
	"cosh": Monadic(math.Cosh),
	"sinh": Monadic(math.Sinh),
	"tanh": Monadic(math.Tanh),

	"min": Dyadic(math.Min),
	"max": Dyadic(math.Max),
}

// globalconsts are looked up after variables, so assigning to one of these
// names shadows it.
var globalconsts = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// DisableDefaultFuncs returns a functions map suitable for disabling all
// default functions when passed to Funcs.
func DisableDefaultFuncs() map[string]Func {
	m := make(map[string]Func, len(globalfuncs))
	for k := range globalfuncs {
		m[k] = nil
	}
	return m
}

type monadic struct {
	f func(float64) float64
}

func (m monadic) Call(args []float64) float64 {
	return m.f(args[0])
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func.
func Monadic(f func(float64) float64) Func {
	return monadic{f}
}

type dyadic struct {
	f func(a, b float64) float64
}

func (d dyadic) Call(args []float64) float64 {
	return d.f(args[0], args[1])
}

func (d dyadic) CanCall(n int) bool {
	return n == 2
}

// Dyadic wraps a function of two variables into a Func.
func Dyadic(f func(a, b float64) float64) Func {
	return dyadic{f}
}

// logfn is log(x), the common logarithm, or log(x, b), the logarithm of x to
// base b.
type logfn struct{}

func (logfn) Call(args []float64) float64 {
	if len(args) == 1 {
		return math.Log10(args[0])
	}
	return math.Log(args[0]) / math.Log(args[1])
}

func (logfn) CanCall(n int) bool {
	return n == 1 || n == 2
}
