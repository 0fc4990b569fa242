package mexer_test

import (
	"fmt"
	"math"

	"github.com/zephyrtronium/mexer"
)

// hypot accepts any positive number of arguments.
type hypot struct{}

func (hypot) CanCall(n int) bool {
	return n > 0
}

func (hypot) Call(args []float64) float64 {
	var r float64
	for _, v := range args {
		r += v * v
	}
	return math.Sqrt(r)
}

func ExampleFunc() {
	s := mexer.NewSession(mexer.Funcs(map[string]mexer.Func{"hypot": hypot{}}))
	fmt.Println(s.EvaluateExpression("hypot(3, 4)"))
	fmt.Println(s.EvaluateExpression("hypot(1, 2, 2)"))
	fmt.Println(s.EvaluateExpression("hypot()"))

	// Output:
	// 5
	// 3
	// Error: Arity mismatch: cannot call hypot with 0 arguments
}

func ExampleSession_EvaluateExpression() {
	s := mexer.NewSession()
	fmt.Println(s.EvaluateExpression("2+3*4"))
	fmt.Println(s.EvaluateExpression("f(a) = a^2;"))
	fmt.Println(s.EvaluateExpression("f(3) + 1/3"))
	fmt.Println(s.EvaluateExpression("10/0"))

	// Output:
	// 14
	// 0
	// 9.33333333333
	// Error: Division by zero
}

func ExampleSession_EvaluateMany() {
	s := mexer.NewSession()
	fmt.Println(s.EvaluateMany("1/x", []float64{-2, 0, 4}))

	// Output:
	// [-0.5 NaN 0.25]
}
