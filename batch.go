package mexer

import (
	"context"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PlotVar is the name of the variable bound to each sample in a Plot.
const PlotVar = "x"

// Plot is an expression prepared for evaluation at many values of x.
//
// The plot variable is a transient binding: it shadows any persistent x and
// is visible inside user-defined functions, but it never changes the session
// environment.
type Plot struct {
	s    *Session
	expr *node
}

// zero is the expression a Plot samples when its program ends with a
// function definition, matching the value of the definition statement.
var zero = &node{kind: nodeNum, name: "0"}

// Prepare parses src and runs every statement except the last against the
// session's persistent environment, once. The last statement becomes the
// plotted expression. If the last statement is an assignment, its right-hand
// side is plotted without being stored; if it is a function definition, the
// definition is run and the plot is zero everywhere.
//
// Since the leading statements run on the persistent environment, preparing a
// plot can change the session just like Exec.
func (s *Session) Prepare(src string) (*Plot, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	ev := s.evaluator(nil)
	last := len(prog.stmts) - 1
	for _, n := range prog.stmts[:last] {
		if _, err := ev.stmt(n); err != nil {
			return nil, err
		}
	}
	p := Plot{s: s}
	switch n := prog.stmts[last]; n.kind {
	case nodeAssign:
		p.expr = n.left
	case nodeDef:
		if _, err := ev.stmt(n); err != nil {
			return nil, err
		}
		p.expr = zero
	default:
		p.expr = n
	}
	return &p, nil
}

// At evaluates the plot with x bound to a value.
func (p *Plot) At(x float64) (float64, error) {
	sc := &scope{names: []string{PlotVar}, vals: []float64{x}}
	return p.s.evaluator(sc).eval(p.expr, sc)
}

// Many evaluates the plot at each of xs. A point whose evaluation fails or
// whose value is not finite is NaN in the result.
func (p *Plot) Many(xs []float64) []float64 {
	r := make([]float64, len(xs))
	failed := p.fill(r, xs, nil)
	p.s.log.Debug("evaluated plot", zap.Int("points", len(xs)), zap.Int("failed", failed))
	return r
}

// ManyParallel is like Many, but splits xs among up to workers goroutines.
// Each goroutine has its own binding of x and only reads the environment.
// The error is non-nil only if ctx is canceled before evaluation finishes.
func (p *Plot) ManyParallel(ctx context.Context, xs []float64, workers int) ([]float64, error) {
	if workers < 1 {
		workers = 1
	}
	r := make([]float64, len(xs))
	chunk := (len(xs) + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(xs); lo += chunk {
		hi := lo + chunk
		if hi > len(xs) {
			hi = len(xs)
		}
		out, in := r[lo:hi], xs[lo:hi]
		g.Go(func() error {
			p.fill(out, in, ctx.Done())
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.s.log.Debug("evaluated plot in parallel", zap.Int("points", len(xs)), zap.Int("workers", workers))
	return r, nil
}

// fill evaluates the plot at each of xs into out and returns the number of
// points that are NaN. If done is closed, fill stops early.
func (p *Plot) fill(out, xs []float64, done <-chan struct{}) int {
	sc := &scope{names: []string{PlotVar}, vals: []float64{0}}
	ev := p.s.evaluator(sc)
	failed := 0
	for i, x := range xs {
		if done != nil && i%1024 == 0 {
			select {
			case <-done:
				return failed
			default:
			}
		}
		sc.vals[0] = x
		v, err := ev.eval(p.expr, sc)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			v = math.NaN()
			failed++
		}
		out[i] = v
	}
	return failed
}

// EvaluateMany evaluates src at each of xs. The result has the same length as
// xs. If src cannot be prepared, every point is NaN; otherwise points that
// fail are NaN individually.
func (s *Session) EvaluateMany(src string, xs []float64) []float64 {
	p, err := s.Prepare(src)
	if err != nil {
		s.log.Debug("could not prepare plot", zap.String("expr", src), zap.Error(err))
		r := make([]float64, len(xs))
		for i := range r {
			r[i] = math.NaN()
		}
		return r
	}
	return p.Many(xs)
}
