package mexer_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/mexer"
)

func xs(n int, lo, hi float64) []float64 {
	r := make([]float64, n)
	for i := range r {
		r[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return r
}

func TestEvaluateManyMatchesScalar(t *testing.T) {
	exprs := []string{
		"x^2 - 3x + 1",
		"sin(x)/x",
		"f(a) = a^2; f(x) + 1",
		"2(x+1)",
		"abs(x) % 0.75",
	}
	pts := xs(41, -5, 5)
	for _, src := range exprs {
		t.Run(src, func(t *testing.T) {
			got := mexer.NewSession().EvaluateMany(src, pts)
			require.Len(t, got, len(pts))
			for i, x := range pts {
				s := mexer.NewSession(mexer.WithEnv(mexer.NewEnv().Set("x", x)))
				want, err := s.Exec(src)
				if err != nil || math.IsInf(want, 0) || math.IsNaN(want) {
					assert.True(t, math.IsNaN(got[i]), "%s at %g: want NaN, got %g", src, x, got[i])
					continue
				}
				assert.InDelta(t, want, got[i], 1e-12, "%s at %g", src, x)
			}
		})
	}
}

func TestEvaluateManyFailures(t *testing.T) {
	s := mexer.NewSession()
	got := s.EvaluateMany("1/x", []float64{-1, 0, 2})
	require.Len(t, got, 3)
	assert.Equal(t, -1.0, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, 0.5, got[2])

	got = s.EvaluateMany("ln(x)", []float64{-1, 0, math.E})
	assert.True(t, math.IsNaN(got[0]), "NaN result")
	assert.True(t, math.IsNaN(got[1]), "infinite result")
	assert.InDelta(t, 1, got[2], 1e-15)

	for _, src := range []string{"(x", "q x", "", "y = 1/0; x"} {
		got = s.EvaluateMany(src, []float64{1, 2})
		require.Len(t, got, 2, src)
		for _, v := range got {
			assert.True(t, math.IsNaN(v), "%q should fail at every point", src)
		}
	}

	assert.Empty(t, s.EvaluateMany("x", nil))
}

func TestEvaluateManyLeavesXAlone(t *testing.T) {
	s := mexer.NewSession()
	_, err := s.Exec("x = 100")
	require.NoError(t, err)
	got := s.EvaluateMany("x + 1", []float64{1, 2})
	assert.Equal(t, []float64{2, 3}, got)
	v, err := s.Env().Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)
}

func TestEvaluateManyXInFunctions(t *testing.T) {
	s := mexer.NewSession()
	_, err := s.Exec("g(a) = a + x")
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 12}, s.EvaluateMany("g(10)", []float64{1, 2}))
}

func TestEvaluateManyStatements(t *testing.T) {
	s := mexer.NewSession()

	// leading statements run once, against the persistent environment
	got := s.EvaluateMany("k = 3; k x", []float64{1, 2})
	assert.Equal(t, []float64{3, 6}, got)
	v, err := s.Env().Lookup("k")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	// a trailing assignment plots its value without storing it
	got = s.EvaluateMany("y = 2x", []float64{1, 2})
	assert.Equal(t, []float64{2, 4}, got)
	_, err = s.Env().Lookup("y")
	assert.Error(t, err)

	// a trailing definition is kept, and its value is 0
	got = s.EvaluateMany("h(a) = a x", []float64{1, 2})
	assert.Equal(t, []float64{0, 0}, got)
	_, err = s.Env().LookupFunc("h")
	assert.NoError(t, err)
}

func TestPlotAt(t *testing.T) {
	s := mexer.NewSession()
	p, err := s.Prepare("x^2")
	require.NoError(t, err)
	v, err := p.At(3)
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	p, err = s.Prepare("1/(x-1)")
	require.NoError(t, err)
	_, err = p.At(1)
	assert.ErrorIs(t, err, mexer.ErrDivisionByZero)

	_, err = s.Prepare("(")
	assert.ErrorIs(t, err, mexer.ErrSyntax)
}

func TestManyParallel(t *testing.T) {
	s := mexer.NewSession()
	p, err := s.Prepare("f(a) = a^3 - a; f(x) / (x - 0.5)")
	require.NoError(t, err)
	pts := xs(5001, -3, 3)
	want := p.Many(pts)
	for _, workers := range []int{0, 1, 3, 8, 10000} {
		got, err := p.ManyParallel(context.Background(), pts, workers)
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			if math.IsNaN(want[i]) {
				assert.True(t, math.IsNaN(got[i]))
				continue
			}
			assert.Equal(t, want[i], got[i], "workers=%d, i=%d", workers, i)
		}
	}
}

func TestManyParallelCanceled(t *testing.T) {
	s := mexer.NewSession()
	p, err := s.Prepare("x")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ManyParallel(ctx, xs(10, 0, 1), 2)
	assert.ErrorIs(t, err, context.Canceled)
}
