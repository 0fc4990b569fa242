// Package sample turns an expression into plot data: it builds the x grid,
// evaluates the expression over it, and finds a y range for display.
package sample

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/zephyrtronium/mexer"
)

// MaxSamples is the default limit on the number of points in a Range.
const MaxSamples = 1_000_000

var (
	// ErrEmptyRange is the error for a range whose maximum does not exceed
	// its minimum.
	ErrEmptyRange = errors.New("x max must be greater than x min")
	// ErrStep is the error for a range with a step that is not positive.
	ErrStep = errors.New("dx must be > 0")
	// ErrBounds is the error for a range with a bound that is NaN or
	// infinite.
	ErrBounds = errors.New("x bounds must be finite")
	// ErrTooManySamples is the error for a range with more points than the
	// limit.
	ErrTooManySamples = errors.New("too many samples")
	// ErrTooFewPoints is the error for a sampled expression with fewer than
	// two finite points.
	ErrTooFewPoints = errors.New("not enough finite points to plot")
)

// Range describes an evenly spaced grid of x values.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
	// Limit is the maximum number of points. Zero means MaxSamples.
	Limit int `json:"-"`
}

// Len returns the number of points in the range. It is only meaningful if
// the range is valid.
func (r Range) Len() int {
	n := math.Ceil((r.Max-r.Min)/r.Step) + 1
	if n < 2 {
		return 2
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// Validate checks that the range describes a usable grid.
func (r Range) Validate() error {
	switch {
	case math.IsNaN(r.Min) || math.IsInf(r.Min, 0) || math.IsNaN(r.Max) || math.IsInf(r.Max, 0):
		return ErrBounds
	case r.Max <= r.Min:
		return ErrEmptyRange
	case !(r.Step > 0) || math.IsInf(r.Step, 0):
		return ErrStep
	}
	limit := r.Limit
	if limit <= 0 {
		limit = MaxSamples
	}
	if n := r.Len(); n > limit {
		return fmt.Errorf("%w: %d points, limit %d", ErrTooManySamples, n, limit)
	}
	return nil
}

// Xs returns the x values of the range. The first is Min and the last is
// exactly Max, even when Step does not divide the span.
func (r Range) Xs() []float64 {
	n := r.Len()
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = r.Min + float64(i)*r.Step
	}
	xs[n-1] = r.Max
	return xs
}

// Point is one finite sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finite pairs xs with ys and drops samples whose y is NaN or infinite.
func Finite(xs, ys []float64) []Point {
	pts := lo.Map(xs, func(x float64, i int) Point { return Point{X: x, Y: ys[i]} })
	return lo.Filter(pts, func(p Point, _ int) bool {
		return !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
	})
}

// Bounds returns a y range that contains every point with some padding. A
// range narrower than 1e-6 is widened to 1. With no points, the range is
// [-1, 1].
func Bounds(pts []Point) (ymin, ymax float64) {
	if len(pts) == 0 {
		return -1, 1
	}
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		ymin = math.Min(ymin, p.Y)
		ymax = math.Max(ymax, p.Y)
	}
	if math.IsInf(ymin, 0) || math.IsInf(ymax, 0) {
		return -1, 1
	}
	if ymax-ymin < 1e-6 {
		ymax = ymin + 1
	}
	pad := (ymax - ymin) * 0.05
	return ymin - pad, ymax + pad
}

// Series is a sampled expression ready to draw.
type Series struct {
	Expr   string  `json:"expr"`
	Points []Point `json:"points"`
	// Failed is the number of samples that were dropped.
	Failed int     `json:"failed"`
	YMin   float64 `json:"ymin"`
	YMax   float64 `json:"ymax"`
}

// Sample evaluates expr over r in sess. Leading statements of expr run once
// against the session environment, as with Session.Prepare.
func Sample(sess *mexer.Session, expr string, r Range) (*Series, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	p, err := sess.Prepare(expr)
	if err != nil {
		return nil, err
	}
	xs := r.Xs()
	pts := Finite(xs, p.Many(xs))
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: %d of %d", ErrTooFewPoints, len(pts), len(xs))
	}
	s := Series{
		Expr:   expr,
		Points: pts,
		Failed: len(xs) - len(pts),
	}
	s.YMin, s.YMax = Bounds(pts)
	return &s, nil
}
