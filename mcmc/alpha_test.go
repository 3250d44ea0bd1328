package mcmc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/thelegend6420/queso/dist"
	"github.com/thelegend6420/queso/env"
)

// stdNormalTarget is a standard normal log-target with a flat prior.
func stdNormalTarget(v []float64) (logPrior, logLikelihood float64) {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return 0, -0.5 * sum
}

func identitySym(dim int, scale float64) *mat.SymDense {
	m := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		m.SetSym(i, i, scale)
	}
	return m
}

func newTestSampler(t *testing.T, opts *Options, dim int) *Sampler {
	t.Helper()
	e := env.NewSerial(42)
	s, err := NewSampler(e, opts, dist.NewUnboundedDomain(dim), stdNormalTarget,
		make([]float64, dim), identitySym(dim, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func position(v []float64, logTarget float64) *Position {
	return NewPosition(v, false, logTarget, logTarget)
}

func TestAlphaSymmetricEquivalence(t *testing.T) {
	opts := DefaultOptions()
	s := newTestSampler(t, opts, 1)

	cases := []struct{ lx, ly float64 }{
		{-1, -2}, {-2, -1}, {-5, -5}, {0, -100}, {-100, 0},
	}
	for _, c := range cases {
		x := position([]float64{0}, c.lx)
		y := position([]float64{1}, c.ly)
		s.tk.ClearPreComputingPositions()
		s.tk.SetPreComputingPosition(x.Values, 0)
		s.tk.SetPreComputingPosition(y.Values, 1)

		got := s.Alpha(x, y, 0, 1)
		want := math.Min(1, math.Exp(c.ly-c.lx))
		if math.Abs(got-want) > 1e-14 {
			t.Errorf("alpha(%v,%v) = %v, expected %v", c.lx, c.ly, got, want)
		}
		if got < 0 || got > 1 {
			t.Errorf("alpha out of [0,1]: %v", got)
		}
	}
}

func TestAlphaOutOfSupportIsZero(t *testing.T) {
	s := newTestSampler(t, DefaultOptions(), 1)
	x := position([]float64{0}, -1)
	y := NewPosition([]float64{1}, true, math.Inf(-1), math.Inf(-1))
	if a := s.Alpha(x, y, 0, 1); a != 0 {
		t.Errorf("alpha with out-of-support candidate = %v, expected 0", a)
	}
	if a := s.Alpha(y, x, 0, 1); a != 0 {
		t.Errorf("alpha with out-of-support current = %v, expected 0", a)
	}
}

func TestAlphaNonFiniteLogTargetIsZero(t *testing.T) {
	s := newTestSampler(t, DefaultOptions(), 1)
	x := position([]float64{0}, -1)
	for _, bad := range []float64{math.Inf(-1), math.Inf(1), math.NaN()} {
		y := position([]float64{1}, bad)
		if a := s.Alpha(x, y, 0, 1); a != 0 {
			t.Errorf("alpha with logTarget %v = %v, expected 0", bad, a)
		}
	}
}

func TestAlphaDRBoundary(t *testing.T) {
	opts := DefaultOptions()
	opts.DrMaxNumExtraStages = 1
	opts.DrScalesForExtraStages = []float64{3}
	s := newTestSampler(t, opts, 1)

	x := position([]float64{0.2}, -0.02)
	y := position([]float64{1.5}, -1.125)
	s.tk.SetPreComputingPosition(x.Values, 0)
	s.tk.SetPreComputingPosition(y.Values, 1)

	single := s.Alpha(x, y, 0, 1)
	viaDR := s.AlphaDR([]*Position{x, y}, []int{0, 1})
	if single != viaDR {
		t.Errorf("two-position DR alpha %v differs from single-stage alpha %v", viaDR, single)
	}
}

func TestAlphaDRBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.DrMaxNumExtraStages = 2
	opts.DrScalesForExtraStages = []float64{3, 5}
	s := newTestSampler(t, opts, 1)

	x0 := position([]float64{0}, -0.0)
	y1 := position([]float64{2}, -2.0)
	y2 := position([]float64{0.5}, -0.125)
	s.tk.SetPreComputingPosition(x0.Values, 0)
	s.tk.SetPreComputingPosition(y1.Values, 1)
	s.tk.SetPreComputingPosition(y2.Values, 2)

	a := s.AlphaDR([]*Position{x0, y1, y2}, []int{0, 1, 2})
	if a < 0 || a > 1 {
		t.Errorf("DR alpha out of [0,1]: %v", a)
	}
}

func TestAlphaDROutOfSupportEndpoints(t *testing.T) {
	opts := DefaultOptions()
	opts.DrMaxNumExtraStages = 2
	opts.DrScalesForExtraStages = []float64{3, 5}
	s := newTestSampler(t, opts, 1)

	x0 := position([]float64{0}, -0.0)
	y1 := position([]float64{2}, -2.0)
	bad := NewPosition([]float64{9}, true, math.Inf(-1), math.Inf(-1))
	s.tk.SetPreComputingPosition(x0.Values, 0)
	s.tk.SetPreComputingPosition(y1.Values, 1)
	s.tk.SetPreComputingPosition(bad.Values, 2)

	if a := s.AlphaDR([]*Position{x0, y1, bad}, []int{0, 1, 2}); a != 0 {
		t.Errorf("DR alpha with out-of-support last position = %v, expected 0", a)
	}
}

// With a constant Hessian the kernel's covariance does not move with
// the conditioning position, so the non-symmetric alpha must agree
// with the symmetric formula.
func TestAlphaConstantHessianMatchesSymmetric(t *testing.T) {
	e := env.NewSerial(42)
	opts := DefaultOptions()
	opts.TkUseLocalHessian = true
	hessian := func(v []float64, h *mat.SymDense) bool {
		h.SetSym(0, 0, 1)
		return true
	}
	s, err := NewSampler(e, opts, dist.NewUnboundedDomain(1), stdNormalTarget,
		[]float64{0}, nil, hessian)
	if err != nil {
		t.Fatal(err)
	}
	if s.tk.Symmetric() {
		t.Fatal("Hessian kernel should not report symmetric")
	}

	x := position([]float64{0.3}, -0.045)
	y := position([]float64{-0.7}, -0.245)
	s.tk.SetPreComputingPosition(x.Values, 0)
	s.tk.SetPreComputingPosition(y.Values, 1)

	got := s.Alpha(x, y, 0, 1)
	want := math.Min(1, math.Exp(y.LogTarget-x.LogTarget))
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("constant-Hessian alpha = %v, expected %v", got, want)
	}
}
