package mcmc

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/thelegend6420/queso/env"
	"github.com/thelegend6420/queso/sequence"
)

func randomSubChain(e *env.Environment, dim, size int, seed uint64) *sequence.VectorSequence {
	rng := rand.New(rand.NewSource(seed))
	s := sequence.NewVectorSequence(e, dim, size, "partialChain")
	v := make([]float64, dim)
	for i := 0; i < size; i++ {
		for j := range v {
			v[j] = rng.NormFloat64()
		}
		s.SetPositionValues(i, v)
	}
	return s
}

func subWindow(e *env.Environment, src *sequence.VectorSequence, start, count int) *sequence.VectorSequence {
	out := sequence.NewVectorSequence(e, src.Dim(), count, "partialChain")
	for i := 0; i < count; i++ {
		out.SetPositionValues(i, src.PositionValues(start+i, nil))
	}
	return out
}

func TestAdaptationRecurrenceSplitInvariance(t *testing.T) {
	e := env.NewSerial(1)
	const dim = 2
	const total = 40
	chain := randomSubChain(e, dim, total, 17)

	whole := newTestSampler(t, DefaultOptions(), dim)
	if err := whole.updateAdaptedCovMatrix(chain, 0); err != nil {
		t.Fatal(err)
	}

	halves := newTestSampler(t, DefaultOptions(), dim)
	if err := halves.updateAdaptedCovMatrix(subWindow(e, chain, 0, total/2), 0); err != nil {
		t.Fatal(err)
	}
	if err := halves.updateAdaptedCovMatrix(subWindow(e, chain, total/2, total/2), total/2); err != nil {
		t.Fatal(err)
	}

	if whole.lastChainSize != halves.lastChainSize {
		t.Errorf("chain sizes differ: %v vs %v", whole.lastChainSize, halves.lastChainSize)
	}
	for j := 0; j < dim; j++ {
		if math.Abs(whole.lastMean[j]-halves.lastMean[j]) > 1e-10 {
			t.Errorf("mean component %d differs: %v vs %v", j, whole.lastMean[j], halves.lastMean[j])
		}
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			a := whole.lastAdaptedCov.At(i, j)
			b := halves.lastAdaptedCov.At(i, j)
			if math.Abs(a-b) > 1e-10 {
				t.Errorf("covariance (%d,%d) differs: %v vs %v", i, j, a, b)
			}
		}
	}
}

func TestAdaptationBootstrapNeedsTwoPositions(t *testing.T) {
	e := env.NewSerial(1)
	s := newTestSampler(t, DefaultOptions(), 1)
	if err := s.updateAdaptedCovMatrix(randomSubChain(e, 1, 1, 1), 0); err == nil {
		t.Error("expected an error for a bootstrap sub-chain of one position")
	}
}

func TestAdaptationSubsequentNeedsPositiveFirstID(t *testing.T) {
	e := env.NewSerial(1)
	s := newTestSampler(t, DefaultOptions(), 1)
	if err := s.updateAdaptedCovMatrix(randomSubChain(e, 1, 4, 2), 0); err != nil {
		t.Fatal(err)
	}
	if err := s.updateAdaptedCovMatrix(randomSubChain(e, 1, 4, 3), 0); err == nil {
		t.Error("expected an error for a subsequent sub-chain starting at position 0")
	}
}

func TestPDGateRidgeFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.AmEpsilon = 1e-8
	opts.AmEta = 2
	s := newTestSampler(t, opts, 2)

	// A rank-deficient empirical covariance: all mass on one
	// direction.
	singular := mat.NewSymDense(2, []float64{1, 1, 1, 1})
	var chol mat.Cholesky
	if chol.Factorize(singular) {
		t.Fatal("rank-deficient matrix should fail the first Cholesky")
	}
	s.lastAdaptedCov = singular
	s.handAdaptedCovToTK()

	ridged := addRidge(singular, opts.AmEpsilon)
	if !chol.Factorize(ridged) {
		t.Fatal("ridged matrix should pass the second Cholesky")
	}

	got := s.tk.(*ScaledCovTK).LawCovMatrix()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := opts.AmEta * ridged.At(i, j)
			if math.Abs(got.At(i, j)-want) > 1e-15 {
				t.Errorf("law covariance (%d,%d) = %v, expected %v", i, j, got.At(i, j), want)
			}
		}
	}
}

func TestPDGateKeepsCovarianceWhenRidgeFails(t *testing.T) {
	opts := DefaultOptions()
	opts.AmEpsilon = 1e-8
	s := newTestSampler(t, opts, 2)
	before := s.tk.(*ScaledCovTK).LawCovMatrix()

	// Negative definite stays non-PD after a tiny ridge; the kernel
	// must keep its covariance.
	s.lastAdaptedCov = mat.NewSymDense(2, []float64{-1, 0, 0, -1})
	s.handAdaptedCovToTK()

	after := s.tk.(*ScaledCovTK).LawCovMatrix()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if before.At(i, j) != after.At(i, j) {
				t.Errorf("law covariance changed at (%d,%d): %v -> %v",
					i, j, before.At(i, j), after.At(i, j))
			}
		}
	}
}
