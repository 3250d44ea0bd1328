package invprob

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/thelegend6420/queso/dist"
	"github.com/thelegend6420/queso/env"
	"github.com/thelegend6420/queso/mcmc"
)

func TestSolveWithBayesMetropolisHastings(t *testing.T) {
	e := env.NewSerial(21)
	opts := mcmc.DefaultOptions()
	opts.RawChainSize = 5000
	opts.TotallyMute = true

	domain := dist.NewUnboundedDomain(1)
	prior := dist.GaussianLogPrior([]float64{0}, []float64{10})
	likelihood := func(v []float64) float64 { return -0.5 * v[0] * v[0] }

	p := New(e, opts, domain, prior, likelihood)
	cov := mat.NewSymDense(1, []float64{1})
	if err := p.SolveWithBayesMetropolisHastings([]float64{0}, cov); err != nil {
		t.Fatal(err)
	}

	if p.Chain().SubSequenceSize() != opts.RawChainSize {
		t.Fatalf("chain size %d, expected %d", p.Chain().SubSequenceSize(), opts.RawChainSize)
	}

	// With a wide prior the posterior is close to a standard normal;
	// MLE and MAP positions should sit near the mode.
	mlePositions, mle := p.SubMLE()
	if mlePositions.SubSequenceSize() == 0 {
		t.Fatal("no MLE positions")
	}
	if x := mlePositions.PositionValues(0, nil)[0]; math.Abs(x) > 0.2 {
		t.Errorf("MLE position %v far from the mode", x)
	}
	if mle > 0 {
		t.Errorf("MLE log-likelihood %v above the mode value 0", mle)
	}

	mapPositions, mapValue := p.SubMAP()
	if mapPositions.SubSequenceSize() == 0 {
		t.Fatal("no MAP positions")
	}
	if math.IsInf(mapValue, 0) {
		t.Errorf("MAP value %v not finite", mapValue)
	}

	// The log sequences are companions of the chain.
	if p.LogLikelihoodValues().SubSequenceSize() != opts.RawChainSize {
		t.Error("log-likelihood sequence has the wrong size")
	}
	if p.LogTargetValues().SubSequenceSize() != opts.RawChainSize {
		t.Error("log-target sequence has the wrong size")
	}
}

func TestUnifiedArgmaxSingleRank(t *testing.T) {
	e := env.NewSerial(4)
	opts := mcmc.DefaultOptions()
	opts.RawChainSize = 500
	opts.TotallyMute = true

	p := New(e, opts, dist.NewUnboundedDomain(1), dist.FlatLogPrior(),
		func(v []float64) float64 { return -0.5 * v[0] * v[0] })
	if err := p.SolveWithBayesMetropolisHastings([]float64{0}, mat.NewSymDense(1, []float64{1})); err != nil {
		t.Fatal(err)
	}

	subPositions, subMax := p.SubMLE()
	uniPositions, uniMax := p.UnifiedMLE()
	if subMax != uniMax {
		t.Errorf("single-rank unified max %v differs from sub max %v", uniMax, subMax)
	}
	if subPositions.SubSequenceSize() != uniPositions.SubSequenceSize() {
		t.Errorf("single-rank unified argmax count differs from sub count")
	}
}
