package sequence

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// autoCorrThreshold is the autocorrelation level below which two
// positions are treated as effectively independent when choosing a
// filter spacing.
const autoCorrThreshold = 0.05

// component extracts component j over the window [start, start+count).
func (s *VectorSequence) component(j, start, count int) []float64 {
	out := make([]float64, 0, count)
	for i := start; i < start+count; i++ {
		out = append(out, s.data[i][j])
	}
	return out
}

// autoCorrelation returns the lag-k autocorrelation of xs.
func autoCorrelation(xs []float64, k int) float64 {
	if k >= len(xs) {
		return 0
	}
	mean := stat.Mean(xs, nil)
	variance := stat.Variance(xs, nil)
	if variance == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i+k < len(xs); i++ {
		sum += (xs[i] - mean) * (xs[i+k] - mean)
	}
	return sum / (float64(len(xs)-1) * variance)
}

// ComputeFilterParams chooses filter parameters for the chain: the
// number of initial positions to discard and a spacing at which the
// remaining positions decorrelate. For each component the smallest lag
// at which its autocorrelation drops below the threshold is found
// (capped at maxLag); the spacing is the largest of these lags.
func (s *VectorSequence) ComputeFilterParams(discardedPortion float64, maxLag int) (initial, spacing int) {
	initial = int(discardedPortion * float64(len(s.data)))
	if initial >= len(s.data) {
		initial = len(s.data) - 1
	}
	if maxLag < 1 {
		maxLag = 1
	}
	spacing = 1
	for j := 0; j < s.dim; j++ {
		xs := s.component(j, initial, len(s.data)-initial)
		lag := maxLag
		for k := 1; k <= maxLag; k++ {
			if math.Abs(autoCorrelation(xs, k)) < autoCorrThreshold {
				lag = k
				break
			}
		}
		if lag > spacing {
			spacing = lag
		}
	}
	log.Debugf("filter parameters for %s: initial=%d, spacing=%d", s.name, initial, spacing)
	return initial, spacing
}

// EstimateConvBrooksGelman computes the Brooks-Gelman potential scale
// reduction factor over the window [initialPos, initialPos+numPos)
// across sub-environments, using the within/between-chain variance
// decomposition. All ranks must call it; every rank receives the
// estimate. With fewer than two sub-environments the estimate is
// undefined and NaN is returned.
func (s *VectorSequence) EstimateConvBrooksGelman(initialPos, numPos int) float64 {
	if initialPos < 0 {
		initialPos = 0
	}
	if numPos < 2 || initialPos+numPos > len(s.data) {
		return math.NaN()
	}
	n := float64(numPos)

	// Contribution: per-component mean and variance of this sub-chain
	// window. Ranks past sub rank 0 contribute nothing.
	contrib := make([]float64, 0, 2*s.dim)
	if s.env.SubRank() == 0 {
		for j := 0; j < s.dim; j++ {
			xs := s.component(j, initialPos, numPos)
			contrib = append(contrib, stat.Mean(xs, nil), stat.Variance(xs, nil))
		}
	}
	all := s.env.FullComm().GatherFloat64s(contrib)

	var chains [][]float64
	for _, c := range all {
		if len(c) == 2*s.dim {
			chains = append(chains, c)
		}
	}
	m := float64(len(chains))
	if m < 2 {
		s.env.Warningf("Brooks-Gelman estimate needs at least 2 sub-environments, have %d", len(chains))
		return math.NaN()
	}

	// Max over components of the univariate PSRF.
	psrf := 0.0
	for j := 0; j < s.dim; j++ {
		means := make([]float64, len(chains))
		w := 0.0
		for i, c := range chains {
			means[i] = c[2*j]
			w += c[2*j+1]
		}
		w /= m
		b := n * stat.Variance(means, nil)
		if w == 0 {
			continue
		}
		sigmaHat := (n-1)/n*w + b/n
		r := math.Sqrt((m+1)/m*sigmaHat/w - (n-1)/(m*n))
		if r > psrf {
			psrf = r
		}
	}
	return psrf
}
