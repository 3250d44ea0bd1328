package mcmc

import (
	"gonum.org/v1/gonum/mat"

	"github.com/thelegend6420/queso/sequence"
)

// updateAdaptedCovMatrix folds a sub-chain into the running adaptation
// state (chain size, mean, sample covariance). The first call
// bootstraps the state from a sub-chain of at least two positions;
// later calls apply the position-by-position recurrences, where
// firstID is the global chain id of the sub-chain's first position.
func (s *Sampler) updateAdaptedCovMatrix(partial *sequence.VectorSequence, firstID int) error {
	m := partial.SubSequenceSize()
	dim := partial.Dim()
	buf := make([]float64, dim)

	if s.lastChainSize == 0 {
		if m < 2 {
			return s.env.Errorf("first adaptation sub-chain should have >= 2 positions, got %d", m)
		}
		s.lastMean = partial.SubMeanPlain()
		cov := mat.NewSymDense(dim, nil)
		for i := 0; i < m; i++ {
			partial.PositionValues(i, buf)
			cov.SymRankOne(cov, 1, mat.NewVecDense(dim, buf))
		}
		cov.SymRankOne(cov, -float64(m), mat.NewVecDense(dim, s.lastMean))
		s.lastAdaptedCov = scaleSym(cov, 1/(float64(m)-1))
	} else {
		if m < 1 {
			return s.env.Errorf("adaptation sub-chain should have >= 1 position, got %d", m)
		}
		if firstID < 1 {
			return s.env.Errorf("adaptation sub-chain should start at position >= 1, got %d", firstID)
		}
		diff := make([]float64, dim)
		for i := 0; i < m; i++ {
			g := float64(firstID + i)
			partial.PositionValues(i, buf)
			for j := range diff {
				diff[j] = buf[j] - s.lastMean[j]
			}
			ratio1 := 1 - 1/g
			ratio2 := 1 / (1 + g)
			cov := scaleSym(s.lastAdaptedCov, ratio1)
			cov.SymRankOne(cov, ratio2, mat.NewVecDense(dim, diff))
			s.lastAdaptedCov = cov
			for j := range diff {
				s.lastMean[j] += ratio2 * diff[j]
			}
		}
	}
	s.lastChainSize += float64(m)
	return nil
}

// handAdaptedCovToTK pushes the adapted covariance through the
// positive-definiteness gate and, when it passes, updates the kernel's
// law covariance with the eta-scaled matrix. A matrix that stays
// non-positive-definite after the ridge leaves the kernel unchanged
// for this round; that outcome is expected, not fatal.
func (s *Sampler) handAdaptedCovToTK() {
	attempted := s.lastAdaptedCov
	var chol mat.Cholesky
	if !chol.Factorize(attempted) {
		log.Debugf("adapted covariance not positive definite, retrying with ridge %v", s.opts.AmEpsilon)
		attempted = addRidge(s.lastAdaptedCov, s.opts.AmEpsilon)
		if !chol.Factorize(attempted) {
			s.env.Warningf("adapted covariance still not positive definite after ridge %v; keeping current proposal covariance",
				s.opts.AmEpsilon)
			return
		}
	}
	tk, ok := s.tk.(*ScaledCovTK)
	if !ok {
		return
	}
	if err := tk.UpdateLawCovMatrix(scaleSym(attempted, s.opts.AmEta)); err != nil {
		s.env.Warningf("proposal covariance update rejected: %v", err)
	}
}

// LastAdaptedCovMatrix returns a copy of the current adaptation
// covariance, or nil before the first adaptation.
func (s *Sampler) LastAdaptedCovMatrix() *mat.SymDense {
	if s.lastAdaptedCov == nil {
		return nil
	}
	out := mat.NewSymDense(s.lastAdaptedCov.SymmetricDim(), nil)
	out.CopySym(s.lastAdaptedCov)
	return out
}

// LastAdaptedMean returns a copy of the current adaptation mean, or
// nil before the first adaptation.
func (s *Sampler) LastAdaptedMean() []float64 {
	if s.lastMean == nil {
		return nil
	}
	return append([]float64(nil), s.lastMean...)
}
