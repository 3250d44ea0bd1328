package mcmc

import (
	"gonum.org/v1/gonum/mat"
)

// ProposalRV is a proposal random vector produced by a transition
// kernel: candidates are drawn from it and its log-density backs the
// non-symmetric acceptance-ratio terms.
type ProposalRV interface {
	// Realization draws a candidate into dst and returns it.
	Realization(dst []float64) []float64
	// LnValue returns the log-density at v.
	LnValue(v []float64) float64
}

// TransitionKernel produces candidate proposals for the sampler. It is
// a closed family of two variants: the scaled-covariance Gaussian
// kernel and the Hessian-based kernel. Pre-computing positions are the
// per-stage conditioning points of the proposal densities.
type TransitionKernel interface {
	// SetPreComputingPosition caches v at local stage slot stageID.
	// It reports false when the kernel cannot be conditioned at v
	// (for example an ill-defined Hessian).
	SetPreComputingPosition(v []float64, stageID int) bool
	// ClearPreComputingPositions drops all cached positions.
	ClearPreComputingPositions()
	// PreComputingPosition returns the cached position of a stage.
	PreComputingPosition(stageID int) []float64
	// RV returns the proposal conditioned on the stage's cached
	// position, with the stage's covariance.
	RV(stageID int) ProposalRV
	// RVs returns the delayed-rejection proposal for a stage-id
	// list: conditioned on the first listed stage's position, with
	// the covariance of stage len(stageIDs)-1.
	RVs(stageIDs []int) ProposalRV
	// Symmetric reports whether the proposal density satisfies
	// q(a,b) = q(b,a), letting the acceptance ratio drop the kernel
	// terms.
	Symmetric() bool
}

// scaleSym returns f*a as a new symmetric matrix.
func scaleSym(a mat.Symmetric, f float64) *mat.SymDense {
	n := a.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, f*a.At(i, j))
		}
	}
	return out
}

// addRidge returns a + eps*I as a new symmetric matrix.
func addRidge(a mat.Symmetric, eps float64) *mat.SymDense {
	n := a.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := a.At(i, j)
			if i == j {
				v += eps
			}
			out.SetSym(i, j, v)
		}
	}
	return out
}
