package mcmc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/thelegend6420/queso/env"
)

// ScaledCovTK is the scaled-covariance Gaussian transition kernel. The
// stage-0 proposal is N(x, cov); the delayed-rejection stage-k
// proposal divides the covariance by the square of the k-th scale
// factor. The kernel is symmetric.
type ScaledCovTK struct {
	env    *env.Environment
	dim    int
	scales []float64
	cov    *mat.SymDense
	chols  []*mat.Cholesky

	positions [][]float64
}

// NewScaledCovTK creates the kernel with the given initial proposal
// covariance and delayed-rejection scales (one per extra stage). It
// fails when the covariance is not positive definite.
func NewScaledCovTK(e *env.Environment, dim int, drScales []float64, cov *mat.SymDense) (*ScaledCovTK, error) {
	if cov == nil {
		return nil, e.Errorf("scaled-covariance kernel needs a proposal covariance matrix")
	}
	if cov.SymmetricDim() != dim {
		return nil, e.Errorf("proposal covariance is %dx%d, expected %dx%d",
			cov.SymmetricDim(), cov.SymmetricDim(), dim, dim)
	}
	tk := &ScaledCovTK{
		env:    e,
		dim:    dim,
		scales: append([]float64{1}, drScales...),
	}
	if err := tk.UpdateLawCovMatrix(cov); err != nil {
		return nil, err
	}
	return tk, nil
}

// UpdateLawCovMatrix replaces the stage-0 proposal covariance and
// refactorizes all stage covariances. The matrix must be positive
// definite; adapted matrices pass the positive-definiteness gate
// before they reach here.
func (tk *ScaledCovTK) UpdateLawCovMatrix(cov *mat.SymDense) error {
	chols := make([]*mat.Cholesky, len(tk.scales))
	for k, scale := range tk.scales {
		var ch mat.Cholesky
		if !ch.Factorize(scaleSym(cov, 1/(scale*scale))) {
			return fmt.Errorf("proposal covariance is not positive definite at stage %d", k)
		}
		chols[k] = &ch
	}
	tk.cov = mat.NewSymDense(tk.dim, nil)
	tk.cov.CopySym(cov)
	tk.chols = chols
	return nil
}

// LawCovMatrix returns a copy of the current stage-0 covariance.
func (tk *ScaledCovTK) LawCovMatrix() *mat.SymDense {
	out := mat.NewSymDense(tk.dim, nil)
	out.CopySym(tk.cov)
	return out
}

// SetPreComputingPosition caches v at the stage slot. For this kernel
// every position is valid.
func (tk *ScaledCovTK) SetPreComputingPosition(v []float64, stageID int) bool {
	for len(tk.positions) <= stageID {
		tk.positions = append(tk.positions, nil)
	}
	tk.positions[stageID] = append([]float64(nil), v...)
	return true
}

// ClearPreComputingPositions drops all cached positions.
func (tk *ScaledCovTK) ClearPreComputingPositions() {
	tk.positions = tk.positions[:0]
}

// PreComputingPosition returns the cached position of a stage.
func (tk *ScaledCovTK) PreComputingPosition(stageID int) []float64 {
	return tk.positions[stageID]
}

// RV returns the Gaussian proposal centered at the stage's cached
// position with the stage's scaled covariance.
func (tk *ScaledCovTK) RV(stageID int) ProposalRV {
	return tk.gaussian(tk.positions[stageID], stageID)
}

// RVs returns the delayed-rejection proposal for a stage-id list:
// centered at the first listed stage's position, with the covariance
// of stage len(stageIDs)-1.
func (tk *ScaledCovTK) RVs(stageIDs []int) ProposalRV {
	if len(stageIDs) == 0 {
		panic("empty stage id list")
	}
	return tk.gaussian(tk.positions[stageIDs[0]], len(stageIDs)-1)
}

// Symmetric reports true: Gaussian proposals centered at the
// conditioning position cancel in the acceptance ratio.
func (tk *ScaledCovTK) Symmetric() bool { return true }

func (tk *ScaledCovTK) gaussian(mean []float64, stage int) ProposalRV {
	if stage >= len(tk.chols) {
		stage = len(tk.chols) - 1
	}
	n := distmv.NewNormalChol(mean, tk.chols[stage], tk.env.RandSource())
	return gaussianRV{n}
}

// gaussianRV adapts a multivariate normal to the ProposalRV surface.
type gaussianRV struct {
	normal *distmv.Normal
}

func (g gaussianRV) Realization(dst []float64) []float64 { return g.normal.Rand(dst) }
func (g gaussianRV) LnValue(v []float64) float64         { return g.normal.LogProb(v) }
