package mcmc

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/thelegend6420/queso/env"
)

// HessianFunc fills h with the local Hessian of the negative
// log-target at v. It reports false when the Hessian is undefined or
// unusable at v.
type HessianFunc func(v []float64, h *mat.SymDense) bool

// HessianTK is the Hessian-based transition kernel: each stage's
// proposal is a Gaussian centered at the stage's conditioning position
// with covariance equal to the inverse local Hessian there, tightened
// by the stage scale. The kernel is non-symmetric in general.
type HessianTK struct {
	env     *env.Environment
	dim     int
	scales  []float64
	hessian HessianFunc

	positions  [][]float64
	precisions []*mat.SymDense
}

// NewHessianTK creates the kernel from a user-supplied local Hessian
// evaluator.
func NewHessianTK(e *env.Environment, dim int, drScales []float64, hessian HessianFunc) *HessianTK {
	if hessian == nil {
		panic("hessian function should not be nil")
	}
	return &HessianTK{
		env:     e,
		dim:     dim,
		scales:  append([]float64{1}, drScales...),
		hessian: hessian,
	}
}

// SetPreComputingPosition caches v at the stage slot along with the
// local Hessian there. It reports false when the Hessian is undefined
// or not positive definite, which makes the stage invalid.
func (tk *HessianTK) SetPreComputingPosition(v []float64, stageID int) bool {
	h := mat.NewSymDense(tk.dim, nil)
	if !tk.hessian(v, h) {
		return false
	}
	var ch mat.Cholesky
	if !ch.Factorize(h) {
		return false
	}
	for len(tk.positions) <= stageID {
		tk.positions = append(tk.positions, nil)
		tk.precisions = append(tk.precisions, nil)
	}
	tk.positions[stageID] = append([]float64(nil), v...)
	tk.precisions[stageID] = h
	return true
}

// ClearPreComputingPositions drops all cached positions and Hessians.
func (tk *HessianTK) ClearPreComputingPositions() {
	tk.positions = tk.positions[:0]
	tk.precisions = tk.precisions[:0]
}

// PreComputingPosition returns the cached position of a stage.
func (tk *HessianTK) PreComputingPosition(stageID int) []float64 {
	return tk.positions[stageID]
}

// RV returns the Gaussian proposal of a stage.
func (tk *HessianTK) RV(stageID int) ProposalRV {
	return tk.gaussian(stageID, stageID)
}

// RVs returns the delayed-rejection proposal for a stage-id list.
func (tk *HessianTK) RVs(stageIDs []int) ProposalRV {
	if len(stageIDs) == 0 {
		panic("empty stage id list")
	}
	return tk.gaussian(stageIDs[0], len(stageIDs)-1)
}

// Symmetric reports false: the covariance moves with the conditioning
// position.
func (tk *HessianTK) Symmetric() bool { return false }

func (tk *HessianTK) gaussian(positionStage, covStage int) ProposalRV {
	if covStage >= len(tk.scales) {
		covStage = len(tk.scales) - 1
	}
	scale := tk.scales[covStage]
	// Covariance H^-1 / scale^2 means precision scale^2 * H.
	prec := scaleSym(tk.precisions[positionStage], scale*scale)
	n, ok := distmv.NewNormalPrecision(tk.positions[positionStage], prec, tk.env.RandSource())
	if !ok {
		// The precision was checked for positive definiteness when
		// the position was cached.
		panic("hessian precision lost positive definiteness")
	}
	return gaussianRV{n}
}
