package mcmc

import (
	"math"
)

// Alpha computes the single-stage Metropolis-Hastings acceptance
// ratio between the current position x and the candidate y, whose
// proposals were conditioned at stages xStageID and yStageID.
func (s *Sampler) Alpha(x, y *Position, xStageID, yStageID int) float64 {
	a, _ := s.alphaWithQuotient(x, y, xStageID, yStageID)
	return a
}

func (s *Sampler) alphaWithQuotient(x, y *Position, xStageID, yStageID int) (alpha, quotient float64) {
	if x.OutOfSupport || y.OutOfSupport {
		return 0, 0
	}
	if !finite(x.LogTarget) {
		s.warnBadLogTarget("x", x, y)
		return 0, 0
	}
	if !finite(y.LogTarget) {
		s.warnBadLogTarget("y", x, y)
		return 0, 0
	}

	var logQuotient float64
	if s.tk.Symmetric() {
		logQuotient = y.LogTarget - x.LogTarget
	} else {
		qyx := s.tk.RV(yStageID).LnValue(x.Values)
		qxy := s.tk.RV(xStageID).LnValue(y.Values)
		logQuotient = y.LogTarget + qyx - x.LogTarget - qxy
	}
	// Clamp in log space; the unclamped quotient is bookkeeping only.
	if logQuotient >= 0 {
		return 1, math.Exp(logQuotient)
	}
	quotient = math.Exp(logQuotient)
	return quotient, quotient
}

// AlphaDR computes the delayed-rejection acceptance ratio for the
// visited position list x0, y1, ..., yk and its stage ids. For two
// positions it reduces to the single-stage ratio.
func (s *Sampler) AlphaDR(positions []*Position, stageIDs []int) float64 {
	n := len(positions)
	if n < 2 {
		panic("delayed-rejection alpha needs at least 2 positions")
	}
	if positions[0].OutOfSupport || positions[n-1].OutOfSupport {
		return 0
	}
	if !finite(positions[0].LogTarget) {
		s.warnBadLogTarget("first", positions[0], positions[n-1])
		return 0
	}
	if !finite(positions[n-1].LogTarget) {
		s.warnBadLogTarget("last", positions[0], positions[n-1])
		return 0
	}
	if n == 2 {
		return s.Alpha(positions[0], positions[1], stageIDs[0], stageIDs[1])
	}

	// Forward positions follow the chain as visited; backward
	// positions reverse it.
	forward := append([]*Position(nil), positions...)
	backward := make([]*Position, n)
	forwardIDs := append([]int(nil), stageIDs...)
	backwardIDs := make([]int, n)
	for i := 0; i < n; i++ {
		backward[i] = positions[n-1-i]
		backwardIDs[i] = stageIDs[n-1-i]
	}
	forwardIDsLess1 := forwardIDs[:n-1]
	backwardIDsLess1 := backwardIDs[:n-1]

	// Accumulate the kernel terms iteratively in log space.
	logNumerator := s.tk.RVs(backwardIDsLess1).LnValue(s.tk.PreComputingPosition(backwardIDs[n-1]))
	logDenominator := s.tk.RVs(forwardIDsLess1).LnValue(s.tk.PreComputingPosition(forwardIDs[n-1]))
	alphasNumerator := 1.0
	alphasDenominator := 1.0

	for i := 0; i < n-2; i++ {
		forward = forward[:len(forward)-1]
		backward = backward[:len(backward)-1]

		lastForward := s.tk.PreComputingPosition(forwardIDs[n-2-i])
		lastBackward := s.tk.PreComputingPosition(backwardIDs[n-2-i])

		forwardIDs = forwardIDs[:len(forwardIDs)-1]
		backwardIDs = backwardIDs[:len(backwardIDs)-1]
		forwardIDsLess1 = forwardIDs[:len(forwardIDs)-1]
		backwardIDsLess1 = backwardIDs[:len(backwardIDs)-1]

		logNumerator += s.tk.RVs(backwardIDsLess1).LnValue(lastBackward)
		logDenominator += s.tk.RVs(forwardIDsLess1).LnValue(lastForward)

		alphasNumerator *= 1 - s.AlphaDR(backward, backwardIDs)
		alphasDenominator *= 1 - s.AlphaDR(forward, forwardIDs)
	}

	logNumerator += backward[0].LogTarget
	logDenominator += forward[0].LogTarget

	if alphasDenominator == 0 {
		return 0
	}
	return math.Min(1, (alphasNumerator/alphasDenominator)*math.Exp(logNumerator-logDenominator))
}

// acceptAlpha decides a transition given its acceptance ratio.
func (s *Sampler) acceptAlpha(alpha float64) bool {
	switch {
	case alpha <= 0:
		return false
	case alpha >= 1:
		return true
	default:
		return alpha >= s.env.UniformSample()
	}
}

func (s *Sampler) warnBadLogTarget(which string, x, y *Position) {
	s.env.Warningf("non-finite log-target at %s endpoint (position %d, stage %d): x.logTarget=%v, y.logTarget=%v",
		which, s.positionIDForDebugging, s.stageIDForDebugging, x.LogTarget, y.LogTarget)
}
