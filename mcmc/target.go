package mcmc

import (
	"github.com/thelegend6420/queso/env"
)

// TargetFunc evaluates the user's model at a parameter vector and
// returns the log-prior and log-likelihood contributions. Under the
// minus-2-ln convention both values are -2 ln densities. When a
// sub-environment spans several ranks the function is invoked on every
// rank with the same vector and may perform collective work on the sub
// communicator.
type TargetFunc func(v []float64) (logPrior, logLikelihood float64)

// Broadcast header values of the synchronizer protocol.
const (
	opExit = 0.0
	opEval = 1.0
)

// TargetSynchronizer wraps a TargetFunc into a collective-safe scalar
// target evaluation. When a sub-environment has a single rank calls
// are plain function calls. Otherwise sub rank 0 drives: it broadcasts
// each evaluation request to the sub communicator, the other ranks sit
// in WaitCollective serving requests, and ReleaseCollective sends the
// sentinel that lets them return.
type TargetSynchronizer struct {
	env      *env.Environment
	target   TargetFunc
	minus2Ln bool
	dim      int

	numCollectiveCalls uint64
}

// NewTargetSynchronizer creates a synchronizer for a target of the
// given dimension.
func NewTargetSynchronizer(e *env.Environment, target TargetFunc, dim int, minus2Ln bool) *TargetSynchronizer {
	return &TargetSynchronizer{env: e, target: target, minus2Ln: minus2Ln, dim: dim}
}

// CallTarget evaluates the target at v and returns the log-target,
// log-prior and log-likelihood in natural-log units. On a multi-rank
// sub-environment only sub rank 0 may call it.
func (s *TargetSynchronizer) CallTarget(v []float64) (logTarget, logPrior, logLikelihood float64) {
	if s.env.SubComm().NumProc() > 1 {
		buf := make([]float64, 0, 1+len(v))
		buf = append(buf, opEval)
		buf = append(buf, v...)
		s.env.SubComm().BcastFloat64s(buf, 0)
	}
	s.numCollectiveCalls++
	logPrior, logLikelihood = s.target(v)
	if s.minus2Ln {
		logPrior *= -0.5
		logLikelihood *= -0.5
	}
	logTarget = logPrior + logLikelihood
	return logTarget, logPrior, logLikelihood
}

// WaitCollective is the non-driving ranks' side of the protocol: it
// serves broadcast evaluation requests until the sentinel arrives.
func (s *TargetSynchronizer) WaitCollective() {
	for {
		buf := s.env.SubComm().BcastFloat64s(nil, 0)
		s.numCollectiveCalls++
		if buf[0] == opExit {
			return
		}
		s.target(buf[1:])
	}
}

// ReleaseCollective broadcasts the no-op sentinel that releases ranks
// blocked in WaitCollective. Only the driving rank calls it, once,
// after its last CallTarget.
func (s *TargetSynchronizer) ReleaseCollective() {
	s.env.SubComm().BcastFloat64s([]float64{opExit}, 0)
	s.numCollectiveCalls++
}

// NumCollectiveCalls returns the number of protocol rounds this rank
// took part in.
func (s *TargetSynchronizer) NumCollectiveCalls() uint64 { return s.numCollectiveCalls }
