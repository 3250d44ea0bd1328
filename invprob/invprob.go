// Package invprob ties a prior random vector and a likelihood routine
// into a statistical inverse problem and solves it with the Bayesian
// Metropolis-Hastings approach, producing a sample-based
// representation of the posterior.
package invprob

import (
	"math"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/mat"

	"github.com/thelegend6420/queso/checkpoint"
	"github.com/thelegend6420/queso/dist"
	"github.com/thelegend6420/queso/env"
	"github.com/thelegend6420/queso/mcmc"
	"github.com/thelegend6420/queso/sequence"
)

// log is the global logging variable.
var log = logging.MustGetLogger("invprob")

// LikelihoodFunc returns the log-likelihood at a parameter vector (or
// -2 ln L under that convention).
type LikelihoodFunc func(v []float64) float64

// StatisticalInverseProblem holds a prior log-density over a domain, a
// likelihood, and the posterior chain produced by solving.
type StatisticalInverseProblem struct {
	env        *env.Environment
	opts       *mcmc.Options
	domain     dist.Domain
	logPrior   dist.LogPdf
	likelihood LikelihoodFunc
	ckpt       *checkpoint.CheckpointIO

	chain      *sequence.VectorSequence
	logLikSeq  *sequence.ScalarSequence
	logTgtSeq  *sequence.ScalarSequence
	sampler    *mcmc.Sampler
}

// New creates a statistical inverse problem.
func New(e *env.Environment, opts *mcmc.Options, domain dist.Domain,
	logPrior dist.LogPdf, likelihood LikelihoodFunc) *StatisticalInverseProblem {
	if logPrior == nil || likelihood == nil {
		panic("prior and likelihood should not be nil")
	}
	return &StatisticalInverseProblem{
		env:        e,
		opts:       opts,
		domain:     domain,
		logPrior:   logPrior,
		likelihood: likelihood,
	}
}

// SetCheckpointIO attaches a resumable checkpoint store, forwarded to
// the sampler.
func (p *StatisticalInverseProblem) SetCheckpointIO(ckpt *checkpoint.CheckpointIO) {
	p.ckpt = ckpt
}

// SolveWithBayesMetropolisHastings constructs the sampler and runs it
// once, filling the posterior chain and its companion sequences.
func (p *StatisticalInverseProblem) SolveWithBayesMetropolisHastings(
	initialPosition []float64, proposalCov *mat.SymDense) error {
	target := func(v []float64) (logPrior, logLikelihood float64) {
		return p.logPrior(v), p.likelihood(v)
	}
	sampler, err := mcmc.NewSampler(p.env, p.opts, p.domain, target,
		initialPosition, proposalCov, nil)
	if err != nil {
		return err
	}
	if p.ckpt != nil {
		sampler.SetCheckpointIO(p.ckpt)
	}
	p.sampler = sampler

	dim := p.domain.Dim()
	p.chain = sequence.NewVectorSequence(p.env, dim, p.opts.RawChainSize, "rawChain")
	p.logLikSeq = sequence.NewScalarSequence(p.env, p.opts.RawChainSize, "rawLogLikelihood")
	p.logTgtSeq = sequence.NewScalarSequence(p.env, p.opts.RawChainSize, "rawLogTarget")

	if err := sampler.GenerateSequence(p.chain, p.logLikSeq, p.logTgtSeq); err != nil {
		return err
	}

	info := sampler.RawChainInfo().CommSum(p.env.FullComm())
	if !p.opts.TotallyMute {
		log.Noticef("Posterior chain generated: %d target calls, %d rejections across all ranks",
			info.NumTargetCalls, info.NumRejections)
	}
	return nil
}

// Chain returns the posterior chain.
func (p *StatisticalInverseProblem) Chain() *sequence.VectorSequence { return p.chain }

// LogLikelihoodValues returns the chain's log-likelihood companion.
func (p *StatisticalInverseProblem) LogLikelihoodValues() *sequence.ScalarSequence {
	return p.logLikSeq
}

// LogTargetValues returns the chain's log-target companion.
func (p *StatisticalInverseProblem) LogTargetValues() *sequence.ScalarSequence {
	return p.logTgtSeq
}

// Sampler returns the underlying sampler, nil before solving.
func (p *StatisticalInverseProblem) Sampler() *mcmc.Sampler { return p.sampler }

// SubMLE returns the maximum-likelihood positions and value over this
// sub-environment's chain.
func (p *StatisticalInverseProblem) SubMLE() (*sequence.VectorSequence, float64) {
	if p.chain == nil {
		return nil, math.Inf(-1)
	}
	return p.chain.SubPositionsOfMaximum(p.logLikSeq)
}

// SubMAP returns the maximum-a-posteriori positions and value over
// this sub-environment's chain.
func (p *StatisticalInverseProblem) SubMAP() (*sequence.VectorSequence, float64) {
	if p.chain == nil {
		return nil, math.Inf(-1)
	}
	return p.chain.SubPositionsOfMaximum(p.logTgtSeq)
}

// UnifiedMLE returns the maximum-likelihood positions and value over
// all sub-environments. All ranks must call it.
func (p *StatisticalInverseProblem) UnifiedMLE() (*sequence.VectorSequence, float64) {
	if p.chain == nil {
		return nil, math.Inf(-1)
	}
	return p.chain.UnifiedPositionsOfMaximum(p.logLikSeq)
}

// UnifiedMAP returns the maximum-a-posteriori positions and value over
// all sub-environments. All ranks must call it.
func (p *StatisticalInverseProblem) UnifiedMAP() (*sequence.VectorSequence, float64) {
	if p.chain == nil {
		return nil, math.Inf(-1)
	}
	return p.chain.UnifiedPositionsOfMaximum(p.logTgtSeq)
}
