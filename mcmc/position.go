// Package mcmc implements an adaptive Metropolis-Hastings sampler for
// Bayesian inverse problems: delayed rejection plus adaptive
// Metropolis (the DRAM algorithm of Haario, Laine, Mira and Saksman,
// Statistics and Computing 16:339-354, 2006), with synchronized target
// evaluation across a communicator and windowed chain output.
package mcmc

import (
	"math"

	"github.com/op/go-logging"
)

// log is the global logging variable.
var log = logging.MustGetLogger("mcmc")

// Position is one Markov chain position: the parameter values together
// with their support flag and log values.
type Position struct {
	Values        []float64
	OutOfSupport  bool
	LogLikelihood float64
	LogTarget     float64
}

// NewPosition bundles the values of a chain position. The values slice
// is copied.
func NewPosition(values []float64, outOfSupport bool, logLikelihood, logTarget float64) *Position {
	return &Position{
		Values:        append([]float64(nil), values...),
		OutOfSupport:  outOfSupport,
		LogLikelihood: logLikelihood,
		LogTarget:     logTarget,
	}
}

// newEmptyPosition creates an out-of-support placeholder of the given
// dimension.
func newEmptyPosition(dim int) *Position {
	return &Position{
		Values:        make([]float64, dim),
		OutOfSupport:  true,
		LogLikelihood: math.Inf(-1),
		LogTarget:     math.Inf(-1),
	}
}

// Set overwrites the position in place.
func (p *Position) Set(values []float64, outOfSupport bool, logLikelihood, logTarget float64) {
	copy(p.Values, values)
	p.OutOfSupport = outOfSupport
	p.LogLikelihood = logLikelihood
	p.LogTarget = logTarget
}

// Clone returns an independent copy.
func (p *Position) Clone() *Position {
	return NewPosition(p.Values, p.OutOfSupport, p.LogLikelihood, p.LogTarget)
}

// finite reports whether x is neither infinite nor NaN.
func finite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}
