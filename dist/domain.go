// Package dist provides target-side building blocks for inverse
// problems: parameter domains, log-prior constructors and Gaussian
// random vectors.
package dist

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Domain is the support of a target density. Candidates outside the
// domain are never accepted into a chain.
type Domain interface {
	Dim() int
	Contains(v []float64) bool
}

// BoxDomain is an axis-aligned box.
type BoxDomain struct {
	Min, Max []float64
}

// NewBoxDomain creates a box domain.
func NewBoxDomain(min, max []float64) *BoxDomain {
	if len(min) != len(max) {
		panic("box bounds should have equal dimensions")
	}
	for i := range min {
		if max[i] <= min[i] {
			panic("box max <= min")
		}
	}
	return &BoxDomain{Min: min, Max: max}
}

// Dim returns the box dimension.
func (b *BoxDomain) Dim() int { return len(b.Min) }

// Contains reports whether v lies inside the box.
func (b *BoxDomain) Contains(v []float64) bool {
	for i, x := range v {
		if x < b.Min[i] || x > b.Max[i] {
			return false
		}
	}
	return true
}

// UnboundedDomain is all of R^dim.
type UnboundedDomain struct {
	dim int
}

// NewUnboundedDomain creates an unbounded domain of the given
// dimension.
func NewUnboundedDomain(dim int) *UnboundedDomain {
	if dim < 1 {
		panic("domain dimension should be >= 1")
	}
	return &UnboundedDomain{dim: dim}
}

// Dim returns the domain dimension.
func (d *UnboundedDomain) Dim() int { return d.dim }

// Contains reports whether every component of v is a number.
func (d *UnboundedDomain) Contains(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return false
		}
	}
	return true
}

// LogPdf evaluates a log-density at a parameter vector.
type LogPdf func(v []float64) float64

// UniformLogPrior returns the log-density of the uniform distribution
// over a box.
func UniformLogPrior(box *BoxDomain) LogPdf {
	logVolume := 0.0
	for i := range box.Min {
		logVolume += math.Log(box.Max[i] - box.Min[i])
	}
	return func(v []float64) float64 {
		if !box.Contains(v) {
			return math.Inf(-1)
		}
		return -logVolume
	}
}

// GaussianLogPrior returns the log-density of an independent Gaussian
// prior with the given per-component means and standard deviations.
func GaussianLogPrior(mean, sigma []float64) LogPdf {
	if len(mean) != len(sigma) {
		panic("mean and sigma should have equal dimensions")
	}
	comps := make([]distuv.Normal, len(mean))
	for i := range mean {
		if sigma[i] <= 0 {
			panic("sigma should be > 0")
		}
		comps[i] = distuv.Normal{Mu: mean[i], Sigma: sigma[i]}
	}
	return func(v []float64) float64 {
		sum := 0.0
		for i, c := range comps {
			sum += c.LogProb(v[i])
		}
		return sum
	}
}

// FlatLogPrior returns an improper constant log-prior.
func FlatLogPrior() LogPdf {
	return func(v []float64) float64 { return 0 }
}

// GaussianRV is a multivariate normal random vector with a domain,
// usable as a prior with a realizer.
type GaussianRV struct {
	normal *distmv.Normal
	domain Domain
}

// NewGaussianRV creates a Gaussian random vector over the given
// domain. It fails when the covariance is not positive definite.
func NewGaussianRV(mean []float64, cov *mat.SymDense, domain Domain, src rand.Source) (*GaussianRV, bool) {
	n, ok := distmv.NewNormal(mean, cov, src)
	if !ok {
		return nil, false
	}
	return &GaussianRV{normal: n, domain: domain}, true
}

// Dim returns the vector dimension.
func (g *GaussianRV) Dim() int { return g.domain.Dim() }

// Domain returns the support.
func (g *GaussianRV) Domain() Domain { return g.domain }

// LnValue returns the log-density at v, -Inf outside the domain.
func (g *GaussianRV) LnValue(v []float64) float64 {
	if !g.domain.Contains(v) {
		return math.Inf(-1)
	}
	return g.normal.LogProb(v)
}

// Realization draws a sample into dst.
func (g *GaussianRV) Realization(dst []float64) []float64 {
	return g.normal.Rand(dst)
}
