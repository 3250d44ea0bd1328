package mcmc

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/thelegend6420/queso/dist"
	"github.com/thelegend6420/queso/env"
	"github.com/thelegend6420/queso/sequence"
)

func chainComponent(chain *sequence.VectorSequence, j int) []float64 {
	out := make([]float64, chain.SubSequenceSize())
	buf := make([]float64, chain.Dim())
	for i := range out {
		chain.PositionValues(i, buf)
		out[i] = buf[j]
	}
	return out
}

// Standard normal target, Gaussian proposal, no DR, no AM: posterior
// moments must match the target.
func TestGenerateSequenceStandardNormal(t *testing.T) {
	e := env.NewSerial(42)
	opts := DefaultOptions()
	opts.RawChainSize = 20000
	opts.TotallyMute = true

	s, err := NewSampler(e, opts, dist.NewUnboundedDomain(1), stdNormalTarget,
		[]float64{0}, identitySym(1, 1), nil)
	if err != nil {
		t.Fatal(err)
	}

	chain := sequence.NewVectorSequence(e, 1, 0, "chain")
	logLik := sequence.NewScalarSequence(e, 0, "logLik")
	logTgt := sequence.NewScalarSequence(e, 0, "logTgt")
	if err := s.GenerateSequence(chain, logLik, logTgt); err != nil {
		t.Fatal(err)
	}

	if chain.SubSequenceSize() != opts.RawChainSize {
		t.Fatalf("chain size %d, expected %d", chain.SubSequenceSize(), opts.RawChainSize)
	}
	if logLik.SubSequenceSize() != opts.RawChainSize || logTgt.SubSequenceSize() != opts.RawChainSize {
		t.Fatalf("companion sequences not resized to the chain size")
	}

	xs := chainComponent(chain, 0)
	mean := stat.Mean(xs, nil)
	variance := stat.Variance(xs, nil)
	if mean < -0.05 || mean > 0.05 {
		t.Errorf("sample mean %v outside [-0.05, 0.05]", mean)
	}
	if variance < 0.93 || variance > 1.07 {
		t.Errorf("sample variance %v outside [0.93, 1.07]", variance)
	}

	// Rejected steps re-state the previous position; accepted steps
	// are recorded as unique positions.
	unique := map[int]bool{}
	for _, id := range s.IdsOfUniquePositions() {
		unique[id] = true
	}
	for i := 1; i < len(xs); i++ {
		if !unique[i] && xs[i] != xs[i-1] {
			t.Fatalf("position %d was rejected but differs from its predecessor", i)
		}
		if unique[i] && xs[i] == xs[i-1] {
			t.Fatalf("position %d was accepted but equals its predecessor", i)
		}
	}
}

// Banana-shaped target with DRAM enabled: the sampler must keep a
// workable acceptance rate and learn the target's principal axis.
func TestGenerateSequenceBananaDRAM(t *testing.T) {
	e := env.NewSerial(7)
	opts := DefaultOptions()
	opts.RawChainSize = 50000
	opts.DrMaxNumExtraStages = 2
	opts.DrScalesForExtraStages = []float64{3, 5}
	opts.AmInitialNonAdaptInterval = 1000
	opts.AmAdaptInterval = 200
	opts.AmEta = 2.38 * 2.38 / 2
	opts.AmEpsilon = 1e-8
	opts.TotallyMute = true

	banana := func(v []float64) (logPrior, logLikelihood float64) {
		w := v[1] + 0.5*(v[0]*v[0]-1)
		return 0, -0.5*v[0]*v[0] - 10*w*w
	}
	s, err := NewSampler(e, opts, dist.NewUnboundedDomain(2), banana,
		[]float64{0, 0.5}, identitySym(2, 0.5), nil)
	if err != nil {
		t.Fatal(err)
	}

	chain := sequence.NewVectorSequence(e, 2, 0, "chain")
	if err := s.GenerateSequence(chain, nil, nil); err != nil {
		t.Fatal(err)
	}

	info := s.RawChainInfo()
	accRate := 1 - float64(info.NumRejections)/float64(opts.RawChainSize-1)
	if accRate < 0.15 {
		t.Errorf("acceptance rate %v below 0.15", accRate)
	}
	if info.NumDRs == 0 {
		t.Error("delayed rejection never triggered")
	}

	adapted := s.LastAdaptedCovMatrix()
	if adapted == nil {
		t.Fatal("no adapted covariance after an adaptive run")
	}
	var eig mat.EigenSym
	if !eig.Factorize(adapted, true) {
		t.Fatal("eigendecomposition of the adapted covariance failed")
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)
	// Eigenvalues come in ascending order; the top eigenvector is the
	// last column. The banana's principal axis is the first parameter
	// axis.
	top := mat.Col(nil, 1, &vectors)
	cos := math.Abs(top[0]) / math.Hypot(top[0], top[1])
	angle := math.Acos(cos) * 180 / math.Pi
	if angle > 15 {
		t.Errorf("top eigenvector off the principal axis by %v degrees", angle)
	}
}

// An initial position outside the target support is fatal and no
// chain file may appear.
func TestGenerateSequenceInitialOutOfSupport(t *testing.T) {
	e := env.NewSerial(1)
	dir := t.TempDir()
	base := filepath.Join(dir, "chain")

	opts := DefaultOptions()
	opts.RawChainSize = 100
	opts.RawChainDataOutputFileName = base
	opts.RawChainDataOutputPeriod = 10
	opts.TotallyMute = true

	domain := dist.NewBoxDomain([]float64{0}, []float64{1})
	s, err := NewSampler(e, opts, domain, stdNormalTarget, []float64{2}, identitySym(1, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	chain := sequence.NewVectorSequence(e, 1, 0, "chain")
	err = s.GenerateSequence(chain, nil, nil)
	if err == nil {
		t.Fatal("expected the out-of-support fatal diagnostic")
	}
	if _, statErr := os.Stat(e.SubFileName(base, sequence.FileTypeMatlab)); !os.IsNotExist(statErr) {
		t.Error("chain file written despite the fatal error")
	}
}

// Periodic windows concatenated must reproduce the in-memory chain.
func TestGenerateSequenceCheckpointWindows(t *testing.T) {
	e := env.NewSerial(3)
	dir := t.TempDir()
	base := filepath.Join(dir, "chain")

	opts := DefaultOptions()
	opts.RawChainSize = 1000
	opts.RawChainDataOutputFileName = base
	opts.RawChainDataOutputPeriod = 200
	opts.TotallyMute = true

	s, err := NewSampler(e, opts, dist.NewUnboundedDomain(2), stdNormalTarget,
		[]float64{0, 0}, identitySym(2, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	chain := sequence.NewVectorSequence(e, 2, 0, "chain")
	logLik := sequence.NewScalarSequence(e, 0, "logLik")
	logTgt := sequence.NewScalarSequence(e, 0, "logTgt")
	if err := s.GenerateSequence(chain, logLik, logTgt); err != nil {
		t.Fatal(err)
	}

	rows, err := sequence.ReadMatlabRows(e.SubFileName(base, sequence.FileTypeMatlab))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != opts.RawChainSize {
		t.Fatalf("windows hold %d positions, expected %d", len(rows), opts.RawChainSize)
	}
	buf := make([]float64, 2)
	for i, row := range rows {
		chain.PositionValues(i, buf)
		for j := range buf {
			if row[j] != buf[j] {
				t.Fatalf("window position %d component %d: file %v, memory %v", i, j, row[j], buf[j])
			}
		}
	}

	likRows, err := sequence.ReadMatlabRows(e.SubFileName(base+"_likelihood", sequence.FileTypeMatlab))
	if err != nil {
		t.Fatal(err)
	}
	if len(likRows) != opts.RawChainSize {
		t.Fatalf("likelihood windows hold %d values, expected %d", len(likRows), opts.RawChainSize)
	}
}

// A written chain can be fed back as the chain input.
func TestGenerateSequenceReadsChainFromFile(t *testing.T) {
	e := env.NewSerial(5)
	dir := t.TempDir()
	base := filepath.Join(dir, "unified")

	opts := DefaultOptions()
	opts.RawChainSize = 50
	opts.TotallyMute = true
	s, err := NewSampler(e, opts, dist.NewUnboundedDomain(1), stdNormalTarget,
		[]float64{0}, identitySym(1, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	chain := sequence.NewVectorSequence(e, 1, 0, "chain")
	if err := s.GenerateSequence(chain, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := chain.UnifiedWriteContents(base, sequence.FileTypeMatlab); err != nil {
		t.Fatal(err)
	}

	opts2 := DefaultOptions()
	opts2.RawChainSize = 50
	opts2.RawChainDataInputFileName = base
	opts2.TotallyMute = true
	s2, err := NewSampler(e, opts2, dist.NewUnboundedDomain(1), stdNormalTarget,
		[]float64{0}, identitySym(1, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	replay := sequence.NewVectorSequence(e, 1, 0, "chain")
	if err := s2.GenerateSequence(replay, nil, nil); err != nil {
		t.Fatal(err)
	}

	if replay.SubSequenceSize() != 50 {
		t.Fatalf("replayed chain size %d, expected 50", replay.SubSequenceSize())
	}
	for i := 0; i < 50; i++ {
		if replay.PositionValues(i, nil)[0] != chain.PositionValues(i, nil)[0] {
			t.Fatalf("replayed chain differs at position %d", i)
		}
	}
}

// The sampler constructor must reject a missing proposal covariance
// when local Hessians are off.
func TestNewSamplerNilProposalCovariance(t *testing.T) {
	e := env.NewSerial(1)
	opts := DefaultOptions()
	_, err := NewSampler(e, opts, dist.NewUnboundedDomain(1), stdNormalTarget,
		[]float64{0}, nil, nil)
	if err == nil {
		t.Error("expected an error for the missing proposal covariance")
	}
}

func TestNewSamplerDimensionMismatch(t *testing.T) {
	e := env.NewSerial(1)
	opts := DefaultOptions()
	_, err := NewSampler(e, opts, dist.NewUnboundedDomain(2), stdNormalTarget,
		[]float64{0}, identitySym(2, 1), nil)
	if err == nil {
		t.Error("expected an error for the dimension mismatch")
	}
}

// In-support occupancy: with a box domain and resampling enabled, no
// chain position may leave the support.
func TestGenerateSequenceStaysInSupport(t *testing.T) {
	e := env.NewSerial(9)
	opts := DefaultOptions()
	opts.RawChainSize = 2000
	opts.TotallyMute = true

	domain := dist.NewBoxDomain([]float64{-1}, []float64{1})
	s, err := NewSampler(e, opts, domain, stdNormalTarget, []float64{0}, identitySym(1, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	chain := sequence.NewVectorSequence(e, 1, 0, "chain")
	if err := s.GenerateSequence(chain, nil, nil); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < chain.SubSequenceSize(); i++ {
		if !domain.Contains(chain.PositionValues(i, nil)) {
			t.Fatalf("position %d left the target support", i)
		}
	}
}

func TestOptionsValidation(t *testing.T) {
	opts := DefaultOptions()
	opts.DrMaxNumExtraStages = 2
	opts.DrScalesForExtraStages = []float64{3}
	if err := opts.Validate(); err == nil {
		t.Error("expected an error for missing DR scales")
	}

	opts = DefaultOptions()
	opts.DrMaxNumExtraStages = 1
	opts.DrScalesForExtraStages = []float64{0.5}
	if err := opts.Validate(); err == nil {
		t.Error("expected an error for a DR scale <= 1")
	}

	opts = DefaultOptions()
	opts.FilteredChainGenerate = true
	opts.FilteredChainDiscardedPortion = 1
	if err := opts.Validate(); err == nil {
		t.Error("expected an error for a discarded portion outside [0,1)")
	}
}
