package mcmc

import (
	"fmt"

	"github.com/thelegend6420/queso/sequence"
)

// Options is the explicit option record of the Metropolis-Hastings
// sampler. Option names mirror the historical "<prefix>ip_mh_" input
// file keys; the core never reads any ambient configuration.
type Options struct {
	// RawChainSize is the number of chain positions to generate.
	RawChainSize int

	// RawChainDataInputFileName, when set, makes GenerateSequence read
	// the chain from a file instead of sampling.
	RawChainDataInputFileName string
	RawChainDataInputFileType string

	// Periodic checkpointing sink for the raw chain.
	RawChainDataOutputFileName   string
	RawChainDataOutputFileType   string
	RawChainDataOutputPeriod     int
	RawChainDataOutputAllowedSet map[int]bool

	// RawChainDisplayPeriod is the progress printing cadence; 0
	// disables progress lines.
	RawChainDisplayPeriod int
	// RawChainMeasureRunTimes enables the per-phase timers.
	RawChainMeasureRunTimes bool
	// RawChainGenerateExtra retains per-position log-targets and
	// alpha quotients in memory.
	RawChainGenerateExtra bool

	// DrMaxNumExtraStages is the number of delayed-rejection stages
	// beyond the first candidate; 0 disables DR.
	DrMaxNumExtraStages int
	// DrScalesForExtraStages holds the per-stage scale factors; the
	// stage-k proposal covariance is the stage-0 covariance divided by
	// the square of the k-th scale. Each scale must be > 1.
	DrScalesForExtraStages []float64
	// DrDuringAmNonAdaptiveInt enables DR inside the adaptive
	// Metropolis warm-up window.
	DrDuringAmNonAdaptiveInt bool

	// TkUseLocalHessian selects the Hessian-based transition kernel.
	TkUseLocalHessian bool

	// AmInitialNonAdaptInterval is the position at which adaptation
	// starts; 0 disables adaptive Metropolis.
	AmInitialNonAdaptInterval int
	// AmAdaptInterval is the number of positions between adaptation
	// updates.
	AmAdaptInterval int
	// AmEta scales the adapted covariance before it is handed to the
	// transition kernel.
	AmEta float64
	// AmEpsilon is the ridge added to the adapted covariance when its
	// Cholesky factorization fails.
	AmEpsilon float64

	// Debug dumps of the adapted covariance matrix.
	AmAdaptedMatricesDataOutputPeriod   int
	AmAdaptedMatricesDataOutputFileName string
	AmAdaptedMatricesDataOutputFileType string

	// PutOutOfBoundsInChain keeps the first out-of-support candidate
	// instead of resampling until a candidate lies in the support.
	PutOutOfBoundsInChain bool

	// Brooks-Gelman convergence monitor cadence and lag; 0 disables
	// the monitor.
	EnableBrooksGelmanConvMonitor int
	BrooksGelmanLag               int

	// Post-sampling filtered chain generation.
	FilteredChainGenerate           bool
	FilteredChainDiscardedPortion   float64
	FilteredChainLag                int
	FilteredChainDataOutputFileName string
	FilteredChainDataOutputFileType string

	// Seed state read from persisted files.
	InitialPositionDataInputFileName          string
	InitialProposalCovMatrixDataInputFileName string

	// LikelihoodIsMinus2Ln selects the likelihood sign convention:
	// false means the user returns ln L, true means the user returns
	// -2 ln L and the target applies the -1/2 factor.
	LikelihoodIsMinus2Ln bool

	// TotallyMute silences all non-error output.
	TotallyMute bool
}

// DefaultOptions returns the option record with the historical
// defaults: no DR, no AM, no I/O.
func DefaultOptions() *Options {
	return &Options{
		RawChainSize:                        100,
		RawChainDataInputFileName:           sequence.NoFileName,
		RawChainDataInputFileType:           sequence.FileTypeMatlab,
		RawChainDataOutputFileName:          sequence.NoFileName,
		RawChainDataOutputFileType:          sequence.FileTypeMatlab,
		RawChainDataOutputAllowedSet:        map[int]bool{0: true},
		AmEta:                               1,
		AmEpsilon:                           1e-5,
		AmAdaptedMatricesDataOutputFileName: sequence.NoFileName,
		AmAdaptedMatricesDataOutputFileType: sequence.FileTypeMatlab,
		FilteredChainDiscardedPortion:       0,
		FilteredChainLag:                    1,
		FilteredChainDataOutputFileName:     sequence.NoFileName,
		FilteredChainDataOutputFileType:     sequence.FileTypeMatlab,
		InitialPositionDataInputFileName:          sequence.NoFileName,
		InitialProposalCovMatrixDataInputFileName: sequence.NoFileName,
	}
}

// Validate checks the option record for user contract violations.
func (o *Options) Validate() error {
	if o.RawChainSize < 2 {
		return fmt.Errorf("rawChainSize should be >= 2, got %d", o.RawChainSize)
	}
	if len(o.DrScalesForExtraStages) < o.DrMaxNumExtraStages {
		return fmt.Errorf("drMaxNumExtraStages is %d but only %d scales are given",
			o.DrMaxNumExtraStages, len(o.DrScalesForExtraStages))
	}
	for i, scale := range o.DrScalesForExtraStages {
		if scale <= 1 {
			return fmt.Errorf("drScalesForExtraStages[%d] should be > 1, got %v", i, scale)
		}
	}
	if o.AmInitialNonAdaptInterval > 0 && o.AmAdaptInterval > 0 {
		if o.AmEta <= 0 {
			return fmt.Errorf("amEta should be > 0, got %v", o.AmEta)
		}
		if o.AmEpsilon <= 0 {
			return fmt.Errorf("amEpsilon should be > 0, got %v", o.AmEpsilon)
		}
	}
	if o.FilteredChainGenerate {
		if o.FilteredChainDiscardedPortion < 0 || o.FilteredChainDiscardedPortion >= 1 {
			return fmt.Errorf("filteredChainDiscardedPortion should be in [0,1), got %v",
				o.FilteredChainDiscardedPortion)
		}
	}
	return nil
}

// adaptiveEnabled reports whether the adaptive Metropolis logic is
// active for the selected kernel.
func (o *Options) adaptiveEnabled() bool {
	return !o.TkUseLocalHessian && o.AmInitialNonAdaptInterval > 0 && o.AmAdaptInterval > 0
}
