package mcmc

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/thelegend6420/queso/checkpoint"
	"github.com/thelegend6420/queso/dist"
	"github.com/thelegend6420/queso/env"
	"github.com/thelegend6420/queso/sequence"
)

// Sampler is a Metropolis-Hastings generator of samples implementing
// the DRAM algorithm. It owns the transition kernel and the adaptation
// state; the chain and its companion sequences are owned by the
// caller and filled by GenerateSequence.
type Sampler struct {
	env  *env.Environment
	opts *Options

	domain dist.Domain
	sync   *TargetSynchronizer
	tk     TransitionKernel

	initialPosition    []float64
	initialProposalCov *mat.SymDense

	info RawChainInfo

	lastChainSize  float64
	lastMean       []float64
	lastAdaptedCov *mat.SymDense

	numPositionsNotSubWritten int
	idsOfUniquePositions      []int
	logTargets                []float64
	alphaQuotients            []float64

	positionIDForDebugging int
	stageIDForDebugging    int

	ckpt *checkpoint.CheckpointIO
}

// NewSampler creates a sampler for the target defined by domain and
// target. proposalCov seeds the scaled-covariance kernel and must be
// given unless options select the Hessian kernel or name a covariance
// input file; hessian is required only for the Hessian kernel.
func NewSampler(e *env.Environment, opts *Options, domain dist.Domain, target TargetFunc,
	initialPosition []float64, proposalCov *mat.SymDense, hessian HessianFunc) (*Sampler, error) {
	if err := opts.Validate(); err != nil {
		return nil, e.Errorf("invalid sampler options: %v", err)
	}
	dim := domain.Dim()
	if len(initialPosition) != dim {
		return nil, e.Errorf("initial position has dimension %d, target domain has %d",
			len(initialPosition), dim)
	}

	s := &Sampler{
		env:             e,
		opts:            opts,
		domain:          domain,
		sync:            NewTargetSynchronizer(e, target, dim, opts.LikelihoodIsMinus2Ln),
		initialPosition: append([]float64(nil), initialPosition...),
	}

	if opts.InitialPositionDataInputFileName != sequence.NoFileName {
		rows, err := sequence.ReadMatlabRows(e.SubFileName(opts.InitialPositionDataInputFileName, sequence.FileTypeMatlab))
		if err != nil {
			return nil, e.Errorf("reading initial position: %v", err)
		}
		if len(rows) < 1 || len(rows[0]) != dim {
			return nil, e.Errorf("initial position file does not hold a vector of dimension %d", dim)
		}
		copy(s.initialPosition, rows[0])
	}

	drScales := opts.DrScalesForExtraStages[:opts.DrMaxNumExtraStages]
	if opts.TkUseLocalHessian {
		if hessian == nil {
			return nil, e.Errorf("local Hessian kernel selected but no Hessian function given")
		}
		s.tk = NewHessianTK(e, dim, drScales, hessian)
		return s, nil
	}

	if opts.InitialProposalCovMatrixDataInputFileName != sequence.NoFileName {
		rows, err := sequence.ReadMatlabRows(e.SubFileName(opts.InitialProposalCovMatrixDataInputFileName, sequence.FileTypeMatlab))
		if err != nil {
			return nil, e.Errorf("reading initial proposal covariance: %v", err)
		}
		if len(rows) != dim {
			return nil, e.Errorf("initial proposal covariance file does not hold a %dx%d matrix", dim, dim)
		}
		proposalCov = mat.NewSymDense(dim, nil)
		for i, row := range rows {
			if len(row) != dim {
				return nil, e.Errorf("initial proposal covariance file does not hold a %dx%d matrix", dim, dim)
			}
			for j := i; j < dim; j++ {
				proposalCov.SetSym(i, j, row[j])
			}
		}
	}
	if proposalCov == nil {
		return nil, e.Errorf("proposal covariance matrix should be given when local Hessians are not used")
	}
	tk, err := NewScaledCovTK(e, dim, drScales, proposalCov)
	if err != nil {
		return nil, err
	}
	s.tk = tk
	s.initialProposalCov = proposalCov
	return s, nil
}

// SetCheckpointIO attaches a resumable checkpoint store. When set,
// GenerateSequence warm-starts from a stored snapshot and saves
// snapshots while sampling.
func (s *Sampler) SetCheckpointIO(ckpt *checkpoint.CheckpointIO) { s.ckpt = ckpt }

// TransitionKernel returns the sampler's kernel.
func (s *Sampler) TransitionKernel() TransitionKernel { return s.tk }

// RawChainInfo returns the counters and timers of the last
// generation.
func (s *Sampler) RawChainInfo() RawChainInfo { return s.info }

// TargetSynchronizer returns the synchronizer driving target
// evaluations.
func (s *Sampler) TargetSynchronizer() *TargetSynchronizer { return s.sync }

// waitMode reports whether non-zero sub ranks sit out the chain loop,
// serving collective target evaluations instead.
func (s *Sampler) waitMode() bool {
	return s.env.NumSubEnvironments() < s.env.FullComm().NumProc()
}

// GenerateSequence runs the sampler, filling chain with RawChainSize
// positions. workingLogLikelihood and workingLogTarget, when not nil,
// receive the companion log values. Explicit barriers on the full
// communicator bracket the generation.
func (s *Sampler) GenerateSequence(chain *sequence.VectorSequence,
	workingLogLikelihood, workingLogTarget *sequence.ScalarSequence) error {
	if chain.Dim() != len(s.initialPosition) {
		return s.env.Errorf("chain has dimension %d, sampler has %d", chain.Dim(), len(s.initialPosition))
	}
	s.env.FullComm().Barrier()
	defer s.env.FullComm().Barrier()

	chain.SetName("rawChain")

	if s.opts.RawChainDataInputFileName != sequence.NoFileName {
		if err := chain.UnifiedReadContents(s.opts.RawChainDataInputFileName,
			s.opts.RawChainDataInputFileType, s.opts.RawChainSize); err != nil {
			return err
		}
	} else {
		s.restoreFromCheckpoint()
		if err := s.generateFullChain(chain, workingLogLikelihood, workingLogTarget); err != nil {
			return err
		}
	}

	// Flush positions not yet written by the periodic windows.
	if s.opts.RawChainDataOutputPeriod > 0 &&
		s.opts.RawChainDataOutputFileName != sequence.NoFileName &&
		s.numPositionsNotSubWritten > 0 {
		start := s.opts.RawChainSize - s.numPositionsNotSubWritten
		if err := s.writeWindow(chain, workingLogLikelihood, workingLogTarget,
			start, s.numPositionsNotSubWritten); err != nil {
			return err
		}
		s.numPositionsNotSubWritten = 0
	}

	if s.opts.FilteredChainGenerate {
		if err := s.generateFilteredChain(chain, workingLogLikelihood, workingLogTarget); err != nil {
			return err
		}
	}
	return nil
}

// generateFilteredChain derives the decorrelated chain from the raw
// chain and writes it.
func (s *Sampler) generateFilteredChain(chain *sequence.VectorSequence,
	workingLogLikelihood, workingLogTarget *sequence.ScalarSequence) error {
	initial := int(s.opts.FilteredChainDiscardedPortion * float64(chain.SubSequenceSize()))
	spacing := s.opts.FilteredChainLag
	if spacing < 1 {
		initial, spacing = chain.ComputeFilterParams(s.opts.FilteredChainDiscardedPortion,
			chain.SubSequenceSize()/10+1)
	}
	if !s.opts.TotallyMute {
		log.Noticef("Generating filtered chain: initial=%d, spacing=%d", initial, spacing)
	}

	filtered := sequence.NewVectorSequence(s.env, chain.Dim(), chain.SubSequenceSize(), "filtChain")
	for i := 0; i < chain.SubSequenceSize(); i++ {
		filtered.SetPositionValues(i, chain.PositionValues(i, nil))
	}
	filtered.Filter(initial, spacing)

	if s.opts.FilteredChainDataOutputFileName != sequence.NoFileName {
		err := filtered.SubWriteContents(0, filtered.SubSequenceSize(),
			s.opts.FilteredChainDataOutputFileName, s.opts.FilteredChainDataOutputFileType,
			s.opts.RawChainDataOutputAllowedSet)
		if err != nil {
			return err
		}
	}
	return nil
}

// restoreFromCheckpoint warm-starts the sampler from a stored
// snapshot, when a checkpoint store is attached and holds one.
func (s *Sampler) restoreFromCheckpoint() {
	if s.ckpt == nil {
		return
	}
	state, err := s.ckpt.GetState()
	if err != nil {
		s.env.Warningf("cannot read checkpoint: %v", err)
		return
	}
	if state == nil {
		return
	}
	if len(state.Position) != len(s.initialPosition) {
		s.env.Warningf("checkpoint dimension %d does not match sampler dimension %d, ignoring",
			len(state.Position), len(s.initialPosition))
		return
	}
	copy(s.initialPosition, state.Position)
	if state.AdaptChainSize > 0 && len(state.AdaptMean) == len(s.initialPosition) {
		dim := len(s.initialPosition)
		if len(state.AdaptCov) == dim*dim {
			s.lastChainSize = state.AdaptChainSize
			s.lastMean = append([]float64(nil), state.AdaptMean...)
			s.lastAdaptedCov = mat.NewSymDense(dim, nil)
			for i := 0; i < dim; i++ {
				for j := i; j < dim; j++ {
					s.lastAdaptedCov.SetSym(i, j, state.AdaptCov[i*dim+j])
				}
			}
		}
	}
}

// saveCheckpoint stores a snapshot of the sampler progress.
func (s *Sampler) saveCheckpoint(positionID int, current *Position, final bool) {
	if s.ckpt == nil {
		return
	}
	data := &checkpoint.CheckpointData{
		PositionID:    positionID,
		Position:      append([]float64(nil), current.Values...),
		LogLikelihood: current.LogLikelihood,
		LogTarget:     current.LogTarget,
		Final:         final,
	}
	if s.lastAdaptedCov != nil {
		dim := len(current.Values)
		data.AdaptChainSize = s.lastChainSize
		data.AdaptMean = append([]float64(nil), s.lastMean...)
		data.AdaptCov = make([]float64, dim*dim)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				data.AdaptCov[i*dim+j] = s.lastAdaptedCov.At(i, j)
			}
		}
	}
	if err := s.ckpt.Save(data); err != nil {
		s.env.Warningf("cannot save checkpoint: %v", err)
	}
}

// writeWindow writes a half-open chain window and, when present, the
// same window of the companion sequences.
func (s *Sampler) writeWindow(chain *sequence.VectorSequence,
	workingLogLikelihood, workingLogTarget *sequence.ScalarSequence, start, count int) error {
	err := chain.SubWriteContents(start, count,
		s.opts.RawChainDataOutputFileName, s.opts.RawChainDataOutputFileType,
		s.opts.RawChainDataOutputAllowedSet)
	if err != nil {
		return err
	}
	if workingLogLikelihood != nil {
		err = workingLogLikelihood.SubWriteContents(start, count,
			s.opts.RawChainDataOutputFileName+"_likelihood", s.opts.RawChainDataOutputFileType,
			s.opts.RawChainDataOutputAllowedSet)
		if err != nil {
			return err
		}
	}
	if workingLogTarget != nil {
		err = workingLogTarget.SubWriteContents(start, count,
			s.opts.RawChainDataOutputFileName+"_target", s.opts.RawChainDataOutputFileType,
			s.opts.RawChainDataOutputAllowedSet)
		if err != nil {
			return err
		}
	}
	return nil
}

// generateFullChain runs the DRAM main loop.
func (s *Sampler) generateFullChain(chain *sequence.VectorSequence,
	workingLogLikelihood, workingLogTarget *sequence.ScalarSequence) error {
	opts := s.opts
	dim := len(s.initialPosition)
	chainSize := opts.RawChainSize
	measure := opts.RawChainMeasureRunTimes

	if !opts.TotallyMute {
		log.Noticef("Starting the generation of Markov chain %s, with %d positions, sub-environment %d",
			chain.Name(), chainSize, s.env.SubID())
	}

	s.positionIDForDebugging = 0
	s.stageIDForDebugging = 0
	s.info.Reset()
	chainStart := time.Now()

	if !s.domain.Contains(s.initialPosition) {
		return s.env.Errorf("initial position should not be out of target pdf support")
	}

	chain.ResizeSequence(chainSize)
	if workingLogLikelihood != nil {
		workingLogLikelihood.ResizeSequence(chainSize)
	}
	if workingLogTarget != nil {
		workingLogTarget.ResizeSequence(chainSize)
	}

	// Non-zero sub ranks do not run the loop: they serve the driving
	// rank's target evaluations and fill their chain with a
	// non-constant placeholder to avoid zero variance downstream.
	if s.waitMode() && s.env.SubRank() != 0 {
		s.sync.WaitCollective()
		chain.SetPositionValues(0, s.initialPosition)
		scaled := make([]float64, dim)
		for positionID := 1; positionID < chainSize; positionID++ {
			for j, v := range s.initialPosition {
				scaled[j] = float64(positionID) * v
			}
			chain.SetPositionValues(positionID, scaled)
			s.info.NumRejections++
		}
		s.info.RunTime += time.Since(chainStart).Seconds()
		return nil
	}

	targetStart := time.Now()
	logTarget, _, logLikelihood := s.sync.CallTarget(s.initialPosition)
	if measure {
		s.info.TargetRunTime += time.Since(targetStart).Seconds()
	}
	s.info.NumTargetCalls++

	currentPosition := NewPosition(s.initialPosition, false, logLikelihood, logTarget)
	currentCandidate := newEmptyPosition(dim)

	s.idsOfUniquePositions = make([]int, 1, chainSize)
	if opts.RawChainGenerateExtra {
		s.logTargets = make([]float64, chainSize)
		s.alphaQuotients = make([]float64, chainSize)
		s.logTargets[0] = currentPosition.LogTarget
		s.alphaQuotients[0] = 1
	}

	chain.SetPositionValues(0, currentPosition.Values)
	s.numPositionsNotSubWritten = 1
	if workingLogLikelihood != nil {
		workingLogLikelihood.Set(0, currentPosition.LogLikelihood)
	}
	if workingLogTarget != nil {
		workingLogTarget.Set(0, currentPosition.LogTarget)
	}
	if opts.RawChainDataOutputPeriod == 1 && opts.RawChainDataOutputFileName != sequence.NoFileName {
		if err := s.writeWindow(chain, workingLogLikelihood, workingLogTarget, 0, 1); err != nil {
			return err
		}
		s.numPositionsNotSubWritten = 0
	}

	tmpVec := make([]float64, dim)
	for positionID := 1; positionID < chainSize; positionID++ {
		s.positionIDForDebugging = positionID
		stageID := 0
		s.stageIDForDebugging = stageID

		s.tk.ClearPreComputingPositions()
		validPreComputingPosition := s.tk.SetPreComputingPosition(currentPosition.Values, 0)
		if !validPreComputingPosition {
			return s.env.Errorf("initial pre-computing position of step %d should not be invalid", positionID)
		}

		// Generate a candidate, resampling while it falls outside the
		// support unless out-of-bounds candidates go into the chain.
		outOfSupport := false
		for keepGenerating := true; keepGenerating; {
			candidateStart := time.Now()
			s.tk.RV(0).Realization(tmpVec)
			if measure {
				s.info.CandidateRunTime += time.Since(candidateStart).Seconds()
			}
			outOfSupport = !s.domain.Contains(tmpVec)
			if opts.PutOutOfBoundsInChain {
				keepGenerating = false
			} else {
				keepGenerating = outOfSupport
			}
		}
		validPreComputingPosition = s.tk.SetPreComputingPosition(tmpVec, stageID+1)

		if outOfSupport {
			s.info.NumOutOfTargetSupport++
			currentCandidate.Set(tmpVec, true, math.Inf(-1), math.Inf(-1))
		} else {
			targetStart = time.Now()
			logTarget, _, logLikelihood = s.sync.CallTarget(tmpVec)
			if measure {
				s.info.TargetRunTime += time.Since(targetStart).Seconds()
			}
			s.info.NumTargetCalls++
			currentCandidate.Set(tmpVec, false, logLikelihood, logTarget)
		}

		accept := false
		if outOfSupport {
			if opts.RawChainGenerateExtra {
				s.alphaQuotients[positionID] = 0
			}
		} else {
			mhAlphaStart := time.Now()
			alphaFirst, quotient := s.alphaWithQuotient(currentPosition, currentCandidate, 0, 1)
			if measure {
				s.info.MhAlphaRunTime += time.Since(mhAlphaStart).Seconds()
			}
			if opts.RawChainGenerateExtra {
				s.alphaQuotients[positionID] = quotient
			}
			accept = s.acceptAlpha(alphaFirst)
		}

		// Delayed rejection: escalate through extra stages with
		// tighter proposals while the candidate keeps being rejected.
		if !accept && !outOfSupport && opts.DrMaxNumExtraStages > 0 {
			avoidDR := !opts.DrDuringAmNonAdaptiveInt &&
				opts.adaptiveEnabled() &&
				positionID <= opts.AmInitialNonAdaptInterval
			if !avoidDR {
				drStart := time.Now()
				drPositions := []*Position{currentPosition.Clone(), currentCandidate.Clone()}
				stageIDs := []int{0, 1}

				for validPreComputingPosition && !accept && stageID < opts.DrMaxNumExtraStages {
					s.info.NumDRs++
					stageID++
					s.stageIDForDebugging = stageID

					for keepGenerating := true; keepGenerating; {
						candidateStart := time.Now()
						s.tk.RVs(stageIDs).Realization(tmpVec)
						if measure {
							s.info.CandidateRunTime += time.Since(candidateStart).Seconds()
						}
						outOfSupport = !s.domain.Contains(tmpVec)
						if opts.PutOutOfBoundsInChain {
							keepGenerating = false
						} else {
							keepGenerating = outOfSupport
						}
					}
					validPreComputingPosition = s.tk.SetPreComputingPosition(tmpVec, stageID+1)

					if outOfSupport {
						s.info.NumOutOfTargetSupportInDR++
						currentCandidate.Set(tmpVec, true, math.Inf(-1), math.Inf(-1))
					} else {
						targetStart = time.Now()
						logTarget, _, logLikelihood = s.sync.CallTarget(tmpVec)
						if measure {
							s.info.TargetRunTime += time.Since(targetStart).Seconds()
						}
						s.info.NumTargetCalls++
						currentCandidate.Set(tmpVec, false, logLikelihood, logTarget)
					}

					drPositions = append(drPositions, currentCandidate.Clone())
					stageIDs = append(stageIDs, stageID+1)

					if !outOfSupport {
						drAlphaStart := time.Now()
						alphaDR := s.AlphaDR(drPositions, stageIDs)
						if measure {
							s.info.DrAlphaRunTime += time.Since(drAlphaStart).Seconds()
						}
						accept = s.acceptAlpha(alphaDR)
					}
				}
				if measure {
					s.info.DrRunTime += time.Since(drStart).Seconds()
				}
			}
		}

		// Commit the step: the accepted candidate or the re-stated
		// current position.
		if accept {
			chain.SetPositionValues(positionID, currentCandidate.Values)
			s.idsOfUniquePositions = append(s.idsOfUniquePositions, positionID)
			currentPosition = currentCandidate.Clone()
		} else {
			chain.SetPositionValues(positionID, currentPosition.Values)
			s.info.NumRejections++
		}

		if workingLogLikelihood != nil {
			workingLogLikelihood.Set(positionID, currentPosition.LogLikelihood)
		}
		if workingLogTarget != nil {
			workingLogTarget.Set(positionID, currentPosition.LogTarget)
		}

		s.numPositionsNotSubWritten++
		if opts.RawChainDataOutputPeriod > 0 &&
			(positionID+1)%opts.RawChainDataOutputPeriod == 0 &&
			opts.RawChainDataOutputFileName != sequence.NoFileName {
			err := s.writeWindow(chain, workingLogLikelihood, workingLogTarget,
				positionID+1-opts.RawChainDataOutputPeriod, opts.RawChainDataOutputPeriod)
			if err != nil {
				return err
			}
			s.numPositionsNotSubWritten = 0
		}

		if opts.RawChainGenerateExtra {
			s.logTargets[positionID] = currentPosition.LogTarget
		}

		if opts.EnableBrooksGelmanConvMonitor > 0 &&
			s.env.SubComm().NumProc() == 1 &&
			positionID%opts.EnableBrooksGelmanConvMonitor == 0 &&
			positionID > opts.BrooksGelmanLag+1 {
			convEst := chain.EstimateConvBrooksGelman(opts.BrooksGelmanLag,
				positionID-opts.BrooksGelmanLag)
			if !opts.TotallyMute {
				log.Noticef("positionId = %d, conv_est = %v", positionID, convEst)
			}
		}

		if err := s.adaptStep(chain, positionID, measure); err != nil {
			return err
		}

		if s.ckpt != nil && s.ckpt.Old() {
			s.saveCheckpoint(positionID, currentPosition, false)
		}

		if opts.RawChainDisplayPeriod > 0 && (positionID+1)%opts.RawChainDisplayPeriod == 0 &&
			!opts.TotallyMute {
			log.Noticef("Finished generating %d positions", positionID+1)
		}
	}

	if s.waitMode() && s.env.SubRank() == 0 {
		// Release the ranks blocked in the target synchronizer now
		// that the chain is fully generated.
		s.sync.ReleaseCollective()
	}

	s.info.RunTime += time.Since(chainStart).Seconds()
	s.saveCheckpoint(chainSize-1, currentPosition, true)
	s.printChainSummary(chain)
	return nil
}

// adaptStep is the adaptive Metropolis trigger: it decides whether
// this position starts or continues an adaptation round and feeds the
// sub-chain into the adaptation engine.
func (s *Sampler) adaptStep(chain *sequence.VectorSequence, positionID int, measure bool) error {
	opts := s.opts
	if !opts.adaptiveEnabled() {
		return nil
	}
	amStart := time.Now()
	defer func() {
		if measure {
			s.info.AmRunTime += time.Since(amStart).Seconds()
		}
	}()

	firstID := 0
	subChainSize := 0
	printAdapted := false
	switch {
	case positionID < opts.AmInitialNonAdaptInterval:
		// Warm-up, nothing to do.
	case positionID == opts.AmInitialNonAdaptInterval:
		firstID = 0
		subChainSize = opts.AmInitialNonAdaptInterval + 1
		printAdapted = true
	default:
		interval := positionID - opts.AmInitialNonAdaptInterval
		if interval%opts.AmAdaptInterval == 0 {
			firstID = positionID - opts.AmAdaptInterval
			subChainSize = opts.AmAdaptInterval
			if opts.AmAdaptedMatricesDataOutputPeriod > 0 &&
				interval%opts.AmAdaptedMatricesDataOutputPeriod == 0 {
				printAdapted = true
			}
		}
	}
	if subChainSize == 0 {
		return nil
	}

	partial := sequence.NewVectorSequence(s.env, chain.Dim(), subChainSize, "partialChain")
	for i := 0; i < subChainSize; i++ {
		partial.SetPositionValues(i, chain.PositionValues(firstID+i, nil))
	}
	if err := s.updateAdaptedCovMatrix(partial, firstID); err != nil {
		return err
	}

	if printAdapted && opts.AmAdaptedMatricesDataOutputFileName != sequence.NoFileName {
		if err := s.writeAdaptedMatrix(positionID); err != nil {
			return err
		}
	}

	s.handAdaptedCovToTK()
	return nil
}

// writeAdaptedMatrix dumps the current adapted covariance for
// debugging.
func (s *Sampler) writeAdaptedMatrix(positionID int) error {
	dim := s.lastAdaptedCov.SymmetricDim()
	rows := make([][]float64, dim)
	for i := 0; i < dim; i++ {
		rows[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			rows[i][j] = s.lastAdaptedCov.At(i, j)
		}
	}
	fileName := s.env.SubFileName(
		fmt.Sprintf("%s_am%d", s.opts.AmAdaptedMatricesDataOutputFileName, positionID),
		s.opts.AmAdaptedMatricesDataOutputFileType)
	varName := fmt.Sprintf("mat_am%d_sub%s", positionID, s.env.SubIDString())
	return sequence.AppendMatlabMatrix(fileName, varName, rows)
}

// printChainSummary logs basic information about the generated chain.
func (s *Sampler) printChainSummary(chain *sequence.VectorSequence) {
	if s.opts.TotallyMute {
		return
	}
	size := float64(chain.SubSequenceSize())
	log.Noticef("Finished the generation of Markov chain %s, with sub %d positions",
		chain.Name(), chain.SubSequenceSize())
	log.Infof("  Chain run time       = %v seconds", s.info.RunTime)
	if s.opts.RawChainMeasureRunTimes {
		log.Infof("  Candidate run time   = %v seconds", s.info.CandidateRunTime)
		log.Infof("  Target d. run time   = %v seconds", s.info.TargetRunTime)
		log.Infof("  Mh alpha run time    = %v seconds", s.info.MhAlphaRunTime)
		log.Infof("  Dr alpha run time    = %v seconds", s.info.DrAlphaRunTime)
		log.Infof("  DR run time          = %v seconds", s.info.DrRunTime)
		log.Infof("  AM run time          = %v seconds", s.info.AmRunTime)
	}
	log.Infof("  Num target calls     = %d", s.info.NumTargetCalls)
	log.Infof("  Number of DRs        = %d (num_DRs/chain_size = %v)",
		s.info.NumDRs, float64(s.info.NumDRs)/size)
	log.Infof("  Out of target support in DR = %d", s.info.NumOutOfTargetSupportInDR)
	log.Infof("  Rejection percentage = %v %%", 100*float64(s.info.NumRejections)/size)
	log.Infof("  Out of target support percentage = %v %%",
		100*float64(s.info.NumOutOfTargetSupport)/size)
}

// IdsOfUniquePositions returns the chain ids at which a new position
// was accepted.
func (s *Sampler) IdsOfUniquePositions() []int {
	return append([]int(nil), s.idsOfUniquePositions...)
}

// LogTargets returns the per-position log-target values retained when
// RawChainGenerateExtra is set.
func (s *Sampler) LogTargets() []float64 {
	return append([]float64(nil), s.logTargets...)
}

// AlphaQuotients returns the per-position acceptance-ratio quotients
// retained when RawChainGenerateExtra is set.
func (s *Sampler) AlphaQuotients() []float64 {
	return append([]float64(nil), s.alphaQuotients...)
}
