/*

Queso solves Bayesian statistical inverse problems with an adaptive
Metropolis-Hastings sampler (DRAM: delayed rejection + adaptive
Metropolis). It ships two demonstration targets:

	queso gaussian

samples a standard normal posterior, while

	queso banana

samples the banana-shaped (Rosenbrock-style) target. Delayed
rejection and covariance adaptation are off by default for both
targets; --dr-stages, --am-nonadapt and --am-interval turn them on.

To see all the options run:

	queso -h

*/
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/op/go-logging"

	"gonum.org/v1/gonum/mat"

	bolt "go.etcd.io/bbolt"

	"github.com/thelegend6420/queso/checkpoint"
	"github.com/thelegend6420/queso/dist"
	"github.com/thelegend6420/queso/env"
	"github.com/thelegend6420/queso/invprob"
	"github.com/thelegend6420/queso/mcmc"
	"github.com/thelegend6420/queso/sequence"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("queso")
var formatter = logging.MustStringFormatter(`%{message}`)

// command-line options
var (
	// application
	app = kingpin.New("queso", "Bayesian inverse problem sampler (DRAM)").Version(version)

	// target
	target = app.Arg("target", "demo target (gaussian or banana)").Required().String()
	dimension = app.Flag("dim", "parameter dimension for the gaussian target").Default("1").Int()

	// chain options (historical ip_mh_ option surface)
	chainSize       = app.Flag("chain-size", "number of chain positions (ip_mh_rawChainSize)").Default("20000").Int()
	chainInput      = app.Flag("chain-input", "read the chain from this file instead of sampling").Default(".").String()
	chainOutput     = app.Flag("chain-output", "periodic chain output file base name").Default(".").String()
	chainPeriod     = app.Flag("chain-period", "positions between chain output windows").Default("0").Int()
	displayPeriod   = app.Flag("display-period", "progress printing cadence").Default("0").Int()
	measureRunTimes = app.Flag("measure-runtimes", "measure per-phase run times").Bool()

	// delayed rejection
	drStages = app.Flag("dr-stages", "number of delayed-rejection extra stages (0 disables DR)").Default("0").Int()
	drScales = app.Flag("dr-scales", "comma-separated DR scale factors, each > 1").Default("3,5").String()
	drDuringAm = app.Flag("dr-during-am", "allow DR during the AM warm-up window").Bool()

	// adaptive Metropolis
	amNonAdapt = app.Flag("am-nonadapt", "position at which adaptation begins (0 disables AM)").Default("0").Int()
	amInterval = app.Flag("am-interval", "positions between adaptation updates").Default("0").Int()
	amEta      = app.Flag("am-eta", "scale applied to the adapted covariance").Default("-1").Float64()
	amEpsilon  = app.Flag("am-epsilon", "ridge added on Cholesky failure").Default("1e-8").Float64()

	// misc algorithm options
	putOutOfBounds = app.Flag("put-out-of-bounds", "keep the first out-of-support candidate").Bool()
	minus2Ln       = app.Flag("minus2ln", "likelihood routine returns -2 ln L instead of ln L").Bool()

	// filtered chain
	filterGenerate = app.Flag("filter", "generate the filtered chain after sampling").Bool()
	filterDiscard  = app.Flag("filter-discard", "portion of initial positions to discard, in [0,1)").Default("0.2").Float64()
	filterLag      = app.Flag("filter-lag", "filtered chain lag (0 selects it from autocorrelation)").Default("0").Int()
	filterOutput   = app.Flag("filter-output", "filtered chain output file base name").Default(".").String()

	// technical
	seed       = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()
	checkpointF = app.Flag("checkpoint", "checkpoint database file name").String()
	checkpointS = app.Flag("checkpoint-seconds", "minimum seconds between checkpoint saves").Default("30").Float64()

	// input/output
	outLogF  = app.Flag("log", "write log to a file").String()
	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	mute = app.Flag("mute", "silence all non-error output (ip_mh_totallyMute)").Bool()
)

// parseDrScales converts the comma-separated scales flag.
func parseDrScales(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	return sequenceFields(strings.Split(s, ","))
}

func sequenceFields(fields []string) ([]float64, error) {
	var out []float64
	for _, f := range fields {
		var v float64
		if _, err := fmt.Sscanf(strings.TrimSpace(f), "%g", &v); err != nil {
			return nil, fmt.Errorf("bad scale %q: %v", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// demoTarget builds the domain, prior, likelihood and seed state for a
// named demonstration target.
func demoTarget(name string, dim int) (domain dist.Domain, prior dist.LogPdf,
	likelihood invprob.LikelihoodFunc, initial []float64, proposalCov *mat.SymDense, err error) {
	switch name {
	case "gaussian":
		domain = dist.NewUnboundedDomain(dim)
		prior = dist.FlatLogPrior()
		likelihood = func(v []float64) float64 {
			sum := 0.0
			for _, x := range v {
				sum += x * x
			}
			return -0.5 * sum
		}
		initial = make([]float64, dim)
		proposalCov = identity(dim, 1)
	case "banana":
		domain = dist.NewUnboundedDomain(2)
		prior = dist.FlatLogPrior()
		likelihood = func(v []float64) float64 {
			t := v[1] + 0.5*(v[0]*v[0]-1)
			return -0.5*v[0]*v[0] - 10*t*t
		}
		initial = []float64{0, 0.5}
		proposalCov = identity(2, 0.5)
	default:
		err = fmt.Errorf("unknown target: %s (gaussian or banana)", name)
	}
	return domain, prior, likelihood, initial, proposalCov, err
}

func identity(dim int, scale float64) *mat.SymDense {
	m := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		m.SetSym(i, i, scale)
	}
	return m
}

func run() error {
	domain, prior, likelihood, initial, proposalCov, err := demoTarget(*target, *dimension)
	if err != nil {
		return err
	}

	scales, err := parseDrScales(*drScales)
	if err != nil {
		return err
	}

	opts := mcmc.DefaultOptions()
	opts.RawChainSize = *chainSize
	opts.RawChainDataInputFileName = *chainInput
	opts.RawChainDataOutputFileName = *chainOutput
	opts.RawChainDataOutputPeriod = *chainPeriod
	opts.RawChainDisplayPeriod = *displayPeriod
	opts.RawChainMeasureRunTimes = *measureRunTimes
	opts.DrMaxNumExtraStages = *drStages
	opts.DrScalesForExtraStages = scales
	opts.DrDuringAmNonAdaptiveInt = *drDuringAm
	opts.AmInitialNonAdaptInterval = *amNonAdapt
	opts.AmAdaptInterval = *amInterval
	opts.AmEpsilon = *amEpsilon
	opts.PutOutOfBoundsInChain = *putOutOfBounds
	opts.LikelihoodIsMinus2Ln = *minus2Ln
	opts.FilteredChainGenerate = *filterGenerate
	opts.FilteredChainDiscardedPortion = *filterDiscard
	opts.FilteredChainLag = *filterLag
	opts.FilteredChainDataOutputFileName = *filterOutput
	opts.TotallyMute = *mute
	if *amEta > 0 {
		opts.AmEta = *amEta
	} else {
		// The usual optimal-scaling default for a Gaussian target.
		opts.AmEta = 2.38 * 2.38 / float64(domain.Dim())
	}

	e := env.NewSerial(*seed)

	p := invprob.New(e, opts, domain, prior, likelihood)

	if *checkpointF != "" {
		db, err := bolt.Open(*checkpointF, 0644, nil)
		if err != nil {
			return fmt.Errorf("cannot open checkpoint file: %v", err)
		}
		defer db.Close()
		key := []byte(*target + "_sub" + e.SubIDString())
		p.SetCheckpointIO(checkpoint.NewCheckpointIO(db, key, *checkpointS))
	}

	startTime := time.Now()
	if err := p.SolveWithBayesMetropolisHastings(initial, proposalCov); err != nil {
		return err
	}
	log.Noticef("Sampling time: %v", time.Since(startTime))

	mlePositions, mle := p.SubMLE()
	mapPositions, mapValue := p.SubMAP()
	log.Noticef("MLE = %v at %v", mle, firstPosition(mlePositions))
	log.Noticef("MAP = %v at %v", mapValue, firstPosition(mapPositions))

	mean := p.Chain().SubMeanPlain()
	log.Noticef("Posterior mean = %v", mean)

	info := p.Sampler().RawChainInfo()
	size := float64(opts.RawChainSize)
	log.Noticef("Acceptance rate = %.2f%%", 100*(1-float64(info.NumRejections)/size))
	return nil
}

func firstPosition(s *sequence.VectorSequence) []float64 {
	if s == nil || s.SubSequenceSize() == 0 {
		return nil
	}
	return s.PositionValues(0, nil)
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	if *mute {
		level = logging.CRITICAL
	}
	for _, pkg := range []string{"queso", "mcmc", "invprob", "sequence", "env", "checkpoint", "dist"} {
		logging.SetLevel(level, pkg)
	}

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *seed == -1 {
		*seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", *seed)

	if err := run(); err != nil {
		log.Fatal(err)
	}
}
