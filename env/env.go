// Package env holds the execution environment of a sampler run: the
// full communicator, its partition into sub-environments, and the
// per-sub-environment random number source.
package env

import (
	"fmt"
	"strconv"

	"github.com/op/go-logging"

	"golang.org/x/exp/rand"
)

// log is the global logging variable.
var log = logging.MustGetLogger("env")

// Environment describes the placement of the calling rank inside a
// run: the full communicator spanning all ranks, the sub-communicator
// of its sub-environment, and a reproducible random source seeded
// from the run seed and the sub-environment id.
type Environment struct {
	fullComm Comm
	subComm  Comm
	numSub   int
	subID    int
	seed     int64
	rng      *rand.Rand
	src      rand.Source
}

// New creates an environment for the calling rank. The full
// communicator is split into numSubEnvironments groups of equal size;
// fullComm.NumProc() must be a multiple of numSubEnvironments.
// subComm is the endpoint of the calling rank's group (use SelfComm()
// when each sub-environment has a single rank).
func New(fullComm, subComm Comm, numSubEnvironments int, seed int64) (*Environment, error) {
	if numSubEnvironments < 1 {
		return nil, fmt.Errorf("number of sub-environments should be >= 1, got %d", numSubEnvironments)
	}
	if fullComm.NumProc()%numSubEnvironments != 0 {
		return nil, fmt.Errorf("full communicator size %d is not a multiple of %d sub-environments",
			fullComm.NumProc(), numSubEnvironments)
	}
	ranksPerSub := fullComm.NumProc() / numSubEnvironments
	if subComm.NumProc() != ranksPerSub {
		return nil, fmt.Errorf("sub communicator has %d ranks, expected %d",
			subComm.NumProc(), ranksPerSub)
	}
	subID := fullComm.Rank() / ranksPerSub
	e := &Environment{
		fullComm: fullComm,
		subComm:  subComm,
		numSub:   numSubEnvironments,
		subID:    subID,
		seed:     seed,
	}
	// Each sub-environment draws from its own stream; same seed and
	// same sub id reproduce the same chain.
	e.src = rand.NewSource(uint64(seed) + uint64(subID))
	e.rng = rand.New(e.src)
	return e, nil
}

// NewSerial creates a single-rank, single-sub-environment environment.
func NewSerial(seed int64) *Environment {
	e, err := New(SelfComm(), SelfComm(), 1, seed)
	if err != nil {
		panic(err)
	}
	return e
}

// FullComm returns the communicator spanning all ranks.
func (e *Environment) FullComm() Comm { return e.fullComm }

// SubComm returns the communicator of this rank's sub-environment.
func (e *Environment) SubComm() Comm { return e.subComm }

// NumSubEnvironments returns the number of sub-environments.
func (e *Environment) NumSubEnvironments() int { return e.numSub }

// SubID returns the id of this rank's sub-environment.
func (e *Environment) SubID() int { return e.subID }

// SubIDString returns the sub-environment id as a string, for file
// name suffixes.
func (e *Environment) SubIDString() string { return strconv.Itoa(e.subID) }

// FullRank returns the rank in the full communicator.
func (e *Environment) FullRank() int { return e.fullComm.Rank() }

// SubRank returns the rank inside the sub-environment.
func (e *Environment) SubRank() int { return e.subComm.Rank() }

// Seed returns the run seed.
func (e *Environment) Seed() int64 { return e.seed }

// Rng returns the sub-environment random generator.
func (e *Environment) Rng() *rand.Rand { return e.rng }

// RandSource returns the underlying random source, for distribution
// objects that sample directly from a source.
func (e *Environment) RandSource() rand.Source { return e.src }

// UniformSample draws from Uniform(0,1) using the sub-environment
// generator.
func (e *Environment) UniformSample() float64 { return e.rng.Float64() }

// SubFileName decorates a base file name with the sub-environment
// suffix and the file type extension.
func (e *Environment) SubFileName(base, fileType string) string {
	return base + "_sub" + e.SubIDString() + "." + fileType
}

// Errorf builds an error tagged with the rank that raised it.
func (e *Environment) Errorf(format string, args ...interface{}) error {
	return fmt.Errorf("rank %d (sub %d): %s", e.FullRank(), e.subID,
		fmt.Sprintf(format, args...))
}

// Warningf logs a warning tagged with the rank that raised it.
func (e *Environment) Warningf(format string, args ...interface{}) {
	log.Warningf("rank %d (sub %d): %s", e.FullRank(), e.subID,
		fmt.Sprintf(format, args...))
}
