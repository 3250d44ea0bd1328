package env

import (
	"sync"
)

// Comm is a message-passing communicator. It provides the collective
// operations the sampler relies on: barriers, element-wise sum
// reductions, gathers and broadcasts. Every rank of a communicator
// must take part in each collective call, in the same order.
type Comm interface {
	// NumProc returns the number of ranks in the communicator.
	NumProc() int
	// Rank returns the rank of the calling process.
	Rank() int
	// Barrier blocks until every rank has entered the barrier.
	Barrier()
	// SumFloat64s returns the element-wise sum of the input slices
	// of all ranks. The result is available on every rank.
	SumFloat64s(in []float64) []float64
	// SumUint64s returns the element-wise sum of the input slices
	// of all ranks. The result is available on every rank.
	SumUint64s(in []uint64) []uint64
	// GatherFloat64s collects the input slices of all ranks, ordered
	// by rank. The result is available on every rank.
	GatherFloat64s(in []float64) [][]float64
	// BcastFloat64s distributes the root's slice to every rank.
	// Non-root ranks pass nil.
	BcastFloat64s(in []float64, root int) []float64
}

// selfComm is the trivial single-rank communicator.
type selfComm struct{}

// SelfComm returns a communicator containing only the calling process.
func SelfComm() Comm { return selfComm{} }

func (selfComm) NumProc() int { return 1 }
func (selfComm) Rank() int    { return 0 }
func (selfComm) Barrier()     {}

func (selfComm) SumFloat64s(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

func (selfComm) SumUint64s(in []uint64) []uint64 {
	out := make([]uint64, len(in))
	copy(out, in)
	return out
}

func (selfComm) GatherFloat64s(in []float64) [][]float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return [][]float64{out}
}

func (selfComm) BcastFloat64s(in []float64, root int) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

// localGroup synchronizes n ranks living in the same process. Each
// collective is a rendezvous: ranks deposit their contribution, the
// last arrival computes the result, and everybody collects it before
// the phase is allowed to drain.
type localGroup struct {
	n int

	mu      sync.Mutex
	cond    *sync.Cond
	arrived int
	leaving int
	floats  [][]float64
	uints   [][]uint64
	result  interface{}
}

// LocalComms creates n communicator endpoints connected to each other
// within this process. Endpoint i has rank i. Intended for replicated
// chains run in one process and for tests.
func LocalComms(n int) []Comm {
	if n < 1 {
		panic("communicator needs at least one rank")
	}
	g := &localGroup{
		n:      n,
		floats: make([][]float64, n),
		uints:  make([][]uint64, n),
	}
	g.cond = sync.NewCond(&g.mu)
	comms := make([]Comm, n)
	for i := 0; i < n; i++ {
		comms[i] = &localComm{group: g, rank: i}
	}
	return comms
}

type localComm struct {
	group *localGroup
	rank  int
}

func (c *localComm) NumProc() int { return c.group.n }
func (c *localComm) Rank() int    { return c.rank }

// rendezvous runs one collective phase. deposit stores the caller's
// contribution, reduce runs exactly once (on the last rank to arrive)
// and collect reads the phase result. All three run under the group
// lock; the result stays valid until every rank has collected.
func (g *localGroup) rendezvous(deposit, reduce, collect func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Wait for the previous phase to fully drain.
	for g.leaving > 0 {
		g.cond.Wait()
	}

	if deposit != nil {
		deposit()
	}
	g.arrived++
	if g.arrived == g.n {
		if reduce != nil {
			reduce()
		}
		g.arrived = 0
		g.leaving = g.n
		g.cond.Broadcast()
	} else {
		for g.leaving == 0 {
			g.cond.Wait()
		}
	}
	if collect != nil {
		collect()
	}
	g.leaving--
	if g.leaving == 0 {
		g.cond.Broadcast()
	}
}

func (c *localComm) Barrier() {
	c.group.rendezvous(nil, nil, nil)
}

func (c *localComm) SumFloat64s(in []float64) []float64 {
	g := c.group
	var out []float64
	g.rendezvous(
		func() { g.floats[c.rank] = in },
		func() {
			sum := make([]float64, len(in))
			for _, contrib := range g.floats {
				for i, v := range contrib {
					sum[i] += v
				}
			}
			g.result = sum
		},
		func() { out = g.result.([]float64) })
	return out
}

func (c *localComm) SumUint64s(in []uint64) []uint64 {
	g := c.group
	var out []uint64
	g.rendezvous(
		func() { g.uints[c.rank] = in },
		func() {
			sum := make([]uint64, len(in))
			for _, contrib := range g.uints {
				for i, v := range contrib {
					sum[i] += v
				}
			}
			g.result = sum
		},
		func() { out = g.result.([]uint64) })
	return out
}

func (c *localComm) GatherFloat64s(in []float64) [][]float64 {
	g := c.group
	var out [][]float64
	g.rendezvous(
		func() { g.floats[c.rank] = in },
		func() {
			all := make([][]float64, g.n)
			for i, contrib := range g.floats {
				cp := make([]float64, len(contrib))
				copy(cp, contrib)
				all[i] = cp
			}
			g.result = all
		},
		func() { out = g.result.([][]float64) })
	return out
}

func (c *localComm) BcastFloat64s(in []float64, root int) []float64 {
	g := c.group
	var out []float64
	g.rendezvous(
		func() {
			if c.rank == root {
				cp := make([]float64, len(in))
				copy(cp, in)
				g.result = cp
			}
		},
		nil,
		func() { out = g.result.([]float64) })
	return out
}
