package mcmc

import (
	"github.com/thelegend6420/queso/env"
)

// RawChainInfo collects counters and phase timers for one raw chain
// generation.
type RawChainInfo struct {
	RunTime          float64
	CandidateRunTime float64
	TargetRunTime    float64
	MhAlphaRunTime   float64
	DrAlphaRunTime   float64
	DrRunTime        float64
	AmRunTime        float64

	NumTargetCalls            uint64
	NumDRs                    uint64
	NumOutOfTargetSupport     uint64
	NumOutOfTargetSupportInDR uint64
	NumRejections             uint64
}

// Reset zeroes all counters and timers.
func (i *RawChainInfo) Reset() {
	*i = RawChainInfo{}
}

// Add accumulates another info field-wise.
func (i *RawChainInfo) Add(o RawChainInfo) {
	i.RunTime += o.RunTime
	i.CandidateRunTime += o.CandidateRunTime
	i.TargetRunTime += o.TargetRunTime
	i.MhAlphaRunTime += o.MhAlphaRunTime
	i.DrAlphaRunTime += o.DrAlphaRunTime
	i.DrRunTime += o.DrRunTime
	i.AmRunTime += o.AmRunTime

	i.NumTargetCalls += o.NumTargetCalls
	i.NumDRs += o.NumDRs
	i.NumOutOfTargetSupport += o.NumOutOfTargetSupport
	i.NumOutOfTargetSupportInDR += o.NumOutOfTargetSupportInDR
	i.NumRejections += o.NumRejections
}

// CommSum reduces the info by summation across the communicator; every
// rank receives the totals.
func (i RawChainInfo) CommSum(c env.Comm) RawChainInfo {
	timers := c.SumFloat64s([]float64{
		i.RunTime, i.CandidateRunTime, i.TargetRunTime,
		i.MhAlphaRunTime, i.DrAlphaRunTime, i.DrRunTime, i.AmRunTime,
	})
	counters := c.SumUint64s([]uint64{
		i.NumTargetCalls, i.NumDRs, i.NumOutOfTargetSupport,
		i.NumOutOfTargetSupportInDR, i.NumRejections,
	})
	return RawChainInfo{
		RunTime:          timers[0],
		CandidateRunTime: timers[1],
		TargetRunTime:    timers[2],
		MhAlphaRunTime:   timers[3],
		DrAlphaRunTime:   timers[4],
		DrRunTime:        timers[5],
		AmRunTime:        timers[6],

		NumTargetCalls:            counters[0],
		NumDRs:                    counters[1],
		NumOutOfTargetSupport:     counters[2],
		NumOutOfTargetSupportInDR: counters[3],
		NumRejections:             counters[4],
	}
}
