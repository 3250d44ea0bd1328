// Package sequence stores chains of parameter vectors and their
// scalar companions, and writes them in fixed windows to
// MATLAB-compatible text files.
package sequence

import (
	"fmt"
	"math"

	"github.com/op/go-logging"

	"github.com/thelegend6420/queso/env"
)

// log is the global logging variable.
var log = logging.MustGetLogger("sequence")

// VectorSequence is an ordered, resizable sequence of fixed-dimension
// parameter vectors.
type VectorSequence struct {
	env  *env.Environment
	dim  int
	name string
	data [][]float64
}

// NewVectorSequence creates a sequence of size vectors of the given
// dimension, all zero.
func NewVectorSequence(e *env.Environment, dim, size int, name string) *VectorSequence {
	if dim < 1 {
		panic("vector dimension should be >= 1")
	}
	s := &VectorSequence{env: e, dim: dim, name: name}
	s.ResizeSequence(size)
	return s
}

// Name returns the sequence name used in output variable names.
func (s *VectorSequence) Name() string { return s.name }

// SetName renames the sequence.
func (s *VectorSequence) SetName(name string) { s.name = name }

// Dim returns the vector dimension.
func (s *VectorSequence) Dim() int { return s.dim }

// SubSequenceSize returns the number of positions stored on this
// sub-environment.
func (s *VectorSequence) SubSequenceSize() int { return len(s.data) }

// ResizeSequence sets the sequence length, preserving existing
// positions where possible.
func (s *VectorSequence) ResizeSequence(size int) {
	old := s.data
	s.data = make([][]float64, size)
	for i := range s.data {
		if i < len(old) {
			s.data[i] = old[i]
		} else {
			s.data[i] = make([]float64, s.dim)
		}
	}
}

// PositionValues copies position i into dst and returns it; a nil dst
// allocates.
func (s *VectorSequence) PositionValues(i int, dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, s.dim)
	}
	copy(dst, s.data[i])
	return dst
}

// SetPositionValues stores a copy of v at position i.
func (s *VectorSequence) SetPositionValues(i int, v []float64) {
	if len(v) != s.dim {
		panic(fmt.Sprintf("sequence %s: vector of size %d stored into dimension %d",
			s.name, len(v), s.dim))
	}
	copy(s.data[i], v)
}

// SubMeanPlain returns the mean over all stored positions.
func (s *VectorSequence) SubMeanPlain() []float64 {
	mean := make([]float64, s.dim)
	if len(s.data) == 0 {
		return mean
	}
	for _, v := range s.data {
		for j, x := range v {
			mean[j] += x
		}
	}
	for j := range mean {
		mean[j] /= float64(len(s.data))
	}
	return mean
}

// SubWriteContents appends the half-open window [start, start+count)
// to the sub-environment's chain file as one variable block. Ranks of
// sub-environments missing from allowed do not write. Only sub rank 0
// of a sub-environment writes.
func (s *VectorSequence) SubWriteContents(start, count int, fileName, fileType string, allowed map[int]bool) error {
	if err := checkFileType(fileType); err != nil {
		return err
	}
	if !allowed[s.env.SubID()] || s.env.SubRank() != 0 {
		return nil
	}
	if start < 0 || start+count > len(s.data) {
		return s.env.Errorf("sequence %s: write window [%d,%d) out of range [0,%d)",
			s.name, start, start+count, len(s.data))
	}
	name := s.name + "_sub" + s.env.SubIDString()
	err := appendMatlabBlock(s.env.SubFileName(fileName, fileType), name, s.data[start:start+count], s.dim)
	if err != nil {
		return s.env.Errorf("sequence %s: %v", s.name, err)
	}
	return nil
}

// SubReadContents replaces the sequence contents with up to size
// positions read from the sub-environment's chain file.
func (s *VectorSequence) SubReadContents(fileName, fileType string, size int) error {
	if err := checkFileType(fileType); err != nil {
		return err
	}
	rows, err := ReadMatlabRows(s.env.SubFileName(fileName, fileType))
	if err != nil {
		return s.env.Errorf("sequence %s: %v", s.name, err)
	}
	return s.fillFromRows(rows, size)
}

// UnifiedWriteContents writes the chains of all sub-environments into
// one file, gathered in sub-environment order. Only the first rank of
// the full communicator writes.
func (s *VectorSequence) UnifiedWriteContents(fileName, fileType string) error {
	if err := checkFileType(fileType); err != nil {
		return err
	}
	flat := make([]float64, 0, len(s.data)*s.dim)
	for _, v := range s.data {
		flat = append(flat, v...)
	}
	// Every rank contributes; ranks past sub rank 0 contribute an
	// empty slice so each sub chain appears once in the gather.
	if s.env.SubRank() != 0 {
		flat = nil
	}
	all := s.env.FullComm().GatherFloat64s(flat)
	if s.env.FullRank() != 0 {
		return nil
	}
	var rows [][]float64
	for _, chunk := range all {
		for i := 0; i+s.dim <= len(chunk); i += s.dim {
			rows = append(rows, chunk[i:i+s.dim])
		}
	}
	name := s.name + "_unified"
	err := appendMatlabBlock(fileName+"."+fileType, name, rows, s.dim)
	if err != nil {
		return s.env.Errorf("sequence %s: %v", s.name, err)
	}
	return nil
}

// UnifiedReadContents replaces the sequence contents with up to size
// positions read from a unified chain file. All ranks read the same
// file.
func (s *VectorSequence) UnifiedReadContents(fileName, fileType string, size int) error {
	if err := checkFileType(fileType); err != nil {
		return err
	}
	rows, err := ReadMatlabRows(fileName + "." + fileType)
	if err != nil {
		return s.env.Errorf("sequence %s: %v", s.name, err)
	}
	return s.fillFromRows(rows, size)
}

func (s *VectorSequence) fillFromRows(rows [][]float64, size int) error {
	if len(rows) < size {
		return s.env.Errorf("sequence %s: file holds %d positions, need %d",
			s.name, len(rows), size)
	}
	s.ResizeSequence(size)
	for i := 0; i < size; i++ {
		if len(rows[i]) != s.dim {
			return s.env.Errorf("sequence %s: position %d has %d components, expected %d",
				s.name, i, len(rows[i]), s.dim)
		}
		copy(s.data[i], rows[i])
	}
	return nil
}

// Filter keeps every spacing-th position starting at initial,
// shrinking the sequence in place.
func (s *VectorSequence) Filter(initial, spacing int) {
	if spacing < 1 {
		spacing = 1
	}
	var kept [][]float64
	for i := initial; i < len(s.data); i += spacing {
		kept = append(kept, s.data[i])
	}
	s.data = kept
}

// SubPositionsOfMaximum collects the positions at which values attains
// its maximum over this sub-chain. It returns the positions and the
// maximum value.
func (s *VectorSequence) SubPositionsOfMaximum(values *ScalarSequence) (*VectorSequence, float64) {
	if values.SubSequenceSize() != len(s.data) {
		panic(fmt.Sprintf("sequence %s: values sequence has size %d, chain has %d",
			s.name, values.SubSequenceSize(), len(s.data)))
	}
	maxValue := math.Inf(-1)
	for i := 0; i < values.SubSequenceSize(); i++ {
		if v := values.At(i); v > maxValue {
			maxValue = v
		}
	}
	out := NewVectorSequence(s.env, s.dim, 0, s.name+"_max")
	for i := 0; i < values.SubSequenceSize(); i++ {
		if values.At(i) == maxValue {
			out.data = append(out.data, append([]float64(nil), s.data[i]...))
		}
	}
	return out, maxValue
}

// UnifiedPositionsOfMaximum is the cross-sub-environment counterpart
// of SubPositionsOfMaximum: the maximum is taken over all sub-chains
// and every rank receives the argmax positions and the value.
func (s *VectorSequence) UnifiedPositionsOfMaximum(values *ScalarSequence) (*VectorSequence, float64) {
	subPositions, subMax := s.SubPositionsOfMaximum(values)

	contrib := []float64{subMax}
	if s.env.SubRank() != 0 {
		contrib = []float64{math.Inf(-1)}
	}
	all := s.env.FullComm().GatherFloat64s(contrib)
	maxValue := math.Inf(-1)
	for _, c := range all {
		if c[0] > maxValue {
			maxValue = c[0]
		}
	}

	flat := make([]float64, 0)
	if s.env.SubRank() == 0 && subMax == maxValue {
		for _, v := range subPositions.data {
			flat = append(flat, v...)
		}
	}
	gathered := s.env.FullComm().GatherFloat64s(flat)
	out := NewVectorSequence(s.env, s.dim, 0, s.name+"_unifiedMax")
	for _, chunk := range gathered {
		for i := 0; i+s.dim <= len(chunk); i += s.dim {
			out.data = append(out.data, append([]float64(nil), chunk[i:i+s.dim]...))
		}
	}
	return out, maxValue
}
