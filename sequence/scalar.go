package sequence

import (
	"github.com/thelegend6420/queso/env"
)

// ScalarSequence is an ordered, resizable sequence of scalar values,
// used for chain companions such as log-likelihood and log-target
// values.
type ScalarSequence struct {
	env  *env.Environment
	name string
	data []float64
}

// NewScalarSequence creates a zeroed scalar sequence of the given
// size.
func NewScalarSequence(e *env.Environment, size int, name string) *ScalarSequence {
	s := &ScalarSequence{env: e, name: name}
	s.ResizeSequence(size)
	return s
}

// Name returns the sequence name used in output variable names.
func (s *ScalarSequence) Name() string { return s.name }

// SetName renames the sequence.
func (s *ScalarSequence) SetName(name string) { s.name = name }

// SubSequenceSize returns the number of stored values.
func (s *ScalarSequence) SubSequenceSize() int { return len(s.data) }

// ResizeSequence sets the sequence length, preserving existing values
// where possible.
func (s *ScalarSequence) ResizeSequence(size int) {
	old := s.data
	s.data = make([]float64, size)
	copy(s.data, old)
}

// At returns value i.
func (s *ScalarSequence) At(i int) float64 { return s.data[i] }

// Set stores v at position i.
func (s *ScalarSequence) Set(i int, v float64) { s.data[i] = v }

// SubMeanPlain returns the mean of the stored values.
func (s *ScalarSequence) SubMeanPlain() float64 {
	if len(s.data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.data {
		sum += v
	}
	return sum / float64(len(s.data))
}

// SubWriteContents appends the half-open window [start, start+count)
// to the sub-environment's values file as one variable block.
func (s *ScalarSequence) SubWriteContents(start, count int, fileName, fileType string, allowed map[int]bool) error {
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
	rows := make([][]float64, count)
	for i := 0; i < count; i++ {
		rows[i] = s.data[start+i : start+i+1]
	}
	name := s.name + "_sub" + s.env.SubIDString()
	err := appendMatlabBlock(s.env.SubFileName(fileName, fileType), name, rows, 1)
	if err != nil {
		return s.env.Errorf("sequence %s: %v", s.name, err)
	}
	return nil
}

// SubReadContents replaces the sequence contents with up to size
// values read from the sub-environment's file.
func (s *ScalarSequence) SubReadContents(fileName, fileType string, size int) error {
	if err := checkFileType(fileType); err != nil {
		return err
	}
	rows, err := ReadMatlabRows(s.env.SubFileName(fileName, fileType))
	if err != nil {
		return s.env.Errorf("sequence %s: %v", s.name, err)
	}
	if len(rows) < size {
		return s.env.Errorf("sequence %s: file holds %d values, need %d",
			s.name, len(rows), size)
	}
	s.ResizeSequence(size)
	for i := 0; i < size; i++ {
		s.data[i] = rows[i][0]
	}
	return nil
}

// Filter keeps every spacing-th value starting at initial.
func (s *ScalarSequence) Filter(initial, spacing int) {
	if spacing < 1 {
		spacing = 1
	}
	var kept []float64
	for i := initial; i < len(s.data); i += spacing {
		kept = append(kept, s.data[i])
	}
	s.data = kept
}
