package sequence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FileTypeMatlab is the only chain file type currently supported. The
// files are MATLAB-compatible ASCII: a dimension assertion followed by
// a bracketed literal list, meant to be eval'ed by a post-processor.
const FileTypeMatlab = "m"

// NoFileName marks an unset file name option.
const NoFileName = "."

// writeMatlabBlock appends one named variable block to w:
//
//	name = zeros(R,C);
//	name = [
//	 v11 v12 ... v1C;
//	 ...
//	];
func writeMatlabBlock(w io.Writer, name string, rows [][]float64, cols int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s = zeros(%d,%d);\n", name, len(rows), cols)
	fmt.Fprintf(bw, "%s = [\n", name)
	for _, row := range rows {
		for j, v := range row {
			if j > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(strconv.FormatFloat(v, 'g', 17, 64)); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(";\n"); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("];\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// appendMatlabBlock opens fileName for appending (creating it if
// needed) and writes one variable block.
func appendMatlabBlock(fileName, name string, rows [][]float64, cols int) error {
	f, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeMatlabBlock(f, name, rows, cols)
}

// ReadMatlabRows parses every bracketed literal list in a MATLAB-format
// chain file and returns the concatenated rows, in file order. Window
// writes emit one block per window, so concatenation restores the
// original sequence.
func ReadMatlabRows(fileName string) ([][]float64, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]float64
	inBlock := false
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case !inBlock:
			if strings.HasSuffix(line, "= [") {
				inBlock = true
			}
		case line == "];":
			inBlock = false
		default:
			line = strings.TrimSuffix(line, ";")
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			row := make([]float64, len(fields))
			for i, field := range fields {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, fmt.Errorf("%s: bad value %q: %v", fileName, field, err)
				}
				row[i] = v
			}
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if inBlock {
		return nil, fmt.Errorf("%s: unterminated literal list", fileName)
	}
	return rows, nil
}

// AppendMatlabMatrix appends a named matrix variable block to a file,
// used for adapted-covariance debug dumps.
func AppendMatlabMatrix(fileName, varName string, rows [][]float64) error {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	return appendMatlabBlock(fileName, varName, rows, cols)
}

// checkFileType validates the requested chain file type.
func checkFileType(fileType string) error {
	if fileType != FileTypeMatlab {
		return fmt.Errorf("unsupported chain file type %q (only %q is supported)",
			fileType, FileTypeMatlab)
	}
	return nil
}
