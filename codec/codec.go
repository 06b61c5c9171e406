// Package codec reads and writes grids in the line-oriented .cyb text format:
//
//	<rows> <cols>
//	<row 0: cols characters of '0' or '1'>
//	...
//	<row rows-1>
//
// Decoding is lenient about cell characters: only '1' marks a living cell.
package codec

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol/model"
)

// Ext is the conventional file extension for saved configurations.
const Ext = ".cyb"

var (
	// ErrMalformedConfig is returned when the header line is missing or unparsable.
	ErrMalformedConfig = errors.New("malformed config")
	// ErrTruncatedConfig is returned when data lines are missing or too short.
	ErrTruncatedConfig = errors.New("truncated config")
)

const (
	aliveChar = '1'
	deadChar  = '0'
)

// Encode renders g in the .cyb text format.
func Encode(g *model.Grid) string {
	var sb strings.Builder
	sb.Grow(16 + g.Rows()*(g.Cols()+1))
	// strings.Builder never returns a write error.
	_ = EncodeTo(&sb, g)
	return sb.String()
}

// EncodeTo writes g to w in the .cyb text format.
func EncodeTo(w io.Writer, g *model.Grid) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strconv.Itoa(g.Rows()))
	bw.WriteByte(' ')
	bw.WriteString(strconv.Itoa(g.Cols()))
	bw.WriteByte('\n')
	for r := range g.Rows() {
		for c := range g.Cols() {
			if g.Alive(r, c) {
				bw.WriteByte(aliveChar)
			} else {
				bw.WriteByte(deadChar)
			}
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "[EncodeTo] failed to write grid")
	}
	return nil
}

// Decode parses a grid from its .cyb text form.
func Decode(text string) (*model.Grid, error) {
	return DecodeFrom(strings.NewReader(text))
}

// DecodeFrom parses a grid from r. Lines after the last data row are ignored.
// Rows are counted in characters, and a row may be arbitrarily long.
func DecodeFrom(r io.Reader) (*model.Grid, error) {
	br := bufio.NewReader(r)

	header, ok, err := readLine(br)
	if err != nil {
		return nil, errors.Wrap(err, "[DecodeFrom] failed to read header")
	}
	if !ok {
		return nil, errors.Wrap(ErrMalformedConfig, "[DecodeFrom] missing header line")
	}
	rows, cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	g, err := model.NewGrid(rows, cols)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedConfig, "[DecodeFrom] %v", err)
	}
	for i := range rows {
		line, ok, err := readLine(br)
		if err != nil {
			return nil, errors.Wrapf(err, "[DecodeFrom] failed to read row %d", i)
		}
		if !ok {
			return nil, errors.Wrapf(ErrTruncatedConfig, "[DecodeFrom] got %d of %d rows", i, rows)
		}
		cells := []rune(line)
		if len(cells) < cols {
			return nil, errors.Wrapf(ErrTruncatedConfig, "[DecodeFrom] row %d has %d of %d cells", i, len(cells), cols)
		}
		for j := range cols {
			if cells[j] == aliveChar {
				_ = g.Set(i, j, true)
			}
		}
	}
	return g, nil
}

// readLine returns the next line without its "\n" or "\r\n" terminator.
// ok is false once r is exhausted.
func readLine(r *bufio.Reader) (line string, ok bool, err error) {
	line, err = r.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", false, nil
		}
		err = nil
	}
	if err != nil {
		return "", false, err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), true, nil
}

func parseHeader(line string) (rows, cols int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, errors.Wrapf(ErrMalformedConfig, "[parseHeader] want \"<rows> <cols>\", got %q", line)
	}
	if rows, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, errors.Wrapf(ErrMalformedConfig, "[parseHeader] rows %q", fields[0])
	}
	if cols, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, errors.Wrapf(ErrMalformedConfig, "[parseHeader] cols %q", fields[1])
	}
	if rows <= 0 || cols <= 0 {
		return 0, 0, errors.Wrapf(ErrMalformedConfig, "[parseHeader] dimensions %dx%d must be positive", rows, cols)
	}
	return rows, cols, nil
}

// ReadFile decodes the grid stored at path.
func ReadFile(path string) (*model.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[ReadFile] failed to open file: %+v", path)
	}
	defer f.Close()

	g, err := DecodeFrom(f)
	if err != nil {
		return nil, errors.Wrapf(err, "[ReadFile] failed to decode file: %+v", path)
	}
	return g, nil
}

// WriteFile encodes g into path, replacing any existing file.
func WriteFile(path string, g *model.Grid) error {
	if err := os.WriteFile(path, []byte(Encode(g)), 0o644); err != nil {
		return errors.Wrapf(err, "[WriteFile] failed to write file: %+v", path)
	}
	return nil
}
