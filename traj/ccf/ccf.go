/*
 * ccf.go, part of ssbind.
 *
 * Copyright 2024 The ssbind developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/*
Package ccf reads and writes compressed conformer files: a zstd stream
of fixed-point coordinates, one frame per conformer over a constant
topology. Large ensembles from a generation run are parked in this
format between the pipeline stages.
*/
package ccf

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/ssbind/ssbind/v3"
)

const magic = "CCF1"

// Writer writes conformer frames to a ccf file. Frames must all have
// the natoms given at creation.
type Writer struct {
	f         *os.File
	h         *zstd.Encoder
	natoms    int
	prec      int
	filename  string
	writeable bool
}

// NewWriter creates name and writes the header. prec is the number of
// decimals kept per coordinate; the default is 4.
func NewWriter(name string, natoms int, prec ...int) (*Writer, error) {
	p := 4
	if len(prec) > 0 && prec[0] > 0 {
		p = prec[0]
	}
	w := &Writer{natoms: natoms, prec: p, filename: name}
	var err error
	w.f, err = os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	w.h, err = zstd.NewWriter(w.f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		w.f.Close()
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	fmt.Fprintf(w.h, "%s %d %d\n", magic, natoms, p)
	w.writeable = true
	return w, nil
}

// Len returns the atoms per frame.
func (w *Writer) Len() int {
	return w.natoms
}

// WNext writes one frame.
func (w *Writer) WNext(coord *v3.Matrix) error {
	if !w.writeable {
		return Error{"writer already closed", w.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{"nil coordinates", w.filename, []string{"WNext"}, true}
	}
	if coord.NVecs() != w.natoms {
		return Error{fmt.Sprintf("%d coordinates given, %d expected", coord.NVecs(), w.natoms), w.filename, []string{"WNext"}, true}
	}
	scale := math.Pow(10, float64(w.prec))
	for i := 0; i < w.natoms; i++ {
		fmt.Fprintf(w.h, "%d %d %d\n",
			int64(math.RoundToEven(coord.At(i, 0)*scale)),
			int64(math.RoundToEven(coord.At(i, 1)*scale)),
			int64(math.RoundToEven(coord.At(i, 2)*scale)))
	}
	fmt.Fprintln(w.h, "*")
	return nil
}

// Close flushes the compressor and closes the file. The writer cannot
// be used afterwards.
func (w *Writer) Close() error {
	if w == nil || !w.writeable {
		return nil
	}
	w.writeable = false
	if err := w.h.Close(); err != nil {
		w.f.Close()
		return Error{err.Error(), w.filename, []string{"Close"}, true}
	}
	return w.f.Close()
}

// Reader reads frames back from a ccf file.
type Reader struct {
	f        *os.File
	dec      *zstd.Decoder
	h        *bufio.Reader
	natoms   int
	prec     int
	filename string
	readable bool
}

// NewReader opens name and parses the header.
func NewReader(name string) (*Reader, error) {
	r := &Reader{filename: name}
	var err error
	r.f, err = os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewReader"}, true}
	}
	r.dec, err = zstd.NewReader(r.f)
	if err != nil {
		r.f.Close()
		return nil, Error{err.Error(), name, []string{"NewReader"}, true}
	}
	r.h = bufio.NewReader(r.dec)
	header, err := r.h.ReadString('\n')
	if err != nil {
		r.Close()
		return nil, Error{"can't read header: " + err.Error(), name, []string{"NewReader"}, true}
	}
	fields := strings.Fields(header)
	if len(fields) != 3 || fields[0] != magic {
		r.Close()
		return nil, Error{"not a ccf file", name, []string{"NewReader"}, true}
	}
	r.natoms, err = strconv.Atoi(fields[1])
	if err != nil {
		r.Close()
		return nil, Error{"malformed atom count", name, []string{"NewReader"}, true}
	}
	r.prec, err = strconv.Atoi(fields[2])
	if err != nil {
		r.Close()
		return nil, Error{"malformed precision", name, []string{"NewReader"}, true}
	}
	r.readable = true
	return r, nil
}

// Len returns the atoms per frame.
func (r *Reader) Len() int {
	return r.natoms
}

// Next reads one frame into coord, which must hold natoms vectors. A
// nil coord skips the frame. io.EOF signals a clean end of the
// ensemble.
func (r *Reader) Next(coord *v3.Matrix) error {
	if !r.readable {
		return Error{"reader already closed", r.filename, []string{"Next"}, true}
	}
	if coord != nil && coord.NVecs() != r.natoms {
		return Error{fmt.Sprintf("buffer holds %d vectors, %d needed", coord.NVecs(), r.natoms), r.filename, []string{"Next"}, true}
	}
	scale := math.Pow(10, float64(r.prec))
	for i := 0; i < r.natoms; i++ {
		line, err := r.h.ReadString('\n')
		if err != nil {
			if i == 0 && err == io.EOF && strings.TrimSpace(line) == "" {
				return io.EOF
			}
			return Error{"truncated frame: " + err.Error(), r.filename, []string{"Next"}, true}
		}
		if coord == nil {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return Error{fmt.Sprintf("malformed coordinate line %q", line), r.filename, []string{"Next"}, true}
		}
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseInt(fields[k], 10, 64)
			if err != nil {
				return Error{fmt.Sprintf("malformed coordinate %q", fields[k]), r.filename, []string{"Next"}, true}
			}
			coord.Set(i, k, float64(v)/scale)
		}
	}
	term, err := r.h.ReadString('\n')
	if err != nil && err != io.EOF {
		return Error{"missing frame terminator: " + err.Error(), r.filename, []string{"Next"}, true}
	}
	if !strings.HasPrefix(term, "*") {
		return Error{"missing frame terminator", r.filename, []string{"Next"}, true}
	}
	return nil
}

// Close releases the decompressor and the file.
func (r *Reader) Close() {
	if r == nil {
		return
	}
	r.readable = false
	if r.dec != nil {
		r.dec.Close()
	}
	if r.f != nil {
		r.f.Close()
	}
}

// ReadAll opens name and reads every frame.
func ReadAll(name string) ([]*v3.Matrix, error) {
	r, err := NewReader(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	ret := make([]*v3.Matrix, 0, 10)
	for {
		coord := v3.Zeros(r.Len())
		err := r.Next(coord)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, coord)
	}
	return ret, nil
}

// Error is the error type for ccf files, in the same shape used by the
// format readers of the main package.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("ccf file %s error: %s", err.filename, err.message)
}

// Decorate adds one layer to the error's trace and returns the trace.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// FileName returns the file to which the failing ccf was associated.
func (err Error) FileName() string {
	return err.filename
}

// Critical reports whether the error is critical.
func (err Error) Critical() bool {
	return err.critical
}
