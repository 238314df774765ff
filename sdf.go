/*
 * sdf.go, part of ssbind.
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

package ssbind

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/ssbind/ssbind/v3"
)

//SDF/MOL reading and writing, V2000 connection tables only. Multi-record
//SD files with a constant topology are read as one Molecule with one
//frame per record, which is how conformer ensembles are stored here.

// SDFRead reads V2000 records from r until EOF. The topology is taken
// from the first record; subsequent records must have the same atom
// count and contribute one frame each.
func SDFRead(r io.Reader) (*Molecule, error) {
	buf := bufio.NewReader(r)
	var mol *Molecule
	for {
		top, coords, err := sdfReadRecord(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errDecorate(err, "SDFRead")
		}
		if mol == nil {
			mol, err = NewMolecule(top, []*v3.Matrix{coords})
			if err != nil {
				return nil, errDecorate(err, "SDFRead")
			}
			continue
		}
		if coords.NVecs() != mol.Len() {
			return nil, newCError(fmt.Sprintf("SDFRead: record with %d atoms in a file that started with %d", coords.NVecs(), mol.Len()))
		}
		mol.AddFrame(coords)
	}
	if mol == nil {
		return nil, newCError("SDFRead: no V2000 records found")
	}
	return mol, nil
}

// SDFFileRead reads the SDF/MOL file with the given name.
func SDFFileRead(name string) (*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errDecorate(err, "SDFFileRead")
	}
	defer f.Close()
	mol, err := SDFRead(f)
	if err != nil {
		return nil, errDecorate(err, "SDFFileRead "+name)
	}
	return mol, nil
}

// sdfReadRecord parses one V2000 record. io.EOF is returned, unwrapped,
// when no further record starts before the end of the stream.
func sdfReadRecord(buf *bufio.Reader) (*Topology, *v3.Matrix, error) {
	//3 header lines, counts line
	header := make([]string, 0, 4)
	for len(header) < 4 {
		line, err := buf.ReadString('\n')
		if err != nil && (len(header) > 0 || strings.TrimSpace(line) != "") {
			return nil, nil, newCError("sdf: unexpected end of file in header")
		}
		if err != nil {
			return nil, nil, io.EOF
		}
		header = append(header, strings.TrimRight(line, "\n"))
	}
	counts := header[3]
	if len(counts) < 6 {
		return nil, nil, newCError(fmt.Sprintf("sdf: malformed counts line: %q", counts))
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(counts[0:3]))
	if err != nil {
		return nil, nil, newCError(fmt.Sprintf("sdf: malformed atom count: %q", counts))
	}
	nbonds, err := strconv.Atoi(strings.TrimSpace(counts[3:6]))
	if err != nil {
		return nil, nil, newCError(fmt.Sprintf("sdf: malformed bond count: %q", counts))
	}
	atoms := make([]*Atom, natoms)
	data := make([]float64, 0, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err := buf.ReadString('\n')
		if err != nil || len(line) < 34 {
			return nil, nil, newCError(fmt.Sprintf("sdf: truncated atom block at atom %d", i+1))
		}
		x, err1 := strconv.ParseFloat(strings.TrimSpace(line[0:10]), 64)
		y, err2 := strconv.ParseFloat(strings.TrimSpace(line[10:20]), 64)
		z, err3 := strconv.ParseFloat(strings.TrimSpace(line[20:30]), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, nil, newCError(fmt.Sprintf("sdf: malformed coordinates at atom %d", i+1))
		}
		symbol := strings.TrimSpace(line[31:34])
		atoms[i] = &Atom{ID: i + 1, Symbol: symbol, Name: symbol, MolName: "LIG", MolID: 1, Mass: symbolMass[symbol]}
		data = append(data, x, y, z)
	}
	top, err := NewTopology(atoms, 0, 1)
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i < nbonds; i++ {
		line, err := buf.ReadString('\n')
		if err != nil || len(line) < 9 {
			return nil, nil, newCError(fmt.Sprintf("sdf: truncated bond block at bond %d", i+1))
		}
		a1, err1 := strconv.Atoi(strings.TrimSpace(line[0:3]))
		a2, err2 := strconv.Atoi(strings.TrimSpace(line[3:6]))
		order, err3 := strconv.Atoi(strings.TrimSpace(line[6:9]))
		if err1 != nil || err2 != nil || err3 != nil || a1 < 1 || a2 < 1 || a1 > natoms || a2 > natoms {
			return nil, nil, newCError(fmt.Sprintf("sdf: malformed bond line %d: %q", i+1, line))
		}
		b := &Bond{Index: i, At1: top.Atom(a1 - 1), At2: top.Atom(a2 - 1), Order: float64(order)}
		b.At1.Bonds = append(b.At1.Bonds, b)
		b.At2.Bonds = append(b.At2.Bonds, b)
	}
	//skip properties and data items until the record terminator
	for {
		line, err := buf.ReadString('\n')
		if err != nil {
			break //a last record without $$$$ is accepted
		}
		if strings.HasPrefix(line, "$$$$") {
			break
		}
	}
	coords, err := v3.NewMatrix(data)
	if err != nil {
		return nil, nil, err
	}
	return top, coords, nil
}

// SDFWrite writes mol to w as a multi-record V2000 SD file, one record
// per frame in frames. If frames is nil, all frames of mol are written.
func SDFWrite(w io.Writer, mol *Molecule, frames []int) error {
	if frames == nil {
		frames = make([]int, mol.LenFrames())
		for i := range frames {
			frames[i] = i
		}
	}
	for _, f := range frames {
		if f >= mol.LenFrames() {
			return newCError(fmt.Sprintf("SDFWrite: frame %d out of range", f))
		}
		if err := sdfWriteRecord(w, mol, f); err != nil {
			return errDecorate(err, "SDFWrite")
		}
	}
	return nil
}

// SDFFileWrite writes mol to the file with the given name, as SDFWrite.
func SDFFileWrite(name string, mol *Molecule, frames []int) error {
	f, err := os.Create(name)
	if err != nil {
		return errDecorate(err, "SDFFileWrite")
	}
	defer f.Close()
	return SDFWrite(f, mol, frames)
}

func sdfWriteRecord(w io.Writer, mol *Molecule, frame int) error {
	bonds := allBonds(mol.Topology)
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "%s\n  ssbind\n\n", mol.Atom(0).MolName)
	fmt.Fprintf(out, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", mol.Len(), len(bonds))
	coords := mol.Coords[frame]
	for i := 0; i < mol.Len(); i++ {
		fmt.Fprintf(out, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n",
			coords.At(i, 0), coords.At(i, 1), coords.At(i, 2), mol.Atom(i).Symbol)
	}
	for _, b := range bonds {
		order := int(b.Order)
		if order == 0 {
			order = 1
		}
		fmt.Fprintf(out, "%3d%3d%3d  0\n", b.At1.index+1, b.At2.index+1, order)
	}
	fmt.Fprintf(out, "M  END\n$$$$\n")
	return out.Flush()
}

// allBonds returns every bond of the topology exactly once, ordered by
// bond index.
func allBonds(top *Topology) []*Bond {
	seen := make(map[int]bool)
	ret := make([]*Bond, 0, top.Len())
	for i := 0; i < top.Len(); i++ {
		for _, b := range top.Atom(i).Bonds {
			if !seen[b.Index] {
				seen[b.Index] = true
				ret = append(ret, b)
			}
		}
	}
	for i := 1; i < len(ret); i++ {
		for j := i; j > 0 && ret[j-1].Index > ret[j].Index; j-- {
			ret[j-1], ret[j] = ret[j], ret[j-1]
		}
	}
	return ret
}
