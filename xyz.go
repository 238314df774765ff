/*
 * xyz.go, part of ssbind.
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

// XYZRead reads an XYZ-formatted molecule from r. Bonds are not
// assigned; call AssignBonds afterwards if they are needed.
func XYZRead(r io.Reader) (*Molecule, error) {
	buf := bufio.NewReader(r)
	line, err := buf.ReadString('\n')
	if err != nil {
		return nil, errDecorate(newCError("XYZRead: empty input"), "XYZRead")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, newCError(fmt.Sprintf("XYZRead: malformed atom count line: %q", line))
	}
	if _, err := buf.ReadString('\n'); err != nil { //comment line
		return nil, newCError("XYZRead: unexpected end of file")
	}
	atoms := make([]*Atom, natoms)
	data := make([]float64, 0, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err := buf.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, newCError(fmt.Sprintf("XYZRead: read error at atom %d", i+1))
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, newCError(fmt.Sprintf("XYZRead: truncated line at atom %d", i+1))
		}
		x, err1 := strconv.ParseFloat(fields[1], 64)
		y, err2 := strconv.ParseFloat(fields[2], 64)
		z, err3 := strconv.ParseFloat(fields[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, newCError(fmt.Sprintf("XYZRead: malformed coordinates at atom %d", i+1))
		}
		atoms[i] = &Atom{ID: i + 1, Symbol: fields[0], Name: fields[0], MolName: "LIG", MolID: 1, Mass: symbolMass[fields[0]]}
		data = append(data, x, y, z)
	}
	top, err := NewTopology(atoms, 0, 1)
	if err != nil {
		return nil, errDecorate(err, "XYZRead")
	}
	coords, err := v3.NewMatrix(data)
	if err != nil {
		return nil, errDecorate(err, "XYZRead")
	}
	return NewMolecule(top, []*v3.Matrix{coords})
}

// XYZFileRead reads the XYZ file with the given name.
func XYZFileRead(name string) (*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead")
	}
	defer f.Close()
	mol, err := XYZRead(f)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead "+name)
	}
	return mol, nil
}

// XYZWrite writes the given frame of mol to w in XYZ format.
func XYZWrite(w io.Writer, coords *v3.Matrix, mol *Topology) error {
	if coords.NVecs() != mol.Len() {
		return newCError(fmt.Sprintf("XYZWrite: %d coordinates for %d atoms", coords.NVecs(), mol.Len()))
	}
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "%-4d\n\n", mol.Len())
	for i := 0; i < mol.Len(); i++ {
		fmt.Fprintf(out, "%-2s  %12.6f%12.6f%12.6f \n", mol.Atom(i).Symbol,
			coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
	}
	return out.Flush()
}

// XYZFileWrite writes coords and mol to the file with the given name,
// in XYZ format.
func XYZFileWrite(name string, coords *v3.Matrix, mol *Topology) error {
	f, err := os.Create(name)
	if err != nil {
		return errDecorate(err, "XYZFileWrite")
	}
	defer f.Close()
	return XYZWrite(f, coords, mol)
}
