/*
 * pdb.go, part of ssbind.
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

//A subset of the PDB format, enough for receptor structures: only ATOM
//and HETATM records of the first model are considered.

// PDBRead reads a PDB-formatted structure from r. Bonds are not
// assigned.
func PDBRead(r io.Reader) (*Molecule, error) {
	buf := bufio.NewReader(r)
	atoms := make([]*Atom, 0, 100)
	data := make([]float64, 0, 300)
	for {
		line, err := buf.ReadString('\n')
		if err != nil && line == "" {
			break
		}
		if strings.HasPrefix(line, "ENDMDL") {
			break
		}
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			if err != nil {
				break
			}
			continue
		}
		at, x, y, z, perr := pdbFillAtom(line)
		if perr != nil {
			return nil, errDecorate(perr, "PDBRead")
		}
		atoms = append(atoms, at)
		data = append(data, x, y, z)
		if err != nil {
			break
		}
	}
	if len(atoms) == 0 {
		return nil, newCError("PDBRead: no ATOM or HETATM records found")
	}
	top, err := NewTopology(atoms, 0, 1)
	if err != nil {
		return nil, errDecorate(err, "PDBRead")
	}
	coords, err := v3.NewMatrix(data)
	if err != nil {
		return nil, errDecorate(err, "PDBRead")
	}
	return NewMolecule(top, []*v3.Matrix{coords})
}

// PDBFileRead reads the PDB file with the given name.
func PDBFileRead(name string) (*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errDecorate(err, "PDBFileRead")
	}
	defer f.Close()
	mol, err := PDBRead(f)
	if err != nil {
		return nil, errDecorate(err, "PDBFileRead "+name)
	}
	return mol, nil
}

// pdbFillAtom parses one ATOM/HETATM line into an Atom plus its
// coordinates, using the fixed PDB columns.
func pdbFillAtom(line string) (*Atom, float64, float64, float64, error) {
	if len(line) < 54 {
		return nil, 0, 0, 0, newCError(fmt.Sprintf("pdb: truncated record: %q", line))
	}
	at := new(Atom)
	at.Het = strings.HasPrefix(line, "HETATM")
	at.ID, _ = strconv.Atoi(strings.TrimSpace(line[6:11]))
	at.Name = strings.TrimSpace(line[12:16])
	at.MolName = strings.TrimSpace(line[17:20])
	at.Chain = strings.TrimSpace(line[21:22])
	at.MolID, _ = strconv.Atoi(strings.TrimSpace(line[22:26]))
	x, err1 := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	z, err3 := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, 0, 0, 0, newCError(fmt.Sprintf("pdb: malformed coordinates: %q", line))
	}
	if len(line) >= 78 {
		at.Symbol = strings.TrimSpace(line[76:78])
	}
	if at.Symbol == "" {
		//fall back on the first letter of the atom name
		name := strings.TrimLeft(at.Name, "0123456789")
		if name != "" {
			at.Symbol = name[0:1]
		}
	}
	at.Mass = symbolMass[at.Symbol]
	return at, x, y, z, nil
}

// PDBWrite writes coords and mol to w as minimal ATOM/HETATM records.
func PDBWrite(w io.Writer, coords *v3.Matrix, mol *Topology) error {
	if coords.NVecs() != mol.Len() {
		return newCError(fmt.Sprintf("PDBWrite: %d coordinates for %d atoms", coords.NVecs(), mol.Len()))
	}
	out := bufio.NewWriter(w)
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		record := "ATOM  "
		if at.Het {
			record = "HETATM"
		}
		chain := at.Chain
		if chain == "" {
			chain = "A"
		}
		fmt.Fprintf(out, "%s%5d %-4s %-3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
			record, i+1, at.Name, at.MolName, chain, at.MolID,
			coords.At(i, 0), coords.At(i, 1), coords.At(i, 2), 1.0, 0.0, at.Symbol)
	}
	fmt.Fprintf(out, "END\n")
	return out.Flush()
}
