/*
 * chem.go, part of ssbind.
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
	"fmt"

	v3 "github.com/ssbind/ssbind/v3"
)

/*Note: some functions here panic instead of returning errors. Those are
 * "fundamental" functions; if something goes wrong in them the program is
 * most likely wrong elsewhere and should crash. The panics are related to
 * nil objects and out-of-bounds access.*/

// Atom contains the topological information for one atom. Coordinates
// live separately, in the frames of a Molecule.
type Atom struct {
	Name    string //PDB/mol2-style atom name, when read from a file
	ID      int    //the serial number as read, usually 1-based
	index   int    //0-based position in the topology, set by FillIndexes
	MolName string
	MolID   int
	Chain   string
	Mass    float64
	Charge  float64 //partial charge, when available
	Symbol  string
	Het     bool
	Bonds   []*Bond
}

// Index returns the 0-based position of the atom in its topology.
func (A *Atom) Index() int {
	return A.index
}

// Copy returns a copy of the atom. Bonds are not copied: they reference
// other atoms and are rewired by Topology.CopyAtoms.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("ssbind: attempted to copy a nil atom")
	}
	N := new(Atom)
	*N = *A
	N.Bonds = nil
	return N
}

/*****Topology type***/

// Topology contains the information about a molecule that is not
// expected to change between conformers, i.e. everything but coordinates.
type Topology struct {
	Atoms  []*Atom
	charge int
	multi  int
}

// NewTopology makes a topology from the given atoms, total charge and
// multiplicity. It returns an error if ats is nil.
func NewTopology(ats []*Atom, charge, multi int) (*Topology, error) {
	if ats == nil {
		return nil, newCError("NewTopology: nil atom slice")
	}
	T := &Topology{Atoms: ats, charge: charge, multi: multi}
	T.FillIndexes()
	return T, nil
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// Atom returns the atom at position i. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("ssbind: requested atom out of bounds")
	}
	return T.Atoms[i]
}

// Charge returns the total charge of the topology.
func (T *Topology) Charge() int {
	return T.charge
}

// Multi returns the multiplicity of the topology.
func (T *Topology) Multi() int {
	return T.multi
}

// SetCharge sets the total charge of the topology.
func (T *Topology) SetCharge(c int) {
	T.charge = c
}

// SetMulti sets the multiplicity of the topology.
func (T *Topology) SetMulti(m int) {
	T.multi = m
}

// FillIndexes records in each atom its current position in the topology.
func (T *Topology) FillIndexes() {
	for i, at := range T.Atoms {
		at.index = i
	}
}

// CopyAtoms returns a deep copy of the topology. Bonds are rewired so
// the copy references only its own atoms.
func (T *Topology) CopyAtoms() *Topology {
	N := new(Topology)
	N.charge = T.charge
	N.multi = T.multi
	N.Atoms = make([]*Atom, T.Len())
	for i, at := range T.Atoms {
		N.Atoms[i] = at.Copy()
		N.Atoms[i].index = i
	}
	seen := make(map[int]*Bond)
	for i, at := range T.Atoms {
		for _, b := range at.Bonds {
			nb, ok := seen[b.Index]
			if !ok {
				nb = &Bond{Index: b.Index, Dist: b.Dist, Order: b.Order, InRing: b.InRing}
				nb.At1 = N.Atoms[b.At1.index]
				nb.At2 = N.Atoms[b.At2.index]
				seen[b.Index] = nb
			}
			N.Atoms[i].Bonds = append(N.Atoms[i].Bonds, nb)
		}
	}
	return N
}

// SomeAtoms returns a new topology with the atoms whose indexes are
// given in atomlist, in that order. The atoms are shared with T.
func (T *Topology) SomeAtoms(atomlist []int) (*Topology, error) {
	ret := make([]*Atom, 0, len(atomlist))
	for k, j := range atomlist {
		if j >= T.Len() {
			return nil, newCError(fmt.Sprintf("SomeAtoms: atom requested (number: %d, value: %d) out of range", k, j))
		}
		ret = append(ret, T.Atoms[j])
	}
	return &Topology{Atoms: ret, charge: T.charge, multi: T.multi}, nil
}

/**Type Molecule**/

// Molecule is a topology plus one or more coordinate sets ("frames" or
// conformers). The topology is shared by all frames.
type Molecule struct {
	*Topology
	Coords []*v3.Matrix
}

// NewMolecule makes a molecule from a topology and a set of frames.
// It checks that each frame has one coordinate triplet per atom.
func NewMolecule(top *Topology, coords []*v3.Matrix) (*Molecule, error) {
	if top == nil {
		return nil, newCError("NewMolecule: nil topology")
	}
	if coords == nil {
		return nil, newCError("NewMolecule: nil coords")
	}
	M := &Molecule{Topology: top, Coords: coords}
	if err := M.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return M, nil
}

// Copy returns an independent deep copy of the molecule, atoms, bonds
// and all frames included. This is the value-semantics entry point: any
// transformation in this library copies first and never touches the
// caller's template.
func (M *Molecule) Copy() *Molecule {
	if err := M.Corrupted(); err != nil {
		panic(err.Error()) //copying a corrupted molecule means the program is wrong
	}
	N := new(Molecule)
	N.Topology = M.CopyAtoms()
	N.Coords = make([]*v3.Matrix, 0, len(M.Coords))
	for _, frame := range M.Coords {
		N.Coords = append(N.Coords, frame.Clone())
	}
	return N
}

// AddFrame appends a coordinate set to the molecule. It checks that the
// number of coordinates matches the number of atoms.
func (M *Molecule) AddFrame(frame *v3.Matrix) {
	if frame == nil {
		panic("ssbind: attempted to add a nil frame")
	}
	if M.Len() != frame.NVecs() {
		panic(fmt.Sprintf("ssbind: wrong number of coordinates (%d) for %d atoms", frame.NVecs(), M.Len()))
	}
	M.Coords = append(M.Coords, frame)
}

// Coord returns a view of the coordinates of the given atom in the
// given frame. Panics if out of range.
func (M *Molecule) Coord(atom, frame int) *v3.Matrix {
	if frame >= len(M.Coords) {
		panic(fmt.Sprintf("ssbind: frame requested (%d) out of range", frame))
	}
	return M.Coords[frame].VecView(atom)
}

// LenFrames returns the number of frames in the molecule.
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

// Corrupted checks that every frame has as many coordinate triplets as
// the molecule has atoms.
func (M *Molecule) Corrupted() error {
	for i, frame := range M.Coords {
		if M.Len() != frame.NVecs() {
			return newCError(fmt.Sprintf("inconsistent coordinates/atoms in frame %d: atoms %d, coords %d", i, M.Len(), frame.NVecs()))
		}
	}
	return nil
}
