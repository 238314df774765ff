/*
 * bonds.go, part of ssbind.
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
	"math"

	v3 "github.com/ssbind/ssbind/v3"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
	toofar   = 3
)

// Bond is a chemical bond between two atoms of the same topology.
type Bond struct {
	Index  int
	At1    *Atom
	At2    *Atom
	Dist   float64
	Order  float64 //order 0 means undetermined
	InRing bool    //set by PerceiveRings
}

// Cross returns the atom of the bond that is not the origin given.
// It panics if origin is not part of the bond, which has to be a
// programming error.
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin.index == B.At1.index {
		return B.At2
	}
	if origin.index == B.At2.index {
		return B.At1
	}
	panic("ssbind: trying to cross a bond: the origin atom given is not present in the bond")
}

// AssignBonds assigns bonds to a molecule based on a simple distance
// criterium, similar to that described in DOI:10.1186/1758-2946-3-33.
// It overwrites any bonds previously present. Not meant for proteins or
// other macromolecules; for the receptor only coordinates are needed.
func AssignBonds(coord *v3.Matrix, mol *Topology) error {
	mol.FillIndexes()
	for i := 0; i < mol.Len(); i++ {
		mol.Atom(i).Bonds = nil
	}
	tot := mol.Len()
	var nextIndex int
	for i := 0; i < tot; i++ {
		at1 := mol.Atom(i)
		cov1 := symbolCovrad[at1.Symbol]
		if cov1 == 0 {
			err := newCError(fmt.Sprintf("AssignBonds: symbol %s of atom %d not parameterized", at1.Symbol, i))
			err.Decorate("AssignBonds")
			return err
		}
		t1 := coord.VecView(i)
		for j := i + 1; j < tot; j++ {
			at2 := mol.Atom(j)
			cov2 := symbolCovrad[at2.Symbol]
			if cov2 == 0 {
				err := newCError(fmt.Sprintf("AssignBonds: symbol %s of atom %d not parameterized", at2.Symbol, j))
				err.Decorate("AssignBonds")
				return err
			}
			t2 := coord.VecView(j)
			d := dist3(t1, t2)
			if d > cov1+cov2+toofar {
				continue
			}
			if d < tooclose*(cov1+cov2) {
				err := newCError(fmt.Sprintf("AssignBonds: atoms %d and %d are too close (%4.2f A)", i, j, d))
				err.Decorate("AssignBonds")
				return err
			}
			if d < cov1+cov2+bondtol {
				b := &Bond{Index: nextIndex, At1: at1, At2: at2, Dist: d}
				at1.Bonds = append(at1.Bonds, b)
				at2.Bonds = append(at2.Bonds, b)
				nextIndex++
			}
		}
	}
	return nil
}

// dist3 returns the Euclidean distance between the first vectors of a
// and b.
func dist3(a, b *v3.Matrix) float64 {
	dx := a.At(0, 0) - b.At(0, 0)
	dy := a.At(0, 1) - b.At(0, 1)
	dz := a.At(0, 2) - b.At(0, 2)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PerceiveRings finds, for every bond, whether it belongs to a ring,
// and returns the smallest ring through each ring bond as a slice of
// atom indexes. It also sets the InRing flag on every bond. A bond is in
// a ring if its two atoms stay connected after the bond is removed; the
// smallest such reconnection path plus the bond is the smallest ring.
func PerceiveRings(mol *Topology) [][]int {
	mol.FillIndexes()
	rings := make([][]int, 0, 2)
	seen := make(map[int]bool)
	for i := 0; i < mol.Len(); i++ {
		for _, b := range mol.Atom(i).Bonds {
			if seen[b.Index] {
				continue
			}
			seen[b.Index] = true
			path := shortestPathAvoiding(mol, b.At1.index, b.At2.index, b.Index)
			if path == nil {
				continue
			}
			b.InRing = true
			rings = append(rings, path)
		}
	}
	//second pass: every bond between two consecutive ring members is a ring bond
	for _, ring := range rings {
		for i, ai := range ring {
			aj := ring[(i+1)%len(ring)]
			for _, b := range mol.Atom(ai).Bonds {
				if b.Cross(mol.Atom(ai)).index == aj {
					b.InRing = true
				}
			}
		}
	}
	return rings
}

// SmallestRing returns the smallest ring containing the atom with the
// given index, or nil if the atom is not in a ring. PerceiveRings must
// have been called on mol.
func SmallestRing(mol *Topology, rings [][]int, index int) []int {
	var best []int
	for _, ring := range rings {
		for _, a := range ring {
			if a != index {
				continue
			}
			if best == nil || len(ring) < len(best) {
				best = ring
			}
		}
	}
	return best
}

// shortestPathAvoiding returns the atom indexes of the shortest path
// from 'from' to 'to' that does not cross the bond with index avoid, or
// nil if there is none. BFS over the bond lists.
func shortestPathAvoiding(mol *Topology, from, to, avoid int) []int {
	type node struct {
		at   int
		prev *node
	}
	visited := make([]bool, mol.Len())
	visited[from] = true
	queue := []*node{{at: from}}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, b := range mol.Atom(curr.at).Bonds {
			if b.Index == avoid {
				continue
			}
			next := b.Cross(mol.Atom(curr.at)).index
			if visited[next] {
				continue
			}
			if next == to {
				path := []int{to}
				for n := curr; n != nil; n = n.prev {
					path = append(path, n.at)
				}
				return path
			}
			visited[next] = true
			queue = append(queue, &node{at: next, prev: curr})
		}
	}
	return nil
}

// RotatableBonds returns the bonds of mol that a torsion scan may
// rotate about: non-ring bonds between two non-terminal heavy atoms.
// PerceiveRings must have been called on mol first.
func RotatableBonds(mol *Topology) []*Bond {
	heavyDegree := func(at *Atom) int {
		d := 0
		for _, b := range at.Bonds {
			if b.Cross(at).Symbol != "H" {
				d++
			}
		}
		return d
	}
	ret := make([]*Bond, 0, 4)
	seen := make(map[int]bool)
	for i := 0; i < mol.Len(); i++ {
		for _, b := range mol.Atom(i).Bonds {
			if seen[b.Index] {
				continue
			}
			seen[b.Index] = true
			if b.InRing || b.At1.Symbol == "H" || b.At2.Symbol == "H" {
				continue
			}
			if heavyDegree(b.At1) < 2 || heavyDegree(b.At2) < 2 {
				continue
			}
			ret = append(ret, b)
		}
	}
	return ret
}

// SplitByBond returns the indexes of the atoms on the At2 side of the
// bond, i.e. the atoms that move when the torsion about b is rotated.
// It returns an error if the bond is in a ring (both sides would be the
// whole molecule).
func SplitByBond(mol *Topology, b *Bond) ([]int, error) {
	if b.InRing {
		return nil, newCError(fmt.Sprintf("SplitByBond: bond %d is part of a ring", b.Index))
	}
	visited := make([]bool, mol.Len())
	visited[b.At1.index] = true
	visited[b.At2.index] = true
	ret := []int{b.At2.index}
	queue := []int{b.At2.index}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, bo := range mol.Atom(curr).Bonds {
			if bo.Index == b.Index {
				continue
			}
			next := bo.Cross(mol.Atom(curr)).index
			if visited[next] {
				continue
			}
			visited[next] = true
			ret = append(ret, next)
			queue = append(queue, next)
		}
	}
	return ret, nil
}
