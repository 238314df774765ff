/*
 * correspondence.go, part of ssbind.
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

package mcs

import (
	chem "github.com/ssbind/ssbind"
	v3 "github.com/ssbind/ssbind/v3"
)

// Correspondence is a geometrically validated atom correspondence:
// each matched ligand atom sits within the distance tolerance of its
// reference counterpart, in the reference frame.
type Correspondence struct {
	Pairs []Pair
	//SumDist is the sum of the paired distances, in A. Among all
	//placements that pass the tolerance, the one with the lowest sum
	//is kept.
	SumDist float64
}

// Len returns the number of matched atoms.
func (c *Correspondence) Len() int {
	return len(c.Pairs)
}

// LigIndexes returns the ligand-side atom indexes, in pair order.
func (c *Correspondence) LigIndexes() []int {
	ret := make([]int, len(c.Pairs))
	for i, p := range c.Pairs {
		ret[i] = p.Lig
	}
	return ret
}

// RefIndexes returns the reference-side atom indexes, in pair order.
func (c *Correspondence) RefIndexes() []int {
	ret := make([]int, len(c.Pairs))
	for i, p := range c.Pairs {
		ret[i] = p.Ref
	}
	return ret
}

// LigToRef returns the correspondence as a ligand-to-reference map.
func (c *Correspondence) LigToRef() map[int]int {
	ret := make(map[int]int, len(c.Pairs))
	for _, p := range c.Pairs {
		ret[p.Lig] = p.Ref
	}
	return ret
}

// RefToLig returns the correspondence as a reference-to-ligand map.
func (c *Correspondence) RefToLig() map[int]int {
	ret := make(map[int]int, len(c.Pairs))
	for _, p := range c.Pairs {
		ret[p.Ref] = p.Lig
	}
	return ret
}

// AtomMap computes the atom correspondence between lig and ref: it
// finds their maximum common substructure, enumerates every placement
// of it on each molecule, and keeps the placement pair for which every
// ligand atom lies within o.DistTol of its reference counterpart, in
// the first frame of each molecule. Among the placements that pass,
// the one with the lowest summed distance wins. Both molecules need
// their bonds assigned; ring perception runs here, on internal copies,
// so neither input is mutated.
func AtomMap(lig, ref *chem.Molecule, o *Options) (*Correspondence, error) {
	if o == nil {
		o = DefaultOptions()
	}
	ligc := lig.Copy()
	refc := ref.Copy()
	chem.PerceiveRings(ligc.Topology)
	chem.PerceiveRings(refc.Topology)
	m, err := FindMCS(ligc.Topology, refc.Topology, o)
	if err != nil {
		return nil, err
	}
	lg := NewGraph(ligc.Topology)
	rg := NewGraph(refc.Topology)
	pat := newPattern(lg, m)
	ligMatches := pat.matches(lg, o)
	refMatches := pat.matches(rg, o)
	var best *Correspondence
	for _, lm := range ligMatches {
		for _, rm := range refMatches {
			sum, ok := placementDistance(ligc.Coords[0], refc.Coords[0], lm, rm, o.DistTol)
			if !ok {
				continue
			}
			if best != nil && sum >= best.SumDist {
				continue
			}
			pairs := make([]Pair, len(lm))
			for k := range lm {
				pairs[k] = Pair{Lig: int(lm[k]), Ref: int(rm[k])}
			}
			best = &Correspondence{Pairs: pairs, SumDist: sum}
		}
	}
	if best == nil {
		return nil, newError("mcs: no placement of the %d-atom common substructure fits the reference within %.2f A", m.Len(), o.DistTol)
	}
	return best, nil
}

// placementDistance sums the distances between paired atoms of the two
// placements. It reports false as soon as one pair exceeds tol.
func placementDistance(ligCoords, refCoords *v3.Matrix, lm, rm []int64, tol float64) (float64, bool) {
	d := v3.Zeros(1)
	sum := 0.0
	for k := range lm {
		lv := ligCoords.VecView(int(lm[k]))
		rv := refCoords.VecView(int(rm[k]))
		d.Sub(lv.Dense, rv.Dense)
		dist := d.Norm()
		if dist >= tol {
			return 0, false
		}
		sum += dist
	}
	return sum, true
}

// pattern is a common substructure prepared for placement: its atoms
// in connected BFS order, with, per atom, the constraints against the
// atoms placed before it.
type pattern struct {
	symbols []string
	edges   [][]patEdge //edges[i] lists bonds from position i to earlier positions
}

type patEdge struct {
	pos    int
	inRing bool
}

// newPattern builds the placement pattern from the ligand side of a
// mapping. The mapping must be connected on the ligand graph.
func newPattern(lg *Graph, m *Mapping) *pattern {
	in := make(map[int64]bool, m.Len())
	for _, p := range m.Pairs {
		in[int64(p.Lig)] = true
	}
	order := make([]int64, 0, m.Len())
	posOf := make(map[int64]int, m.Len())
	queue := []int64{int64(m.Pairs[0].Lig)}
	posOf[queue[0]] = 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, n := range lg.neighbors(cur) {
			if !in[n] {
				continue
			}
			if _, seen := posOf[n]; seen {
				continue
			}
			posOf[n] = len(posOf)
			queue = append(queue, n)
		}
	}
	pat := &pattern{
		symbols: make([]string, len(order)),
		edges:   make([][]patEdge, len(order)),
	}
	for i, id := range order {
		pat.symbols[i] = lg.Node(id).(*Atom).Symbol
		for _, n := range lg.neighbors(id) {
			j, ok := posOf[n]
			if !ok || j >= i {
				continue
			}
			b := lg.bondBetween(id, n)
			pat.edges[i] = append(pat.edges[i], patEdge{pos: j, inRing: b.InRing})
		}
	}
	return pat
}

// matches enumerates the placements of the pattern on g, in atom index
// order, symmetry-equivalent placements included. Placement k maps
// pattern position i to g's atom matches[k][i]. At most o.MaxMatches
// placements are returned.
func (p *pattern) matches(g *Graph, o *Options) [][]int64 {
	ret := make([][]int64, 0, 4)
	assign := make([]int64, len(p.symbols))
	used := make(map[int64]bool, len(p.symbols))
	var place func(i int)
	place = func(i int) {
		if o.MaxMatches > 0 && len(ret) >= o.MaxMatches {
			return
		}
		if i == len(p.symbols) {
			ret = append(ret, append([]int64(nil), assign...))
			return
		}
		for _, a := range g.atoms {
			id := a.ID()
			if used[id] || a.Symbol != p.symbols[i] {
				continue
			}
			if !p.placeable(g, i, id, assign, o) {
				continue
			}
			assign[i] = id
			used[id] = true
			place(i + 1)
			delete(used, id)
		}
	}
	place(0)
	return ret
}

// placeable checks the candidate atom against the pattern bonds to the
// already placed positions. Extra bonds on the target are allowed, the
// match is a monomorphism.
func (p *pattern) placeable(g *Graph, i int, id int64, assign []int64, o *Options) bool {
	for _, e := range p.edges[i] {
		b := g.bondBetween(id, assign[e.pos])
		if b == nil {
			return false
		}
		if o.RingMatchesRingOnly && b.InRing != e.inRing {
			return false
		}
	}
	return true
}
