/*
 * mcs.go, part of ssbind.
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
Package mcs builds the atom correspondence between a ligand and a bound
reference molecule: the maximum common substructure of the two
topologies, placed onto both molecules and validated geometrically
against the reference coordinates.
*/
package mcs

import (
	"fmt"
	"strings"

	chem "github.com/ssbind/ssbind"
	"gonum.org/v1/gonum/graph/topo"
)

// Options control the substructure search and the geometric
// validation of the resulting correspondence.
type Options struct {
	//DistTol is the maximum distance, in A, allowed between a matched
	//ligand atom and its reference counterpart.
	DistTol float64
	//RingMatchesRingOnly forbids matching a ring bond to a chain bond.
	RingMatchesRingOnly bool
	//CompleteRingsOnly drops ring bonds whose ring is only partially
	//covered by the common substructure.
	CompleteRingsOnly bool
	//MaxMatches caps the symmetry-equivalent placements enumerated on
	//each molecule.
	MaxMatches int
}

// DefaultOptions returns the options used by the reference workflow.
func DefaultOptions() *Options {
	return &Options{
		DistTol:             1.0,
		RingMatchesRingOnly: true,
		CompleteRingsOnly:   true,
		MaxMatches:          1000,
	}
}

// Error is returned when no usable correspondence between ligand and
// reference can be built.
type Error struct {
	message string
	deco    []string
}

func (e *Error) Error() string {
	return strings.Join(append([]string{e.message}, e.deco...), " ")
}

func (e *Error) Decorate(dec string) []string {
	if dec != "" {
		e.deco = append(e.deco, dec)
	}
	return e.deco
}

func newError(format string, a ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, a...)}
}

// Mapping is a common substructure expressed as ligand-to-reference
// atom index pairs, ligand side first.
type Mapping struct {
	Pairs []Pair
}

// Pair relates one ligand atom index to one reference atom index.
type Pair struct {
	Lig, Ref int
}

// Len returns the number of matched atoms.
func (m *Mapping) Len() int {
	return len(m.Pairs)
}

// LigIndexes returns the ligand-side atom indexes, in pair order.
func (m *Mapping) LigIndexes() []int {
	ret := make([]int, len(m.Pairs))
	for i, p := range m.Pairs {
		ret[i] = p.Lig
	}
	return ret
}

// RefIndexes returns the reference-side atom indexes, in pair order.
func (m *Mapping) RefIndexes() []int {
	ret := make([]int, len(m.Pairs))
	for i, p := range m.Pairs {
		ret[i] = p.Ref
	}
	return ret
}

// FindMCS returns a maximum common connected substructure of lig and
// ref as a Mapping. Atoms match if their element symbols match; bonds
// must agree on presence between every pair of matched atoms, and, per
// the options, on ring membership. Ring perception must have run on
// both topologies before the call.
func FindMCS(lig, ref *chem.Topology, o *Options) (*Mapping, error) {
	if o == nil {
		o = DefaultOptions()
	}
	lg := NewGraph(lig)
	rg := NewGraph(ref)
	s := &searcher{lig: lg, ref: rg, opts: o}
	s.run()
	if len(s.best) < 2 {
		return nil, newError("mcs: ligand and reference share no common substructure")
	}
	m := &Mapping{Pairs: make([]Pair, 0, len(s.best))}
	for _, a := range lg.atoms {
		if r, ok := s.best[a.ID()]; ok {
			m.Pairs = append(m.Pairs, Pair{Lig: int(a.ID()), Ref: int(r)})
		}
	}
	if o.CompleteRingsOnly {
		var err error
		m, err = pruneIncompleteRings(m, lg, rg)
		if err != nil {
			return nil, err
		}
	}
	if m.Len() < 2 {
		return nil, newError("mcs: no common substructure left after ring pruning")
	}
	return m, nil
}

// searcher holds the state of a McGregor-style backtracking search for
// the largest connected common induced subgraph.
type searcher struct {
	lig, ref *Graph
	opts     *Options
	best     map[int64]int64
}

func (s *searcher) run() {
	s.best = map[int64]int64{}
	for _, la := range s.lig.atoms {
		for _, ra := range s.ref.atoms {
			if la.Symbol != ra.Symbol {
				continue
			}
			mapping := map[int64]int64{la.ID(): ra.ID()}
			used := map[int64]bool{ra.ID(): true}
			s.extend(mapping, used, map[int64]bool{})
		}
	}
}

// extend grows the mapping one frontier atom at a time. For each
// unmapped ligand atom adjacent to the mapped set it branches over the
// compatible reference images, plus one branch that excludes the atom
// for good.
func (s *searcher) extend(mapping map[int64]int64, used, excluded map[int64]bool) {
	a := s.frontier(mapping, excluded)
	if a == -1 {
		if len(mapping) > len(s.best) {
			s.best = make(map[int64]int64, len(mapping))
			for k, v := range mapping {
				s.best[k] = v
			}
		}
		return
	}
	//bound: even mapping every remaining ligand atom cannot beat the best
	free := 0
	for _, la := range s.lig.atoms {
		if _, ok := mapping[la.ID()]; !ok && !excluded[la.ID()] {
			free++
		}
	}
	if len(mapping)+free <= len(s.best) {
		return
	}
	for _, b := range s.candidates(a, mapping, used) {
		mapping[a] = b
		used[b] = true
		s.extend(mapping, used, excluded)
		delete(mapping, a)
		delete(used, b)
	}
	excluded[a] = true
	s.extend(mapping, used, excluded)
	delete(excluded, a)
}

// frontier returns the lowest-index unmapped, unexcluded ligand atom
// adjacent to the mapped set, or -1.
func (s *searcher) frontier(mapping map[int64]int64, excluded map[int64]bool) int64 {
	for _, la := range s.lig.atoms {
		id := la.ID()
		if _, ok := mapping[id]; ok || excluded[id] {
			continue
		}
		for _, n := range s.lig.neighbors(id) {
			if _, ok := mapping[n]; ok {
				return id
			}
		}
	}
	return -1
}

// candidates returns the reference atoms onto which the ligand atom a
// can be mapped without breaking the induced-subgraph property.
func (s *searcher) candidates(a int64, mapping map[int64]int64, used map[int64]bool) []int64 {
	la := s.lig.Node(a).(*Atom)
	ret := make([]int64, 0, 4)
	for _, ra := range s.ref.atoms {
		b := ra.ID()
		if used[b] || ra.Symbol != la.Symbol {
			continue
		}
		if s.compatible(a, b, mapping) {
			ret = append(ret, b)
		}
	}
	return ret
}

// compatible reports whether adding the pair (a, b) keeps the mapping
// an induced common subgraph: for every mapped pair, a bond between
// the ligand atoms must correspond to a bond between the reference
// atoms and vice versa, and matched bonds must agree on ring
// membership when RingMatchesRingOnly is set.
func (s *searcher) compatible(a, b int64, mapping map[int64]int64) bool {
	connected := false
	for lj, rj := range mapping {
		lb := s.lig.bondBetween(a, lj)
		rb := s.ref.bondBetween(b, rj)
		if (lb == nil) != (rb == nil) {
			return false
		}
		if lb == nil {
			continue
		}
		if s.opts.RingMatchesRingOnly && lb.InRing != rb.InRing {
			return false
		}
		connected = true
	}
	return connected
}

// pruneIncompleteRings removes from the mapping every matched ring
// bond whose smallest ring, on either molecule, is not fully covered,
// then keeps the largest connected component of what remains.
func pruneIncompleteRings(m *Mapping, lg, rg *Graph) (*Mapping, error) {
	ligOf := make(map[int64]int64, m.Len())
	refOf := make(map[int64]int64, m.Len())
	for _, p := range m.Pairs {
		ligOf[int64(p.Lig)] = int64(p.Ref)
		refOf[int64(p.Ref)] = int64(p.Lig)
	}
	keepBond := func(b *Bond) bool {
		r1, ok1 := ligOf[b.at1.ID()]
		r2, ok2 := ligOf[b.at2.ID()]
		if !ok1 || !ok2 {
			return false
		}
		rb := rg.bondBetween(r1, r2)
		if rb == nil {
			return false
		}
		if !b.InRing && !rb.InRing {
			return true
		}
		return ringCovered(b, lg, func(id int64) bool { _, ok := ligOf[id]; return ok }) &&
			ringCovered(rb, rg, func(id int64) bool { _, ok := refOf[id]; return ok })
	}
	keep := make(map[int64]bool, len(ligOf))
	for id := range ligOf {
		keep[id] = true
	}
	sub := lg.subgraph(keep, keepBond)
	comps := topo.ConnectedComponents(sub)
	var largest []int64
	for _, c := range comps {
		if len(c) > len(largest) {
			ids := make([]int64, len(c))
			for i, n := range c {
				ids[i] = n.ID()
			}
			largest = ids
		}
	}
	inLargest := make(map[int64]bool, len(largest))
	for _, id := range largest {
		inLargest[id] = true
	}
	pruned := &Mapping{Pairs: make([]Pair, 0, len(largest))}
	for _, p := range m.Pairs {
		if inLargest[int64(p.Lig)] {
			pruned.Pairs = append(pruned.Pairs, p)
		}
	}
	return pruned, nil
}

// ringCovered reports whether the smallest ring through b (if any) has
// all its atoms accepted by mapped, walking the ring via BFS on the
// graph with b removed.
func ringCovered(b *Bond, g *Graph, mapped func(int64) bool) bool {
	if !b.InRing {
		return true
	}
	ring := smallestRingThrough(g, b)
	if ring == nil {
		return true
	}
	for _, id := range ring {
		if !mapped(id) {
			return false
		}
	}
	return true
}

// smallestRingThrough returns the atoms of the smallest ring that
// contains b, or nil if b is not part of any cycle.
func smallestRingThrough(g *Graph, b *Bond) []int64 {
	src, dst := b.at1.ID(), b.at2.ID()
	prev := map[int64]int64{src: src}
	queue := []int64{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == dst {
			path := []int64{dst}
			for at := dst; at != src; at = prev[at] {
				path = append(path, prev[at])
			}
			return path
		}
		for _, n := range g.neighbors(cur) {
			if cur == src && n == dst {
				continue //the ring must close through another path
			}
			if _, seen := prev[n]; seen {
				continue
			}
			prev[n] = cur
			queue = append(queue, n)
		}
	}
	return nil
}
