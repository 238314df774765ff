/*
 * graph.go, part of ssbind.
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
	"gonum.org/v1/gonum/graph"
)

// Atom wraps a chem.Atom as a gonum graph node. The node ID is the
// atom's index in its topology, so FillIndexes must have run.
type Atom struct {
	*chem.Atom
}

func (a *Atom) ID() int64 {
	return int64(a.Index())
}

// Bond wraps a chem.Bond as a gonum graph edge.
type Bond struct {
	*chem.Bond
	at1, at2 *Atom
}

func (b *Bond) From() graph.Node {
	return b.at1
}

func (b *Bond) To() graph.Node {
	return b.at2
}

// Bonds are not directional, so the reversal happens in place.
func (b *Bond) ReversedEdge() graph.Edge {
	b.at1, b.at2 = b.at2, b.at1
	return b
}

// Atoms implements graph.Nodes over a slice of atoms.
type Atoms struct {
	atoms []*Atom
	curr  int
}

func (a *Atoms) Len() int {
	return len(a.atoms)
}

func (a *Atoms) Reset() {
	a.curr = -1
}

func (a *Atoms) Next() bool {
	if a.curr >= len(a.atoms)-1 {
		return false
	}
	a.curr++
	return true
}

func (a *Atoms) Node() graph.Node {
	return a.atoms[a.curr]
}

// Graph is a molecular graph over a chem.Topology. It implements
// gonum's graph.Undirected, which lets the topo functions run on it.
type Graph struct {
	atoms []*Atom
	bonds []*Bond
	adj   map[int64][]*Bond
}

// NewGraph builds the graph of top from its bond lists. Atom indexes
// are (re)filled.
func NewGraph(top *chem.Topology) *Graph {
	top.FillIndexes()
	g := &Graph{
		atoms: make([]*Atom, 0, top.Len()),
		bonds: make([]*Bond, 0, top.Len()),
		adj:   make(map[int64][]*Bond, top.Len()),
	}
	seen := make(map[int]bool)
	for i := 0; i < top.Len(); i++ {
		g.atoms = append(g.atoms, &Atom{Atom: top.Atom(i)})
	}
	for i := 0; i < top.Len(); i++ {
		for _, b := range top.Atom(i).Bonds {
			if seen[b.Index] {
				continue
			}
			seen[b.Index] = true
			nb := &Bond{Bond: b, at1: g.atoms[b.At1.Index()], at2: g.atoms[b.At2.Index()]}
			g.bonds = append(g.bonds, nb)
			g.adj[nb.at1.ID()] = append(g.adj[nb.at1.ID()], nb)
			g.adj[nb.at2.ID()] = append(g.adj[nb.at2.ID()], nb)
		}
	}
	return g
}

// subgraph keeps only the atoms in keep, and only the bonds for which
// keepBond returns true. The wrapped chem atoms and bonds are shared
// with the parent graph.
func (g *Graph) subgraph(keep map[int64]bool, keepBond func(*Bond) bool) *Graph {
	sub := &Graph{adj: make(map[int64][]*Bond)}
	for _, a := range g.atoms {
		if keep[a.ID()] {
			sub.atoms = append(sub.atoms, a)
		}
	}
	for _, b := range g.bonds {
		if !keep[b.at1.ID()] || !keep[b.at2.ID()] || !keepBond(b) {
			continue
		}
		sub.bonds = append(sub.bonds, b)
		sub.adj[b.at1.ID()] = append(sub.adj[b.at1.ID()], b)
		sub.adj[b.at2.ID()] = append(sub.adj[b.at2.ID()], b)
	}
	return sub
}

func (g *Graph) Len() int {
	return len(g.atoms)
}

func (g *Graph) Nodes() graph.Nodes {
	return &Atoms{atoms: g.atoms, curr: -1}
}

func (g *Graph) Node(id int64) graph.Node {
	for _, a := range g.atoms {
		if a.ID() == id {
			return a
		}
	}
	return nil
}

func (g *Graph) From(id int64) graph.Nodes {
	ret := make([]*Atom, 0, len(g.adj[id]))
	for _, b := range g.adj[id] {
		if b.at1.ID() == id {
			ret = append(ret, b.at2)
		} else {
			ret = append(ret, b.at1)
		}
	}
	return &Atoms{atoms: ret, curr: -1}
}

func (g *Graph) HasEdgeBetween(xid, yid int64) bool {
	return g.bondBetween(xid, yid) != nil
}

func (g *Graph) Edge(uid, vid int64) graph.Edge {
	b := g.bondBetween(uid, vid)
	if b == nil {
		return nil
	}
	return b
}

func (g *Graph) EdgeBetween(xid, yid int64) graph.Edge {
	return g.Edge(xid, yid)
}

// bondBetween returns the bond joining the two atoms, or nil.
func (g *Graph) bondBetween(xid, yid int64) *Bond {
	for _, b := range g.adj[xid] {
		if b.at1.ID() == yid || b.at2.ID() == yid {
			return b
		}
	}
	return nil
}

// neighbors returns the IDs of the atoms bonded to id, in bond order.
func (g *Graph) neighbors(id int64) []int64 {
	ret := make([]int64, 0, len(g.adj[id]))
	for _, b := range g.adj[id] {
		if b.at1.ID() == id {
			ret = append(ret, b.at2.ID())
		} else {
			ret = append(ret, b.at1.ID())
		}
	}
	return ret
}
