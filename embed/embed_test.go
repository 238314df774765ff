/*
 * embed_test.go, part of ssbind.
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

package embed

import (
	"math"
	"testing"

	chem "github.com/ssbind/ssbind"
	v3 "github.com/ssbind/ssbind/v3"
)

func mktop(t *testing.T, symbols []string, bonds [][2]int) *chem.Topology {
	t.Helper()
	atoms := make([]*chem.Atom, len(symbols))
	for i, s := range symbols {
		atoms[i] = &chem.Atom{ID: i + 1, Name: s, Symbol: s, MolName: "LIG", MolID: 1}
	}
	top, err := chem.NewTopology(atoms, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, pair := range bonds {
		b := &chem.Bond{Index: i, At1: top.Atom(pair[0]), At2: top.Atom(pair[1]), Order: 1}
		b.At1.Bonds = append(b.At1.Bonds, b)
		b.At2.Bonds = append(b.At2.Bonds, b)
	}
	return top
}

func vec(x, y, z float64) *v3.Matrix {
	m, _ := v3.NewMatrix([]float64{x, y, z})
	return m
}

// A butane-like chain anchored at both ends of one bond: the anchored
// atoms must stay near their targets, and the grown atoms must end at
// sensible bond lengths.
func TestEmbedAnchors(t *testing.T) {
	top := mktop(t, []string{"C", "C", "C", "C"},
		[][2]int{{0, 1}, {1, 2}, {2, 3}})
	coordMap := map[int]*v3.Matrix{
		0: vec(0, 0, 0),
		1: vec(1.52, 0, 0),
	}
	o := DefaultOptions()
	o.Seed = 7
	coords, err := Embed(top, coordMap, o)
	if err != nil {
		t.Fatal(err)
	}
	for i, target := range coordMap {
		dx := coords.At(i, 0) - target.At(0, 0)
		dy := coords.At(i, 1) - target.At(0, 1)
		dz := coords.At(i, 2) - target.At(0, 2)
		if d := math.Sqrt(dx*dx + dy*dy + dz*dz); d > 0.1 {
			t.Errorf("anchored atom %d ended %f A from its target", i, d)
		}
	}
	for i := 0; i < 3; i++ {
		dx := coords.At(i, 0) - coords.At(i+1, 0)
		dy := coords.At(i, 1) - coords.At(i+1, 1)
		dz := coords.At(i, 2) - coords.At(i+1, 2)
		d := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if math.Abs(d-1.52) > 0.25*1.52 {
			t.Errorf("bond %d-%d ended at %f A", i, i+1, d)
		}
	}
}

// The same seed must give the same coordinates; different seeds should
// explore different placements.
func TestEmbedReproducible(t *testing.T) {
	top := mktop(t, []string{"C", "C", "C", "C"},
		[][2]int{{0, 1}, {1, 2}, {2, 3}})
	coordMap := map[int]*v3.Matrix{0: vec(0, 0, 0), 1: vec(1.52, 0, 0)}
	o := DefaultOptions()
	o.Seed = 42
	a, err := Embed(top, coordMap, o)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Embed(top, coordMap, o)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < top.Len(); i++ {
		for k := 0; k < 3; k++ {
			if math.Abs(a.At(i, k)-b.At(i, k)) > 1e-9 {
				t.Fatalf("seeded embedding not reproducible at atom %d", i)
			}
		}
	}
}

// Anchors that cannot coexist with the bond network must fail with an
// embed error, not a distorted conformer.
func TestEmbedImpossibleConstraints(t *testing.T) {
	top := mktop(t, []string{"C", "C"}, [][2]int{{0, 1}})
	coordMap := map[int]*v3.Matrix{
		0: vec(0, 0, 0),
		1: vec(10, 0, 0), //a 10 A carbon-carbon bond
	}
	o := DefaultOptions()
	o.Seed = 1
	o.MaxAttempts = 3
	if _, err := Embed(top, coordMap, o); err == nil {
		t.Fatal("an impossible anchor set must not embed")
	}
}
