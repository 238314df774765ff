/*
 * generator_test.go, part of ssbind.
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

package generator

import (
	"context"
	"fmt"
	"math"
	"testing"

	chem "github.com/ssbind/ssbind"
	v3 "github.com/ssbind/ssbind/v3"
)

func mkmol(t *testing.T, symbols []string, coords [][3]float64, bonds [][2]int) *chem.Molecule {
	t.Helper()
	atoms := make([]*chem.Atom, len(symbols))
	data := make([]float64, 0, len(symbols)*3)
	for i, s := range symbols {
		atoms[i] = &chem.Atom{ID: i + 1, Name: s, Symbol: s, MolName: "LIG", MolID: 1}
		data = append(data, coords[i][0], coords[i][1], coords[i][2])
	}
	top, err := chem.NewTopology(atoms, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, pair := range bonds {
		dx := coords[pair[0]][0] - coords[pair[1]][0]
		dy := coords[pair[0]][1] - coords[pair[1]][1]
		dz := coords[pair[0]][2] - coords[pair[1]][2]
		b := &chem.Bond{Index: i, At1: top.Atom(pair[0]), At2: top.Atom(pair[1]),
			Order: 1, Dist: math.Sqrt(dx*dx + dy*dy + dz*dz)}
		b.At1.Bonds = append(b.At1.Bonds, b)
		b.At2.Bonds = append(b.At2.Bonds, b)
	}
	cv, err := v3.NewMatrix(data)
	if err != nil {
		t.Fatal(err)
	}
	mol, err := chem.NewMolecule(top, []*v3.Matrix{cv})
	if err != nil {
		t.Fatal(err)
	}
	return mol
}

func hexagon(r, dz float64) ([][3]float64, [][2]int) {
	coords := make([][3]float64, 6)
	bonds := make([][2]int, 6)
	for i := 0; i < 6; i++ {
		a := float64(i) * math.Pi / 3
		coords[i] = [3]float64{r * math.Cos(a), r * math.Sin(a), dz}
		bonds[i] = [2]int{i, (i + 1) % 6}
	}
	return coords, bonds
}

// reference: fluorobenzene; ligand: the same ring with a propyl-like
// chain, displaced out of the reference plane
func testCore(t *testing.T) *Core {
	t.Helper()
	refCoords, refBonds := hexagon(1.39, 0)
	refCoords = append(refCoords, [3]float64{2.74, 0, 0})
	refBonds = append(refBonds, [2]int{0, 6})
	ref := mkmol(t, []string{"C", "C", "C", "C", "C", "C", "F"}, refCoords, refBonds)

	ligCoords, ligBonds := hexagon(1.39, 0.1)
	ligCoords = append(ligCoords,
		[3]float64{2.91, 0, 0.1},
		[3]float64{3.61, 1.25, 0.1},
		[3]float64{5.13, 1.25, 0.1})
	ligBonds = append(ligBonds, [2]int{0, 6}, [2]int{6, 7}, [2]int{7, 8})
	lig := mkmol(t, []string{"C", "C", "C", "C", "C", "C", "C", "C", "C"}, ligCoords, ligBonds)

	o := DefaultOptions()
	o.Seed = 3
	core, err := NewCore(lig, ref, o)
	if err != nil {
		t.Fatal(err)
	}
	return core
}

func TestCoreGenerateOne(t *testing.T) {
	core := testCore(t)
	coords, err := core.GenerateOne(11)
	if err != nil {
		t.Fatal(err)
	}
	ref := core.Reference().Coords[0]
	for _, p := range core.Correspondence().Pairs {
		dx := coords.At(p.Lig, 0) - ref.At(p.Ref, 0)
		dy := coords.At(p.Lig, 1) - ref.At(p.Ref, 1)
		dz := coords.At(p.Lig, 2) - ref.At(p.Ref, 2)
		if d := math.Sqrt(dx*dx + dy*dy + dz*dz); d > core.opts.MCS.DistTol {
			t.Errorf("matched atom %d ended %f A from its reference position", p.Lig, d)
		}
	}
}

func TestCoreMinimizeOne(t *testing.T) {
	core := testCore(t)
	coords, err := core.GenerateOne(11)
	if err != nil {
		t.Fatal(err)
	}
	before := coords.Clone()
	relaxed, err := core.MinimizeOne(coords)
	if err != nil {
		t.Fatal(err)
	}
	//the input must not have been touched
	for i := 0; i < before.NVecs(); i++ {
		for k := 0; k < 3; k++ {
			if coords.At(i, k) != before.At(i, k) {
				t.Fatal("MinimizeOne modified its input")
			}
		}
	}
	ref := core.Reference().Coords[0]
	for _, p := range core.Correspondence().Pairs {
		dx := relaxed.At(p.Lig, 0) - ref.At(p.Ref, 0)
		dy := relaxed.At(p.Lig, 1) - ref.At(p.Ref, 1)
		dz := relaxed.At(p.Lig, 2) - ref.At(p.Ref, 2)
		if d := math.Sqrt(dx*dx + dy*dy + dz*dz); d > core.opts.MCS.DistTol {
			t.Errorf("matched atom %d drifted to %f A from the reference during minimization", p.Lig, d)
		}
	}
}

// Aligning an already aligned conformer must be a no-op.
func TestAlignIdempotent(t *testing.T) {
	core := testCore(t)
	coords, err := core.GenerateOne(11)
	if err != nil {
		t.Fatal(err)
	}
	once := coords.Clone()
	if _, err := core.AlignToRef(once); err != nil {
		t.Fatal(err)
	}
	twice := once.Clone()
	if _, err := core.AlignToRef(twice); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < once.NVecs(); i++ {
		for k := 0; k < 3; k++ {
			if math.Abs(once.At(i, k)-twice.At(i, k)) > 1e-6 {
				t.Fatalf("re-alignment moved atom %d by more than 1e-6", i)
			}
		}
	}
}

// A batch where some seeds fail must return exactly the surviving
// conformers plus one failure record per bad seed.
func TestEmbedGeneratorPartialFailure(t *testing.T) {
	core := testCore(t)
	g := NewEmbedGenerator(core)
	g.seed = 100
	g.cpu = 4
	bad := map[int64]bool{101: true, 137: true, 180: true}
	g.gen = func(seed int64) (*v3.Matrix, error) {
		if bad[seed] {
			return nil, fmt.Errorf("forced failure for seed %d", seed)
		}
		return v3.Zeros(1), nil
	}
	res, err := g.GenerateConformers(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Confs) != 97 {
		t.Errorf("expected 97 conformers, got %d", len(res.Confs))
	}
	if len(res.Failed) != 3 {
		t.Errorf("expected 3 failures, got %d", len(res.Failed))
	}
	for _, f := range res.Failed {
		if !bad[f.Seed] {
			t.Errorf("unexpected failed seed %d", f.Seed)
		}
	}
}

func TestEmbedGeneratorSmallBatch(t *testing.T) {
	core := testCore(t)
	g := NewEmbedGenerator(core)
	g.cpu = 2
	res, err := g.GenerateConformers(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Confs)+len(res.Failed) != 4 {
		t.Errorf("conformers plus failures must add up to the request: %d + %d",
			len(res.Confs), len(res.Failed))
	}
	if len(res.Confs) == 0 {
		t.Error("no conformer survived a feasible batch")
	}
}

func TestAngleGeneratorScan(t *testing.T) {
	core := testCore(t)
	core.opts.Degree = 120
	g := NewAngleGenerator(core)
	res, err := g.GenerateConformers(context.Background(), 20)
	if err != nil {
		t.Fatal(err)
	}
	//two scannable bonds at three steps each
	if len(res.Confs) != 9 {
		t.Fatalf("expected 9 scan conformers, got %d", len(res.Confs))
	}
	base := core.Ligand().Coords[0]
	for ci, conf := range res.Confs {
		for _, p := range core.Correspondence().Pairs {
			for k := 0; k < 3; k++ {
				if math.Abs(conf.At(p.Lig, k)-base.At(p.Lig, k)) > 1e-9 {
					t.Fatalf("scan conformer %d moved matched atom %d", ci, p.Lig)
				}
			}
		}
	}
	//the terminal chain atom must actually move between conformers
	moved := false
	for _, conf := range res.Confs[1:] {
		if math.Abs(conf.At(8, 0)-res.Confs[0].At(8, 0)) > 1e-6 ||
			math.Abs(conf.At(8, 1)-res.Confs[0].At(8, 1)) > 1e-6 ||
			math.Abs(conf.At(8, 2)-res.Confs[0].At(8, 2)) > 1e-6 {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("the torsion scan never moved the chain")
	}
}
