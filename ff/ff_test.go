/*
 * ff_test.go, part of ssbind.
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

package ff

import (
	"errors"
	"math"
	"testing"

	chem "github.com/ssbind/ssbind"
	v3 "github.com/ssbind/ssbind/v3"
)

func mktop(t *testing.T, symbols []string, coords [][3]float64, bonds [][2]int) (*chem.Topology, *v3.Matrix) {
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
		b := &chem.Bond{Index: i, At1: top.Atom(pair[0]), At2: top.Atom(pair[1]), Order: 1}
		b.At1.Bonds = append(b.At1.Bonds, b)
		b.At2.Bonds = append(b.At2.Bonds, b)
	}
	cv, err := v3.NewMatrix(data)
	if err != nil {
		t.Fatal(err)
	}
	return top, cv
}

func adist(c *v3.Matrix, i, j int) float64 {
	dx := c.At(i, 0) - c.At(j, 0)
	dy := c.At(i, 1) - c.At(j, 1)
	dz := c.At(i, 2) - c.At(j, 2)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func TestFieldEnergyZeroAtEquilibrium(t *testing.T) {
	//two carbons at the covalent radii sum
	top, _ := mktop(t, []string{"C", "C"},
		[][3]float64{{0, 0, 0}, {1.52, 0, 0}}, [][2]int{{0, 1}})
	f, err := New(top)
	if err != nil {
		t.Fatal(err)
	}
	x := []float64{0, 0, 0, 1.52, 0, 0}
	if e := f.Energy(x); e > 1e-9 {
		t.Errorf("equilibrium energy should be zero, got %g", e)
	}
	x[3] = 2.0
	if e := f.Energy(x); e <= 0 {
		t.Errorf("a stretched bond should cost energy, got %g", e)
	}
}

func TestMinimizeRelaxesStrainedAngle(t *testing.T) {
	//propane heavy atoms with the terminal carbon pushed out of the
	//equilibrium angle
	top, coords := mktop(t, []string{"C", "C", "C"},
		[][3]float64{{0, 0, 0}, {1.52, 0, 0}, {3.0, 0.1, 0}},
		[][2]int{{0, 1}, {1, 2}})
	f, err := New(top)
	if err != nil {
		t.Fatal(err)
	}
	before := energyOf(f, coords)
	converged := false
	for i := 0; i < 10 && !converged; i++ {
		converged, err = f.Minimize(coords, 4)
		if err != nil {
			t.Fatal(err)
		}
	}
	after := energyOf(f, coords)
	if after >= before {
		t.Errorf("minimization did not lower the energy: %g -> %g", before, after)
	}
	//the 1-3 distance for a tetrahedral center on two 1.52 A bonds
	want := 1.52 * math.Sqrt(2*(1-math.Cos(tetrahedral)))
	if got := adist(coords, 0, 2); math.Abs(got-want) > 0.1 {
		t.Errorf("1-3 distance after minimization: got %f, want about %f", got, want)
	}
	if got := adist(coords, 1, 2); math.Abs(got-1.52) > 0.05 {
		t.Errorf("bond length after minimization: got %f, want about 1.52", got)
	}
}

func TestRestraintHoldsAnchors(t *testing.T) {
	top, coords := mktop(t, []string{"C", "C", "C"},
		[][3]float64{{0, 0, 0}, {1.52, 0, 0}, {3.0, 0.1, 0}},
		[][2]int{{0, 1}, {1, 2}})
	f, err := New(top)
	if err != nil {
		t.Fatal(err)
	}
	t0 := coords.VecView(0).Clone()
	t1 := coords.VecView(1).Clone()
	f.AddRestraint(0, t0, 0.01, 200)
	f.AddRestraint(1, t1, 0.01, 200)
	converged := false
	for i := 0; i < 10 && !converged; i++ {
		converged, err = f.Minimize(coords, 4)
		if err != nil {
			t.Fatal(err)
		}
	}
	d0 := adist3(coords, 0, t0)
	d1 := adist3(coords, 1, t1)
	if d0 > 0.05 || d1 > 0.05 {
		t.Errorf("restrained atoms drifted: %f and %f A from their targets", d0, d1)
	}
	//the free atom must still have relaxed
	if got := adist(coords, 1, 2); math.Abs(got-1.52) > 0.05 {
		t.Errorf("free atom did not relax: bond length %f", got)
	}
}

// An optimizer failure must surface as an error, not as a quiet
// "not converged" with whatever geometry the optimizer left behind.
func TestMinimizeReportsOptimizerFailure(t *testing.T) {
	top, coords := mktop(t, []string{"C", "C"},
		[][3]float64{{0, 0, 0}, {1.52, 0, 0}}, [][2]int{{0, 1}})
	f, err := New(top)
	if err != nil {
		t.Fatal(err)
	}
	coords.Set(1, 0, math.NaN())
	converged, err := f.Minimize(coords, 4)
	if err == nil {
		t.Fatalf("a NaN coordinate must fail the minimization, got converged=%v", converged)
	}
	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Errorf("expected an *ff.Error, got %T", err)
	}
}

func TestUnparameterizedElement(t *testing.T) {
	top, _ := mktop(t, []string{"C", "Xx"},
		[][3]float64{{0, 0, 0}, {1.5, 0, 0}}, [][2]int{{0, 1}})
	_, err := New(top)
	if err == nil {
		t.Fatal("an unparameterized element must be rejected")
	}
	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Errorf("expected an *ff.Error, got %T", err)
	}
}

func energyOf(f *Field, coords *v3.Matrix) float64 {
	x := make([]float64, 3*coords.NVecs())
	for i := 0; i < coords.NVecs(); i++ {
		x[3*i] = coords.At(i, 0)
		x[3*i+1] = coords.At(i, 1)
		x[3*i+2] = coords.At(i, 2)
	}
	return f.Energy(x)
}

func adist3(c *v3.Matrix, i int, target *v3.Matrix) float64 {
	dx := c.At(i, 0) - target.At(0, 0)
	dy := c.At(i, 1) - target.At(0, 1)
	dz := c.At(i, 2) - target.At(0, 2)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
