/*
 * align_test.go, part of ssbind.
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
	"errors"
	"math"
	"testing"

	v3 "github.com/ssbind/ssbind/v3"
)

func matFrom(t *testing.T, data []float64) *v3.Matrix {
	t.Helper()
	m, err := v3.NewMatrix(data)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// four non-coplanar points
func tetra(t *testing.T) *v3.Matrix {
	return matFrom(t, []float64{
		0, 0, 0,
		1.5, 0, 0,
		0.7, 1.3, 0,
		0.7, 0.4, 1.2,
	})
}

func TestSuperRecoversRigidMotion(t *testing.T) {
	templa := tetra(t)
	test := templa.Clone()
	ax1 := matFrom(t, []float64{0, 0, 0})
	ax2 := matFrom(t, []float64{1, 1, 0.5})
	if err := RotateAbout(test, ax1, ax2, 1.1, nil); err != nil {
		t.Fatal(err)
	}
	shift := matFrom(t, []float64{3, -2, 7})
	test.AddVec(test, shift)
	lst := []int{0, 1, 2, 3}
	rmsd, err := Super(test, templa, lst, lst)
	if err != nil {
		t.Fatal(err)
	}
	if rmsd > 1e-9 {
		t.Errorf("a pure rigid motion must superpose exactly, got RMSD %g", rmsd)
	}
	for i := 0; i < 4; i++ {
		for k := 0; k < 3; k++ {
			if math.Abs(test.At(i, k)-templa.At(i, k)) > 1e-9 {
				t.Fatalf("atom %d not recovered", i)
			}
		}
	}
}

func TestSuperIdempotent(t *testing.T) {
	templa := tetra(t)
	test := tetra(t)
	//perturb slightly so the fit is not exact
	test.Set(3, 2, test.At(3, 2)+0.3)
	lst := []int{0, 1, 2, 3}
	if _, err := Super(test, templa, lst, lst); err != nil {
		t.Fatal(err)
	}
	again := test.Clone()
	if _, err := Super(again, templa, lst, lst); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		for k := 0; k < 3; k++ {
			if math.Abs(test.At(i, k)-again.At(i, k)) > 1e-6 {
				t.Fatalf("re-alignment moved atom %d by more than 1e-6", i)
			}
		}
	}
}

func TestSuperRejectsCollinear(t *testing.T) {
	templa := matFrom(t, []float64{0, 0, 0, 1, 0, 0, 2, 0, 0})
	test := matFrom(t, []float64{0, 0, 0, 0, 1, 0, 0, 2, 0})
	lst := []int{0, 1, 2}
	_, err := Super(test, templa, lst, lst)
	if err == nil {
		t.Fatal("collinear matched sets must not produce a fit")
	}
	var aerr *AlignmentError
	if !errors.As(err, &aerr) {
		t.Errorf("expected an *AlignmentError, got %T", err)
	}
}

func TestSuperRejectsTooFewAtoms(t *testing.T) {
	templa := tetra(t)
	test := tetra(t)
	_, err := Super(test, templa, []int{0, 1}, []int{0, 1})
	if err == nil {
		t.Fatal("two matched atoms cannot define a rigid fit")
	}
	var aerr *AlignmentError
	if !errors.As(err, &aerr) {
		t.Errorf("expected an *AlignmentError, got %T", err)
	}
}

func TestSuperNeverReflects(t *testing.T) {
	templa := tetra(t)
	//mirror the template through the xy plane
	test := templa.Clone()
	for i := 0; i < 4; i++ {
		test.Set(i, 2, -test.At(i, 2))
	}
	lst := []int{0, 1, 2, 3}
	rmsd, err := Super(test, templa, lst, lst)
	if err != nil {
		t.Fatal(err)
	}
	//a mirror image cannot be superposed by rotation alone
	if rmsd < 1e-3 {
		t.Errorf("a reflection seems to have been applied, RMSD %g", rmsd)
	}
}

func TestRMSD(t *testing.T) {
	a := matFrom(t, []float64{0, 0, 0, 1, 0, 0})
	b := matFrom(t, []float64{0, 0, 1, 1, 0, 1})
	d, err := RMSD(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d-1) > 1e-12 {
		t.Errorf("got RMSD %f, want 1", d)
	}
	if _, err := RMSD(a, matFrom(t, []float64{0, 0, 0})); err == nil {
		t.Error("mismatched sizes must be an error")
	}
}
