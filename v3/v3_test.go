/*
 * v3_test.go, part of ssbind.
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

package v3

import (
	"math"
	"testing"
)

func TestNewMatrix(t *testing.T) {
	m, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	if m.NVecs() != 2 {
		t.Errorf("expected 2 vectors, got %d", m.NVecs())
	}
	if _, err := NewMatrix([]float64{1, 2, 3, 4}); err == nil {
		t.Error("a slice not divisible by 3 must be rejected")
	}
}

func TestVecViewIsAView(t *testing.T) {
	m, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	v := m.VecView(1)
	v.Set(0, 0, 40)
	if m.At(1, 0) != 40 {
		t.Error("VecView must share storage with its parent")
	}
}

func TestSomeAndSetVecs(t *testing.T) {
	m, _ := NewMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	sub := Zeros(2)
	sub.SomeVecs(m, []int{2, 0})
	if sub.At(0, 2) != 1 || sub.At(1, 0) != 1 {
		t.Errorf("SomeVecs misgathered: %v", sub)
	}
	sub.Scale(2, sub.Dense)
	m.SetVecs(sub, []int{2, 0})
	if m.At(2, 2) != 2 || m.At(0, 0) != 2 {
		t.Errorf("SetVecs misplaced: %v", m)
	}
}

func TestCrossAndDot(t *testing.T) {
	x, _ := NewMatrix([]float64{1, 0, 0})
	y, _ := NewMatrix([]float64{0, 1, 0})
	z := Zeros(1)
	z.Cross(x, y)
	if z.At(0, 2) != 1 || z.At(0, 0) != 0 || z.At(0, 1) != 0 {
		t.Errorf("x cross y should be z, got %v", z)
	}
	if d := x.Dot(y); d != 0 {
		t.Errorf("x dot y should be 0, got %f", d)
	}
}

func TestUnitAndNorm(t *testing.T) {
	v, _ := NewMatrix([]float64{3, 4, 0})
	if n := v.Norm(); math.Abs(n-5) > 1e-12 {
		t.Errorf("expected norm 5, got %f", n)
	}
	u := Zeros(1)
	u.Unit(v)
	if n := u.Norm(); math.Abs(n-1) > 1e-12 {
		t.Errorf("unit vector with norm %f", n)
	}
	defer func() {
		if recover() == nil {
			t.Error("normalizing a zero vector must panic")
		}
	}()
	z := Zeros(1)
	z.Unit(z)
}

func TestAddSubVec(t *testing.T) {
	m, _ := NewMatrix([]float64{1, 1, 1, 2, 2, 2})
	shift, _ := NewMatrix([]float64{1, 0, -1})
	m.AddVec(m, shift)
	if m.At(0, 0) != 2 || m.At(1, 2) != 1 {
		t.Errorf("AddVec wrong: %v", m)
	}
	m.SubVec(m, shift)
	if m.At(0, 0) != 1 || m.At(1, 2) != 2 {
		t.Errorf("SubVec did not undo AddVec: %v", m)
	}
}
