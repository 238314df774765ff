/*
 * align.go, part of ssbind.
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
	"gonum.org/v1/gonum/mat"
)

const appzero float64 = 0.000000000001

// Super superimposes the coordinates in test, listed in testlst, on the
// coordinates of templa listed in templalst, and applies the resulting
// rotation and translation to the whole of test, in place. testlst and
// templalst must have the same number of elements. The fit is a
// least-squares rigid-body superposition (Kabsch); reflections are
// never produced. Fewer than 3 matched points, or a collinear matched
// set, yields an *AlignmentError. Super returns the RMSD over the
// matched atoms after the fit.
func Super(test, templa *v3.Matrix, testlst, templalst []int) (float64, error) {
	if len(testlst) != len(templalst) {
		return 0, newCError(fmt.Sprintf("Super: mismatched template and test atom numbers: %d, %d", len(templalst), len(testlst)))
	}
	n := len(testlst)
	if n < 3 {
		return 0, newAlignmentError(fmt.Sprintf("Super: %d matched atoms, at least 3 needed for a rigid fit", n))
	}
	ctest := v3.Zeros(n)
	ctest.SomeVecs(test, testlst)
	ctempla := v3.Zeros(n)
	ctempla.SomeVecs(templa, templalst)

	testcenter := centroid(ctest)
	templacenter := centroid(ctempla)
	ctest.SubVec(ctest, testcenter)
	ctempla.SubVec(ctempla, templacenter)

	//cross-covariance H = ctest^T * ctempla, 3x3
	H := mat.NewDense(3, 3, nil)
	H.Mul(ctest.T(), ctempla.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDFull); !ok {
		return 0, newCError("Super: SVD of the cross-covariance matrix failed")
	}
	vals := svd.Values(nil)
	//with 3+ points, collinearity of either matched set drives the
	//second singular value to zero and the rotation is undetermined
	if vals[1] <= appzero*math.Max(1, vals[0]) {
		return 0, newAlignmentError("Super: matched atoms are (nearly) collinear, rigid fit is undetermined")
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	//rotation for row vectors: R = U * D * V^T, D fixes possible reflections
	var UVt mat.Dense
	UVt.Mul(&U, V.T())
	d := mat.Det(&UVt)
	D := mat.NewDiagDense(3, []float64{1, 1, math.Copysign(1, d)})
	var R mat.Dense
	R.Mul(&U, D)
	R.Mul(&R, V.T())

	//apply to the whole test matrix, in place
	test.SubVec(test, testcenter)
	var rotated mat.Dense
	rotated.Mul(test.Dense, &R)
	test.Copy(&rotated)
	test.AddVec(test, templacenter)

	//residual over the matched atoms
	var crot mat.Dense
	crot.Mul(ctest.Dense, &R)
	ctest.Copy(&crot)
	var rmsd float64
	for i := 0; i < n; i++ {
		rmsd += math.Pow(dist3(ctest.VecView(i), ctempla.VecView(i)), 2)
	}
	return math.Sqrt(rmsd / float64(n)), nil
}

// centroid returns the geometric center of the vectors in F as a 1x3
// matrix.
func centroid(F *v3.Matrix) *v3.Matrix {
	n := F.NVecs()
	c := v3.Zeros(1)
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			c.Set(0, j, c.At(0, j)+F.At(i, j))
		}
	}
	c.Scale(1.0/float64(n), c.Dense)
	return c
}

// RMSD returns the root mean square deviation between the coordinate
// sets test and template, which must have the same number of vectors.
// No previous superposition is performed.
func RMSD(test, template *v3.Matrix) (float64, error) {
	tr := template.NVecs()
	if tr != test.NVecs() {
		return 0, newCError("RMSD: ill formed matrices for RMSD calculation")
	}
	var r float64
	for i := 0; i < tr; i++ {
		r += math.Pow(dist3(test.VecView(i), template.VecView(i)), 2)
	}
	return math.Sqrt(r / float64(tr)), nil
}

// RMSDIndexes is RMSD restricted to the atoms listed in testlst and
// templalst, which must have the same length.
func RMSDIndexes(test, template *v3.Matrix, testlst, templalst []int) (float64, error) {
	if len(testlst) != len(templalst) {
		return 0, newCError(fmt.Sprintf("RMSDIndexes: mismatched index lists: %d, %d", len(testlst), len(templalst)))
	}
	ctest := v3.Zeros(len(testlst))
	ctest.SomeVecs(test, testlst)
	ctempla := v3.Zeros(len(templalst))
	ctempla.SomeVecs(template, templalst)
	return RMSD(ctest, ctempla)
}
