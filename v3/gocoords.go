/*
 * gocoords.go, part of ssbind.
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
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const appzero float64 = 0.000000000001 //everything smaller than this is considered zero

// Matrix is a set of 3D vectors, one per row.
type Matrix struct {
	*mat.Dense
}

// Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	return &Matrix{mat.NewDense(vecs, cols, make([]float64, cols*vecs))}
}

// NewMatrix builds a Matrix from data, which must have a length
// divisible by 3.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	if l%cols != 0 {
		return nil, fmt.Errorf("v3: input slice length %d not divisible by %d", l, cols)
	}
	return &Matrix{mat.NewDense(l/cols, cols, data)}, nil
}

// Dense2Matrix wraps a 3-col Dense into a Matrix. The data is shared,
// not copied. It returns an error if A doesn't have 3 columns.
func Dense2Matrix(A *mat.Dense) (*Matrix, error) {
	_, c := A.Dims()
	if c != 3 {
		return nil, fmt.Errorf("v3: matrix with %d columns can't hold 3D vectors", c)
	}
	return &Matrix{A}, nil
}

// NVecs returns the number of vectors in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic("v3: the other dimension should be 3")
	}
	return r
}

// VecView returns a view of the ith vector of F. Changes in the view are
// reflected in F.
func (F *Matrix) VecView(i int) *Matrix {
	return &Matrix{F.Slice(i, i+1, 0, 3).(*mat.Dense)}
}

// View returns a view of F spanning r vectors starting from the ith.
func (F *Matrix) View(i, r int) *Matrix {
	return &Matrix{F.Slice(i, i+r, 0, 3).(*mat.Dense)}
}

// SomeVecs puts in the receiver the vectors of A with indexes in clist,
// in the order of clist. The receiver must have len(clist) vectors.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if fr != len(clist) || ar < len(clist) {
		panic(mat.ErrShape)
	}
	for key, val := range clist {
		for j := 0; j < 3; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

// SetVecs sets the vectors of the receiver with indexes in clist to the
// corresponding (by order) vectors of A.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	ar, _ := A.Dims()
	fr, _ := F.Dims()
	if fr < len(clist) || ar < len(clist) {
		panic(mat.ErrShape)
	}
	for key, val := range clist {
		for j := 0; j < 3; j++ {
			F.Set(val, j, A.At(key, j))
		}
	}
}

// SwapVecs swaps the ith and jth vectors of F in place.
func (F *Matrix) SwapVecs(i, j int) {
	if i >= F.NVecs() || j >= F.NVecs() {
		panic("v3: indexes out of range")
	}
	for k := 0; k < 3; k++ {
		fi := F.At(i, k)
		F.Set(i, k, F.At(j, k))
		F.Set(j, k, fi)
	}
}

// AddVec adds the 1x3 vector vec to each vector of A, putting the result
// in the receiver. Panics on mismatched shapes.
func (F *Matrix) AddVec(A, vec *Matrix) {
	ar, _ := A.Dims()
	vr, _ := vec.Dims()
	fr, _ := F.Dims()
	if vr != 1 || ar != fr {
		panic(mat.ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)+vec.At(0, j))
		}
	}
}

// SubVec subtracts the 1x3 vector vec from each vector of A, putting the
// result in the receiver.
func (F *Matrix) SubVec(A, vec *Matrix) {
	ar, _ := A.Dims()
	vr, _ := vec.Dims()
	fr, _ := F.Dims()
	if vr != 1 || ar != fr {
		panic(mat.ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)-vec.At(0, j))
		}
	}
}

// Cross puts the cross product of the first vectors of a and b in the
// first vector of F.
func (F *Matrix) Cross(a, b *Matrix) {
	if a.NVecs() < 1 || b.NVecs() < 1 || F.NVecs() < 1 {
		panic("v3: invalid matrix for Cross")
	}
	F.Set(0, 0, a.At(0, 1)*b.At(0, 2)-a.At(0, 2)*b.At(0, 1))
	F.Set(0, 1, a.At(0, 2)*b.At(0, 0)-a.At(0, 0)*b.At(0, 2))
	F.Set(0, 2, a.At(0, 0)*b.At(0, 1)-a.At(0, 1)*b.At(0, 0))
}

// Dot returns the dot product between the first vectors of F and B.
func (F *Matrix) Dot(B *Matrix) float64 {
	return F.At(0, 0)*B.At(0, 0) + F.At(0, 1)*B.At(0, 1) + F.At(0, 2)*B.At(0, 2)
}

// Norm returns the Euclidean norm of the first vector of F.
func (F *Matrix) Norm() float64 {
	return math.Sqrt(F.Dot(F))
}

// Unit puts a normalized copy of A in the receiver. It panics if A has
// (numerically) zero norm.
func (F *Matrix) Unit(A *Matrix) {
	if F != A {
		F.Copy(A)
	}
	n := F.Norm()
	if n <= appzero {
		panic("v3: can't normalize a zero vector")
	}
	F.Scale(1.0/n, F.Dense)
}

// Clone returns an independent copy of F.
func (F *Matrix) Clone() *Matrix {
	r := Zeros(F.NVecs())
	r.Copy(F)
	return r
}

// String returns a neat string representation of F.
func (F *Matrix) String() string {
	r, _ := F.Dims()
	v := make([]string, r+2)
	v[0] = "\n["
	v[len(v)-1] = " ]"
	for i := 0; i < r; i++ {
		end := "\n"
		if i == r-1 {
			end = ""
		}
		v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f%s", F.At(i, 0), F.At(i, 1), F.At(i, 2), end)
	}
	return strings.Join(v, "")
}
