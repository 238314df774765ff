/*
 * geometric.go, part of ssbind.
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
	"math"

	v3 "github.com/ssbind/ssbind/v3"
)

// Deg2Rad converts degrees to radians.
func Deg2Rad(f float64) float64 {
	return f * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(f float64) float64 {
	return f * 180 / math.Pi
}

// Angle returns the angle, in radians, between the first vectors of v1
// and v2. It does not check for correctness or return errors.
func Angle(v1, v2 *v3.Matrix) float64 {
	argument := v1.Dot(v2) / (v1.Norm() * v2.Norm())
	//take care of floating point math errors
	if math.Abs(argument-1) <= appzero {
		argument = 1
	} else if math.Abs(argument+1) <= appzero {
		argument = -1
	}
	return math.Acos(argument)
}

// Dihedral returns the dihedral angle, in radians, between the points
// a, b, c and d, where the first plane is defined by abc and the second
// by bcd.
func Dihedral(a, b, c, d *v3.Matrix) float64 {
	bma := v3.Zeros(1)
	cmb := v3.Zeros(1)
	dmc := v3.Zeros(1)
	bma.Sub(b.Dense, a.Dense)
	cmb.Sub(c.Dense, b.Dense)
	dmc.Sub(d.Dense, c.Dense)
	v1 := v3.Zeros(1)
	v2 := v3.Zeros(1)
	v1.Cross(bma, cmb)
	v2.Cross(cmb, dmc)
	bmascaled := v3.Zeros(1)
	bmascaled.Scale(cmb.Norm(), bma.Dense)
	cr := v3.Zeros(1)
	cr.Cross(cmb, dmc)
	first := bmascaled.Dot(cr)
	second := v1.Dot(v2)
	return math.Atan2(first, second)
}

// RotateAbout rotates, in place, the coordinates of coords listed in
// indexes by angle radians about the axis from ax1 to ax2 (1x3 each),
// using the Rodrigues formula. If indexes is nil every vector is
// rotated.
func RotateAbout(coords *v3.Matrix, ax1, ax2 *v3.Matrix, angle float64, indexes []int) error {
	axis := v3.Zeros(1)
	axis.Sub(ax2.Dense, ax1.Dense)
	n := axis.Norm()
	if n <= appzero {
		return newCError("RotateAbout: the two axis points coincide")
	}
	axis.Scale(1.0/n, axis.Dense)
	if indexes == nil {
		indexes = make([]int, coords.NVecs())
		for i := range indexes {
			indexes[i] = i
		}
	}
	sin := math.Sin(angle)
	cos := math.Cos(angle)
	kx, ky, kz := axis.At(0, 0), axis.At(0, 1), axis.At(0, 2)
	ox, oy, oz := ax1.At(0, 0), ax1.At(0, 1), ax1.At(0, 2)
	for _, i := range indexes {
		vx := coords.At(i, 0) - ox
		vy := coords.At(i, 1) - oy
		vz := coords.At(i, 2) - oz
		//k x v
		cx := ky*vz - kz*vy
		cy := kz*vx - kx*vz
		cz := kx*vy - ky*vx
		dot := kx*vx + ky*vy + kz*vz
		rx := vx*cos + cx*sin + kx*dot*(1-cos)
		ry := vy*cos + cy*sin + ky*dot*(1-cos)
		rz := vz*cos + cz*sin + kz*dot*(1-cos)
		coords.Set(i, 0, rx+ox)
		coords.Set(i, 1, ry+oy)
		coords.Set(i, 2, rz+oz)
	}
	return nil
}
