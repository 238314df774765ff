/*
 * ff.go, part of ssbind.
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
Package ff implements a small valence force field for cleaning up
generated conformers: harmonic bond stretches, angle terms expressed as
1-3 distance harmonics, a soft-sphere repulsion between non-bonded
atoms, and flat-bottom positional restraints that pin chosen atoms near
target coordinates. The field is minimized with gonum's L-BFGS.

The field is not meant to produce publication-grade geometries. It
relaxes distorted embeddings while the restraints hold the matched
substructure in place.
*/
package ff

import (
	"fmt"
	"math"
	"strings"

	chem "github.com/ssbind/ssbind"
	v3 "github.com/ssbind/ssbind/v3"
	"gonum.org/v1/gonum/optimize"
)

// force constants and the nonbonded envelope, in kcal/(mol A^2) units
// nominally, though only their ratios matter here
const (
	kBond       = 300.0
	kAngle      = 80.0
	kRepulsion  = 50.0
	repScale    = 0.8 //fraction of the vdW radii sum where repulsion sets in
	tetrahedral = 109.47 * math.Pi / 180
)

// Error is returned when a field cannot be built or minimized.
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

// pairTerm is a harmonic between two atoms. Bond stretches and angle
// 1-3 terms are both expressed this way.
type pairTerm struct {
	i, j int
	r0   float64
	k    float64
}

// repTerm is a one-sided harmonic that turns on when two non-bonded
// atoms come closer than d0.
type repTerm struct {
	i, j int
	d0   float64
}

// Restraint is a flat-bottom harmonic pinning one atom near a target
// position: no penalty within Radius of the target, harmonic with
// force constant K beyond it.
type Restraint struct {
	Atom   int
	Target [3]float64
	Radius float64
	K      float64
}

// Field is a force field instantiated for one topology. Restraints can
// be added and cleared between minimizations; the valence terms are
// fixed at construction.
type Field struct {
	natoms     int
	bonds      []pairTerm
	angles     []pairTerm
	reps       []repTerm
	restraints []Restraint
}

// New builds the field for mol. Bonds must be assigned; ring
// perception runs here, as the angle equilibria depend on ring sizes.
// Atoms whose element has no covalent radius parameter are an error.
func New(mol *chem.Topology) (*Field, error) {
	mol.FillIndexes()
	rings := chem.PerceiveRings(mol)
	f := &Field{natoms: mol.Len()}
	for i := 0; i < mol.Len(); i++ {
		if chem.CovalentRadius(mol.Atom(i).Symbol) == 0 {
			return nil, newError("ff: symbol %s of atom %d not parameterized", mol.Atom(i).Symbol, i)
		}
	}
	seen := make(map[int]bool)
	excluded := make(map[[2]int]bool)
	excl := func(i, j int) {
		if i > j {
			i, j = j, i
		}
		excluded[[2]int{i, j}] = true
	}
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		for _, b := range at.Bonds {
			if !seen[b.Index] {
				seen[b.Index] = true
				f.bonds = append(f.bonds, pairTerm{
					i:  b.At1.Index(),
					j:  b.At2.Index(),
					r0: idealBondLength(b),
					k:  kBond,
				})
			}
			excl(b.At1.Index(), b.At2.Index())
		}
		//1-3 terms, one per angle centered on this atom
		for a := 0; a < len(at.Bonds); a++ {
			for b := a + 1; b < len(at.Bonds); b++ {
				n1 := at.Bonds[a].Cross(at)
				n2 := at.Bonds[b].Cross(at)
				theta0 := idealAngle(mol, rings, at)
				r1 := idealBondLength(at.Bonds[a])
				r2 := idealBondLength(at.Bonds[b])
				r13 := math.Sqrt(r1*r1 + r2*r2 - 2*r1*r2*math.Cos(theta0))
				f.angles = append(f.angles, pairTerm{i: n1.Index(), j: n2.Index(), r0: r13, k: kAngle})
				excl(n1.Index(), n2.Index())
			}
		}
	}
	for i := 0; i < mol.Len(); i++ {
		for j := i + 1; j < mol.Len(); j++ {
			if excluded[[2]int{i, j}] {
				continue
			}
			d0 := repScale * (chem.VdwRadius(mol.Atom(i).Symbol) + chem.VdwRadius(mol.Atom(j).Symbol))
			f.reps = append(f.reps, repTerm{i: i, j: j, d0: d0})
		}
	}
	return f, nil
}

// idealBondLength returns the bond's measured length if it was
// perceived geometrically, and the covalent radii sum otherwise.
func idealBondLength(b *chem.Bond) float64 {
	if b.Dist > 0 {
		return b.Dist
	}
	return chem.CovalentRadius(b.At1.Symbol) + chem.CovalentRadius(b.At2.Symbol)
}

// idealAngle returns the equilibrium angle at the given center: the
// internal angle of its smallest ring if it is a ring atom, 120
// degrees for 3-coordinate centers, tetrahedral otherwise.
func idealAngle(mol *chem.Topology, rings [][]int, center *chem.Atom) float64 {
	if ring := chem.SmallestRing(mol, rings, center.Index()); ring != nil {
		n := float64(len(ring))
		return math.Pi * (n - 2) / n
	}
	if len(center.Bonds) == 3 {
		return 120 * math.Pi / 180
	}
	return tetrahedral
}

// AddRestraint pins the given atom near target with a flat-bottom
// harmonic of the given radius and force constant.
func (f *Field) AddRestraint(atom int, target *v3.Matrix, radius, k float64) {
	f.restraints = append(f.restraints, Restraint{
		Atom:   atom,
		Target: [3]float64{target.At(0, 0), target.At(0, 1), target.At(0, 2)},
		Radius: radius,
		K:      k,
	})
}

// ClearRestraints removes every positional restraint from the field.
func (f *Field) ClearRestraints() {
	f.restraints = nil
}

// Energy evaluates the field at x, the row-major flattening of the
// Nx3 coordinates.
func (f *Field) Energy(x []float64) float64 {
	e := 0.0
	for _, t := range f.bonds {
		d := dist(x, t.i, t.j)
		e += t.k * (d - t.r0) * (d - t.r0)
	}
	for _, t := range f.angles {
		d := dist(x, t.i, t.j)
		e += t.k * (d - t.r0) * (d - t.r0)
	}
	for _, t := range f.reps {
		d := dist(x, t.i, t.j)
		if d < t.d0 {
			e += kRepulsion * (t.d0 - d) * (t.d0 - d)
		}
	}
	for _, r := range f.restraints {
		d := restraintDist(x, &r)
		if d > r.Radius {
			e += r.K * (d - r.Radius) * (d - r.Radius)
		}
	}
	return e
}

// Gradient writes the gradient of the field at x into grad.
func (f *Field) Gradient(grad, x []float64) {
	for i := range grad {
		grad[i] = 0
	}
	for _, t := range f.bonds {
		addPairGrad(grad, x, t.i, t.j, t.k, t.r0)
	}
	for _, t := range f.angles {
		addPairGrad(grad, x, t.i, t.j, t.k, t.r0)
	}
	for _, t := range f.reps {
		d := dist(x, t.i, t.j)
		if d < t.d0 && d > 1e-12 {
			addPairGrad(grad, x, t.i, t.j, kRepulsion, t.d0)
		}
	}
	for _, r := range f.restraints {
		d := restraintDist(x, &r)
		if d <= r.Radius || d <= 1e-12 {
			continue
		}
		c := 2 * r.K * (d - r.Radius) / d
		for k := 0; k < 3; k++ {
			grad[3*r.Atom+k] += c * (x[3*r.Atom+k] - r.Target[k])
		}
	}
}

// Minimize relaxes coords in place under the field, running at most
// maxIters major L-BFGS iterations. It reports whether the gradient
// converged within the budget.
func (f *Field) Minimize(coords *v3.Matrix, maxIters int) (bool, error) {
	if coords.NVecs() != f.natoms {
		return false, newError("ff: %d coordinates for a field of %d atoms", coords.NVecs(), f.natoms)
	}
	x := make([]float64, 3*f.natoms)
	for i := 0; i < f.natoms; i++ {
		x[3*i] = coords.At(i, 0)
		x[3*i+1] = coords.At(i, 1)
		x[3*i+2] = coords.At(i, 2)
	}
	p := optimize.Problem{
		Func: f.Energy,
		Grad: f.Gradient,
	}
	settings := &optimize.Settings{
		MajorIterations:   maxIters,
		GradientThreshold: 1e-4,
	}
	result, err := optimize.Minimize(p, x, settings, &optimize.LBFGS{})
	if err != nil || result == nil {
		return false, newError("ff: minimization failed: %v", err)
	}
	for i := 0; i < f.natoms; i++ {
		coords.Set(i, 0, result.X[3*i])
		coords.Set(i, 1, result.X[3*i+1])
		coords.Set(i, 2, result.X[3*i+2])
	}
	return result.Status == optimize.GradientThreshold, nil
}

func dist(x []float64, i, j int) float64 {
	dx := x[3*i] - x[3*j]
	dy := x[3*i+1] - x[3*j+1]
	dz := x[3*i+2] - x[3*j+2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func restraintDist(x []float64, r *Restraint) float64 {
	dx := x[3*r.Atom] - r.Target[0]
	dy := x[3*r.Atom+1] - r.Target[1]
	dz := x[3*r.Atom+2] - r.Target[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// addPairGrad accumulates the gradient of k*(d-r0)^2 between atoms i
// and j.
func addPairGrad(grad, x []float64, i, j int, k, r0 float64) {
	d := dist(x, i, j)
	if d <= 1e-12 {
		return
	}
	c := 2 * k * (d - r0) / d
	for m := 0; m < 3; m++ {
		diff := x[3*i+m] - x[3*j+m]
		grad[3*i+m] += c * diff
		grad[3*j+m] -= c * diff
	}
}
