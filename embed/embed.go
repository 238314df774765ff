/*
 * embed.go, part of ssbind.
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
Package embed generates 3D conformers for a molecular topology while
holding a chosen set of atoms near given target coordinates. Atoms grow
outward from the anchored set along the bond network, in random
directions drawn from a seeded source, and the raw placement is then
relaxed under the ff field with the anchors restrained.
*/
package embed

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	chem "github.com/ssbind/ssbind"
	"github.com/ssbind/ssbind/ff"
	v3 "github.com/ssbind/ssbind/v3"
)

// Options control one embedding run.
type Options struct {
	//Seed for the random placement. The sentinel -1 draws a seed from
	//the clock, making the run non-reproducible.
	Seed int64
	//MaxAttempts is how many random placements are tried before the
	//embedding is declared failed.
	MaxAttempts int
	//AnchorRadius and AnchorK shape the flat-bottom restraints holding
	//the anchored atoms during the relaxation.
	AnchorRadius float64
	AnchorK      float64
	//BondTol is the largest relative deviation from the ideal bond
	//length accepted in the final conformer.
	BondTol float64
}

// DefaultOptions returns the options used by the reference workflow.
func DefaultOptions() *Options {
	return &Options{
		Seed:         -1,
		MaxAttempts:  10,
		AnchorRadius: 0.01,
		AnchorK:      200,
		BondTol:      0.25,
	}
}

// Error is returned when a topology cannot be embedded under the given
// constraints.
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

// Embed builds one conformer for mol, holding each atom listed in
// coordMap near its target position (a 1x3 matrix). The topology needs
// its bonds assigned. The returned coordinates are freshly allocated;
// mol is not modified.
func Embed(mol *chem.Topology, coordMap map[int]*v3.Matrix, o *Options) (*v3.Matrix, error) {
	if o == nil {
		o = DefaultOptions()
	}
	mol.FillIndexes()
	for i := range coordMap {
		if i < 0 || i >= mol.Len() {
			return nil, newError("embed: anchored atom %d out of range", i)
		}
	}
	field, err := ff.New(mol)
	if err != nil {
		return nil, &Error{message: err.Error()}
	}
	for _, i := range sortedKeys(coordMap) {
		field.AddRestraint(i, coordMap[i], o.AnchorRadius, o.AnchorK)
	}
	seed := o.Seed
	if seed == -1 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	var lastErr error
	for attempt := 0; attempt < o.MaxAttempts; attempt++ {
		coords := place(mol, coordMap, rng)
		converged := false
		for i := 0; i < 25 && !converged; i++ {
			converged, err = field.Minimize(coords, 20)
			if err != nil {
				lastErr = err
				coords = nil
				break
			}
		}
		if coords == nil {
			continue
		}
		if err := validate(mol, coords, o.BondTol); err != nil {
			lastErr = err
			continue
		}
		return coords, nil
	}
	err2 := newError("embed: no valid conformer after %d attempts", o.MaxAttempts)
	if lastErr != nil {
		err2.Decorate(lastErr.Error())
	}
	return nil, err2
}

// place builds the raw starting coordinates: anchored atoms at their
// targets, the rest grown breadth-first along the bonds, each atom one
// ideal bond length from its already placed neighbor in a random
// direction.
func place(mol *chem.Topology, coordMap map[int]*v3.Matrix, rng *rand.Rand) *v3.Matrix {
	n := mol.Len()
	coords := v3.Zeros(n)
	placed := make([]bool, n)
	queue := make([]int, 0, n)
	//map iteration order must not leak into the random placement
	for _, i := range sortedKeys(coordMap) {
		target := coordMap[i]
		coords.Set(i, 0, target.At(0, 0))
		coords.Set(i, 1, target.At(0, 1))
		coords.Set(i, 2, target.At(0, 2))
		placed[i] = true
		queue = append(queue, i)
	}
	grow := func() {
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			at := mol.Atom(cur)
			for _, b := range at.Bonds {
				next := b.Cross(at).Index()
				if placed[next] {
					continue
				}
				r0 := b.Dist
				if r0 == 0 {
					r0 = chem.CovalentRadius(b.At1.Symbol) + chem.CovalentRadius(b.At2.Symbol)
				}
				dx, dy, dz := randomUnit(rng)
				coords.Set(next, 0, coords.At(cur, 0)+r0*dx)
				coords.Set(next, 1, coords.At(cur, 1)+r0*dy)
				coords.Set(next, 2, coords.At(cur, 2)+r0*dz)
				placed[next] = true
				queue = append(queue, next)
			}
		}
	}
	grow()
	//atoms not reachable from the anchors seed their own component
	for i := 0; i < n; i++ {
		if placed[i] {
			continue
		}
		dx, dy, dz := randomUnit(rng)
		coords.Set(i, 0, 2*dx)
		coords.Set(i, 1, 2*dy)
		coords.Set(i, 2, 2*dz)
		placed[i] = true
		queue = append(queue, i)
		grow()
	}
	return coords
}

func sortedKeys(m map[int]*v3.Matrix) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// randomUnit draws a uniformly distributed unit vector.
func randomUnit(rng *rand.Rand) (float64, float64, float64) {
	for {
		x := 2*rng.Float64() - 1
		y := 2*rng.Float64() - 1
		z := 2*rng.Float64() - 1
		n := math.Sqrt(x*x + y*y + z*z)
		if n > 1e-3 && n <= 1 {
			return x / n, y / n, z / n
		}
	}
}

// validate rejects conformers with non-finite coordinates or bonds
// deviating more than tol, relatively, from their ideal length.
func validate(mol *chem.Topology, coords *v3.Matrix, tol float64) error {
	for i := 0; i < mol.Len(); i++ {
		for k := 0; k < 3; k++ {
			if math.IsNaN(coords.At(i, k)) || math.IsInf(coords.At(i, k), 0) {
				return newError("embed: non-finite coordinate on atom %d", i)
			}
		}
	}
	seen := make(map[int]bool)
	for i := 0; i < mol.Len(); i++ {
		for _, b := range mol.Atom(i).Bonds {
			if seen[b.Index] {
				continue
			}
			seen[b.Index] = true
			r0 := b.Dist
			if r0 == 0 {
				r0 = chem.CovalentRadius(b.At1.Symbol) + chem.CovalentRadius(b.At2.Symbol)
			}
			dx := coords.At(b.At1.Index(), 0) - coords.At(b.At2.Index(), 0)
			dy := coords.At(b.At1.Index(), 1) - coords.At(b.At2.Index(), 1)
			dz := coords.At(b.At1.Index(), 2) - coords.At(b.At2.Index(), 2)
			d := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if math.Abs(d-r0) > tol*r0 {
				return newError("embed: bond %d-%d ended at %.2f A, ideal %.2f", b.At1.Index(), b.At2.Index(), d, r0)
			}
		}
	}
	return nil
}
