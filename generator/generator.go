/*
 * generator.go, part of ssbind.
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

	chem "github.com/ssbind/ssbind"
	v3 "github.com/ssbind/ssbind/v3"
	"golang.org/x/sync/errgroup"
)

// Generator is one conformer generation strategy.
type Generator interface {
	//GenerateConformers produces up to n conformers. Individual
	//failures are reported in the result, not as an error; the error
	//return is for conditions that doom the whole run.
	GenerateConformers(ctx context.Context, n int) (*Result, error)
}

// Result is the outcome of a generation run: the conformers that
// worked, in request order, and a record per failed request.
type Result struct {
	Confs  []*v3.Matrix
	Failed []Failure
}

// Failure records one conformer request that could not be satisfied.
type Failure struct {
	Index int
	Seed  int64
	Err   error
}

// EmbedGenerator produces conformers by stochastic anchored embedding,
// one seed per requested conformer, fanned out over CPU workers.
type EmbedGenerator struct {
	core *Core
	seed int64
	cpu  int
	gen  func(seed int64) (*v3.Matrix, error)
}

// NewEmbedGenerator returns an embedding generator over core, taking
// the seed and worker count from the core's options.
func NewEmbedGenerator(core *Core) *EmbedGenerator {
	return &EmbedGenerator{
		core: core,
		seed: core.opts.Seed,
		cpu:  core.opts.CPU,
		gen:  core.GenerateOne,
	}
}

func (g *EmbedGenerator) GenerateConformers(ctx context.Context, n int) (*Result, error) {
	if n <= 0 {
		return nil, newError("generator: %d conformers requested", n)
	}
	base := baseSeed(g.seed)
	confs := make([]*v3.Matrix, n)
	errs := make([]error, n)
	eg, ctx := errgroup.WithContext(ctx)
	if g.cpu > 0 {
		eg.SetLimit(g.cpu)
	}
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			c, err := g.gen(base + int64(i))
			if err != nil {
				errs[i] = err
				return nil
			}
			confs[i] = c
			return nil
		})
	}
	eg.Wait()
	res := &Result{Confs: make([]*v3.Matrix, 0, n)}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			res.Failed = append(res.Failed, Failure{Index: i, Seed: base + int64(i), Err: errs[i]})
			continue
		}
		res.Confs = append(res.Confs, confs[i])
	}
	if len(res.Confs) == 0 {
		return nil, newError("generator: all %d embedding attempts failed", n)
	}
	return res, nil
}

// AngleGenerator produces conformers by scanning the torsions of the
// rotatable bonds outside the matched substructure, in fixed steps.
type AngleGenerator struct {
	core   *Core
	degree float64
	cpu    int
}

// NewAngleGenerator returns a torsion-scan generator over core, taking
// the step and worker count from the core's options.
func NewAngleGenerator(core *Core) *AngleGenerator {
	return &AngleGenerator{core: core, degree: core.opts.Degree, cpu: core.opts.CPU}
}

// scanBond is one rotatable bond prepared for scanning: the axis atom
// indexes and the atoms that move with the rotation.
type scanBond struct {
	ax1, ax2 int
	moving   []int
}

func (g *AngleGenerator) GenerateConformers(ctx context.Context, n int) (*Result, error) {
	if n <= 0 {
		return nil, newError("generator: %d conformers requested", n)
	}
	if g.degree <= 0 || g.degree > 360 {
		return nil, newError("generator: torsion step of %.1f degrees", g.degree)
	}
	bonds, err := g.scannableBonds()
	if err != nil {
		return nil, err
	}
	steps := int(360 / g.degree)
	combos := enumerateCombos(len(bonds), steps, n)
	base := g.core.lig.Coords[0]
	confs := make([]*v3.Matrix, len(combos))
	errs := make([]error, len(combos))
	eg, ctx := errgroup.WithContext(ctx)
	if g.cpu > 0 {
		eg.SetLimit(g.cpu)
	}
	for ci := range combos {
		ci := ci
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[ci] = err
				return nil
			}
			coords := base.Clone()
			for bi, step := range combos[ci] {
				if step == 0 {
					continue
				}
				b := bonds[bi]
				angle := chem.Deg2Rad(g.degree * float64(step))
				ax1 := coords.VecView(b.ax1)
				ax2 := coords.VecView(b.ax2)
				if err := chem.RotateAbout(coords, ax1, ax2, angle, b.moving); err != nil {
					errs[ci] = err
					return nil
				}
			}
			confs[ci] = coords
			return nil
		})
	}
	eg.Wait()
	res := &Result{Confs: make([]*v3.Matrix, 0, len(combos))}
	for i := range combos {
		if errs[i] != nil {
			res.Failed = append(res.Failed, Failure{Index: i, Err: errs[i]})
			continue
		}
		res.Confs = append(res.Confs, confs[i])
	}
	return res, nil
}

// scannableBonds returns the rotatable bonds whose moving side does
// not touch the matched substructure, with the moving side oriented
// away from it.
func (g *AngleGenerator) scannableBonds() ([]scanBond, error) {
	ligc := g.core.lig.Copy()
	chem.PerceiveRings(ligc.Topology)
	matched := make(map[int]bool, g.core.corr.Len())
	for _, p := range g.core.corr.Pairs {
		matched[p.Lig] = true
	}
	ret := make([]scanBond, 0, 4)
	for _, b := range chem.RotatableBonds(ligc.Topology) {
		side, err := chem.SplitByBond(ligc.Topology, b)
		if err != nil {
			return nil, err
		}
		moving, ax1, ax2 := side, b.At1.Index(), b.At2.Index()
		if touches(moving, matched) {
			//try the other side of the bond
			moving = complement(ligc.Len(), side, ax1, ax2)
			ax1, ax2 = ax2, ax1
			if touches(moving, matched) {
				continue
			}
		}
		ret = append(ret, scanBond{ax1: ax1, ax2: ax2, moving: moving})
	}
	return ret, nil
}

func touches(atoms []int, set map[int]bool) bool {
	for _, a := range atoms {
		if set[a] {
			return true
		}
	}
	return false
}

// complement returns the atoms not in side and not on the axis.
func complement(n int, side []int, ax1, ax2 int) []int {
	in := make(map[int]bool, len(side))
	for _, a := range side {
		in[a] = true
	}
	ret := make([]int, 0, n-len(side))
	for i := 0; i < n; i++ {
		if !in[i] && i != ax1 && i != ax2 {
			ret = append(ret, i)
		}
	}
	return ret
}

// enumerateCombos lists the first max assignments of steps values to
// nbonds positions, in mixed-radix counting order starting from the
// unrotated conformer.
func enumerateCombos(nbonds, steps, max int) [][]int {
	if nbonds == 0 {
		return [][]int{nil}
	}
	total := 1
	for i := 0; i < nbonds; i++ {
		total *= steps
		if total >= max {
			total = max
			break
		}
	}
	ret := make([][]int, 0, total)
	combo := make([]int, nbonds)
	for len(ret) < total {
		ret = append(ret, append([]int(nil), combo...))
		i := nbonds - 1
		for ; i >= 0; i-- {
			combo[i]++
			if combo[i] < steps {
				break
			}
			combo[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return ret
}
