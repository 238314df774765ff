/*
 * filter.go, part of ssbind.
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
Package filter thins a conformer ensemble: near-duplicate conformers
are removed by an RMSD cutoff, and conformers that bury themselves in
the receptor are removed by a lowest-distance cutoff. Conformers are
expected to be pre-aligned, so the RMSD is computed without
superposition.
*/
package filter

import (
	chem "github.com/ssbind/ssbind"
	v3 "github.com/ssbind/ssbind/v3"
)

// Options hold the two cutoffs, in A.
type Options struct {
	//RMS is the minimum RMSD between two kept conformers.
	RMS float64
	//Cutoff is the minimum allowed distance between any ligand atom
	//and any receptor atom.
	Cutoff float64
}

// DefaultOptions returns the cutoffs used by the reference workflow.
func DefaultOptions() *Options {
	return &Options{RMS: 0.2, Cutoff: 1.5}
}

// UniqueByRMSD returns the indexes of the conformers that survive a
// greedy diversity pass: conformers are visited in order and kept only
// if their RMSD to every already kept conformer is at least rms.
func UniqueByRMSD(confs []*v3.Matrix, rms float64) ([]int, error) {
	kept := make([]int, 0, len(confs))
	for i, c := range confs {
		dup := false
		for _, k := range kept {
			d, err := chem.RMSD(c, confs[k])
			if err != nil {
				return nil, err
			}
			if d < rms {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, i)
		}
	}
	return kept, nil
}

// NoClashes returns the indexes of the conformers whose lowest
// distance to the receptor is at least cutoff. A nil receptor keeps
// everything.
func NoClashes(confs []*v3.Matrix, receptor *v3.Matrix, cutoff float64) []int {
	kept := make([]int, 0, len(confs))
	for i, c := range confs {
		if receptor != nil {
			if d, _ := LowestDist(c, receptor); d < cutoff {
				continue
			}
		}
		kept = append(kept, i)
	}
	return kept
}

// LowestDist returns the smallest distance between any vector of test
// and any vector of other, plus the offending pair of indexes.
func LowestDist(test, other *v3.Matrix) (float64, [2]int) {
	d := v3.Zeros(1)
	lowest := -1.0
	var pair [2]int
	for i := 0; i < test.NVecs(); i++ {
		ti := test.VecView(i)
		for j := 0; j < other.NVecs(); j++ {
			d.Sub(ti.Dense, other.VecView(j).Dense)
			dist := d.Norm()
			if lowest < 0 || dist < lowest {
				lowest = dist
				pair = [2]int{i, j}
			}
		}
	}
	return lowest, pair
}

// Apply runs both passes in order, clashes first, and returns the
// surviving conformers.
func Apply(confs []*v3.Matrix, receptor *v3.Matrix, o *Options) ([]*v3.Matrix, error) {
	if o == nil {
		o = DefaultOptions()
	}
	clean := make([]*v3.Matrix, 0, len(confs))
	for _, i := range NoClashes(confs, receptor, o.Cutoff) {
		clean = append(clean, confs[i])
	}
	kept, err := UniqueByRMSD(clean, o.RMS)
	if err != nil {
		return nil, err
	}
	ret := make([]*v3.Matrix, 0, len(kept))
	for _, i := range kept {
		ret = append(ret, clean[i])
	}
	return ret, nil
}
