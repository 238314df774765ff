/*
 * core.go, part of ssbind.
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
Package generator produces substructure-anchored conformers: every
conformer keeps the atoms matched against a bound reference near their
reference positions, while the rest of the ligand explores. Three
strategies are available behind one interface: stochastic embedding,
systematic torsion scanning, and poses imported from an external
docking engine.
*/
package generator

import (
	"fmt"
	"strings"
	"time"

	chem "github.com/ssbind/ssbind"
	"github.com/ssbind/ssbind/embed"
	"github.com/ssbind/ssbind/ff"
	"github.com/ssbind/ssbind/mcs"
	v3 "github.com/ssbind/ssbind/v3"
)

// restraint shape and iteration budget for the constrained
// minimization of generated conformers
const (
	restraintRadius = 0.01
	restraintK      = 200.0
	batchIters      = 4
	maxBatches      = 10
)

// Options control a conformer generation run.
type Options struct {
	//NumConf is how many conformers to request.
	NumConf int
	//Seed for stochastic generation; -1 draws one from the clock.
	Seed int64
	//CPU caps the generation workers.
	CPU int
	//Degree is the torsion scan step, in degrees.
	Degree float64
	//Minimize relaxes each conformer under restraints after generation.
	Minimize bool
	//MCS tunes the substructure search and its distance tolerance.
	MCS *mcs.Options
	//Embed tunes the per-conformer embedding.
	Embed *embed.Options
}

// DefaultOptions returns the options used by the reference workflow.
func DefaultOptions() *Options {
	return &Options{
		NumConf: 100,
		Seed:    -1,
		CPU:     1,
		Degree:  60,
		MCS:     mcs.DefaultOptions(),
		Embed:   embed.DefaultOptions(),
	}
}

// Error is returned when conformers cannot be generated at all.
// Per-conformer failures are reported in Result.Failed instead.
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

// Core holds everything the generation strategies share: the ligand
// placed onto the reference frame, the reference, and the validated
// atom correspondence between them.
type Core struct {
	lig  *chem.Molecule
	ref  *chem.Molecule
	corr *mcs.Correspondence
	opts *Options
}

// NewCore builds the common substructure between lig and ref, checks
// it geometrically, and superposes a copy of the ligand onto the
// reference over the matched atoms. The caller's molecules are not
// modified.
func NewCore(lig, ref *chem.Molecule, o *Options) (*Core, error) {
	if o == nil {
		o = DefaultOptions()
	}
	ligc := lig.Copy()
	corr, err := mcs.AtomMap(ligc, ref, o.MCS)
	if err != nil {
		return nil, err
	}
	if _, err := chem.Super(ligc.Coords[0], ref.Coords[0], corr.LigIndexes(), corr.RefIndexes()); err != nil {
		return nil, err
	}
	return &Core{lig: ligc, ref: ref, corr: corr, opts: o}, nil
}

// Correspondence returns the validated atom correspondence.
func (c *Core) Correspondence() *mcs.Correspondence {
	return c.corr
}

// Ligand returns the working copy of the ligand, in the reference
// frame.
func (c *Core) Ligand() *chem.Molecule {
	return c.lig
}

// Reference returns the bound reference molecule.
func (c *Core) Reference() *chem.Molecule {
	return c.ref
}

// coordMap returns fresh embedding targets: the current positions of
// the matched ligand atoms.
func (c *Core) coordMap() map[int]*v3.Matrix {
	m := make(map[int]*v3.Matrix, c.corr.Len())
	for _, p := range c.corr.Pairs {
		m[p.Lig] = c.lig.Coords[0].VecView(p.Lig).Clone()
	}
	return m
}

// GenerateOne embeds one conformer with the given seed, holding the
// matched atoms near their reference-frame positions, and aligns the
// result back onto the reference.
func (c *Core) GenerateOne(seed int64) (*v3.Matrix, error) {
	ligc := c.lig.Copy() //embedding perceives rings and fills indexes
	eo := *c.opts.Embed
	eo.Seed = seed
	coords, err := embed.Embed(ligc.Topology, c.coordMap(), &eo)
	if err != nil {
		return nil, err
	}
	if _, err := chem.Super(coords, c.ref.Coords[0], c.corr.LigIndexes(), c.corr.RefIndexes()); err != nil {
		return nil, err
	}
	return coords, nil
}

// MinimizeOne relaxes a conformer under the field, with every matched
// atom held by a flat-bottom restraint at its pre-minimization
// position, and aligns the relaxed conformer back onto the reference.
// The input coordinates are not modified.
func (c *Core) MinimizeOne(coords *v3.Matrix) (*v3.Matrix, error) {
	work := coords.Clone()
	ligc := c.lig.Copy()
	field, err := ff.New(ligc.Topology)
	if err != nil {
		return nil, err
	}
	for _, i := range c.corr.LigIndexes() {
		field.AddRestraint(i, work.VecView(i).Clone(), restraintRadius, restraintK)
	}
	converged := false
	for it := 0; it < maxBatches && !converged; it++ {
		converged, err = field.Minimize(work, batchIters)
		if err != nil {
			return nil, err
		}
	}
	if _, err := chem.Super(work, c.ref.Coords[0], c.corr.LigIndexes(), c.corr.RefIndexes()); err != nil {
		return nil, err
	}
	return work, nil
}

// AlignToRef superposes coords onto the reference over the matched
// atoms, in place, and returns the RMSD over those atoms.
func (c *Core) AlignToRef(coords *v3.Matrix) (float64, error) {
	return chem.Super(coords, c.ref.Coords[0], c.corr.LigIndexes(), c.corr.RefIndexes())
}

// baseSeed resolves the seed option, drawing one from the clock for
// the sentinel -1.
func baseSeed(seed int64) int64 {
	if seed == -1 {
		return time.Now().UnixNano()
	}
	return seed
}
