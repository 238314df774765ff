/*
 * dock.go, part of ssbind.
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
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	chem "github.com/ssbind/ssbind"
)

// DockHandle drives an external docking engine: it writes the input
// files, runs the engine and reads the poses back. The engine must
// accept a ligand SDF and a receptor PDB and write its poses to an SDF
// file in the working directory.
type DockHandle struct {
	command  string
	workdir  string
	nCPU     int
	bindSite [3]float64
	radius   float64
}

// NewDockHandle returns a handle with the defaults set.
func NewDockHandle() *DockHandle {
	d := new(DockHandle)
	d.SetDefaults()
	return d
}

func (d *DockHandle) SetDefaults() {
	d.command = "plants"
	d.workdir = "dock"
	d.nCPU = runtime.NumCPU() / 2
	if d.nCPU < 1 {
		d.nCPU = 1
	}
	d.radius = 10
}

func (d *DockHandle) SetCommand(name string) {
	d.command = name
}

func (d *DockHandle) Command() string {
	return d.command
}

func (d *DockHandle) SetWorkdir(dir string) {
	d.workdir = dir
}

func (d *DockHandle) SetnCPU(cpu int) {
	d.nCPU = cpu
}

// SetBindingSite centers the search on the given point with the given
// radius, in A.
func (d *DockHandle) SetBindingSite(x, y, z, radius float64) {
	d.bindSite = [3]float64{x, y, z}
	d.radius = radius
}

// BuildInput writes the ligand, the receptor and the engine
// configuration into the working directory.
func (d *DockHandle) BuildInput(lig *chem.Molecule, receptor *chem.Molecule, nposes int) error {
	if lig == nil || receptor == nil {
		return newError("dock: both a ligand and a receptor are needed")
	}
	if err := os.MkdirAll(d.workdir, 0755); err != nil {
		return newError("dock: %v", err)
	}
	if err := chem.SDFFileWrite(filepath.Join(d.workdir, "ligand.sdf"), lig, []int{0}); err != nil {
		return newError("dock: %v", err)
	}
	recfile, err := os.Create(filepath.Join(d.workdir, "receptor.pdb"))
	if err != nil {
		return newError("dock: %v", err)
	}
	defer recfile.Close()
	if err := chem.PDBWrite(recfile, receptor.Coords[0], receptor.Topology); err != nil {
		return newError("dock: %v", err)
	}
	conf, err := os.Create(filepath.Join(d.workdir, "dock.conf"))
	if err != nil {
		return newError("dock: %v", err)
	}
	defer conf.Close()
	fmt.Fprintf(conf, "ligand ligand.sdf\n")
	fmt.Fprintf(conf, "receptor receptor.pdb\n")
	fmt.Fprintf(conf, "output poses.sdf\n")
	fmt.Fprintf(conf, "poses %d\n", nposes)
	fmt.Fprintf(conf, "threads %d\n", d.nCPU)
	fmt.Fprintf(conf, "site %.3f %.3f %.3f %.3f\n", d.bindSite[0], d.bindSite[1], d.bindSite[2], d.radius)
	return nil
}

// Run executes the engine in the working directory and waits for it.
func (d *DockHandle) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, d.command, "dock.conf")
	cmd.Dir = d.workdir
	out, err := os.Create(filepath.Join(d.workdir, "dock.out"))
	if err != nil {
		return newError("dock: %v", err)
	}
	defer out.Close()
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return newError("dock: %s failed: %v", d.command, err)
	}
	return nil
}

// Poses reads the poses written by the engine, one frame per pose.
func (d *DockHandle) Poses() (*chem.Molecule, error) {
	mol, err := chem.SDFFileRead(filepath.Join(d.workdir, "poses.sdf"))
	if err != nil {
		return nil, newError("dock: no poses: %v", err)
	}
	return mol, nil
}

// DockGenerator produces conformers by running an external docking
// engine and aligning its poses back onto the reference over the
// matched atoms.
type DockGenerator struct {
	core     *Core
	handle   *DockHandle
	receptor *chem.Molecule
}

// NewDockGenerator returns a docking-backed generator over core.
func NewDockGenerator(core *Core, handle *DockHandle, receptor *chem.Molecule) *DockGenerator {
	if handle == nil {
		handle = NewDockHandle()
	}
	return &DockGenerator{core: core, handle: handle, receptor: receptor}
}

func (g *DockGenerator) GenerateConformers(ctx context.Context, n int) (*Result, error) {
	if n <= 0 {
		return nil, newError("generator: %d conformers requested", n)
	}
	if err := g.handle.BuildInput(g.core.lig, g.receptor, n); err != nil {
		return nil, err
	}
	if err := g.handle.Run(ctx); err != nil {
		return nil, err
	}
	poses, err := g.handle.Poses()
	if err != nil {
		return nil, err
	}
	if poses.Len() != g.core.lig.Len() {
		return nil, newError("dock: the engine returned poses with %d atoms for a %d-atom ligand", poses.Len(), g.core.lig.Len())
	}
	result := &Result{}
	for i := 0; i < poses.LenFrames() && len(result.Confs) < n; i++ {
		coords := poses.Coords[i].Clone()
		if _, err := g.core.AlignToRef(coords); err != nil {
			result.Failed = append(result.Failed, Failure{Index: i, Err: err})
			continue
		}
		result.Confs = append(result.Confs, coords)
	}
	if len(result.Confs) == 0 {
		return nil, newError("dock: no usable poses")
	}
	return result, nil
}
