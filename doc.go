/*
 * doc.go, part of ssbind.
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
Package ssbind provides the chemical foundation for substructure-anchored
conformer generation: atoms, topologies and multi-frame molecules, readers
and writers for the SDF, PDB and XYZ formats, geometric bond perception,
ring and rotatable-bond analysis, and rigid-body superposition.

Coordinates are kept in v3.Matrix values (Nx3 matrices backed by gonum)
and a Molecule carries one such matrix per conformer. The actual conformer
machinery lives in the subpackages: mcs finds the common substructure
between a ligand and a bound reference, embed builds new conformers around
the matched atoms, ff minimizes them under positional restraints, and
generator ties it all together.
*/
package ssbind
