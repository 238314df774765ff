/*
 * files.go, part of ssbind.
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
	"path/filepath"
	"strings"
)

// MolFromFile reads a molecule from a file, dispatching on the
// extension. Supported formats: sdf, mol, pdb and xyz. For sdf and mol
// the bonds come from the connection table; for the other formats they
// are assigned geometrically from the first frame.
func MolFromFile(name string) (*Molecule, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	var mol *Molecule
	var err error
	switch ext {
	case "sdf", "mol":
		return SDFFileRead(name)
	case "pdb":
		mol, err = PDBFileRead(name)
	case "xyz":
		mol, err = XYZFileRead(name)
	default:
		return nil, newCError(fmt.Sprintf("MolFromFile: molecule format %q not supported. Supported formats: sdf, mol, pdb, xyz", ext))
	}
	if err != nil {
		return nil, errDecorate(err, "MolFromFile")
	}
	if err := AssignBonds(mol.Coords[0], mol.Topology); err != nil {
		return nil, errDecorate(err, "MolFromFile")
	}
	return mol, nil
}
