/*
 * atomicdata.go, part of ssbind.
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

//Covalent radii in A, from DOI:10.1186/1758-2946-3-33
var symbolCovrad = map[string]float64{
	"H":  0.4, //0.31 really, but H only ever has one bond so a longer radius is harmless
	"C":  0.76,
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Se": 1.2,
	"Cl": 1.02,
	"Na": 1.66,
	"Mg": 1.41,
	"K":  2.03,
	"Ca": 1.76,
	"Zn": 1.22,
	"Si": 1.11,
	"B":  0.84,
	"F":  0.57,
	"Br": 1.2,
	"I":  1.39,
}

//Bondi-type van der Waals radii, in A.
var symbolVdwrad = map[string]float64{
	"H":  1.2,
	"C":  1.7,
	"O":  1.52,
	"N":  1.55,
	"P":  1.8,
	"S":  1.8,
	"Se": 1.9,
	"Cl": 1.75,
	"Na": 2.27,
	"Mg": 1.73,
	"K":  2.75,
	"Ca": 2.31,
	"Zn": 1.39,
	"Si": 2.1,
	"B":  1.92,
	"F":  1.47,
	"Br": 1.85,
	"I":  1.98,
}

//Standard atomic weights, in Da.
var symbolMass = map[string]float64{
	"H":  1.008,
	"C":  12.011,
	"O":  15.999,
	"N":  14.007,
	"P":  30.974,
	"S":  32.06,
	"Se": 78.971,
	"Cl": 35.45,
	"Na": 22.99,
	"Mg": 24.305,
	"K":  39.098,
	"Ca": 40.078,
	"Zn": 65.38,
	"Si": 28.085,
	"B":  10.81,
	"F":  18.998,
	"Br": 79.904,
	"I":  126.904,
}

// CovalentRadius returns the covalent radius for an element symbol, or
// 0 if the element is not parameterized.
func CovalentRadius(symbol string) float64 {
	return symbolCovrad[symbol]
}

// VdwRadius returns the van der Waals radius for an element symbol, or
// 0 if the element is not parameterized.
func VdwRadius(symbol string) float64 {
	return symbolVdwrad[symbol]
}

// AtomicMass returns the standard atomic weight for an element symbol,
// or 0 if the element is not parameterized.
func AtomicMass(symbol string) float64 {
	return symbolMass[symbol]
}
