/*
 * atomicdata.go, part of TADF-Design.
 *
 *
 * Copyright 2026 The TADF-Design Authors
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

package chem

import "fmt"

//A map for assigning mass to elements.
//Note that just the elements common in organic emitters are present
var symbolMass = map[string]float64{
	"H":  1.008,
	"B":  10.81,
	"C":  12.011,
	"N":  14.007,
	"O":  15.999,
	"F":  18.998,
	"Si": 28.085,
	"P":  30.974,
	"S":  32.06,
	"Cl": 35.45,
	"Se": 78.971,
	"Br": 79.904,
	"I":  126.90,
}

//A map for assigning covalent radii to elements
//Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
var symbolCovrad = map[string]float64{
	"H":  0.4, // 0.31. Since H always has only one bond, a longer radius is harmless, extra bonds get eliminated later.
	"B":  0.84,
	"C":  0.76, //the sp3 radius
	"N":  0.71,
	"O":  0.66,
	"F":  0.57,
	"Si": 1.11,
	"P":  1.07,
	"S":  1.05,
	"Cl": 1.02,
	"Se": 1.2,
	"Br": 1.2,
	"I":  1.39,
}

//A map for assigning van der Waals radii to elements
//Values from 10.1021/j100785a001 and 10.1021/jp8111556
var symbolVdwrad = map[string]float64{
	"H":  1.10,
	"B":  1.92,
	"C":  1.70,
	"N":  1.55,
	"O":  1.52,
	"F":  1.47,
	"Si": 2.10,
	"P":  1.80,
	"S":  1.80,
	"Cl": 1.75,
	"Se": 1.90,
	"Br": 1.83,
	"I":  1.98,
}

//A map for checking that atoms don't
//have too many bonds. A value of 0 means
//undefined, i.e. that this atom shouldn't
//be checked for max bonds.
var symbolMaxBonds = map[string]int{
	"H":  1, //this is the only one truly important.
	"C":  4,
	"O":  2,
	"N":  0,
	"P":  0,
	"S":  0,
	"F":  1,
	"Cl": 1,
	"Br": 1,
	"I":  1,
}

//symbols indexed by atomic number, up to Xe.
var numberSymbol = []string{"",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I", "Xe",
}

// Mass returns the atomic mass of the element, or 0 if unknown.
func Mass(symbol string) float64 { return symbolMass[symbol] }

// CovalentRadius returns the covalent radius of the element in A, or 0 if unknown.
func CovalentRadius(symbol string) float64 { return symbolCovrad[symbol] }

// VdwRadius returns the van der Waals radius of the element in A. Unknown
// elements get the carbon value.
func VdwRadius(symbol string) float64 {
	if r, ok := symbolVdwrad[symbol]; ok {
		return r
	}
	return symbolVdwrad["C"]
}

// SymbolFromNumber returns the element symbol for an atomic number.
func SymbolFromNumber(z int) (string, error) {
	if z < 1 || z >= len(numberSymbol) {
		return "", NewError(fmt.Sprintf("no element with atomic number %d", z), "SymbolFromNumber")
	}
	return numberSymbol[z], nil
}

// AtomicNumber returns the atomic number of the element, or 0 if unknown.
func AtomicNumber(symbol string) int {
	for i, s := range numberSymbol {
		if i > 0 && s == symbol {
			return i
		}
	}
	return 0
}
