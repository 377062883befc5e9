/*
 * uff.go, part of TADF-Design.
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

package conformer

import (
	"fmt"
	"math"

	"github.com/junhkim1226/TADF-Design/chemgraph"
)

// uffType holds the parameters of one UFF atom type.
// Rappe et al., J. Am. Chem. Soc. 1992, 114, 10024.
type uffType struct {
	Label  string
	R      float64 //bond radius, A
	Theta0 float64 //natural angle, degrees
	X      float64 //vdW distance, A
	D      float64 //vdW well depth, kcal/mol
	Z      float64 //effective charge
	V      float64 //sp3 torsional barrier
	U      float64 //sp2 torsional barrier
	Chi    float64 //GMP electronegativity
}

func (T *uffType) linear() bool { return T.Theta0 > 179 }

var uffTypes = map[string]*uffType{}

func init() {
	for _, t := range []uffType{
		{"H_", 0.354, 180, 2.886, 0.044, 0.712, 0, 0, 4.528},
		{"B_3", 0.838, 109.47, 4.083, 0.180, 1.755, 0, 0, 4.750},
		{"B_2", 0.828, 120, 4.083, 0.180, 1.755, 0, 0, 4.750},
		{"C_3", 0.757, 109.47, 3.851, 0.105, 1.912, 2.119, 2, 5.343},
		{"C_R", 0.729, 120, 3.851, 0.105, 1.912, 0, 2, 5.343},
		{"C_2", 0.732, 120, 3.851, 0.105, 1.912, 0, 2, 5.343},
		{"C_1", 0.706, 180, 3.851, 0.105, 1.912, 0, 2, 5.343},
		{"N_3", 0.700, 106.7, 3.660, 0.069, 2.544, 0.450, 2, 6.899},
		{"N_R", 0.699, 120, 3.660, 0.069, 2.544, 0, 2, 6.899},
		{"N_2", 0.685, 111.2, 3.660, 0.069, 2.544, 0, 2, 6.899},
		{"N_1", 0.656, 180, 3.660, 0.069, 2.544, 0, 2, 6.899},
		{"O_3", 0.658, 104.51, 3.500, 0.060, 2.300, 0.018, 2, 8.741},
		{"O_R", 0.680, 110.3, 3.500, 0.060, 2.300, 0, 2, 8.741},
		{"O_2", 0.634, 120, 3.500, 0.060, 2.300, 0, 2, 8.741},
		{"O_1", 0.639, 180, 3.500, 0.060, 2.300, 0, 2, 8.741},
		{"F_", 0.668, 180, 3.364, 0.050, 1.735, 0, 2, 10.874},
		{"Si3", 1.117, 109.47, 4.295, 0.402, 2.323, 1.225, 1.25, 4.168},
		{"P_3+3", 1.101, 93.8, 4.147, 0.305, 2.863, 2.400, 1.25, 5.463},
		{"P_3+5", 1.056, 109.47, 4.147, 0.305, 2.863, 2.400, 1.25, 5.463},
		{"S_3+2", 1.064, 92.1, 4.035, 0.274, 2.703, 0.484, 1.25, 6.928},
		{"S_3+4", 1.049, 103.2, 4.035, 0.274, 2.703, 0.484, 1.25, 6.928},
		{"S_3+6", 1.027, 109.47, 4.035, 0.274, 2.703, 0.484, 1.25, 6.928},
		{"S_R", 1.077, 92.2, 4.035, 0.274, 2.703, 0, 1.25, 6.928},
		{"S_2", 0.854, 120, 4.035, 0.274, 2.703, 0, 1.25, 6.928},
		{"Cl", 1.044, 180, 3.947, 0.227, 2.348, 0, 1.25, 8.564},
		{"Br", 1.192, 180, 4.189, 0.251, 2.519, 0, 0.7, 7.790},
		{"I_", 1.382, 180, 4.500, 0.339, 2.650, 0, 0.2, 6.822},
	} {
		t := t
		uffTypes[t.Label] = &t
	}
}

var hybSuffix = map[chemgraph.Hybridization]string{
	chemgraph.SP3:      "3",
	chemgraph.SP2:      "2",
	chemgraph.SP:       "1",
	chemgraph.Resonant: "R",
}

// typeAtom assigns the UFF type of atom i of an all-atom molecule.
func typeAtom(mol *chemgraph.Molecule, i int) (*uffType, error) {
	a := mol.Atoms[i]
	hyb := mol.Hybridization(i)
	var label string
	switch a.Symbol {
	case "H":
		label = "H_"
	case "C", "N":
		label = a.Symbol + "_" + hybSuffix[hyb]
	case "O":
		switch hyb {
		case chemgraph.Resonant:
			label = "O_R"
		case chemgraph.SP2:
			label = "O_2"
		case chemgraph.SP:
			label = "O_1"
		default:
			label = "O_3"
		}
	case "F":
		label = "F_"
	case "Cl", "Br":
		label = a.Symbol
	case "I":
		label = "I_"
	case "Si":
		label = "Si3"
	case "B":
		label = "B_3"
		if mol.Degree(i) <= 3 {
			label = "B_2"
		}
	case "P":
		label = "P_3+3"
		if mol.Valence(i) >= 5 {
			label = "P_3+5"
		}
	case "S":
		v := mol.Valence(i)
		switch {
		case a.Aromatic:
			label = "S_R"
		case v >= 6:
			label = "S_3+6"
		case v >= 4:
			label = "S_3+4"
		case hyb == chemgraph.SP2 && mol.Degree(i) == 1:
			label = "S_2"
		default:
			label = "S_3+2"
		}
	}
	t, ok := uffTypes[label]
	if !ok {
		return nil, fmt.Errorf("%w: no UFF type for %s atom %d", ErrTyping, a.Symbol, i)
	}
	return t, nil
}

// typeAtoms types every atom in mol, failing on the first untypeable one.
func typeAtoms(mol *chemgraph.Molecule) ([]*uffType, error) {
	types := make([]*uffType, mol.Len())
	for i := range types {
		t, err := typeAtom(mol, i)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}

func bondOrder(b *chemgraph.Bond) float64 {
	if b.Aromatic {
		return 1.5
	}
	if b.Order <= 0 {
		return 1
	}
	return b.Order
}

// restLength is the UFF natural bond length, with the bond order and
// electronegativity corrections.
func restLength(ti, tj *uffType, bo float64) float64 {
	ri, rj := ti.R, tj.R
	rbo := -0.1332 * (ri + rj) * math.Log(bo)
	sq := math.Sqrt(ti.Chi) - math.Sqrt(tj.Chi)
	ren := ri * rj * sq * sq / (ti.Chi*ri + tj.Chi*rj)
	return ri + rj + rbo - ren
}
