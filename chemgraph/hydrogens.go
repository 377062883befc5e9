/*
 * hydrogens.go, part of TADF-Design.
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

package chemgraph

// Hybridization of a graph atom, as far as geometry is concerned.
type Hybridization int

const (
	SP3 Hybridization = iota
	SP2
	SP
	Resonant //aromatic or conjugated planar
)

func (H Hybridization) String() string {
	return [...]string{"sp3", "sp2", "sp", "resonant"}[H]
}

// Hybridization guesses the hybridization of atom i from its bonds.
// Hypervalent S and P (sulfones, phosphine oxides) are tetrahedral.
func (M *Molecule) Hybridization(i int) Hybridization {
	a := M.Atoms[i]
	if a.Aromatic {
		return Resonant
	}
	if (a.Symbol == "S" || a.Symbol == "P") && M.Degree(i) >= 3 {
		return SP3
	}
	doubles, triples := 0, 0
	for _, b := range M.adj[i] {
		switch {
		case b.Aromatic:
			return Resonant
		case b.Order >= 3:
			triples++
		case b.Order >= 2:
			doubles++
		}
	}
	switch {
	case triples > 0 || doubles > 1:
		return SP
	case doubles == 1:
		return SP2
	}
	//amine nitrogens next to a pi system are planar.
	if a.Symbol == "N" && M.Degree(i)+a.Hs() == 3 {
		for _, j := range M.Neighbors(i) {
			if M.Atoms[j].Aromatic {
				return Resonant
			}
			for _, b := range M.adj[j] {
				if b.Order >= 2 && !b.Aromatic {
					return Resonant
				}
			}
		}
	}
	return SP3
}

// AddHydrogens returns a new molecule where all the hydrogens of M are atoms.
// Heavy atoms keep their indexes; the new hydrogens are appended in the
// order of the atoms that carry them.
func (M *Molecule) AddHydrogens() *Molecule {
	N := New()
	for _, a := range M.Atoms {
		c := *a
		c.ExplicitH = 0
		c.ImplicitH = 0
		N.AddAtom(&c)
	}
	for _, b := range M.Bonds {
		//can't fail: the same bonds were valid in M.
		N.AddBond(b.I, b.J, b.Order, b.Aromatic)
	}
	for i, a := range M.Atoms {
		for k := 0; k < a.Hs(); k++ {
			h := N.AddAtom(&Atom{Symbol: "H"})
			N.AddBond(i, h, 1, false)
		}
	}
	return N
}
