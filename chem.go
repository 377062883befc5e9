/*
 * chem.go, part of TADF-Design.
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

import (
	"fmt"

	v3 "github.com/junhkim1226/TADF-Design/v3"
)

// Atom contains the atom data except for the coordinates, which live in a
// v3.Matrix.
type Atom struct {
	Symbol string
	Index  int
	Mass   float64
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	n := *A
	return &n
}

// Geometry is an ordered set of atoms with one set of cartesian coordinates,
// in angstroms. The atom count always matches the number of coordinate vectors.
type Geometry struct {
	Atoms   []*Atom
	Coords  *v3.Matrix
	Comment string
	charge  int
	multi   int
}

var _ AtomMultiCharger = (*Geometry)(nil)

// NewGeometry builds a Geometry for the given symbols and coordinates. It
// returns an error if the atom count does not match the coordinates.
func NewGeometry(symbols []string, coords *v3.Matrix) (*Geometry, error) {
	atoms := make([]*Atom, len(symbols))
	for i, s := range symbols {
		atoms[i] = &Atom{Symbol: s, Index: i, Mass: symbolMass[s]}
	}
	g := &Geometry{Atoms: atoms, Coords: coords, multi: 1}
	if err := g.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewGeometry")
	}
	return g, nil
}

// Len returns the number of atoms.
func (G *Geometry) Len() int { return len(G.Atoms) }

// Atom returns the ith atom.
func (G *Geometry) Atom(i int) *Atom { return G.Atoms[i] }

// Charge gets the total charge
func (G *Geometry) Charge() int { return G.charge }

// Multi returns the multiplicity. A zero multiplicity is reported as a singlet.
func (G *Geometry) Multi() int {
	if G.multi == 0 {
		return 1
	}
	return G.multi
}

// SetCharge sets the total charge to i
func (G *Geometry) SetCharge(i int) { G.charge = i }

// SetMulti sets the multiplicity to i
func (G *Geometry) SetMulti(i int) { G.multi = i }

// Symbols returns the element symbols in atom order.
func (G *Geometry) Symbols() []string {
	ret := make([]string, len(G.Atoms))
	for i, a := range G.Atoms {
		ret[i] = a.Symbol
	}
	return ret
}

// Corrupted checks that the geometry has atoms, coordinates, and that the
// atom count matches the number of coordinate records.
func (G *Geometry) Corrupted() error {
	if G.Coords == nil {
		return NewError("geometry without coordinates", "Corrupted")
	}
	if len(G.Atoms) == 0 {
		return NewError("geometry without atoms", "Corrupted")
	}
	if n := G.Coords.NVecs(); n != len(G.Atoms) {
		return NewError(fmt.Sprintf("%d atoms but %d coordinate records", len(G.Atoms), n), "Corrupted")
	}
	for i, a := range G.Atoms {
		if a == nil || a.Symbol == "" {
			return NewError(fmt.Sprintf("atom %d has no element", i), "Corrupted")
		}
	}
	return nil
}
