/*
 * graph_test.go, part of TADF-Design.
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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ethanol builds C-C-O with implicit hydrogens, as the SMILES parser would.
func ethanol(t *testing.T) *Molecule {
	t.Helper()
	m := New()
	c1 := m.AddAtom(&Atom{Symbol: "C", ImplicitH: 3})
	c2 := m.AddAtom(&Atom{Symbol: "C", ImplicitH: 2})
	o := m.AddAtom(&Atom{Symbol: "O", ImplicitH: 1})
	_, err := m.AddBond(c1, c2, 1, false)
	require.NoError(t, err)
	_, err = m.AddBond(c2, o, 1, false)
	require.NoError(t, err)
	return m
}

func TestAddBondErrors(t *testing.T) {
	m := ethanol(t)
	_, err := m.AddBond(0, 0, 1, false)
	assert.Error(t, err)
	_, err = m.AddBond(0, 1, 1, false)
	assert.Error(t, err)
	_, err = m.AddBond(0, 7, 1, false)
	assert.Error(t, err)
}

func TestAddHydrogens(t *testing.T) {
	m := ethanol(t)
	all := m.AddHydrogens()
	require.Equal(t, 9, all.Len())
	assert.Equal(t, []string{"C", "C", "O", "H", "H", "H", "H", "H", "H"}, all.Symbols())
	assert.Len(t, all.Bonds, 8)
	assert.Equal(t, 4, all.Degree(0))
	assert.Equal(t, 2, all.Degree(2))
	for i := 3; i < 9; i++ {
		assert.Equal(t, 1, all.Degree(i))
		assert.Equal(t, 0, all.Atoms[i].Hs())
	}
	//the original graph is untouched
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 3, m.Atoms[0].ImplicitH)
	assert.Equal(t, 4, m.Valence(0))
}

func TestDistances(t *testing.T) {
	m := ethanol(t)
	hops := m.HopDistances()
	assert.Equal(t, 0, hops[0][0])
	assert.Equal(t, 1, hops[0][1])
	assert.Equal(t, 2, hops[0][2])

	lengths := m.PathLengths(func(b *Bond) float64 { return 1.5 })
	assert.InDelta(t, 3.0, lengths[0][2], 1e-12)

	m.AddAtom(&Atom{Symbol: "O", ImplicitH: 2})
	hops = m.HopDistances()
	assert.Equal(t, -1, hops[0][3])
	lengths = m.PathLengths(func(b *Bond) float64 { return 1.5 })
	assert.True(t, math.IsInf(lengths[0][3], 1))
}

func TestMultiplicity(t *testing.T) {
	m := ethanol(t)
	assert.Equal(t, 0, m.Charge())
	assert.Equal(t, 1, m.Multiplicity())
	m.Atoms[2].ImplicitH = 0
	assert.Equal(t, 2, m.Multiplicity())
	m.Atoms[2].Charge = -1
	assert.Equal(t, 1, m.Multiplicity())
}

func TestHybridization(t *testing.T) {
	//formamide, H2N-CH=O
	m := New()
	n := m.AddAtom(&Atom{Symbol: "N", ImplicitH: 2})
	c := m.AddAtom(&Atom{Symbol: "C", ImplicitH: 1})
	o := m.AddAtom(&Atom{Symbol: "O"})
	m.AddBond(n, c, 1, false)
	m.AddBond(c, o, 2, false)
	assert.Equal(t, Resonant, m.Hybridization(n))
	assert.Equal(t, SP2, m.Hybridization(c))
	assert.Equal(t, SP2, m.Hybridization(o))
	assert.Equal(t, SP3, ethanol(t).Hybridization(0))
	assert.Equal(t, "resonant", Resonant.String())
}
