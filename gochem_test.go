/*
 * gochem_test.go, part of TADF-Design.
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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/junhkim1226/TADF-Design/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const water = `3
water, B3LYP/6-31G*
O    0.000000    0.000000    0.117300
H    0.000000    0.757200   -0.469200
h    0.000000   -0.757200   -0.469200
`

func TestXYZRead(t *testing.T) {
	g, err := XYZRead(strings.NewReader(water))
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"O", "H", "H"}, g.Symbols())
	assert.Equal(t, "water, B3LYP/6-31G*", g.Comment)
	assert.InDelta(t, 0.7572, g.Coords.At(1, 1), 1e-9)
	assert.InDelta(t, 15.999, g.Atom(0).Mass, 1e-9)
}

func TestXYZReadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"bad count", "three\n\nO 0 0 0\n"},
		{"truncated", "3\n\nO 0 0 0\nH 0 0 1\n"},
		{"short record", "1\n\nO 0 0\n"},
		{"bad float", "1\n\nO 0 zero 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := XYZRead(strings.NewReader(tt.in))
			require.Error(t, err)
			var cerr *CError
			require.ErrorAs(t, err, &cerr)
			assert.Contains(t, cerr.Decorate(""), "XYZRead")
		})
	}
}

func TestXYZFileWrite(t *testing.T) {
	g, err := XYZRead(strings.NewReader(water))
	require.NoError(t, err)
	g.Comment = "E=-76.40\nsecond line"
	path := filepath.Join(t.TempDir(), "w.xyz")
	require.NoError(t, XYZFileWrite(path, g))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "3", lines[0])
	assert.Equal(t, "E=-76.40 second line", lines[1])

	back, err := XYZFileRead(path)
	require.NoError(t, err)
	assert.Equal(t, g.Symbols(), back.Symbols())
	assert.InDelta(t, g.Coords.At(2, 2), back.Coords.At(2, 2), 1e-8)
}

func TestCorrupted(t *testing.T) {
	coords, err := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	require.NoError(t, err)
	_, err = NewGeometry([]string{"H"}, coords)
	require.Error(t, err)
	var buf bytes.Buffer
	assert.Error(t, XYZWrite(&buf, &Geometry{}))
}

func TestAssignBonds(t *testing.T) {
	g, err := XYZRead(strings.NewReader(water))
	require.NoError(t, err)
	bonds, err := AssignBonds(g)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}}, bonds)
}

func TestSymbolFromNumber(t *testing.T) {
	s, err := SymbolFromNumber(8)
	require.NoError(t, err)
	assert.Equal(t, "O", s)
	assert.Equal(t, 17, AtomicNumber("Cl"))
	_, err = SymbolFromNumber(0)
	assert.Error(t, err)
}
