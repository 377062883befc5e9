/*
 * files.go, part of TADF-Design.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/junhkim1226/TADF-Design/v3"
)

// XYZFileRead reads an xyz file and returns its first frame as a Geometry.
func XYZFileRead(xyzname string) (*Geometry, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, NewError(err.Error(), "XYZFileRead")
	}
	defer xyzfile.Close()
	g, err := XYZRead(xyzfile)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead: "+xyzname)
	}
	return g, nil
}

// XYZRead reads one xyz frame from r: the atom count, a comment line and
// then one "element x y z" record per atom. Extra columns are ignored.
func XYZRead(r io.Reader) (*Geometry, error) {
	xyz := bufio.NewScanner(r)
	if !xyz.Scan() {
		return nil, NewError("ill formatted XYZ: empty input", "XYZRead")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(xyz.Text()))
	if err != nil || natoms <= 0 {
		return nil, NewError(fmt.Sprintf("ill formatted XYZ: bad atom count %q", xyz.Text()), "XYZRead")
	}
	if !xyz.Scan() {
		return nil, NewError("ill formatted XYZ: missing comment line", "XYZRead")
	}
	comment := strings.TrimSpace(xyz.Text())
	symbols := make([]string, 0, natoms)
	coords := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		if !xyz.Scan() {
			return nil, NewError(fmt.Sprintf("ill formatted XYZ: expected %d atoms, found %d", natoms, i), "XYZRead")
		}
		fields := strings.Fields(xyz.Text())
		if len(fields) < 4 {
			return nil, NewError(fmt.Sprintf("ill formatted XYZ: atom line %d", i+1), "XYZRead")
		}
		symbols = append(symbols, normalizeSymbol(fields[0]))
		for _, f := range fields[1:4] {
			c, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, NewError(fmt.Sprintf("ill formatted XYZ: atom line %d: %s", i+1, err), "XYZRead")
			}
			coords = append(coords, c)
		}
	}
	if err := xyz.Err(); err != nil {
		return nil, NewError(err.Error(), "XYZRead")
	}
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, errDecorate(err, "XYZRead")
	}
	g, err := NewGeometry(symbols, mcoords)
	if err != nil {
		return nil, errDecorate(err, "XYZRead")
	}
	g.Comment = comment
	return g, nil
}

// XYZFileWrite writes G to an xyz file with name xyzname which will be
// created for that. If the file exists it will be overwritten.
func XYZFileWrite(xyzname string, G *Geometry) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return NewError(err.Error(), "XYZFileWrite")
	}
	defer out.Close()
	if err := XYZWrite(out, G); err != nil {
		return errDecorate(err, "XYZFileWrite")
	}
	return out.Close()
}

// XYZWrite writes G in xyz format to w.
func XYZWrite(w io.Writer, G *Geometry) error {
	if err := G.Corrupted(); err != nil {
		return errDecorate(err, "XYZWrite")
	}
	comment := strings.ReplaceAll(G.Comment, "\n", " ")
	if _, err := fmt.Fprintf(w, "%d\n%s\n%s", G.Len(), comment, G.CoordBlock()); err != nil {
		return NewError(err.Error(), "XYZWrite")
	}
	return nil
}

// CoordBlock returns the "element x y z" lines of G, one per atom, each
// ending in a newline. This is the block QM programs take inline.
func (G *Geometry) CoordBlock() string {
	var b strings.Builder
	for i, a := range G.Atoms {
		c := G.Coords.Vec(i)
		fmt.Fprintf(&b, "%-2s %14.8f %14.8f %14.8f\n", a.Symbol, c[0], c[1], c[2])
	}
	return b.String()
}

// normalizeSymbol turns "CL" or "cl" into "Cl".
func normalizeSymbol(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
