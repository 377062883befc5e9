/*
 * bonds.go, part of TADF-Design.
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
	"sort"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// AssignBonds assigns bonds to a geometry based on a simple distance
// criterion, similar to that described in DOI:10.1186/1758-2946-3-33.
// It returns index pairs with the lower index first, sorted.
func AssignBonds(G *Geometry) ([][2]int, error) {
	if err := G.Corrupted(); err != nil {
		return nil, errDecorate(err, "AssignBonds")
	}
	type cand struct {
		i, j int
		d    float64
	}
	tot := G.Len()
	perAtom := make([][]cand, tot)
	for i := 0; i < tot; i++ {
		cov1 := symbolCovrad[G.Atoms[i].Symbol]
		if cov1 == 0 {
			return nil, NewError(fmt.Sprintf("Couldn't find the covalent radii for %s %d", G.Atoms[i].Symbol, i), "AssignBonds")
		}
		for j := i + 1; j < tot; j++ {
			cov2 := symbolCovrad[G.Atoms[j].Symbol]
			if cov2 == 0 {
				return nil, NewError(fmt.Sprintf("Couldn't find the covalent radii for %s %d", G.Atoms[j].Symbol, j), "AssignBonds")
			}
			d := G.Coords.Distance(i, j)
			if d < cov1+cov2+bondtol && d > tooclose {
				c := cand{i, j, d}
				perAtom[i] = append(perAtom[i], c)
				perAtom[j] = append(perAtom[j], c)
			}
		}
	}
	//Now we check that no atom has too many bonds, dropping the longest ones.
	removed := make(map[[2]int]bool)
	for i := 0; i < tot; i++ {
		max := symbolMaxBonds[G.Atoms[i].Symbol]
		if max == 0 {
			continue
		}
		bs := make([]cand, 0, len(perAtom[i]))
		for _, c := range perAtom[i] {
			if !removed[[2]int{c.i, c.j}] {
				bs = append(bs, c)
			}
		}
		sort.Slice(bs, func(a, b int) bool { return bs[a].d < bs[b].d })
		for k := max; k < len(bs); k++ {
			removed[[2]int{bs[k].i, bs[k].j}] = true
		}
	}
	ret := make([][2]int, 0, tot)
	for i := 0; i < tot; i++ {
		for _, c := range perAtom[i] {
			if c.i == i && !removed[[2]int{c.i, c.j}] {
				ret = append(ret, [2]int{c.i, c.j})
			}
		}
	}
	sort.Slice(ret, func(a, b int) bool {
		if ret[a][0] != ret[b][0] {
			return ret[a][0] < ret[b][0]
		}
		return ret[a][1] < ret[b][1]
	})
	return ret, nil
}
