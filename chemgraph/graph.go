/*
 * graph.go, part of TADF-Design.
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
	"fmt"
	"math"

	chem "github.com/junhkim1226/TADF-Design"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Atom is a node of the molecular graph.
type Atom struct {
	Index     int
	Symbol    string
	Aromatic  bool
	Charge    int  //formal charge
	Isotope   int  //0 means natural abundance
	Bracket   bool //was written as a bracket atom, so it takes no implicit hydrogens
	ExplicitH int  //hydrogens given in a bracket atom, e.g. [nH]
	ImplicitH int  //hydrogens implied by the default valence
}

// Hs returns the number of hydrogens attached to the atom that are not
// (yet) atoms of the graph.
func (A *Atom) Hs() int { return A.ExplicitH + A.ImplicitH }

// Bond joins atoms I and J. Aromatic bonds have Order 1.5.
type Bond struct {
	Index    int
	I, J     int
	Order    float64
	Aromatic bool
}

// Cross returns the atom at the other end of the bond from origin.
func (B *Bond) Cross(origin int) int {
	if origin == B.I {
		return B.J
	}
	if origin == B.J {
		return B.I
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!")
}

// Molecule is a molecular graph: atoms with their bonds. It carries no coordinates.
type Molecule struct {
	Atoms []*Atom
	Bonds []*Bond
	adj   [][]*Bond
}

// New returns an empty molecule.
func New() *Molecule {
	return &Molecule{}
}

// Len returns the number of atoms in the graph.
func (M *Molecule) Len() int { return len(M.Atoms) }

// AddAtom appends A to the molecule and returns its index.
func (M *Molecule) AddAtom(A *Atom) int {
	A.Index = len(M.Atoms)
	M.Atoms = append(M.Atoms, A)
	M.adj = append(M.adj, nil)
	return A.Index
}

// AddBond bonds atoms i and j. It fails for self bonds, unknown atoms
// and bonds that already exist.
func (M *Molecule) AddBond(i, j int, order float64, aromatic bool) (*Bond, error) {
	if i == j {
		return nil, fmt.Errorf("atom %d bonded to itself", i)
	}
	if i < 0 || j < 0 || i >= M.Len() || j >= M.Len() {
		return nil, fmt.Errorf("bond %d-%d references a missing atom", i, j)
	}
	if M.BondBetween(i, j) != nil {
		return nil, fmt.Errorf("duplicated bond %d-%d", i, j)
	}
	b := &Bond{Index: len(M.Bonds), I: i, J: j, Order: order, Aromatic: aromatic}
	M.Bonds = append(M.Bonds, b)
	M.adj[i] = append(M.adj[i], b)
	M.adj[j] = append(M.adj[j], b)
	return b, nil
}

// BondsOf returns the bonds of atom i.
func (M *Molecule) BondsOf(i int) []*Bond { return M.adj[i] }

// Neighbors returns the indexes of the atoms bonded to atom i, in bond order.
func (M *Molecule) Neighbors(i int) []int {
	ret := make([]int, 0, len(M.adj[i]))
	for _, b := range M.adj[i] {
		ret = append(ret, b.Cross(i))
	}
	return ret
}

// Degree returns the number of graph neighbors of atom i.
func (M *Molecule) Degree(i int) int { return len(M.adj[i]) }

// BondBetween returns the bond joining i and j, or nil.
func (M *Molecule) BondBetween(i, j int) *Bond {
	if i < 0 || i >= len(M.adj) {
		return nil
	}
	for _, b := range M.adj[i] {
		if b.Cross(i) == j {
			return b
		}
	}
	return nil
}

// Valence returns the sum of bond orders of atom i, counting each aromatic
// bond as 1, plus the hydrogens not present as atoms.
func (M *Molecule) Valence(i int) int {
	v := M.Atoms[i].Hs()
	for _, b := range M.adj[i] {
		if b.Aromatic {
			v++
			continue
		}
		v += int(b.Order)
	}
	return v
}

// Charge returns the total formal charge.
func (M *Molecule) Charge() int {
	q := 0
	for _, a := range M.Atoms {
		q += a.Charge
	}
	return q
}

// Multiplicity returns 1 for closed-shell electron counts and 2 otherwise.
// Higher spin states are never guessed from a graph.
func (M *Molecule) Multiplicity() int {
	electrons := -M.Charge()
	for _, a := range M.Atoms {
		electrons += chem.AtomicNumber(a.Symbol) + a.Hs()
	}
	if electrons%2 != 0 {
		return 2
	}
	return 1
}

// Symbols returns the element symbols of the graph atoms.
func (M *Molecule) Symbols() []string {
	ret := make([]string, len(M.Atoms))
	for i, a := range M.Atoms {
		ret[i] = a.Symbol
	}
	return ret
}

// Graph returns the molecule as an unweighted gonum graph. Node IDs are atom indexes.
func (M *Molecule) Graph() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := range M.Atoms {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, b := range M.Bonds {
		g.SetEdge(g.NewEdge(simple.Node(int64(b.I)), simple.Node(int64(b.J))))
	}
	return g
}

// WeightedGraph returns the molecule as a weighted gonum graph, with the
// weight of each bond given by length.
func (M *Molecule) WeightedGraph(length func(*Bond) float64) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := range M.Atoms {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, b := range M.Bonds {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(int64(b.I)), simple.Node(int64(b.J)), length(b)))
	}
	return g
}

// HopDistances returns the number of bonds in the shortest path between
// every pair of atoms, or -1 for atoms in different fragments.
func (M *Molecule) HopDistances() [][]int {
	n := M.Len()
	paths := path.DijkstraAllPaths(M.Graph())
	ret := make([][]int, n)
	for i := 0; i < n; i++ {
		ret[i] = make([]int, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			w := paths.Weight(int64(i), int64(j))
			if math.IsInf(w, 1) {
				ret[i][j] = -1
				continue
			}
			ret[i][j] = int(math.Round(w))
		}
	}
	return ret
}

// PathLengths returns the length of the shortest bonded path between every
// pair of atoms, with bond lengths given by length. Atoms in different
// fragments are +Inf apart.
func (M *Molecule) PathLengths(length func(*Bond) float64) [][]float64 {
	n := M.Len()
	paths := path.DijkstraAllPaths(M.WeightedGraph(length))
	ret := make([][]float64, n)
	for i := 0; i < n; i++ {
		ret[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i != j {
				ret[i][j] = paths.Weight(int64(i), int64(j))
			}
		}
	}
	return ret
}
