/*
 * embed.go, part of TADF-Design.
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
	"math/rand/v2"

	chem "github.com/junhkim1226/TADF-Design"
	"github.com/junhkim1226/TADF-Design/chemgraph"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	bondTol        = 0.01 //A, 1-2 bounds
	angleTol       = 0.04 //A, 1-3 bounds
	torsionTol     = 0.05 //A, 1-4 bounds
	vdwScale       = 0.7  //lower bounds of atoms further than 1-4
	maxUpper       = 30.0 //A, between atoms of different fragments
	embedTolerance = 0.5  //A, largest bound violation accepted after refinement
	refineIters    = 1000
)

// bounds holds the lower and upper interatomic distance bounds of a
// molecule.
type bounds struct {
	n            int
	lower, upper [][]float64
}

// newBounds builds the distance bounds of the all-atom molecule mol from
// its bond lengths and angles. types may be nil, in which case covalent
// radii and hybridization angles are used.
func newBounds(mol *chemgraph.Molecule, types []*uffType) *bounds {
	n := mol.Len()
	B := &bounds{n: n, lower: square(n), upper: square(n)}
	set := make([][]bool, n)
	for i := range set {
		set[i] = make([]bool, n)
	}
	//union of ranges, for pairs reached by more than one path.
	widen := func(i, j int, l, u float64) {
		if !set[i][j] {
			B.lower[i][j], B.upper[i][j] = l, u
			set[i][j] = true
		} else {
			B.lower[i][j] = math.Min(B.lower[i][j], l)
			B.upper[i][j] = math.Max(B.upper[i][j], u)
		}
		B.lower[j][i], B.upper[j][i] = B.lower[i][j], B.upper[i][j]
	}
	length := func(i, j int) float64 {
		return bondLength(mol, types, mol.BondBetween(i, j))
	}
	hops := mol.HopDistances()

	for _, b := range mol.Bonds {
		d := bondLength(mol, types, b)
		widen(b.I, b.J, d-bondTol, d+bondTol)
	}
	for j := range mol.Atoms {
		nb := mol.Neighbors(j)
		for a := 0; a < len(nb); a++ {
			for c := a + 1; c < len(nb); c++ {
				i, k := nb[a], nb[c]
				if hops[i][k] != 2 {
					continue
				}
				d := lawOfCosines(length(i, j), length(j, k), angle0(mol, types, i, j, k))
				widen(i, k, d-angleTol, d+angleTol)
			}
		}
	}
	for _, b := range mol.Bonds {
		j, k := b.I, b.J
		for _, i := range mol.Neighbors(j) {
			if i == k {
				continue
			}
			for _, l := range mol.Neighbors(k) {
				if l == j || l == i || hops[i][l] != 3 {
					continue
				}
				a, bb, c := length(i, j), length(j, k), length(k, l)
				t1, t2 := angle0(mol, types, i, j, k), angle0(mol, types, j, k, l)
				cis, trans := dist14(a, bb, c, t1, t2, 0), dist14(a, bb, c, t1, t2, math.Pi)
				widen(i, l, cis-torsionTol, trans+torsionTol)
			}
		}
	}
	paths := mol.PathLengths(func(b *chemgraph.Bond) float64 { return bondLength(mol, types, b) + bondTol })
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if set[i][j] {
				continue
			}
			u := paths[i][j]
			if math.IsInf(u, 1) || u > maxUpper {
				u = maxUpper
			}
			l := vdwScale * (chem.VdwRadius(mol.Atoms[i].Symbol) + chem.VdwRadius(mol.Atoms[j].Symbol))
			widen(i, j, math.Min(l, u), u)
		}
	}
	return B
}

func square(n int) [][]float64 {
	ret := make([][]float64, n)
	for i := range ret {
		ret[i] = make([]float64, n)
	}
	return ret
}

// bondLength returns the natural length of b.
func bondLength(mol *chemgraph.Molecule, types []*uffType, b *chemgraph.Bond) float64 {
	bo := bondOrder(b)
	if types != nil {
		return restLength(types[b.I], types[b.J], bo)
	}
	ri := covalentRadius(mol.Atoms[b.I].Symbol)
	rj := covalentRadius(mol.Atoms[b.J].Symbol)
	return (ri + rj) * (1 - 0.1332*math.Log(bo))
}

func covalentRadius(symbol string) float64 {
	if r := chem.CovalentRadius(symbol); r > 0 {
		return r
	}
	return 0.75
}

// angle0 returns the natural i-j-k angle in radians, corrected for
// atoms in 4- and 5-membered rings.
func angle0(mol *chemgraph.Molecule, types []*uffType, i, j, k int) float64 {
	var deg float64
	if types != nil {
		deg = types[j].Theta0
	} else {
		switch mol.Hybridization(j) {
		case chemgraph.SP:
			deg = 180
		case chemgraph.SP2, chemgraph.Resonant:
			deg = 120
		default:
			deg = 109.47
		}
	}
	switch ringSize(mol, i, j, k) {
	case 3:
		deg = 60
	case 4:
		deg = 90
	case 5:
		deg = math.Min(deg, 108)
	case 6:
		if mol.Atoms[j].Aromatic {
			deg = 120
		}
	}
	return deg * math.Pi / 180
}

// ringSize returns the size of the smallest ring, up to 6 members,
// containing the i-j-k angle, or 0.
func ringSize(mol *chemgraph.Molecule, i, j, k int) int {
	depth := map[int]int{i: 0}
	queue := []int{i}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth[cur] >= 4 {
			break
		}
		for _, nb := range mol.Neighbors(cur) {
			if nb == j {
				continue
			}
			if _, ok := depth[nb]; ok {
				continue
			}
			depth[nb] = depth[cur] + 1
			if nb == k {
				return depth[nb] + 2
			}
			queue = append(queue, nb)
		}
	}
	return 0
}

func lawOfCosines(a, b, theta float64) float64 {
	return math.Sqrt(a*a + b*b - 2*a*b*math.Cos(theta))
}

// dist14 returns the i-l distance of the chain i-j-k-l with bond lengths
// a, b, c, angles t1 (at j) and t2 (at k) and dihedral phi.
func dist14(a, b, c, t1, t2, phi float64) float64 {
	x := b - c*math.Cos(t2) - a*math.Cos(t1)
	y := c*math.Sin(t2)*math.Cos(phi) - a*math.Sin(t1)
	z := c * math.Sin(t2) * math.Sin(phi)
	return math.Sqrt(x*x + y*y + z*z)
}

// smooth tightens the bounds with the triangle inequality. It fails if
// some lower bound ends above its upper bound.
func (B *bounds) smooth() error {
	n := B.n
	L, U := B.lower, B.upper
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if i == k {
				continue
			}
			for j := i + 1; j < n; j++ {
				if j == k {
					continue
				}
				if s := U[i][k] + U[k][j]; U[i][j] > s {
					U[i][j], U[j][i] = s, s
				}
				if d := math.Max(L[i][k]-U[k][j], L[j][k]-U[k][i]); L[i][j] < d {
					L[i][j], L[j][i] = d, d
				}
				if L[i][j] > U[i][j]+1e-6 {
					return fmt.Errorf("%w: distance bounds of atoms %d and %d are inconsistent", ErrEmbedding, i, j)
				}
			}
		}
	}
	return nil
}

// embed produces one set of coordinates satisfying the bounds: random
// distances, metric matrix embedding and refinement on the bounds error.
func (B *bounds) embed(rng *rand.Rand) ([]float64, error) {
	n := B.n
	d2 := square(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := B.lower[i][j] + rng.Float64()*(B.upper[i][j]-B.lower[i][j])
			d2[i][j], d2[j][i] = d*d, d*d
		}
	}
	var total float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			total += d2[i][j]
		}
	}
	d0 := make([]float64, n) //squared distances to the centroid
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			s += d2[i][j]
		}
		d0[i] = s/float64(n) - total/float64(n*n)
	}
	G := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			G.SetSym(i, j, (d0[i]+d0[j]-d2[i][j])/2)
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(G, true) {
		return nil, fmt.Errorf("%w: metric matrix eigendecomposition failed", ErrEmbedding)
	}
	vals := eig.Values(nil) //ascending
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	x := make([]float64, 3*n)
	for dim := 0; dim < 3; dim++ {
		col := n - 1 - dim
		for i := 0; i < n; i++ {
			if col < 0 || vals[col] <= 1e-6 {
				x[3*i+dim] = rng.Float64()*2 - 1
				continue
			}
			x[3*i+dim] = math.Sqrt(vals[col]) * vecs.At(i, col)
		}
	}
	return B.refine(x)
}

// refine minimizes the bounds error from x and checks that the result
// violates no bound by more than embedTolerance.
func (B *bounds) refine(x []float64) ([]float64, error) {
	if B.n < 2 {
		return x, nil
	}
	ret, _, err := minimize(optimize.Problem{Func: B.Value, Grad: B.Gradient}, x, refineIters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if v := B.maxViolation(ret); v > embedTolerance {
		return nil, fmt.Errorf("%w: bounds violated by %.2f A", ErrEmbedding, v)
	}
	return ret, nil
}

// Value is the distance bounds error function of the coordinates x.
func (B *bounds) Value(x []float64) float64 {
	return B.errorGrad(x, nil)
}

// Gradient puts the gradient of the bounds error at x in grad.
func (B *bounds) Gradient(grad, x []float64) {
	for i := range grad {
		grad[i] = 0
	}
	B.errorGrad(x, grad)
}

func (B *bounds) errorGrad(x, grad []float64) float64 {
	var e float64
	for i := 0; i < B.n; i++ {
		for j := i + 1; j < B.n; j++ {
			diff := r3.Sub(pos(x, i), pos(x, j))
			d2 := r3.Norm2(diff)
			l2 := B.lower[i][j] * B.lower[i][j]
			u2 := B.upper[i][j] * B.upper[i][j]
			var dEdd2 float64
			if d2 > u2 {
				t := d2/u2 - 1
				e += t * t
				dEdd2 = 2 * t / u2
			} else if d2 < l2 {
				s := 2*l2/(l2+d2) - 1
				e += s * s
				dEdd2 = -4 * s * l2 / ((l2 + d2) * (l2 + d2))
			}
			if grad != nil && dEdd2 != 0 {
				g := r3.Scale(2*dEdd2, diff)
				addGrad(grad, i, g)
				addGrad(grad, j, r3.Scale(-1, g))
			}
		}
	}
	return e
}

// maxViolation returns the largest amount by which x violates a bound.
func (B *bounds) maxViolation(x []float64) float64 {
	var v float64
	for i := 0; i < B.n; i++ {
		for j := i + 1; j < B.n; j++ {
			d := r3.Norm(r3.Sub(pos(x, i), pos(x, j)))
			v = math.Max(v, math.Max(d-B.upper[i][j], B.lower[i][j]-d))
		}
	}
	return v
}

// randomCoords places n atoms uniformly in a cube that grows with n.
func randomCoords(n int, rng *rand.Rand) []float64 {
	side := 2*math.Cbrt(float64(n)) + 2
	x := make([]float64, 3*n)
	for i := range x {
		x[i] = (rng.Float64() - 0.5) * side
	}
	return x
}
