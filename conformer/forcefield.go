/*
 * forcefield.go, part of TADF-Design.
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
	"errors"
	"math"

	"github.com/junhkim1226/TADF-Design/chemgraph"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r3"
)

const kcalConst = 664.12 //UFF force constant prefactor

type bondTerm struct {
	i, j  int
	k, r0 float64
}

type angleTerm struct {
	i, j, k    int
	ka         float64
	c0, c1, c2 float64
	linear     bool
}

type torsionTerm struct {
	i, j, k, l int
	v          float64
	n          int
	sign       float64 //cos(n*phi0)
}

type vdwTerm struct {
	i, j int
	d, x float64
}

// ForceField is a UFF-style empirical energy function for one all-atom
// molecule: bond stretching, angle bending, torsions and Lennard-Jones
// non-bonded terms. Coordinates are flat slices x0 y0 z0 x1 ... in A and
// energies are in kcal/mol.
type ForceField struct {
	n        int
	bonds    []bondTerm
	angles   []angleTerm
	torsions []torsionTerm
	vdw      []vdwTerm
}

// NewForceField sets up the force field for mol, which must carry all its
// hydrogens as atoms. It returns an error wrapping ErrTyping if some atom
// has no parameters.
func NewForceField(mol *chemgraph.Molecule) (*ForceField, error) {
	types, err := typeAtoms(mol)
	if err != nil {
		return nil, err
	}
	F := &ForceField{n: mol.Len()}
	for _, b := range mol.Bonds {
		ti, tj := types[b.I], types[b.J]
		r0 := restLength(ti, tj, bondOrder(b))
		F.bonds = append(F.bonds, bondTerm{i: b.I, j: b.J, r0: r0, k: kcalConst * ti.Z * tj.Z / (r0 * r0 * r0)})
	}
	for j := range mol.Atoms {
		nb := mol.Neighbors(j)
		for a := 0; a < len(nb); a++ {
			for c := a + 1; c < len(nb); c++ {
				F.angles = append(F.angles, newAngleTerm(mol, types, nb[a], j, nb[c]))
			}
		}
	}
	for _, b := range mol.Bonds {
		F.torsions = append(F.torsions, torsionTerms(mol, types, b)...)
	}
	hops := mol.HopDistances()
	for i := 0; i < F.n; i++ {
		for j := i + 1; j < F.n; j++ {
			if h := hops[i][j]; h >= 0 && h < 3 {
				continue
			}
			ti, tj := types[i], types[j]
			F.vdw = append(F.vdw, vdwTerm{i: i, j: j, d: math.Sqrt(ti.D * tj.D), x: math.Sqrt(ti.X * tj.X)})
		}
	}
	return F, nil
}

func newAngleTerm(mol *chemgraph.Molecule, types []*uffType, i, j, k int) angleTerm {
	ti, tj, tk := types[i], types[j], types[k]
	rij := restLength(ti, tj, bondOrder(mol.BondBetween(i, j)))
	rjk := restLength(tj, tk, bondOrder(mol.BondBetween(j, k)))
	cos0 := math.Cos(tj.Theta0 * math.Pi / 180)
	rik2 := rij*rij + rjk*rjk - 2*rij*rjk*cos0
	rik := math.Sqrt(rik2)
	ka := kcalConst * ti.Z * tk.Z / math.Pow(rik, 5) * (3*rij*rjk*(1-cos0*cos0) - rik2*cos0)
	t := angleTerm{i: i, j: j, k: k, ka: ka}
	if tj.linear() {
		t.linear = true
		return t
	}
	sin2 := 1 - cos0*cos0
	t.c2 = 1 / (4 * sin2)
	t.c1 = -4 * t.c2 * cos0
	t.c0 = t.c2 * (2*cos0*cos0 + 1)
	return t
}

// torsionTerms returns the torsions about bond b. Torsions about bonds to
// linear atoms are left out.
func torsionTerms(mol *chemgraph.Molecule, types []*uffType, b *chemgraph.Bond) []torsionTerm {
	j, k := b.I, b.J
	tj, tk := types[j], types[k]
	if tj.linear() || tk.linear() || mol.Degree(j) < 2 || mol.Degree(k) < 2 {
		return nil
	}
	sp3j, sp3k := mol.Hybridization(j) == chemgraph.SP3, mol.Hybridization(k) == chemgraph.SP3
	var v, sign float64
	var n int
	switch {
	case sp3j && sp3k:
		n, sign = 3, -1
		v = math.Sqrt(tj.V * tk.V)
	case !sp3j && !sp3k:
		n, sign = 2, 1
		v = 5 * math.Sqrt(tj.U*tk.U) * (1 + 4.18*math.Log(bondOrder(b)))
	default:
		n, sign = 6, 1
		v = 1
	}
	if v == 0 {
		return nil
	}
	v /= float64((mol.Degree(j) - 1) * (mol.Degree(k) - 1))
	var ret []torsionTerm
	for _, i := range mol.Neighbors(j) {
		if i == k {
			continue
		}
		for _, l := range mol.Neighbors(k) {
			if l == j || l == i {
				continue
			}
			ret = append(ret, torsionTerm{i: i, j: j, k: k, l: l, v: v, n: n, sign: sign})
		}
	}
	return ret
}

func pos(x []float64, i int) r3.Vec {
	return r3.Vec{X: x[3*i], Y: x[3*i+1], Z: x[3*i+2]}
}

func addGrad(grad []float64, i int, v r3.Vec) {
	grad[3*i] += v.X
	grad[3*i+1] += v.Y
	grad[3*i+2] += v.Z
}

// cosAngle returns the cosine of the angle between u and v, and its
// derivatives with respect to u and v.
func cosAngle(u, v r3.Vec) (float64, r3.Vec, r3.Vec) {
	nu, nv := r3.Norm(u), r3.Norm(v)
	if nu < 1e-10 || nv < 1e-10 {
		return 1, r3.Vec{}, r3.Vec{}
	}
	c := r3.Dot(u, v) / (nu * nv)
	du := r3.Sub(r3.Scale(1/(nu*nv), v), r3.Scale(c/(nu*nu), u))
	dv := r3.Sub(r3.Scale(1/(nu*nv), u), r3.Scale(c/(nv*nv), v))
	return c, du, dv
}

// cosNPhi returns cos(n*phi) and its derivative as functions of c=cos(phi).
func cosNPhi(n int, c float64) (float64, float64) {
	switch n {
	case 2:
		return 2*c*c - 1, 4 * c
	case 3:
		return 4*c*c*c - 3*c, 12*c*c - 3
	case 6:
		c2 := c * c
		return 32*c2*c2*c2 - 48*c2*c2 + 18*c2 - 1, 192*c2*c2*c - 192*c2*c + 36*c
	}
	panic("unsupported torsion periodicity")
}

// energy returns the force field energy at x, and adds its gradient to
// grad when grad is not nil.
func (F *ForceField) energy(x, grad []float64) float64 {
	var e float64
	for _, t := range F.bonds {
		d := r3.Sub(pos(x, t.i), pos(x, t.j))
		r := r3.Norm(d)
		dr := r - t.r0
		e += 0.5 * t.k * dr * dr
		if grad != nil && r > 1e-10 {
			g := r3.Scale(t.k*dr/r, d)
			addGrad(grad, t.i, g)
			addGrad(grad, t.j, r3.Scale(-1, g))
		}
	}
	for _, t := range F.angles {
		u := r3.Sub(pos(x, t.i), pos(x, t.j))
		v := r3.Sub(pos(x, t.k), pos(x, t.j))
		c, du, dv := cosAngle(u, v)
		var dEdc float64
		if t.linear {
			e += t.ka * (1 + c)
			dEdc = t.ka
		} else {
			e += t.ka * (t.c0 + t.c1*c + t.c2*(2*c*c-1))
			dEdc = t.ka * (t.c1 + 4*t.c2*c)
		}
		if grad != nil {
			addGrad(grad, t.i, r3.Scale(dEdc, du))
			addGrad(grad, t.k, r3.Scale(dEdc, dv))
			addGrad(grad, t.j, r3.Scale(-dEdc, r3.Add(du, dv)))
		}
	}
	for _, t := range F.torsions {
		b1 := r3.Sub(pos(x, t.j), pos(x, t.i))
		b2 := r3.Sub(pos(x, t.k), pos(x, t.j))
		b3 := r3.Sub(pos(x, t.l), pos(x, t.k))
		n1, n2 := r3.Cross(b1, b2), r3.Cross(b2, b3)
		if r3.Norm(n1) < 1e-8 || r3.Norm(n2) < 1e-8 {
			continue //collinear, the torsion is undefined
		}
		c, g1, g2 := cosAngle(n1, n2)
		cn, dcn := cosNPhi(t.n, c)
		e += 0.5 * t.v * (1 - t.sign*cn)
		if grad == nil {
			continue
		}
		dEdc := -0.5 * t.v * t.sign * dcn
		G1 := r3.Scale(dEdc, r3.Cross(b2, g1))
		G2 := r3.Scale(dEdc, r3.Add(r3.Cross(g1, b1), r3.Cross(b3, g2)))
		G3 := r3.Scale(dEdc, r3.Cross(g2, b2))
		addGrad(grad, t.i, r3.Scale(-1, G1))
		addGrad(grad, t.j, r3.Sub(G1, G2))
		addGrad(grad, t.k, r3.Sub(G2, G3))
		addGrad(grad, t.l, G3)
	}
	for _, t := range F.vdw {
		d := r3.Sub(pos(x, t.i), pos(x, t.j))
		r := r3.Norm(d)
		if r < 1e-6 {
			r = 1e-6
		}
		s6 := math.Pow(t.x/r, 6)
		e += t.d * (s6*s6 - 2*s6)
		if grad != nil {
			dEdr := 12 * t.d / r * (s6 - s6*s6)
			g := r3.Scale(dEdr/r, d)
			addGrad(grad, t.i, g)
			addGrad(grad, t.j, r3.Scale(-1, g))
		}
	}
	return e
}

// Energy returns the energy of the coordinates x.
func (F *ForceField) Energy(x []float64) float64 {
	return F.energy(x, nil)
}

// Gradient puts the gradient of the energy at x in grad.
func (F *ForceField) Gradient(grad, x []float64) {
	for i := range grad {
		grad[i] = 0
	}
	F.energy(x, grad)
}

// Minimize runs at most maxIter L-BFGS iterations from x and returns the
// final coordinates and energy. x is not modified.
func (F *ForceField) Minimize(x []float64, maxIter int) ([]float64, float64, error) {
	return minimize(optimize.Problem{Func: F.Energy, Grad: F.Gradient}, x, maxIter)
}

// minimize wraps gonum's L-BFGS. Running out of iterations is not an error;
// a failed line search keeps the best point found so far.
func minimize(p optimize.Problem, x []float64, maxIter int) ([]float64, float64, error) {
	settings := &optimize.Settings{MajorIterations: maxIter}
	res, err := optimize.Minimize(p, x, settings, &optimize.LBFGS{})
	if res == nil {
		return nil, math.Inf(1), err
	}
	if math.IsNaN(res.F) || math.IsInf(res.F, 0) {
		return nil, math.Inf(1), errors.New("minimization diverged")
	}
	for _, v := range res.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, math.Inf(1), errors.New("minimization diverged")
		}
	}
	return res.X, res.F, nil
}
