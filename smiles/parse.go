/*
 * parse.go, part of TADF-Design.
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

package smiles

import (
	"fmt"
	"strings"

	chem "github.com/junhkim1226/TADF-Design"
	"github.com/junhkim1226/TADF-Design/chemgraph"
)

//default valences of the organic subset, lowest first.
var defaultValences = map[string][]int{
	"B":  {3},
	"C":  {4},
	"N":  {3, 5},
	"O":  {2},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"F":  {1},
	"Cl": {1},
	"Br": {1},
	"I":  {1},
}

var aromaticSymbols = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S", "se": "Se", "as": "As",
}

type bondSpec struct {
	set      bool
	order    float64
	aromatic bool
	pos      int
}

type ringOpen struct {
	atom int
	bond bondSpec
}

type parser struct {
	s        string
	pos      int
	mol      *chemgraph.Molecule
	prev     int
	pending  bondSpec
	branches []int
	rings    map[int]ringOpen
	implicit []*chemgraph.Bond //aromatic bonds that were not written explicitly
}

// Parse parses s into a molecular graph with implicit hydrogens counted on
// each atom but not added as atoms. Errors wrap ErrParse.
func Parse(s string) (*chemgraph.Molecule, error) {
	p := &parser{s: strings.TrimSpace(s), mol: chemgraph.New(), prev: -1, rings: make(map[int]ringOpen)}
	if err := p.run(); err != nil {
		err.Decorate("Parse")
		return nil, err
	}
	return p.mol, nil
}

func (p *parser) errorf(pos int, format string, args ...any) *Error {
	return &Error{SMILES: p.s, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) run() *Error {
	if p.s == "" {
		return p.errorf(0, "empty string")
	}
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.errorf(p.pos, "branch without a preceding atom")
			}
			if p.pending.set {
				return p.errorf(p.pos, "bond before a branch")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++
		case c == ')':
			if len(p.branches) == 0 {
				return p.errorf(p.pos, "unbalanced ')'")
			}
			if p.pending.set {
				return p.errorf(p.pending.pos, "bond without a following atom")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++
		case strings.IndexByte(`-=#:/\$`, c) >= 0:
			if p.pending.set {
				return p.errorf(p.pos, "two consecutive bonds")
			}
			if p.prev < 0 {
				return p.errorf(p.pos, "bond without a preceding atom")
			}
			p.pending = bondSpec{set: true, pos: p.pos}
			switch c {
			case '=':
				p.pending.order = 2
			case '#':
				p.pending.order = 3
			case ':':
				p.pending.order, p.pending.aromatic = 1.5, true
			case '$':
				return p.errorf(p.pos, "quadruple bonds are not supported")
			default:
				p.pending.order = 1 //directional bonds are single bonds
			}
			p.pos++
		case c == '.':
			if p.pending.set {
				return p.errorf(p.pending.pos, "bond without a following atom")
			}
			if len(p.branches) != 0 {
				return p.errorf(p.pos, "dot inside a branch")
			}
			p.prev = -1
			p.pos++
		case c == '%' || (c >= '0' && c <= '9'):
			if err := p.ring(); err != nil {
				return err
			}
		case c == '[':
			a, err := p.bracketAtom()
			if err != nil {
				return err
			}
			if err := p.attach(a); err != nil {
				return err
			}
		default:
			a, err := p.organicAtom()
			if err != nil {
				return err
			}
			if err := p.attach(a); err != nil {
				return err
			}
		}
	}
	if p.pending.set {
		return p.errorf(p.pending.pos, "bond without a following atom")
	}
	if len(p.branches) != 0 {
		return p.errorf(len(p.s), "unclosed branch")
	}
	for n, r := range p.rings {
		return p.errorf(len(p.s), "ring closure %d never closed (opened at atom %d)", n, r.atom)
	}
	p.dearomatizeChains()
	p.implicitHydrogens()
	return nil
}

// attach adds a to the molecule, bonding it to the previous atom.
func (p *parser) attach(a *chemgraph.Atom) *Error {
	i := p.mol.AddAtom(a)
	if p.prev >= 0 {
		if err := p.bond(p.prev, i, p.pending); err != nil {
			return err
		}
	}
	p.pending = bondSpec{}
	p.prev = i
	return nil
}

func (p *parser) bond(i, j int, spec bondSpec) *Error {
	order, aromatic, implicit := spec.order, spec.aromatic, false
	if !spec.set {
		order = 1
		if p.mol.Atoms[i].Aromatic && p.mol.Atoms[j].Aromatic {
			order, aromatic, implicit = 1.5, true, true
		}
	}
	b, err := p.mol.AddBond(i, j, order, aromatic)
	if err != nil {
		return p.errorf(p.pos, "%s", err.Error())
	}
	if implicit {
		p.implicit = append(p.implicit, b)
	}
	return nil
}

func (p *parser) ring() *Error {
	start := p.pos
	if p.prev < 0 {
		return p.errorf(start, "ring closure without a preceding atom")
	}
	var n int
	if p.s[p.pos] == '%' {
		if p.pos+2 >= len(p.s) || !isDigit(p.s[p.pos+1]) || !isDigit(p.s[p.pos+2]) {
			return p.errorf(start, "'%%' must be followed by two digits")
		}
		n = int(p.s[p.pos+1]-'0')*10 + int(p.s[p.pos+2]-'0')
		p.pos += 3
	} else {
		n = int(p.s[p.pos] - '0')
		p.pos++
	}
	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpen{atom: p.prev, bond: p.pending}
		p.pending = bondSpec{}
		return nil
	}
	delete(p.rings, n)
	spec := p.pending
	if open.bond.set {
		if spec.set && (spec.order != open.bond.order || spec.aromatic != open.bond.aromatic) {
			return p.errorf(start, "conflicting bonds for ring closure %d", n)
		}
		spec = open.bond
	}
	if open.atom == p.prev {
		return p.errorf(start, "ring closure %d bonds an atom to itself", n)
	}
	p.pending = bondSpec{}
	return p.bond(open.atom, p.prev, spec)
}

func (p *parser) organicAtom() (*chemgraph.Atom, *Error) {
	rest := p.s[p.pos:]
	for _, two := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, two) {
			p.pos += 2
			return &chemgraph.Atom{Symbol: two}, nil
		}
	}
	c := rest[:1]
	if _, ok := defaultValences[c]; ok {
		p.pos++
		return &chemgraph.Atom{Symbol: c}, nil
	}
	if sym, ok := aromaticSymbols[c]; ok && len(c) == 1 {
		p.pos++
		return &chemgraph.Atom{Symbol: sym, Aromatic: true}, nil
	}
	return nil, p.errorf(p.pos, "unexpected character %q", c)
}

func (p *parser) bracketAtom() (*chemgraph.Atom, *Error) {
	start := p.pos
	end := strings.IndexByte(p.s[start:], ']')
	if end < 0 {
		return nil, p.errorf(start, "unclosed bracket atom")
	}
	body := p.s[start+1 : start+end]
	p.pos = start + end + 1
	a := &chemgraph.Atom{Bracket: true}
	i := 0
	for i < len(body) && isDigit(body[i]) {
		a.Isotope = a.Isotope*10 + int(body[i]-'0')
		i++
	}
	//element
	switch {
	case i < len(body) && body[i] >= 'a' && body[i] <= 'z':
		if i+1 < len(body) {
			if sym, ok := aromaticSymbols[body[i:i+2]]; ok {
				a.Symbol, a.Aromatic = sym, true
				i += 2
				break
			}
		}
		sym, ok := aromaticSymbols[body[i:i+1]]
		if !ok {
			return nil, p.errorf(start+1+i, "unknown aromatic element %q", body[i:i+1])
		}
		a.Symbol, a.Aromatic = sym, true
		i++
	case i < len(body) && body[i] >= 'A' && body[i] <= 'Z':
		if i+1 < len(body) && body[i+1] >= 'a' && body[i+1] <= 'z' && chem.AtomicNumber(body[i:i+2]) > 0 {
			a.Symbol = body[i : i+2]
			i += 2
		} else if chem.AtomicNumber(body[i:i+1]) > 0 {
			a.Symbol = body[i : i+1]
			i++
		} else {
			return nil, p.errorf(start+1+i, "unknown element in %q", body)
		}
	default:
		return nil, p.errorf(start+1+i, "bracket atom without element")
	}
	//chirality, ignored
	if i < len(body) && body[i] == '@' {
		i++
		for i < len(body) && (body[i] == '@' || isDigit(body[i]) || (body[i] >= 'A' && body[i] <= 'Z' && body[i] != 'H')) {
			i++
		}
	}
	if i < len(body) && body[i] == 'H' {
		i++
		a.ExplicitH = 1
		if i < len(body) && isDigit(body[i]) {
			a.ExplicitH = int(body[i] - '0')
			i++
		}
	}
	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		sc := body[i]
		i++
		switch {
		case i < len(body) && isDigit(body[i]):
			n := 0
			for i < len(body) && isDigit(body[i]) {
				n = n*10 + int(body[i]-'0')
				i++
			}
			a.Charge = sign * n
		default:
			n := 1
			for i < len(body) && body[i] == sc {
				n++
				i++
			}
			a.Charge = sign * n
		}
	}
	if i < len(body) && body[i] == ':' {
		i++
		for i < len(body) && isDigit(body[i]) {
			i++
		}
	}
	if i != len(body) {
		return nil, p.errorf(start+1+i, "unexpected %q in bracket atom", body[i:])
	}
	return a, nil
}

// dearomatizeChains turns implicit aromatic bonds that are not in a ring,
// like the one joining the rings of biphenyl in c1ccccc1c1ccccc1, into single bonds.
func (p *parser) dearomatizeChains() {
	for _, b := range p.implicit {
		if !p.inRing(b) {
			b.Order, b.Aromatic = 1, false
		}
	}
}

// inRing reports whether b's atoms stay connected without b.
func (p *parser) inRing(b *chemgraph.Bond) bool {
	seen := make([]bool, p.mol.Len())
	stack := []int{b.I}
	seen[b.I] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range p.mol.BondsOf(cur) {
			if nb == b {
				continue
			}
			n := nb.Cross(cur)
			if n == b.J {
				return true
			}
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return false
}

// implicitHydrogens fills ImplicitH for organic-subset atoms: the lowest
// default valence that accommodates the bonds, minus the bonds.
func (p *parser) implicitHydrogens() {
	for i, a := range p.mol.Atoms {
		if a.Bracket {
			continue
		}
		valences, ok := defaultValences[a.Symbol]
		if !ok {
			continue
		}
		v := p.mol.Valence(i)
		if a.Aromatic {
			switch a.Symbol {
			case "C", "B":
				v++
			case "N", "P":
				if p.mol.Degree(i) == 2 {
					v++
				}
			}
		}
		for _, target := range valences {
			if target >= v {
				a.ImplicitH = target - v
				break
			}
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
