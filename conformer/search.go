/*
 * search.go, part of TADF-Design.
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
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	chem "github.com/junhkim1226/TADF-Design"
	"github.com/junhkim1226/TADF-Design/chemgraph"
	"github.com/junhkim1226/TADF-Design/smiles"
	v3 "github.com/junhkim1226/TADF-Design/v3"
)

// Options controls a conformer search.
type Options struct {
	Count         int    //conformers to embed
	Seed          uint64 //seed of the random distances
	MaxIterations int    //force field minimization steps per conformer
	Attempts      int    //embedding retries per conformer
	Logger        *slog.Logger
}

// DefaultOptions returns 50 conformers, seed 42 and 500 minimization steps.
func DefaultOptions() Options {
	return Options{Count: 50, Seed: 42, MaxIterations: 500, Attempts: 5}
}

func (O Options) normalize() Options {
	def := DefaultOptions()
	if O.Count <= 0 {
		O.Count = def.Count
	}
	if O.MaxIterations <= 0 {
		O.MaxIterations = def.MaxIterations
	}
	if O.Attempts <= 0 {
		O.Attempts = def.Attempts
	}
	if O.Logger == nil {
		O.Logger = slog.Default()
	}
	return O
}

// Conformer is one minimized candidate geometry. Energy is +Inf when the
// force field could not be evaluated.
type Conformer struct {
	ID       int
	Energy   float64
	Geometry *chem.Geometry
}

// Result is the outcome of a conformer search.
type Result struct {
	Geometry   *chem.Geometry //the selected conformer
	Energy     float64
	Conformers []*Conformer
	Best       int  //index of the selected conformer in Conformers
	Fallback   bool //no conformer could be embedded; Geometry comes from random coordinates
	//BondMismatch counts the bonds of the selected geometry, assigned by
	//distance, that are missing from the molecular graph, plus the graph
	//bonds the geometry lacks. It is -1 if the check could not run.
	BondMismatch int
}

// embedConformer embeds one set of coordinates within the bounds B.
var embedConformer = (*bounds).embed

// SelectBest returns the index of the lowest energy, the first one in case
// of ties. NaN counts as +Inf. It returns 0 if every energy is +Inf and -1
// for an empty slice.
func SelectBest(energies []float64) int {
	if len(energies) == 0 {
		return -1
	}
	best := 0
	for i, e := range energies {
		if lessEnergy(e, energies[best]) {
			best = i
		}
	}
	return best
}

func lessEnergy(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return !math.IsInf(a, 1)
	}
	return a < b
}

// Search adds the hydrogens of mol, embeds up to opts.Count conformers,
// minimizes them and selects the lowest-energy one.
func Search(ctx context.Context, mol *chemgraph.Molecule, opts Options) (*Result, error) {
	opts = opts.normalize()
	log := opts.Logger
	all := mol.AddHydrogens()
	if all.Len() == 0 {
		return nil, fmt.Errorf("%w: empty molecule", ErrEmbedding)
	}
	types, err := typeAtoms(all)
	var ff *ForceField
	if err != nil {
		log.Warn("force field not available, conformers will not be scored", "error", err)
	} else if ff, err = NewForceField(all); err != nil {
		log.Warn("force field not available, conformers will not be scored", "error", err)
		ff = nil
	}
	B := newBounds(all, types)
	s := &searcher{mol: all, ff: ff, opts: opts}
	res := &Result{}
	if err := B.smooth(); err != nil {
		log.Debug("distance bounds smoothing failed", "error", err)
	} else {
		for c := 0; c < opts.Count; c++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for a := 0; a < opts.Attempts; a++ {
				rng := rand.New(rand.NewPCG(opts.Seed, uint64(c*opts.Attempts+a)))
				x, err := embedConformer(B, rng)
				if err != nil {
					log.Debug("embedding attempt failed", "conformer", c, "attempt", a, "error", err)
					continue
				}
				conf, err := s.score(len(res.Conformers), x)
				if err != nil {
					return nil, err
				}
				res.Conformers = append(res.Conformers, conf)
				break
			}
		}
	}
	if len(res.Conformers) == 0 {
		log.Warn("no conformer could be embedded, using random coordinates", "atoms", all.Len())
		rng := rand.New(rand.NewPCG(opts.Seed, math.MaxUint64))
		x := randomCoords(all.Len(), rng)
		if ff == nil {
			//at least get the bonds right
			if y, err := B.refine(x); err == nil {
				x = y
			}
		}
		conf, err := s.score(0, x)
		if err != nil {
			return nil, err
		}
		res.Conformers = []*Conformer{conf}
		res.Fallback = true
		res.Best = 0
	} else {
		energies := make([]float64, len(res.Conformers))
		for i, c := range res.Conformers {
			energies[i] = c.Energy
		}
		res.Best = SelectBest(energies)
	}
	best := res.Conformers[res.Best]
	res.Geometry, res.Energy = best.Geometry, best.Energy
	if math.IsInf(res.Energy, 1) {
		log.Warn("no conformer could be scored, keeping the first one", "conformers", len(res.Conformers))
	}
	res.BondMismatch = bondMismatch(all, res.Geometry)
	switch {
	case res.BondMismatch < 0:
		log.Debug("bond check skipped")
	case res.BondMismatch > 0:
		log.Warn("selected conformer does not match the bond graph", "mismatched", res.BondMismatch)
	}
	log.Info("conformer search done", "generated", len(res.Conformers), "best", res.Best, "energy", res.Energy, "fallback", res.Fallback)
	return res, nil
}

// bondMismatch compares the bonds that AssignBonds finds in G with those
// of mol, whose atoms G follows in order. It returns -1 if G cannot be
// bonded.
func bondMismatch(mol *chemgraph.Molecule, G *chem.Geometry) int {
	bonds, err := chem.AssignBonds(G)
	if err != nil {
		return -1
	}
	found := 0
	n := 0
	for _, b := range bonds {
		if mol.BondBetween(b[0], b[1]) == nil {
			n++
			continue
		}
		found++
	}
	return n + len(mol.Bonds) - found
}

type searcher struct {
	mol  *chemgraph.Molecule
	ff   *ForceField
	opts Options
}

// score minimizes x with the force field and wraps it as conformer id.
func (s *searcher) score(id int, x []float64) (*Conformer, error) {
	energy := math.Inf(1)
	if s.ff != nil {
		y, e, err := s.ff.Minimize(x, s.opts.MaxIterations)
		if err != nil {
			s.opts.Logger.Debug("minimization failed", "conformer", id, "error", err)
		} else {
			x, energy = y, e
		}
	}
	coords, err := v3.NewMatrix(x)
	if err != nil {
		return nil, err
	}
	coords.Center()
	G, err := chem.NewGeometry(s.mol.Symbols(), coords)
	if err != nil {
		return nil, err
	}
	G.SetCharge(s.mol.Charge())
	G.SetMulti(s.mol.Multiplicity())
	G.Comment = fmt.Sprintf("conformer %d E= %.4f kcal/mol", id, energy)
	return &Conformer{ID: id, Energy: energy, Geometry: G}, nil
}

// SearchSMILES parses smi, runs a conformer search and writes the selected
// geometry to outPath in XYZ format.
func SearchSMILES(ctx context.Context, smi, outPath string, opts Options) (*Result, error) {
	mol, err := smiles.Parse(smi)
	if err != nil {
		return nil, err
	}
	res, err := Search(ctx, mol, opts)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := chem.XYZFileWrite(outPath, res.Geometry); err != nil {
		return nil, err
	}
	return res, nil
}
