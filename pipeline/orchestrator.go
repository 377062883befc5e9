/*
 * orchestrator.go, part of TADF-Design.
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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	chem "github.com/junhkim1226/TADF-Design"
	"github.com/junhkim1226/TADF-Design/conformer"
	"github.com/junhkim1226/TADF-Design/qm"
	"github.com/junhkim1226/TADF-Design/smiles"
)

// Identity is a molecule as given in the input table.
type Identity struct {
	MolID  string
	SMILES string
}

// Name is the directory and job name of the molecule.
func (id Identity) Name() string { return "mol_" + id.MolID }

// Embedder produces the initial geometry of a molecule and writes it to
// outPath.
type Embedder interface {
	Embed(ctx context.Context, smi, outPath string) (*chem.Geometry, error)
}

// StageRunner runs one solver stage. *qm.Runner implements it.
type StageRunner interface {
	Run(ctx context.Context, h qm.Handle, Q *qm.Calc, in qm.Artifact, outDir, outName string) qm.Result
}

// ConformerEmbedder embeds molecules with a conformer search.
type ConformerEmbedder struct {
	Options conformer.Options
}

func (c ConformerEmbedder) Embed(ctx context.Context, smi, outPath string) (*chem.Geometry, error) {
	res, err := conformer.SearchSMILES(ctx, smi, outPath, c.Options)
	if err != nil {
		return nil, err
	}
	return res.Geometry, nil
}

// Record is the history of one molecule through the pipeline.
type Record struct {
	Identity     Identity
	State        State
	FailedAt     State  //last state reached before failing
	Reason       string //what failed
	Status       qm.Status
	Err          error
	Charge       int
	Multiplicity int //0 when unknown
	Transitions  []TransitionEvent
	Artifacts    []qm.Artifact      //in the order they were produced
	Energies     map[string]float64 //Hartree, by step stem
}

func newRecord(id Identity, s State) *Record {
	return &Record{Identity: id, State: s, Energies: make(map[string]float64)}
}

// OK reports whether the molecule made it through every step.
func (r *Record) OK() bool { return r.State == ExcitedStateComputed }

// Artifact returns the latest artifact of the given kind.
func (r *Record) Artifact(kind qm.ArtifactKind) (qm.Artifact, bool) {
	for i := len(r.Artifacts) - 1; i >= 0; i-- {
		if r.Artifacts[i].Kind == kind {
			return r.Artifacts[i], true
		}
	}
	return qm.Artifact{}, false
}

// Orchestrator runs molecules through embedding and the solver steps,
// strictly in order. It keeps no state between molecules.
type Orchestrator struct {
	Layout   Layout
	Embedder Embedder
	Runner   StageRunner
	Steps    []Step
	Archive  bool //compress the logs of all but the last step on success
	Logger   *slog.Logger
}

// New returns an Orchestrator after checking the step chain.
func New(layout Layout, e Embedder, r StageRunner, steps []Step) (*Orchestrator, error) {
	if e == nil || r == nil {
		return nil, &Error{Kind: ErrInvalidChain, Msg: "nil embedder or stage runner"}
	}
	if err := ValidateChain(steps); err != nil {
		return nil, err
	}
	return &Orchestrator{Layout: layout, Embedder: e, Runner: r, Steps: steps}, nil
}

func (O *Orchestrator) logger() *slog.Logger {
	if O.Logger == nil {
		return slog.Default()
	}
	return O.Logger
}

// Run takes the molecule from Created as far as it goes. Failures end
// in the Failed state, never in a retry.
func (O *Orchestrator) Run(ctx context.Context, id Identity) *Record {
	rec := newRecord(id, Created)
	log := O.logger().With("molecule", id.Name())
	path := O.Layout.Initial(id.Name())
	g, err := O.Embedder.Embed(ctx, id.SMILES, path)
	if err != nil {
		O.fail(rec, "embedding", err)
		return rec
	}
	rec.Charge, rec.Multiplicity = g.Charge(), g.Multi()
	rec.Artifacts = append(rec.Artifacts, qm.Artifact{Kind: qm.Geometry, Path: path})
	O.advance(rec, Embedded)
	log.Debug("embedded", "atoms", g.Len(), "charge", rec.Charge, "multiplicity", rec.Multiplicity)
	O.runSteps(ctx, rec, 0)
	return rec
}

// RunFrom resumes a molecule that already reached from, using the files
// left in its directory by the earlier steps. The artifact the next step
// needs must exist. Resuming from Created is the same as Run.
func (O *Orchestrator) RunFrom(ctx context.Context, id Identity, from State) *Record {
	if from == Created {
		return O.Run(ctx, id)
	}
	rec := newRecord(id, Created)
	if IsTerminal(from) || position(from) < 0 {
		O.fail(rec, "resume", &Error{Kind: ErrResume, Msg: fmt.Sprintf("nothing to run after %s", from)})
		return rec
	}
	if id.SMILES != "" {
		mol, err := smiles.Parse(id.SMILES)
		if err != nil {
			O.fail(rec, "resume", err)
			return rec
		}
		rec.Charge, rec.Multiplicity = mol.Charge(), mol.Multiplicity()
	}
	k := 0
	for k < len(O.Steps) && position(O.Steps[k].To) <= position(from) {
		k++
	}
	dir := O.Layout.Dir(id.Name())
	if _, err := os.Stat(O.Layout.Initial(id.Name())); err == nil {
		rec.Artifacts = append(rec.Artifacts, qm.Artifact{Kind: qm.Geometry, Path: O.Layout.Initial(id.Name())})
	}
	for _, s := range O.Steps[:k] {
		for _, a := range s.Handle.Outputs(s.Stem) {
			a.Path = filepath.Join(dir, a.Path)
			if _, err := os.Stat(a.Path); err == nil {
				rec.Artifacts = append(rec.Artifacts, a)
			}
		}
	}
	if k < len(O.Steps) {
		need := O.Steps[k].Handle.Requires()
		if _, ok := rec.Artifact(need); !ok {
			O.fail(rec, "resume", &Error{Kind: ErrResume, Msg: fmt.Sprintf("no %s artifact in %s to resume from %s", need, dir, from)})
			return rec
		}
	}
	rec.State = from
	O.logger().Info("resuming", "molecule", id.Name(), "state", from)
	O.runSteps(ctx, rec, k)
	return rec
}

func (O *Orchestrator) runSteps(ctx context.Context, rec *Record, first int) {
	dir := O.Layout.Dir(rec.Identity.Name())
	for _, s := range O.Steps[first:] {
		if err := ctx.Err(); err != nil {
			O.fail(rec, s.Reason, err)
			return
		}
		in, ok := rec.Artifact(s.Handle.Requires())
		if !ok {
			O.fail(rec, s.Reason, &Error{Kind: ErrInvalidChain, Msg: fmt.Sprintf("no %s artifact for %s", s.Handle.Requires(), s.Stem)})
			return
		}
		Q := s.Calc
		if rec.Multiplicity != 0 {
			Q.Charge, Q.Multiplicity = rec.Charge, rec.Multiplicity
		}
		res := O.Runner.Run(ctx, s.Handle, &Q, in, dir, s.Stem)
		if !res.OK() {
			rec.Status = res.Status
			O.fail(rec, s.Reason, &Error{Kind: ErrStage, Msg: fmt.Sprintf("%s: %s", s.Reason, res.Status), Err: res.Err})
			return
		}
		rec.Artifacts = append(rec.Artifacts, res.Artifacts...)
		if !math.IsNaN(res.Energy) {
			rec.Energies[s.Stem] = res.Energy
		}
		O.advance(rec, s.To)
	}
	if O.Archive && rec.OK() {
		O.archive(rec)
	}
}

func (O *Orchestrator) advance(rec *Record, to State) {
	if err := Transition(rec, to); err != nil {
		O.fail(rec, "transition", err)
		return
	}
	O.logger().Info("state", "molecule", rec.Identity.Name(), "state", to)
}

func (O *Orchestrator) fail(rec *Record, reason string, err error) {
	rec.FailedAt, rec.Reason, rec.Err = rec.State, reason, err
	if terr := Transition(rec, Failed); terr != nil {
		rec.Err = errors.Join(err, terr)
	}
	O.logger().Error("molecule failed", "molecule", rec.Identity.Name(), "at", rec.FailedAt, "reason", reason, "error", err)
}

// archive compresses the logs of every step but the last.
func (O *Orchestrator) archive(rec *Record) {
	last := O.Steps[len(O.Steps)-1].Stem
	for i, a := range rec.Artifacts {
		base := filepath.Base(a.Path)
		if a.Kind != qm.Log || strings.TrimSuffix(base, filepath.Ext(base)) == last {
			continue
		}
		name, err := Compress(a.Path)
		if err != nil {
			O.logger().Warn("archiving", "file", a.Path, "error", err)
			continue
		}
		rec.Artifacts[i].Path = name
	}
}
