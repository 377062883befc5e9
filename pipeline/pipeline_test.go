/*
 * pipeline_test.go, part of TADF-Design.
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
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chem "github.com/junhkim1226/TADF-Design"
	"github.com/junhkim1226/TADF-Design/conformer"
	"github.com/junhkim1226/TADF-Design/qm"
	v3 "github.com/junhkim1226/TADF-Design/v3"
)

type waterEmbedder struct {
	err error
}

func (w waterEmbedder) Embed(ctx context.Context, smi, outPath string) (*chem.Geometry, error) {
	if w.err != nil {
		return nil, w.err
	}
	coords, err := v3.NewMatrix([]float64{0, 0, 0, 0.96, 0, 0, -0.24, 0.93, 0})
	if err != nil {
		return nil, err
	}
	g, err := chem.NewGeometry([]string{"O", "H", "H"}, coords)
	if err != nil {
		return nil, err
	}
	g.SetCharge(0)
	g.SetMulti(1)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, err
	}
	return g, chem.XYZFileWrite(outPath, g)
}

type call struct {
	name string
	in   qm.Artifact
	Q    qm.Calc
}

// fakeRunner writes every declared output of a step, except for the step
// named in fail.
type fakeRunner struct {
	fail   string
	status qm.Status
	calls  []call
}

func (f *fakeRunner) Run(ctx context.Context, h qm.Handle, Q *qm.Calc, in qm.Artifact, outDir, outName string) qm.Result {
	f.calls = append(f.calls, call{outName, in, *Q})
	if outName == f.fail {
		return qm.Result{Status: f.status, ExitCode: 1, Energy: math.NaN(), Err: errors.New("solver exploded")}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return qm.Result{Status: qm.InputFailed, Err: err}
	}
	res := qm.Result{Status: qm.Success, Energy: -76.4}
	for _, a := range h.Outputs(outName) {
		a.Path = filepath.Join(outDir, a.Path)
		if err := os.WriteFile(a.Path, []byte(outName+" "+a.Kind.String()+"\n"), 0o644); err != nil {
			return qm.Result{Status: qm.ArtifactMissing, Err: err}
		}
		res.Artifacts = append(res.Artifacts, a)
	}
	return res
}

func (f *fakeRunner) names() []string {
	var ret []string
	for _, c := range f.calls {
		ret = append(ret, c.name)
	}
	return ret
}

func newOrchestrator(t *testing.T, e Embedder, r StageRunner) *Orchestrator {
	t.Helper()
	O, err := New(Layout{Root: t.TempDir()}, e, r, DefaultSteps())
	require.NoError(t, err)
	return O
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		ok       bool
	}{
		{Created, Embedded, true},
		{Embedded, PreOptimized, true},
		{PreOptimized, GroundStateOptimized, true},
		{GroundStateOptimized, ExcitedStateComputed, true},
		{Created, PreOptimized, false},
		{PreOptimized, Embedded, false},
		{Embedded, Failed, true},
		{Created, Failed, true},
		{ExcitedStateComputed, Failed, false},
		{Failed, Created, false},
		{Failed, Failed, false},
	}
	for _, tc := range tests {
		r := newRecord(Identity{MolID: "1"}, tc.from)
		err := Transition(r, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, r.State)
			require.Len(t, r.Transitions, 1)
			assert.Equal(t, tc.from, r.Transitions[0].From)
		} else {
			assert.ErrorIs(t, err, ErrInvalidState, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.from, r.State)
			assert.Empty(t, r.Transitions)
		}
	}
	assert.True(t, IsTerminal(Failed))
	assert.True(t, IsTerminal(ExcitedStateComputed))
	assert.False(t, IsTerminal(Embedded))
}

func TestParseState(t *testing.T) {
	for in, want := range map[string]State{
		"initial":                Embedded,
		"pre_opt":                PreOptimized,
		"OPT":                    GroundStateOptimized,
		"ground_state_optimized": GroundStateOptimized,
		"created":                Created,
	} {
		got, err := ParseState(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseState("halfway")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCheckMolID(t *testing.T) {
	for _, id := range []string{"1", "abc-2.x", "A_7"} {
		assert.NoError(t, CheckMolID(id), id)
	}
	for _, id := range []string{"", "../x", "a b", "-x", ".", "x/y", "a;b"} {
		assert.Error(t, CheckMolID(id), id)
	}
}

func TestValidateChain(t *testing.T) {
	require.NoError(t, ValidateChain(DefaultSteps()))

	steps := DefaultSteps()
	assert.ErrorIs(t, ValidateChain(steps[:2]), ErrInvalidChain)

	swapped := DefaultSteps()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	assert.ErrorIs(t, ValidateChain(swapped), ErrInvalidChain)

	//TD reads a checkpoint, which the ORCA step does not write.
	noChk := DefaultSteps()
	noChk[1].Handle = qm.NewOrcaHandle()
	assert.ErrorIs(t, ValidateChain(noChk), ErrInvalidChain)

	repeated := DefaultSteps()
	repeated[2].Stem = StemOpt
	assert.ErrorIs(t, ValidateChain(repeated), ErrInvalidChain)

	_, err := New(Layout{}, waterEmbedder{}, nil, DefaultSteps())
	assert.ErrorIs(t, err, ErrInvalidChain)
}

func TestRunSuccess(t *testing.T) {
	runner := &fakeRunner{}
	O := newOrchestrator(t, waterEmbedder{}, runner)
	id := Identity{MolID: "7", SMILES: "O"}
	rec := O.Run(context.Background(), id)

	require.True(t, rec.OK(), "%v", rec.Err)
	assert.NoError(t, rec.Err)
	assert.Equal(t, []string{StemPreOpt, StemOpt, StemTD}, runner.names())
	var states []State
	for _, tr := range rec.Transitions {
		states = append(states, tr.To)
	}
	assert.Equal(t, []State{Embedded, PreOptimized, GroundStateOptimized, ExcitedStateComputed}, states)

	dir := O.Layout.Dir("mol_7")
	assert.Equal(t, qm.Artifact{Kind: qm.Geometry, Path: filepath.Join(dir, "initial.xyz")}, runner.calls[0].in)
	assert.Equal(t, qm.Artifact{Kind: qm.Geometry, Path: filepath.Join(dir, "pre_opt.xyz")}, runner.calls[1].in)
	assert.Equal(t, qm.Artifact{Kind: qm.Checkpoint, Path: filepath.Join(dir, "opt.chk")}, runner.calls[2].in)
	for _, c := range runner.calls {
		assert.Equal(t, 1, c.Q.Multiplicity)
	}
	assert.InDelta(t, -76.4, rec.Energies[StemTD], 1e-12)
	log, ok := rec.Artifact(qm.Log)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "td.log"), log.Path)
}

func TestRunStageFailure(t *testing.T) {
	runner := &fakeRunner{fail: StemOpt, status: qm.ProcessFailed}
	O := newOrchestrator(t, waterEmbedder{}, runner)
	rec := O.Run(context.Background(), Identity{MolID: "3", SMILES: "O"})

	assert.Equal(t, Failed, rec.State)
	assert.Equal(t, PreOptimized, rec.FailedAt)
	assert.Equal(t, "ground state optimization", rec.Reason)
	assert.Equal(t, qm.ProcessFailed, rec.Status)
	assert.ErrorIs(t, rec.Err, ErrStage)
	assert.Equal(t, []string{StemPreOpt, StemOpt}, runner.names(), "no step runs after a failure")
	assert.ErrorIs(t, Transition(rec, Embedded), ErrInvalidState)
}

func TestRunEmbeddingFailure(t *testing.T) {
	runner := &fakeRunner{}
	O := newOrchestrator(t, waterEmbedder{err: conformer.ErrEmbedding}, runner)
	rec := O.Run(context.Background(), Identity{MolID: "x", SMILES: "C"})
	assert.Equal(t, Failed, rec.State)
	assert.Equal(t, Created, rec.FailedAt)
	assert.Equal(t, "embedding", rec.Reason)
	assert.ErrorIs(t, rec.Err, conformer.ErrEmbedding)
	assert.Empty(t, runner.calls)
}

func TestRunCanceled(t *testing.T) {
	runner := &fakeRunner{}
	O := newOrchestrator(t, waterEmbedder{}, runner)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := O.Run(ctx, Identity{MolID: "c", SMILES: "O"})
	assert.Equal(t, Failed, rec.State)
	assert.Equal(t, Embedded, rec.FailedAt)
	assert.ErrorIs(t, rec.Err, context.Canceled)
	assert.Empty(t, runner.calls)
}

func TestRunFrom(t *testing.T) {
	runner := &fakeRunner{}
	O := newOrchestrator(t, waterEmbedder{}, runner)
	id := Identity{MolID: "9", SMILES: "[NH4+]"}
	require.True(t, O.Run(context.Background(), id).OK())

	runner.calls = nil
	rec := O.RunFrom(context.Background(), id, GroundStateOptimized)
	require.True(t, rec.OK(), "%v", rec.Err)
	assert.Equal(t, []string{StemTD}, runner.names())
	assert.Equal(t, qm.Checkpoint, runner.calls[0].in.Kind)
	assert.Equal(t, 1, runner.calls[0].Q.Charge, "charge comes from the SMILES")
	require.Len(t, rec.Transitions, 1)
	assert.Equal(t, GroundStateOptimized, rec.Transitions[0].From)

	runner.calls = nil
	rec = O.RunFrom(context.Background(), id, Embedded)
	require.True(t, rec.OK())
	assert.Equal(t, []string{StemPreOpt, StemOpt, StemTD}, runner.names())
	assert.Equal(t, O.Layout.Initial(id.Name()), runner.calls[0].in.Path)
}

func TestRunFromErrors(t *testing.T) {
	runner := &fakeRunner{}
	O := newOrchestrator(t, waterEmbedder{}, runner)
	id := Identity{MolID: "new", SMILES: "O"}

	rec := O.RunFrom(context.Background(), id, PreOptimized)
	assert.Equal(t, Failed, rec.State)
	assert.ErrorIs(t, rec.Err, ErrResume)

	rec = O.RunFrom(context.Background(), id, ExcitedStateComputed)
	assert.ErrorIs(t, rec.Err, ErrResume)

	rec = O.RunFrom(context.Background(), Identity{MolID: "bad", SMILES: "C1CC"}, Embedded)
	assert.Equal(t, Failed, rec.State)
	assert.Empty(t, runner.calls)
}

func TestArchive(t *testing.T) {
	O := newOrchestrator(t, waterEmbedder{}, &fakeRunner{})
	O.Archive = true
	rec := O.Run(context.Background(), Identity{MolID: "z", SMILES: "O"})
	require.True(t, rec.OK())

	pre := O.Layout.Path("mol_z", StemPreOpt, ".out")
	assert.NoFileExists(t, pre)
	assert.FileExists(t, pre+ArchiveExt)
	assert.FileExists(t, O.Layout.Path("mol_z", StemTD, ".log"))
	assert.NoFileExists(t, O.Layout.Path("mol_z", StemTD, ".log")+ArchiveExt)

	r, err := OpenLog(pre)
	require.NoError(t, err)
	defer r.Close()
	text, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "pre_opt log\n", string(text))

	_, err = OpenLog(filepath.Join(t.TempDir(), "none.log"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConformerEmbedder(t *testing.T) {
	opts := conformer.DefaultOptions()
	opts.Count = 3
	O := newOrchestrator(t, ConformerEmbedder{Options: opts}, &fakeRunner{})
	rec := O.Run(context.Background(), Identity{MolID: "etoh", SMILES: "CCO"})
	require.True(t, rec.OK(), "%v", rec.Err)
	g, err := chem.XYZFileRead(O.Layout.Initial("mol_etoh"))
	require.NoError(t, err)
	assert.Equal(t, 9, g.Len())
}
