/*
 * batch_test.go, part of TADF-Design.
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

package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/junhkim1226/TADF-Design/pipeline"
)

const table = `MolID,SMILES,S1,T1
1,c1ccc2c(c1)[nH]c1ccccc12,3.0,2.4
2,CCO,,
3,O=C1c2ccccc2C(=O)c2ccccc12,0.0,NaN
`

func TestReadTable(t *testing.T) {
	jobs, err := ReadTable(strings.NewReader(table))
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "mol_1", jobs[0].Name())
	assert.Equal(t, Energy{Value: 3.0, Valid: true}, jobs[0].S1)
	assert.Equal(t, Energy{Value: 2.4, Valid: true}, jobs[0].T1)
	assert.Equal(t, "CCO", jobs[1].SMILES)
	assert.False(t, jobs[1].S1.Valid)
	assert.False(t, jobs[1].T1.Valid)
	assert.Equal(t, Energy{Value: 0, Valid: true}, jobs[2].S1, "zero is a value")
	assert.False(t, jobs[2].T1.Valid)
	assert.Equal(t, "N/A", jobs[2].T1.String())
	assert.Equal(t, "0.0000", jobs[2].S1.String())

	jobs, err = ReadTable(strings.NewReader("SMILES,MolID\nC,a\n"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.Identity{MolID: "a", SMILES: "C"}, jobs[0].Identity)

	for name, bad := range map[string]string{
		"no SMILES column": "MolID,S1\n1,3.0\n",
		"repeated MolID":   "MolID,SMILES\n1,C\n1,CC\n",
		"bad energy":       "MolID,SMILES,S1\n1,C,three\n",
		"empty SMILES":     "MolID,SMILES\n1,\n",
		"short row":        "MolID,SMILES,S1\n1,C\n",
		"empty":            "",
		"slash in MolID":   "MolID,SMILES\n../x,C\n",
		"space in MolID":   "MolID,SMILES\n\"a b\",C\n",
		"dot MolID":        "MolID,SMILES\n..,C\n",
	} {
		_, err := ReadTable(strings.NewReader(bad))
		assert.ErrorIs(t, err, ErrTable, name)
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))
	jobs, err := LoadTable(path)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)

	_, err = LoadTable(filepath.Join(t.TempDir(), "none.csv"))
	assert.ErrorIs(t, err, ErrTable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenderScript(t *testing.T) {
	j := JobSpec{Identity: pipeline.Identity{MolID: "12", SMILES: "C/C=C\\C"}}
	text, err := RenderScript(Slurm{}, j, DefaultResources(), "/work", "", "")
	require.NoError(t, err)
	for _, line := range []string{
		"#!/bin/bash\n",
		"#SBATCH -J TD_mol_12\n",
		"#SBATCH -p 16core\n",
		"#SBATCH --nodes=1\n",
		"#SBATCH --cpus-per-task=16\n",
		"#SBATCH --time=1000:00:00\n",
		"#SBATCH -o /work/logs/mol_12.out\n",
		"#SBATCH -e /work/logs/mol_12.err\n",
		"source /etc/profile.d/modules.sh\n",
		"module load software_module/g16_B.01_AVX\n",
		"cd '/work'\n",
		"SMILES='C/C=C\\C'\n",
		"set -euo pipefail\n",
		"OUT_DIR='/work/results/mol_12'\n",
		`tadf embed "$SMILES" "$OUT_DIR/initial.xyz"` + "\n",
		`tadf preopt "$OUT_DIR/initial.xyz" --out_dir "$OUT_DIR" --out_name "pre_opt" --charge 0 --multiplicity 1` + "\n",
		`tadf opt "$OUT_DIR/pre_opt.xyz" --out_dir "$OUT_DIR" --out_name "opt" --charge 0 --multiplicity 1` + "\n",
		`tadf td "$OUT_DIR/opt.chk" --out_dir "$OUT_DIR" --out_name "td" --charge 0 --multiplicity 1` + "\n",
	} {
		assert.Contains(t, text, line)
	}
	// Errors stop the script, but not while the module environment loads.
	assert.Less(t, strings.Index(text, "module load"), strings.Index(text, "set -euo pipefail"))
	assert.Less(t, strings.Index(text, "set -euo pipefail"), strings.Index(text, "cd '/work'"))
	assert.Less(t, strings.Index(text, "embed"), strings.Index(text, "preopt"))
	assert.Less(t, strings.Index(text, "preopt"), strings.Index(text, " opt "))
	assert.Less(t, strings.Index(text, " opt "), strings.Index(text, " td "))

	again, err := RenderScript(Slurm{}, j, DefaultResources(), "/work", "", "")
	require.NoError(t, err)
	assert.Equal(t, text, again)

	pbs, err := RenderScript(PBS{}, j, DefaultResources(), "/work", "/scratch/out", "tadf --config /work/tadf.yaml")
	require.NoError(t, err)
	assert.Contains(t, pbs, "#PBS -l nodes=1:ppn=16\n")
	assert.Contains(t, pbs, "tadf --config /work/tadf.yaml td ")
	assert.Contains(t, pbs, "OUT_DIR='/scratch/out/mol_12'\n")
}

func TestRenderScriptSpin(t *testing.T) {
	for smi, want := range map[string]string{
		"[CH3]":      "--charge 0 --multiplicity 2",
		"[NH4+]":     "--charge 1 --multiplicity 1",
		"CC(=O)[O-]": "--charge -1 --multiplicity 1",
	} {
		j := JobSpec{Identity: pipeline.Identity{MolID: "r", SMILES: smi}}
		text, err := RenderScript(Slurm{}, j, DefaultResources(), "/work", "", "")
		require.NoError(t, err, smi)
		for _, stage := range []string{"preopt", "opt", "td"} {
			assert.Regexp(t, `(?m)^tadf `+stage+` .* `+want+`$`, text, smi)
		}
	}

	_, err := RenderScript(Slurm{}, JobSpec{Identity: pipeline.Identity{MolID: "x", SMILES: "C1CC"}}, DefaultResources(), "/work", "", "")
	assert.ErrorIs(t, err, ErrSubmission)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'CC'`, shellQuote("CC"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}

func TestParseSbatch(t *testing.T) {
	id, err := ParseSbatch("Submitted batch job 81234\n")
	require.NoError(t, err)
	assert.Equal(t, "81234", id)
	_, err = ParseSbatch("sbatch: error: invalid partition")
	assert.Error(t, err)
}

func fakeBinary(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "submit")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestSchedulersSubmit(t *testing.T) {
	ctx := context.Background()
	id, err := Slurm{Binary: fakeBinary(t, `echo "Submitted batch job 4242"`)}.Submit(ctx, "job.sh")
	require.NoError(t, err)
	assert.Equal(t, "4242", id)

	_, err = Slurm{Binary: fakeBinary(t, `echo "sbatch: error: no queue" >&2; exit 1`)}.Submit(ctx, "job.sh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no queue")

	id, err = PBS{Binary: fakeBinary(t, `echo "$1" >/dev/null; echo 77.headnode`)}.Submit(ctx, "job.sh")
	require.NoError(t, err)
	assert.Equal(t, "77.headnode", id)

	s, err := NewScheduler("PBS", "")
	require.NoError(t, err)
	assert.Equal(t, "pbs", s.Kind())
	_, err = NewScheduler("lsf", "")
	assert.ErrorIs(t, err, ErrSubmission)
}

func expectDirectives(m *MockScheduler) {
	m.EXPECT().Kind().Return("mock").AnyTimes()
	m.EXPECT().Directives(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(j JobSpec, res Resources, workDir string) []string {
			return Slurm{}.Directives(j, res, workDir)
		}).AnyTimes()
}

func TestSubmitAllPartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := NewMockScheduler(ctrl)
	expectDirectives(sched)
	sched.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, script string) (string, error) {
			if filepath.Base(script) == "mol_2.sh" {
				return "", errors.New("queue full")
			}
			return "100", nil
		}).Times(3)

	jobs, err := ReadTable(strings.NewReader(table))
	require.NoError(t, err)
	work := t.TempDir()
	s := &Submitter{Scheduler: sched, Resources: DefaultResources()}
	out := s.SubmitAll(context.Background(), jobs, work)

	require.Len(t, out, 3)
	var ok, failed int
	for _, o := range out {
		if o.OK() {
			ok++
			assert.Equal(t, "100", o.JobID)
		} else {
			failed++
			assert.Equal(t, "mol_2", o.Job.Name())
			assert.ErrorIs(t, o.Err, ErrSubmission)
		}
		assert.FileExists(t, o.Script)
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
	assert.DirExists(t, filepath.Join(work, "logs"))
}

func TestSubmitAllDryRunOverwrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := NewMockScheduler(ctrl)
	expectDirectives(sched)

	jobs, err := ReadTable(strings.NewReader(table))
	require.NoError(t, err)
	work := t.TempDir()
	s := &Submitter{Scheduler: sched, Resources: DefaultResources(), DryRun: true}
	first := s.SubmitAll(context.Background(), jobs, work)
	second := s.SubmitAll(context.Background(), jobs, work)
	for i := range first {
		require.True(t, second[i].OK())
		assert.Equal(t, first[i].Script, second[i].Script)
		assert.Empty(t, second[i].JobID)
	}
	entries, err := os.ReadDir(filepath.Join(work, "jobs"))
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestSubmitAllCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	sched := NewMockScheduler(ctrl)
	sched.EXPECT().Kind().Return("mock").AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := []JobSpec{{Identity: pipeline.Identity{MolID: "1", SMILES: "C"}}}
	out := (&Submitter{Scheduler: sched}).SubmitAll(ctx, jobs, t.TempDir())
	require.Len(t, out, 1)
	assert.ErrorIs(t, out[0].Err, context.Canceled)
}
