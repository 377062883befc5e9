/*
 * config_test.go, part of TADF-Design.
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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junhkim1226/TADF-Design/qm"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, "results", cfg.ResultsDir())
	assert.Equal(t, 50, cfg.Conformer.Count)
	assert.Equal(t, uint64(42), cfg.Conformer.Seed)
	assert.Equal(t, 500, cfg.ConformerOptions().MaxIterations)
	assert.Equal(t, "XTB2", cfg.PreOpt.Method)
	assert.Equal(t, qm.Calc{Method: "b3lyp", Basis: "6-31g*", NProcs: 16, Memory: 61440, NStates: 50, SCF: "XQC"}, cfg.TD.Calc())
	assert.Equal(t, "slurm", cfg.Scheduler.Kind)
	assert.Equal(t, "16core", cfg.Resources().Queue)
	assert.False(t, cfg.ArchiveLogs())
	assert.Empty(t, cfg.Source)
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	t.Setenv("TADF_TEST_G16", "/opt/g16/g16")
	path := writeFile(t, root, FileName, `
paths:
  work: /scratch/tadf
conformer:
  count: 10
  seed: 7
solvers:
  gaussian: ${TADF_TEST_G16}
td:
  nstates: 10
  scf: none
scheduler:
  kind: pbs
  queue: long
  modules: [gaussian/16]
archive: true
`)
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	cfg, err := Load(deep)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "/scratch/tadf/results", cfg.ResultsDir())
	assert.Equal(t, 10, cfg.Conformer.Count)
	assert.Equal(t, uint64(7), cfg.Conformer.Seed)
	assert.Equal(t, 500, cfg.Conformer.MaxIterations, "unset values keep their default")
	assert.Equal(t, "/opt/g16/g16", cfg.Solvers.Gaussian)
	assert.Equal(t, 10, cfg.TD.NStates)
	assert.Equal(t, "none", cfg.TD.SCF)
	assert.Equal(t, "b3lyp", cfg.TD.Method)
	assert.Equal(t, "pbs", cfg.Scheduler.Kind)
	assert.Equal(t, []string{"gaussian/16"}, cfg.Resources().Modules)
	assert.Equal(t, 16, cfg.Resources().CPUs)
	assert.True(t, cfg.ArchiveLogs())

	steps := cfg.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, "/opt/g16/g16", steps[2].Handle.Command("td").Path)
	assert.Equal(t, 10, steps[2].Calc.NStates)
	td, ok := cfg.Step("td")
	require.True(t, ok)
	assert.Equal(t, qm.Checkpoint, td.Handle.Requires())
	_, ok = cfg.Step("freq")
	assert.False(t, ok)
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, New().Conformer, cfg.Conformer)

	_, err = LoadFile(filepath.Join(t.TempDir(), FileName))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse([]byte("\n# nothing\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConformers, cfg.Conformer.Count)
}

func TestValidate(t *testing.T) {
	for name, bad := range map[string]string{
		"unknown key":    "conformers:\n  count: 3\n",
		"typo in stage":  "td:\n  nstate: 3\n",
		"wrong type":     "conformer:\n  count: many\n",
		"bad scheduler":  "scheduler:\n  kind: lsf\n",
		"negative procs": "opt:\n  nprocs: 0\n",
		"broken yaml":    "paths: [\n",
	} {
		_, err := Parse([]byte(bad))
		assert.ErrorIs(t, err, ErrInvalid, name)
	}
	err := Validate([]byte("td:\n  nstate: 3\n"))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	require.NotEmpty(t, se.Problems)
	assert.Contains(t, se.Problems[0], "/td")

	assert.NoError(t, Validate([]byte("preopt:\n  method: XTB1\n")))
}
