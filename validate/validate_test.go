/*
 * validate_test.go, part of TADF-Design.
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

package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junhkim1226/TADF-Design/batch"
	"github.com/junhkim1226/TADF-Design/pipeline"
)

const tdLog = ` Excitation energies and oscillator strengths:

 Excited State   1:      Singlet-A      3.1000 eV  399.95 nm  f=0.0210  <S**2>=0.000
      45 -> 47         0.69812
 Excited State   2:      Triplet-B      2.5000 eV  495.94 nm  f=0.0000  <S**2>=2.000
 Excited State   3:      Singlet-B      3.4000 eV  364.66 nm  f=0.1000  <S**2>=0.000
 Excited State   4:      Triplet-A      2.7000 eV  459.20 nm  f=0.0000  <S**2>=2.000
`

func writeLog(t *testing.T, root, name, text string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "td.log")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestReadLog(t *testing.T) {
	E, err := ReadLog(strings.NewReader(tdLog))
	require.NoError(t, err)
	assert.Equal(t, Energy{Value: 3.1, Valid: true}, E.S1)
	assert.Equal(t, Energy{Value: 2.5, Valid: true}, E.T1)
	assert.True(t, E.Complete())

	//first of each kind, whatever the order
	E, err = ReadLog(strings.NewReader(" Excited State   1:      Triplet-A      2.2000 eV\n Excited State   2:      Triplet-A      2.3000 eV\n Excited State   3:      Singlet-?Sym   0.0000 eV\n"))
	require.NoError(t, err)
	assert.Equal(t, Energy{Value: 2.2, Valid: true}, E.T1)
	assert.Equal(t, Energy{Value: 0, Valid: true}, E.S1)

	E, err = ReadLog(strings.NewReader(" SCF Done:  E(RB3LYP) =  -500.0\n Excited State   1:      Singlet-A      3.1000 eV\n"))
	require.NoError(t, err)
	assert.True(t, E.S1.Valid)
	assert.False(t, E.T1.Valid)
	assert.False(t, E.Complete())

	E, err = ReadLog(strings.NewReader("Singlet-A 3.1 eV outside an excited state line\n"))
	require.NoError(t, err)
	assert.False(t, E.S1.Valid)
}

func TestParseLog(t *testing.T) {
	root := t.TempDir()
	path := writeLog(t, root, "mol_1", tdLog)
	E, err := ParseLog(path)
	require.NoError(t, err)
	assert.InDelta(t, 3.1, E.S1.Value, 1e-12)

	_, err = pipeline.Compress(path)
	require.NoError(t, err)
	require.NoFileExists(t, path)
	E, err = ParseLog(path)
	require.NoError(t, err, "the archived log is read")
	assert.InDelta(t, 2.5, E.T1.Value, 1e-12)

	_, err = ParseLog(filepath.Join(root, "mol_2", "td.log"))
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func refs() []batch.JobSpec {
	return []batch.JobSpec{
		{Identity: pipeline.Identity{MolID: "1", SMILES: "c1ccccc1"}, S1: Energy{Value: 3.0, Valid: true}, T1: Energy{Value: 2.4, Valid: true}},
		{Identity: pipeline.Identity{MolID: "2", SMILES: "CCO"}, S1: Energy{Value: 4.0, Valid: true}, T1: Energy{Value: 3.5, Valid: true}},
		{Identity: pipeline.Identity{MolID: "3", SMILES: "C"}, S1: Energy{Value: 0, Valid: true}},
	}
}

func TestCompare(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "mol_1", tdLog)
	writeLog(t, root, "mol_3", " Excited State   1:      Singlet-A      0.5000 eV\n")
	writeLog(t, root, "mol_9", tdLog)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "other"), 0o755))

	records, err := Compare(context.Background(), refs(), root)
	require.NoError(t, err)
	require.Len(t, records, 4)
	names := []string{}
	for _, r := range records {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"mol_1", "mol_2", "mol_3", "mol_9"}, names)

	r := records[0]
	assert.Equal(t, Compared, r.Status)
	require.True(t, r.DS1.Valid)
	require.True(t, r.DT1.Valid)
	assert.InDelta(t, 0.1, r.DS1.Value, 1e-9)
	assert.InDelta(t, 0.1, r.DT1.Value, 1e-9)
	assert.Equal(t, "0.1000", r.DS1.String())

	assert.Equal(t, LogNotFound, records[1].Status)
	assert.ErrorIs(t, records[1].Err, ErrLogNotFound)
	assert.False(t, records[1].DS1.Valid)

	//a zero reference is a value, the missing T1 is not
	assert.True(t, records[2].DS1.Valid)
	assert.InDelta(t, 0.5, records[2].DS1.Value, 1e-12)
	assert.False(t, records[2].DT1.Valid)

	assert.False(t, records[3].InTable)
	assert.True(t, records[3].Calc.Complete())
	assert.False(t, records[3].DS1.Valid)

	records, err = Compare(context.Background(), refs(), filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, LogNotFound, r.Status)
	}
}

func TestCompareCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compare(ctx, refs(), t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	records := []Record{
		{Name: "a", Ref: ExcitedStateEnergy{S1: Energy{Value: 3.0, Valid: true}}, Calc: ExcitedStateEnergy{S1: Energy{Value: 3.1, Valid: true}}, DS1: Energy{Value: 0.1, Valid: true}},
		{Name: "b", Ref: ExcitedStateEnergy{S1: Energy{Value: 2.0, Valid: true}}, Calc: ExcitedStateEnergy{S1: Energy{Value: 1.7, Valid: true}}, DS1: Energy{Value: -0.3, Valid: true}},
		{Name: "c", Status: LogNotFound},
	}
	S := Summarize(records)
	assert.Equal(t, 3, S.Molecules)
	assert.Equal(t, 1, S.LogNotFound)
	assert.Equal(t, 2, S.S1.N)
	assert.InDelta(t, -0.1, S.S1.MeanDiff, 1e-9)
	assert.InDelta(t, 0.2, S.S1.MAE, 1e-9)
	assert.InDelta(t, math.Sqrt(0.05), S.S1.RMSE, 1e-9)
	assert.InDelta(t, 0.3, S.S1.MaxAbs, 1e-9)
	assert.InDelta(t, 1.0, S.S1.Pearson, 1e-9)
	assert.Equal(t, 0, S.T1.N)
	assert.True(t, math.IsNaN(S.T1.MAE))
}

func TestWriteTable(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "mol_1", tdLog)
	records, err := Compare(context.Background(), refs()[:2], root)
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, WriteTable(&b, records))
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "MolID          S1_ref  S1_calc   T1_ref  T1_calc      ΔS1      ΔT1", lines[0])
	assert.Equal(t, strings.Repeat("-", 66), lines[1])
	assert.Equal(t, "mol_1          3.0000   3.1000   2.4000   2.5000   0.1000   0.1000", lines[2])
	assert.Equal(t, "mol_2        -- log not found --", lines[3])

	b.Reset()
	require.NoError(t, WriteSummary(&b, Summarize(records)))
	assert.Contains(t, b.String(), "2 molecules, 1 without log")
}

func TestWriteJSON(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "mol_1", tdLog)
	records, err := Compare(context.Background(), refs()[:2], root)
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, WriteJSON(&b, records))

	var got struct {
		Records []struct {
			MolID    string              `json:"mol_id"`
			Status   string              `json:"status"`
			Computed map[string]*float64 `json:"computed"`
			Delta    map[string]*float64 `json:"delta"`
		} `json:"records"`
		Summary struct {
			S1 struct {
				N       int      `json:"n"`
				Pearson *float64 `json:"pearson_r"`
			} `json:"s1"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	require.Len(t, got.Records, 2)
	assert.Equal(t, "mol_1", got.Records[0].MolID)
	require.NotNil(t, got.Records[0].Delta["s1"])
	assert.InDelta(t, 0.1, *got.Records[0].Delta["s1"], 1e-9)
	assert.Equal(t, "log not found", got.Records[1].Status)
	assert.Nil(t, got.Records[1].Computed["s1"])
	assert.Equal(t, 1, got.Summary.S1.N)
	assert.Nil(t, got.Summary.S1.Pearson, "NaN is written as null")
}

func TestScatterPlot(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "mol_1", tdLog)
	records, err := Compare(context.Background(), refs(), root)
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "s1t1.png")
	require.NoError(t, ScatterPlot(records, "TD-DFT vs reference", out))
	fi, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, fi.Size())

	assert.ErrorIs(t, ScatterPlot(records[1:2], "", out), ErrNothingToPlot)
}

func TestWatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "mol_1"), 0o755))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls atomic.Int32
	done := make(chan error, 1)
	w := &Watcher{Root: root, Quiet: 20 * time.Millisecond}
	go func() { done <- w.Watch(ctx, func() { calls.Add(1) }) }()

	assert.Eventually(t, func() bool {
		writeLog(t, root, "mol_1", tdLog)
		return calls.Load() > 0
	}, 5*time.Second, 100*time.Millisecond)

	time.Sleep(200 * time.Millisecond) //let the last burst settle
	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(root, "mol_1", "notes.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, calls.Load(), "other files are ignored")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return")
	}
}

func TestStore(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root, "mol_1", tdLog)
	records, err := Compare(context.Background(), refs()[:2], root)
	require.NoError(t, err)

	S, err := OpenStore(filepath.Join(root, "db", "history.sqlite"))
	require.NoError(t, err)
	defer S.Close()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	run1, err := S.Save(context.Background(), first, records)
	require.NoError(t, err)
	run2, err := S.Save(context.Background(), first.Add(time.Hour), records)
	require.NoError(t, err)
	assert.Greater(t, run2, run1)

	h, err := S.History(context.Background(), "mol_1")
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, run1, h[0].Run)
	assert.True(t, h[0].At.Equal(first))
	assert.Equal(t, "ok", h[0].Status)
	assert.InDelta(t, 3.1, h[0].Calc.S1.Value, 1e-9)
	assert.InDelta(t, 2.4, h[1].Ref.T1.Value, 1e-9)

	h, err = S.History(context.Background(), "mol_2")
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "log not found", h[0].Status)
	assert.False(t, h[0].Calc.S1.Valid, "absent values are stored as NULL")
	assert.True(t, h[0].Ref.S1.Valid)

	h, err = S.History(context.Background(), "mol_7")
	require.NoError(t, err)
	assert.Empty(t, h)
}
