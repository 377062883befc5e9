/*
 * report.go, part of TADF-Design.
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
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	nameWidth  = 12
	valueWidth = 8
)

// width measures Greek letters as one column whatever the locale.
var width = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

var tableHeader = []string{"S1_ref", "S1_calc", "T1_ref", "T1_calc", "ΔS1", "ΔT1"}

// WriteTable writes the records as a fixed-width text table.
func WriteTable(w io.Writer, records []Record) error {
	var b strings.Builder
	b.WriteString(width.FillRight("MolID", nameWidth))
	for _, h := range tableHeader {
		b.WriteString(" " + width.FillLeft(h, valueWidth))
	}
	b.WriteString("\n" + strings.Repeat("-", nameWidth+len(tableHeader)*(valueWidth+1)) + "\n")
	for _, r := range records {
		b.WriteString(width.FillRight(r.Name, nameWidth))
		if r.Status != Compared {
			fmt.Fprintf(&b, " -- %s --\n", r.Status)
			continue
		}
		for _, e := range []Energy{r.Ref.S1, r.Calc.S1, r.Ref.T1, r.Calc.T1, r.DS1, r.DT1} {
			b.WriteString(" " + width.FillLeft(e.String(), valueWidth))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary writes the statistics in a few lines.
func WriteSummary(w io.Writer, S Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d molecules, %d without log, %d unreadable\n", S.Molecules, S.LogNotFound, S.Unreadable)
	for _, s := range []struct {
		name string
		st   Stats
	}{{"S1", S.S1}, {"T1", S.T1}} {
		if s.st.N == 0 {
			fmt.Fprintf(&b, "%s: nothing to compare\n", s.name)
			continue
		}
		fmt.Fprintf(&b, "%s: n=%d MSE=%.4f MAE=%.4f RMSE=%.4f max=%.4f r=%.4f eV\n", s.name, s.st.N, s.st.MeanDiff, s.st.MAE, s.st.RMSE, s.st.MaxAbs, s.st.Pearson)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type jsonEnergies struct {
	S1 *float64 `json:"s1"`
	T1 *float64 `json:"t1"`
}

type jsonRecord struct {
	MolID     string       `json:"mol_id"`
	Status    string       `json:"status"`
	InTable   bool         `json:"in_table"`
	Reference jsonEnergies `json:"reference"`
	Computed  jsonEnergies `json:"computed"`
	Delta     jsonEnergies `json:"delta"`
	Error     string       `json:"error,omitempty"`
}

type jsonStats struct {
	N        int      `json:"n"`
	MeanDiff *float64 `json:"mean_signed_error"`
	MAE      *float64 `json:"mae"`
	RMSE     *float64 `json:"rmse"`
	MaxAbs   *float64 `json:"max_abs_error"`
	Pearson  *float64 `json:"pearson_r"`
}

type jsonReport struct {
	Records []jsonRecord `json:"records"`
	Summary struct {
		Molecules   int       `json:"molecules"`
		LogNotFound int       `json:"log_not_found"`
		Unreadable  int       `json:"unreadable"`
		S1          jsonStats `json:"s1"`
		T1          jsonStats `json:"t1"`
	} `json:"summary"`
}

// number maps absent and non-finite values to JSON null.
func number(v float64, valid bool) *float64 {
	if !valid || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func energies(E ExcitedStateEnergy) jsonEnergies {
	return jsonEnergies{number(E.S1.Value, E.S1.Valid), number(E.T1.Value, E.T1.Valid)}
}

func stats(s Stats) jsonStats {
	return jsonStats{s.N, number(s.MeanDiff, true), number(s.MAE, true), number(s.RMSE, true), number(s.MaxAbs, true), number(s.Pearson, true)}
}

// WriteJSON writes the records and their summary as indented JSON.
// Absent values are null.
func WriteJSON(w io.Writer, records []Record) error {
	var rep jsonReport
	rep.Records = make([]jsonRecord, len(records))
	for i, r := range records {
		jr := jsonRecord{
			MolID:     r.Name,
			Status:    r.Status.String(),
			InTable:   r.InTable,
			Reference: energies(r.Ref),
			Computed:  energies(r.Calc),
			Delta:     energies(ExcitedStateEnergy{S1: r.DS1, T1: r.DT1}),
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		rep.Records[i] = jr
	}
	S := Summarize(records)
	rep.Summary.Molecules, rep.Summary.LogNotFound, rep.Summary.Unreadable = S.Molecules, S.LogNotFound, S.Unreadable
	rep.Summary.S1, rep.Summary.T1 = stats(S.S1), stats(S.T1)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
