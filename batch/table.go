/*
 * table.go, part of TADF-Design.
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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/junhkim1226/TADF-Design/pipeline"
)

// Energy is an optional excitation energy in eV. A zero Value with
// Valid set is a real zero.
type Energy struct {
	Value float64
	Valid bool
}

func (E Energy) String() string {
	if !E.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(E.Value, 'f', 4, 64)
}

// JobSpec is one row of the molecule table. S1 and T1 are the reference
// energies, when the table has them.
type JobSpec struct {
	pipeline.Identity
	S1 Energy
	T1 Energy
}

// Column names of the molecule table. Only the first two are required.
const (
	ColMolID  = "MolID"
	ColSMILES = "SMILES"
	ColS1     = "S1"
	ColT1     = "T1"
)

// LoadTable reads the molecule table in the CSV file at path.
func LoadTable(path string) ([]JobSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: ErrTable, Msg: "opening table", Err: err}
	}
	defer f.Close()
	jobs, err := ReadTable(f)
	if err != nil {
		var berr *Error
		if errors.As(err, &berr) {
			berr.Msg = path + ": " + berr.Msg
		}
	}
	return jobs, err
}

// ReadTable reads a molecule table. Empty and NaN reference energies are
// absent. MolIDs must be unique and safe as file names, since they name
// the result directories and the job scripts.
func ReadTable(r io.Reader) ([]JobSpec, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, &Error{Kind: ErrTable, Msg: "reading header", Err: err}
	}
	cols := map[string]int{ColMolID: -1, ColSMILES: -1, ColS1: -1, ColT1: -1}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := cols[h]; ok {
			cols[h] = i
		}
	}
	if cols[ColMolID] < 0 || cols[ColSMILES] < 0 {
		return nil, &Error{Kind: ErrTable, Msg: fmt.Sprintf("table needs %s and %s columns", ColMolID, ColSMILES)}
	}
	cr.FieldsPerRecord = len(header)
	var jobs []JobSpec
	seen := make(map[string]bool)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &Error{Kind: ErrTable, Msg: "reading row", Err: err}
		}
		line, _ := cr.FieldPos(0)
		var j JobSpec
		j.MolID = strings.TrimSpace(rec[cols[ColMolID]])
		j.SMILES = strings.TrimSpace(rec[cols[ColSMILES]])
		if j.MolID == "" || j.SMILES == "" {
			return nil, &Error{Kind: ErrTable, Msg: fmt.Sprintf("line %d: empty %s or %s", line, ColMolID, ColSMILES)}
		}
		if err := pipeline.CheckMolID(j.MolID); err != nil {
			return nil, &Error{Kind: ErrTable, Msg: fmt.Sprintf("line %d", line), Err: err}
		}
		if seen[j.MolID] {
			return nil, &Error{Kind: ErrTable, Name: j.Name(), Msg: fmt.Sprintf("line %d: repeated %s %q", line, ColMolID, j.MolID)}
		}
		seen[j.MolID] = true
		for _, c := range []struct {
			col string
			e   *Energy
		}{{ColS1, &j.S1}, {ColT1, &j.T1}} {
			if cols[c.col] < 0 {
				continue
			}
			if *c.e, err = parseEnergy(rec[cols[c.col]]); err != nil {
				return nil, &Error{Kind: ErrTable, Name: j.Name(), Msg: fmt.Sprintf("line %d: bad %s", line, c.col), Err: err}
			}
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func parseEnergy(s string) (Energy, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "n/a", "na":
		return Energy{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Energy{}, err
	}
	return Energy{Value: v, Valid: true}, nil
}
