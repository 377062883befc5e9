/*
 * summary.go, part of TADF-Design.
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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats are the errors of one kind of excitation energy over the
// molecules where both values exist. Pearson is NaN with fewer than two
// pairs.
type Stats struct {
	N        int
	MeanDiff float64
	MAE      float64
	RMSE     float64
	MaxAbs   float64
	Pearson  float64
}

// Summary describes a comparison run.
type Summary struct {
	Molecules   int
	LogNotFound int
	Unreadable  int
	S1          Stats
	T1          Stats
}

// Summarize counts the records by status and computes the error
// statistics of S1 and T1.
func Summarize(records []Record) Summary {
	S := Summary{Molecules: len(records)}
	var calcS1, refS1, calcT1, refT1 []float64
	for _, r := range records {
		switch r.Status {
		case LogNotFound:
			S.LogNotFound++
		case Unreadable:
			S.Unreadable++
		}
		if r.DS1.Valid {
			calcS1 = append(calcS1, r.Calc.S1.Value)
			refS1 = append(refS1, r.Ref.S1.Value)
		}
		if r.DT1.Valid {
			calcT1 = append(calcT1, r.Calc.T1.Value)
			refT1 = append(refT1, r.Ref.T1.Value)
		}
	}
	S.S1 = errorStats(calcS1, refS1)
	S.T1 = errorStats(calcT1, refT1)
	return S
}

func errorStats(calc, ref []float64) Stats {
	st := Stats{N: len(calc), MeanDiff: math.NaN(), MAE: math.NaN(), RMSE: math.NaN(), MaxAbs: math.NaN(), Pearson: math.NaN()}
	if st.N == 0 {
		return st
	}
	d := make([]float64, st.N)
	floats.SubTo(d, calc, ref)
	st.MeanDiff = stat.Mean(d, nil)
	abs := make([]float64, st.N)
	for i, v := range d {
		abs[i] = math.Abs(v)
	}
	st.MAE = stat.Mean(abs, nil)
	st.MaxAbs = floats.Max(abs)
	st.RMSE = floats.Norm(d, 2) / math.Sqrt(float64(st.N))
	if st.N > 1 {
		st.Pearson = stat.Correlation(calc, ref, nil)
	}
	return st
}
