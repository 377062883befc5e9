/*
 * plot.go, part of TADF-Design.
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
	"errors"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNothingToPlot is returned by ScatterPlot when no record has both a
// computed and a reference energy.
var ErrNothingToPlot = errors.New("no comparable energies to plot")

// ScatterPlot draws the computed energies against the reference ones,
// with the diagonal, and saves the plot to filename. The format follows
// the extension (png, svg, pdf...).
func ScatterPlot(records []Record, title, filename string) error {
	var s1, t1 plotter.XYs
	lo, hi := math.Inf(1), math.Inf(-1)
	add := func(pts plotter.XYs, ref, calc float64) plotter.XYs {
		lo, hi = math.Min(lo, math.Min(ref, calc)), math.Max(hi, math.Max(ref, calc))
		return append(pts, plotter.XY{X: ref, Y: calc})
	}
	for _, r := range records {
		if r.DS1.Valid {
			s1 = add(s1, r.Ref.S1.Value, r.Calc.S1.Value)
		}
		if r.DT1.Valid {
			t1 = add(t1, r.Ref.T1.Value, r.Calc.T1.Value)
		}
	}
	if len(s1)+len(t1) == 0 {
		return ErrNothingToPlot
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Reference (eV)"
	p.Y.Label.Text = "Computed (eV)"
	p.Add(plotter.NewGrid())

	pad := 0.05 * math.Max(hi-lo, 0.5)
	diag, err := plotter.NewLine(plotter.XYs{{X: lo - pad, Y: lo - pad}, {X: hi + pad, Y: hi + pad}})
	if err != nil {
		return err
	}
	diag.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	diag.LineStyle.Color = color.Gray{Y: 128}
	p.Add(diag)

	for _, set := range []struct {
		name  string
		pts   plotter.XYs
		color color.Color
		shape draw.GlyphDrawer
	}{
		{"S1", s1, color.RGBA{R: 200, A: 255}, draw.CircleGlyph{}},
		{"T1", t1, color.RGBA{B: 200, A: 255}, draw.TriangleGlyph{}},
	} {
		if len(set.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(set.pts)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = set.color
		sc.GlyphStyle.Shape = set.shape
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(set.name, sc)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	return p.Save(5*vg.Inch, 5*vg.Inch, filename)
}
