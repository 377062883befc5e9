/*
 * compare.go, part of TADF-Design.
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
	"context"
	"errors"
	"os"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/junhkim1226/TADF-Design/batch"
	"github.com/junhkim1226/TADF-Design/pipeline"
)

// Status tells how a molecule could be compared.
type Status int

const (
	Compared    Status = iota //the log was read
	LogNotFound               //no td log in the molecule directory
	Unreadable                //the log could not be read
)

func (S Status) String() string {
	switch S {
	case Compared:
		return "ok"
	case LogNotFound:
		return "log not found"
	case Unreadable:
		return "log unreadable"
	}
	return "unknown"
}

// Record compares the computed energies of a molecule with the reference.
// A delta is valid only when both of its sides are.
type Record struct {
	Name    string
	Status  Status
	InTable bool
	Ref     ExcitedStateEnergy
	Calc    ExcitedStateEnergy
	DS1     Energy
	DT1     Energy
	Err     error
}

func delta(calc, ref Energy) Energy {
	if !calc.Valid || !ref.Valid {
		return Energy{}
	}
	return Energy{Value: calc.Value - ref.Value, Valid: true}
}

// Comparator compares result directories with the reference table.
type Comparator struct {
	Layout  pipeline.Layout
	Workers int //logs read at a time, GOMAXPROCS if 0
}

// Compare is Comparator.Compare with default settings.
func Compare(ctx context.Context, refs []batch.JobSpec, resultsDir string) ([]Record, error) {
	c := Comparator{Layout: pipeline.Layout{Root: resultsDir}}
	return c.Compare(ctx, refs)
}

// Compare returns one record per molecule that is in the table or has a
// directory in the results, sorted by name. Missing or unreadable logs
// are reported in the records; the error is only for a results directory
// that cannot be listed or a canceled context.
func (c Comparator) Compare(ctx context.Context, refs []batch.JobSpec) ([]Record, error) {
	byName := make(map[string]batch.JobSpec, len(refs))
	for _, r := range refs {
		byName[r.Name()] = r
	}
	names, err := c.names(byName)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(names))
	g, ctx := errgroup.WithContext(ctx)
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec := Record{Name: name}
			if ref, ok := byName[name]; ok {
				rec.InTable = true
				rec.Ref = ExcitedStateEnergy{S1: ref.S1, T1: ref.T1}
			}
			rec.Calc, rec.Err = ParseLog(c.Layout.Path(name, pipeline.StemTD, ".log"))
			switch {
			case errors.Is(rec.Err, ErrLogNotFound):
				rec.Status = LogNotFound
			case rec.Err != nil:
				rec.Status = Unreadable
			default:
				rec.DS1 = delta(rec.Calc.S1, rec.Ref.S1)
				rec.DT1 = delta(rec.Calc.T1, rec.Ref.T1)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// names is the union of the table names and the molecule directories in
// the results, in lexicographic order.
func (c Comparator) names(byName map[string]batch.JobSpec) ([]string, error) {
	set := make(map[string]bool, len(byName))
	for n := range byName {
		set[n] = true
	}
	entries, err := os.ReadDir(c.Layout.Root)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "mol_") {
			set[e.Name()] = true
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
