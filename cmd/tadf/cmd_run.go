/*
 * cmd_run.go, part of TADF-Design.
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

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/junhkim1226/TADF-Design/batch"
	"github.com/junhkim1226/TADF-Design/pipeline"
	"github.com/junhkim1226/TADF-Design/qm"
)

func newRunCommand(a *app) *cobra.Command {
	var id, smi, from, table string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the whole pipeline in this process",
		Long: `Run every stage for one molecule (--id and --smiles), or for each
molecule of a table in turn (--table). Files go to results/mol_<id>.

With --from, the run starts after the given state, reusing the files
that the earlier stages left: initial, pre_opt or opt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []pipeline.Identity
			switch {
			case table != "":
				jobs, err := batch.LoadTable(table)
				if err != nil {
					return err
				}
				for _, j := range jobs {
					ids = append(ids, j.Identity)
				}
			case id != "" && smi != "":
				if err := pipeline.CheckMolID(id); err != nil {
					return err
				}
				ids = append(ids, pipeline.Identity{MolID: id, SMILES: smi})
			default:
				return errors.New("give --table, or both --id and --smiles")
			}
			start := pipeline.Created
			if from != "" {
				var err error
				if start, err = pipeline.ParseState(from); err != nil {
					return err
				}
			}
			O, err := pipeline.New(pipeline.Layout{Root: a.cfg.ResultsDir()},
				pipeline.ConformerEmbedder{Options: a.cfg.ConformerOptions()},
				&qm.Runner{}, a.cfg.Steps())
			if err != nil {
				return err
			}
			O.Archive = a.cfg.ArchiveLogs()
			failed := 0
			for _, mol := range ids {
				rec := O.RunFrom(cmd.Context(), mol, start)
				printRecord(cmd.OutOrStdout(), rec)
				if !rec.OK() {
					failed++
				}
			}
			if failed > 0 {
				return &FailureError{Message: fmt.Sprintf("%d of %d molecules failed", failed, len(ids))}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Molecule ID")
	cmd.Flags().StringVar(&smi, "smiles", "", "Molecule SMILES")
	cmd.Flags().StringVar(&from, "from", "", "Resume after this state (initial, pre_opt, opt)")
	cmd.Flags().StringVar(&table, "table", "", "CSV table with MolID and SMILES columns")
	return cmd
}

func printRecord(w io.Writer, rec *pipeline.Record) {
	if rec.OK() {
		fmt.Fprintf(w, "%-12s %s\n", rec.Identity.Name(), rec.State)
		return
	}
	fmt.Fprintf(w, "%-12s %s after %s (%s): %v\n", rec.Identity.Name(), rec.State, rec.FailedAt, rec.Reason, rec.Err)
}
