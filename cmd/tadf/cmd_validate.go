/*
 * cmd_validate.go, part of TADF-Design.
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
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/junhkim1226/TADF-Design/batch"
	"github.com/junhkim1226/TADF-Design/pipeline"
	"github.com/junhkim1226/TADF-Design/validate"
)

func newValidateCommand(a *app) *cobra.Command {
	var results, format, plot, db string
	var watch bool
	cmd := &cobra.Command{
		Use:   "validate <table.csv>",
		Short: "Compare computed S1 and T1 with the reference values",
		Long: `Read S1 and T1 from results/mol_<id>/td.log (or td.log.zst) for every
molecule in the table or in the results directory, and compare them with
the S1 and T1 columns of the table. Values missing on either side give N/A
instead of a delta.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be table or json", format)
			}
			refs, err := batch.LoadTable(args[0])
			if err != nil {
				return err
			}
			if results == "" {
				results = a.cfg.ResultsDir()
			}
			report := func(ctx context.Context) error {
				return validateOnce(ctx, cmd.OutOrStdout(), refs, results, format, plot, db)
			}
			if err := report(cmd.Context()); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			w := &validate.Watcher{Root: results}
			return w.Watch(cmd.Context(), func() {
				if err := report(cmd.Context()); err != nil {
					slog.Error("validation", "error", err)
				}
			})
		},
	}
	cmd.Flags().StringVar(&results, "results", "", "Results directory (default from configuration)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().StringVar(&plot, "plot", "", "Save a computed vs reference scatter plot to this file")
	cmd.Flags().StringVar(&db, "db", "", "Also record the comparison in this SQLite history file")
	cmd.Flags().BoolVar(&watch, "watch", false, "Report again whenever a td.log appears or changes")
	return cmd
}

func validateOnce(ctx context.Context, w io.Writer, refs []batch.JobSpec, results, format, plot, db string) error {
	c := validate.Comparator{Layout: pipeline.Layout{Root: results}}
	records, err := c.Compare(ctx, refs)
	if err != nil {
		return err
	}
	if db != "" {
		if err := saveHistory(ctx, db, records); err != nil {
			return err
		}
	}
	if format == "json" {
		if err := validate.WriteJSON(w, records); err != nil {
			return err
		}
	} else {
		if err := validate.WriteTable(w, records); err != nil {
			return err
		}
		fmt.Fprintln(w)
		if err := validate.WriteSummary(w, validate.Summarize(records)); err != nil {
			return err
		}
	}
	if plot != "" {
		if err := validate.ScatterPlot(records, "TD-DFT vs reference", plot); err != nil {
			slog.Warn("plot", "error", err)
		}
	}
	return nil
}

func saveHistory(ctx context.Context, db string, records []validate.Record) error {
	S, err := validate.OpenStore(db)
	if err != nil {
		return err
	}
	defer S.Close()
	run, err := S.Save(ctx, time.Now(), records)
	if err != nil {
		return err
	}
	slog.Debug("validation history", "file", db, "run", run)
	return nil
}
