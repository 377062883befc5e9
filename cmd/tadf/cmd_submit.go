/*
 * cmd_submit.go, part of TADF-Design.
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
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/junhkim1226/TADF-Design/batch"
)

func newSubmitCommand(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "submit <table.csv>",
		Short: "Submit one batch job per molecule",
		Long: `Write jobs/mol_<id>.sh for each molecule of the table and submit it to
the scheduler. Submission does not wait for the jobs. A rejected job does
not stop the others.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := batch.LoadTable(args[0])
			if err != nil {
				return err
			}
			sched, err := batch.NewScheduler(a.cfg.Scheduler.Kind, a.cfg.Scheduler.Binary)
			if err != nil {
				return err
			}
			command := a.cfg.Scheduler.Command
			if a.cfg.Source != "" {
				if abs, err := filepath.Abs(a.cfg.Source); err == nil {
					command += " --config " + abs
				}
			}
			s := &batch.Submitter{
				Scheduler: sched,
				Resources: a.cfg.Resources(),
				Command:   command,
				Results:   a.cfg.ResultsDir(),
				DryRun:    dryRun,
			}
			failed := 0
			for _, o := range s.SubmitAll(cmd.Context(), jobs, a.cfg.Paths.Work) {
				switch {
				case !o.OK():
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s failed: %v\n", o.Job.Name(), o.Err)
				case dryRun:
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", o.Job.Name(), o.Script)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s submitted as %s\n", o.Job.Name(), o.JobID)
				}
			}
			if failed > 0 {
				return &FailureError{Message: fmt.Sprintf("%d of %d submissions failed", failed, len(jobs))}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Write the job scripts without submitting them")
	return cmd
}
