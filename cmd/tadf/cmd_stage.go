/*
 * cmd_stage.go, part of TADF-Design.
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
	"math"

	"github.com/spf13/cobra"

	"github.com/junhkim1226/TADF-Design/qm"
)

// newStageCommand runs the pipeline step with the given file stem on one
// input file, like the job scripts do.
func newStageCommand(a *app, use, stem, short string) *cobra.Command {
	var outDir, outName string
	var charge, multi int
	cmd := &cobra.Command{
		Use:   use + " <input>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, ok := a.cfg.Step(stem)
			if !ok {
				return fmt.Errorf("no %s step configured", stem)
			}
			Q := step.Calc
			Q.Charge, Q.Multiplicity = charge, multi
			in := qm.Artifact{Kind: step.Handle.Requires(), Path: args[0]}
			runner := &qm.Runner{}
			res := runner.Run(cmd.Context(), step.Handle, &Q, in, outDir, outName)
			if !res.OK() {
				return &FailureError{Message: fmt.Sprintf("%s: %s: %v", use, res.Status, res.Err)}
			}
			for _, art := range res.Artifacts {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", art.Kind, art.Path)
			}
			if !math.IsNaN(res.Energy) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %.8f Eh\n", "energy", res.Energy)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out_dir", ".", "Directory for the input, outputs and scratch files")
	cmd.Flags().StringVar(&outName, "out_name", stem, "Base name of the files")
	cmd.Flags().IntVar(&charge, "charge", 0, "Molecular charge")
	cmd.Flags().IntVar(&multi, "multiplicity", 1, "Spin multiplicity")
	return cmd
}
