/*
 * cmd_embed.go, part of TADF-Design.
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

	"github.com/spf13/cobra"

	"github.com/junhkim1226/TADF-Design/conformer"
)

func newEmbedCommand(a *app) *cobra.Command {
	var count int
	var seed uint64
	cmd := &cobra.Command{
		Use:   "embed <SMILES> <out.xyz>",
		Short: "Generate a 3D geometry from SMILES",
		Long: `Embed a molecule in 3D: embed several conformers, minimize each with a
UFF-style force field and write the one with the lowest energy.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.ConformerOptions()
			if cmd.Flags().Changed("count") {
				opts.Count = count
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}
			res, err := conformer.SearchSMILES(cmd.Context(), args[0], args[1], opts)
			if err != nil {
				return err
			}
			best := "fallback"
			if !res.Fallback {
				best = fmt.Sprintf("conformer %d of %d", res.Best, len(res.Conformers))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d atoms, %s, energy %.4f kcal/mol\n", args[1], res.Geometry.Len(), best, res.Energy)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of conformers (default from configuration)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default from configuration)")
	return cmd
}
