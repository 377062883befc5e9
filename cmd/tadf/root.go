/*
 * root.go, part of TADF-Design.
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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/junhkim1226/TADF-Design/config"
)

var version = "dev"

// app holds what the subcommands share once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
}

// load reads the configuration given with --config, or the tadf.yaml
// found from the working directory up.
func (a *app) load() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(".")
	}
	if err != nil {
		return err
	}
	if a.cfg.Source != "" {
		slog.Debug("configuration", "file", a.cfg.Source)
	}
	return nil
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "tadf",
		Short: "tadf - excited state pipeline for TADF candidates",
		Long: `tadf takes molecules from SMILES to TD-DFT singlet and triplet
excitation energies.

Each molecule goes through a conformer search, a GFN2-xTB pre-optimization
with ORCA, a DFT ground state optimization and a TD-DFT calculation with
Gaussian. The stages can be run one at a time, chained for one molecule,
or submitted as batch jobs for a whole table, and the results compared
with reference values.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Configuration file (default: tadf.yaml in this or a parent directory)")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		return a.load()
	}

	cmd.AddCommand(newEmbedCommand(a))
	cmd.AddCommand(newStageCommand(a, "preopt", "pre_opt", "Pre-optimize a geometry with GFN2-xTB"))
	cmd.AddCommand(newStageCommand(a, "opt", "opt", "Optimize the ground state with DFT"))
	cmd.AddCommand(newStageCommand(a, "td", "td", "Compute excited states with TD-DFT from a checkpoint"))
	cmd.AddCommand(newRunCommand(a))
	cmd.AddCommand(newSubmitCommand(a))
	cmd.AddCommand(newValidateCommand(a))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
