/*
 * doc.go, part of TADF-Design.
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

/*Package chem is the base package of TADF-Design. It provides the atom and
geometry structures shared by every pipeline stage, reading and writing of
XYZ files (the hand-off format between stages), per-element data and a
distance-based bond assignment used to sanity-check generated conformers.

The pipeline itself lives in sub-packages:

    smiles     parses molecular identities
    chemgraph  molecular graphs and hydrogen completion
    conformer  best-of-N conformer search
    qm         solver handles and the stage runner
    pipeline   the per-molecule state machine
    batch      scheduler job scripts and submission
    validate   excited-state extraction and comparison

*/
package chem
