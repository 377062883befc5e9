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

//Package qm runs the external quantum chemistry programs of the pipeline.
//
//A Handle knows how to write the input of one program for one kind of
//calculation (a GFN2-xTB pre-optimization with ORCA, a DFT optimization or
//a TD-DFT calculation with Gaussian), how to launch it and which files it
//leaves behind. The Runner executes a Handle in a given directory and
//reports the outcome as a typed Result, so the settings of a calculation
//stay separated from the choice of program that performs it.
package qm
