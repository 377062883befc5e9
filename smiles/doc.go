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

//Package smiles parses SMILES strings into molecular graphs.
//
//It covers what is needed to turn the identities in a molecule table into
//3D structures: the organic subset, bracket atoms (isotope, hydrogen count,
//charge), explicit bonds, branches, ring closures and disconnected
//components. Stereo marks are accepted but carry no information, since
//the conformer search does not enforce chirality.
package smiles
