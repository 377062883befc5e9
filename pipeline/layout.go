/*
 * layout.go, part of TADF-Design.
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

package pipeline

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// File stems of the stages. Every file a stage writes in the molecule
// directory is named after its stem.
const (
	StemInitial = "initial"
	StemPreOpt  = "pre_opt"
	StemOpt     = "opt"
	StemTD      = "td"
)

// Layout places the files of each molecule under Root, one directory
// per molecule.
type Layout struct {
	Root string
}

// Dir is the directory of the molecule called name.
func (L Layout) Dir(name string) string {
	return filepath.Join(L.Root, name)
}

// Path is the file stem+ext of the molecule called name. ext includes the dot.
func (L Layout) Path(name, stem, ext string) string {
	return filepath.Join(L.Dir(name), stem+ext)
}

// Initial is the embedded geometry of the molecule.
func (L Layout) Initial(name string) string {
	return L.Path(name, StemInitial, ".xyz")
}

var molIDRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// CheckMolID returns an error if id cannot name a molecule directory, a
// job script and a scheduler job.
func CheckMolID(id string) error {
	if !molIDRE.MatchString(id) {
		return fmt.Errorf("molecule ID %q: must start with a letter or digit and hold only letters, digits, '.', '_' and '-'", id)
	}
	return nil
}
