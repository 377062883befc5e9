/*
 * errors.go, part of TADF-Design.
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

package smiles

import (
	"errors"
	"fmt"
)

// ErrParse is the kind of every error returned by Parse.
var ErrParse = errors.New("malformed SMILES")

// Error reports where a SMILES string could not be parsed.
type Error struct {
	SMILES string
	Pos    int //byte offset
	Msg    string
	deco   []string
}

func (err *Error) Error() string {
	return fmt.Sprintf("smiles: %s at position %d in %q", err.Msg, err.Pos, err.SMILES)
}

func (err *Error) Unwrap() error { return ErrParse }

// Decorate adds the name of the caller to the error and returns the trail.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}
