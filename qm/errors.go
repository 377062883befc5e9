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

package qm

import (
	"errors"
	"fmt"
)

var (
	// ErrProcess means the program could not be started or exited with a
	// nonzero status.
	ErrProcess = errors.New("solver process failed")
	// ErrArtifactMissing means the program exited normally but some
	// declared output is not there.
	ErrArtifactMissing = errors.New("expected solver output missing")
	// ErrInput means the input file could not be prepared.
	ErrInput = errors.New("cannot prepare solver input")
)

// Messages for Error.
const (
	ErrWrongArtifact = "Wrong input artifact"
	ErrCantInput     = "Can't build input file"
	ErrNotRunning    = "Command not running"
	ErrNoGeometry    = "Can't obtain geometry"
	ErrNoEnergy      = "Can't obtain energy"
	ErrProbableProb  = "Probable problem in calculation"
)

// Error is the error type of the package. It carries the program, the job
// name and the call trail.
type Error struct {
	kind       error
	message    string
	code       string //the program
	inputname  string
	additional string
	deco       []string
	critical   bool
}

func (err *Error) Error() string {
	if err.additional == "" {
		return fmt.Sprintf("%s job %s: %s", err.code, err.inputname, err.message)
	}
	return fmt.Sprintf("%s job %s: %s: %s", err.code, err.inputname, err.message, err.additional)
}

func (err *Error) Unwrap() error { return err.kind }

// Decorate adds dec to the call trail and returns it.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Code returns the name of the program that produced the error.
func (err *Error) Code() string { return err.code }

// InputName returns the job name.
func (err *Error) InputName() string { return err.inputname }

func (err *Error) Critical() bool { return err.critical }
