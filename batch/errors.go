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

package batch

import "errors"

var (
	// ErrTable means the molecule table could not be read.
	ErrTable = errors.New("bad molecule table")
	// ErrSubmission means a job script could not be written or the
	// scheduler did not accept it.
	ErrSubmission = errors.New("submission failed")
)

// Error is the error type of the package. Name is the job involved, if any.
type Error struct {
	Kind error
	Name string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Name != "" {
		msg = e.Name + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
