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

package pipeline

import "errors"

var (
	// ErrInvalidState is returned for unknown states and forbidden
	// transitions.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidChain means some step needs an artifact that no earlier
	// step produces.
	ErrInvalidChain = errors.New("invalid step chain")
	// ErrResume means a run cannot start from the requested state.
	ErrResume = errors.New("cannot resume")
	// ErrStage is the kind of the error recorded when a step fails.
	ErrStage = errors.New("stage failed")
)

// Error is the error type of the package.
type Error struct {
	Kind error
	Msg  string
	Err  error //underlying cause, if any
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
