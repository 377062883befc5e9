/*
 * state.go, part of TADF-Design.
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
	"strings"
	"time"
)

// State is where a molecule is in the pipeline.
type State string

const (
	Created              State = "CREATED"
	Embedded             State = "EMBEDDED"
	PreOptimized         State = "PRE_OPTIMIZED"
	GroundStateOptimized State = "GROUND_STATE_OPTIMIZED"
	ExcitedStateComputed State = "EXCITED_STATE_COMPUTED"
	Failed               State = "FAILED"
)

func (s State) String() string { return string(s) }

// order lists the non-failure states along the chain.
var order = []State{Created, Embedded, PreOptimized, GroundStateOptimized, ExcitedStateComputed}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s State) bool {
	return s == ExcitedStateComputed || s == Failed
}

func position(s State) int {
	for i, v := range order {
		if v == s {
			return i
		}
	}
	return -1
}

// isAllowedTransition encodes the chain: one step forward, or to Failed
// from any non-terminal state.
func isAllowedTransition(from, to State) bool {
	if IsTerminal(from) {
		return false
	}
	if to == Failed {
		return position(from) >= 0
	}
	p := position(from)
	return p >= 0 && position(to) == p+1
}

// ParseState accepts a state name, in any case, or the name of the stage
// file that marks it ("initial", "pre_opt", "opt", "td").
func ParseState(s string) (State, error) {
	switch strings.ToLower(s) {
	case "initial":
		return Embedded, nil
	case "pre_opt":
		return PreOptimized, nil
	case "opt":
		return GroundStateOptimized, nil
	case "td":
		return ExcitedStateComputed, nil
	}
	up := State(strings.ToUpper(s))
	if position(up) >= 0 || up == Failed {
		return up, nil
	}
	return "", &Error{Kind: ErrInvalidState, Msg: fmt.Sprintf("unknown state %q", s)}
}

// TransitionEvent is one recorded state change.
type TransitionEvent struct {
	From State
	To   State
	At   time.Time
}

// Transition moves r to the state to, recording the change. Invalid
// transitions leave r untouched.
func Transition(r *Record, to State) error {
	if r == nil {
		return &Error{Kind: ErrInvalidState, Msg: "nil record"}
	}
	if !isAllowedTransition(r.State, to) {
		return &Error{Kind: ErrInvalidState, Msg: fmt.Sprintf("molecule %q: invalid transition %s -> %s", r.Identity.Name(), r.State, to)}
	}
	r.Transitions = append(r.Transitions, TransitionEvent{From: r.State, To: to, At: time.Now()})
	r.State = to
	return nil
}
