/*
 * steps.go, part of TADF-Design.
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

	"github.com/junhkim1226/TADF-Design/qm"
)

// Step is one solver stage. The files of the stage are named after Stem
// in the molecule directory; reaching To marks its success.
type Step struct {
	Stem   string
	Reason string //reported when the step fails
	To     State
	Handle qm.Handle
	Calc   qm.Calc
}

// DefaultSteps is the GFN2-xTB pre-optimization with ORCA, followed by the
// Gaussian ground state optimization and TD-DFT calculation, all with
// program defaults.
func DefaultSteps() []Step {
	return []Step{
		{Stem: StemPreOpt, Reason: "pre-optimization", To: PreOptimized, Handle: qm.NewOrcaHandle()},
		{Stem: StemOpt, Reason: "ground state optimization", To: GroundStateOptimized, Handle: qm.NewGaussianHandle(qm.Opt)},
		{Stem: StemTD, Reason: "excited state calculation", To: ExcitedStateComputed, Handle: qm.NewGaussianHandle(qm.TD)},
	}
}

// ValidateChain checks that steps lead from Embedded to ExcitedStateComputed
// one state at a time, and that each step starts from an artifact kind
// that the embedding or an earlier step produces.
func ValidateChain(steps []Step) error {
	chainErr := func(i int, format string, a ...any) error {
		return &Error{Kind: ErrInvalidChain, Msg: fmt.Sprintf("step %d: ", i) + fmt.Sprintf(format, a...)}
	}
	avail := map[qm.ArtifactKind]bool{qm.Geometry: true}
	stems := make(map[string]bool, len(steps)+1)
	stems[StemInitial] = true
	prev := Embedded
	for i, s := range steps {
		if s.Handle == nil {
			return chainErr(i, "no handle")
		}
		if s.Stem == "" || stems[s.Stem] {
			return chainErr(i, "empty or repeated stem %q", s.Stem)
		}
		stems[s.Stem] = true
		if !isAllowedTransition(prev, s.To) || s.To == Failed {
			return chainErr(i, "%s does not follow %s", s.To, prev)
		}
		if need := s.Handle.Requires(); !avail[need] {
			return chainErr(i, "%s needs a %s artifact that no earlier step produces", s.Stem, need)
		}
		for _, a := range s.Handle.Outputs(s.Stem) {
			avail[a.Kind] = true
		}
		prev = s.To
	}
	if prev != ExcitedStateComputed {
		return &Error{Kind: ErrInvalidChain, Msg: fmt.Sprintf("chain ends at %s", prev)}
	}
	return nil
}
