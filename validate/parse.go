/*
 * parse.go, part of TADF-Design.
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

package validate

import (
	"bufio"
	"errors"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/junhkim1226/TADF-Design/batch"
	"github.com/junhkim1226/TADF-Design/pipeline"
)

// Energy is an optional energy in eV.
type Energy = batch.Energy

// ExcitedStateEnergy holds the lowest singlet and triplet excitation
// energies.
type ExcitedStateEnergy struct {
	S1 Energy
	T1 Energy
}

// Complete reports whether both energies are present.
func (E ExcitedStateEnergy) Complete() bool { return E.S1.Valid && E.T1.Valid }

// stateRE matches the spin and energy in the excited state lines of a
// Gaussian log, such as
//
//	Excited State   1:      Singlet-A      3.1000 eV  399.94 nm  f=0.0001  <S**2>=0.000
var stateRE = regexp.MustCompile(`(Singlet|Triplet)-\S+\s+(-?\d+\.?\d*)\s+eV`)

// ParseLog reads the excitation energies from the TD-DFT log at path, or
// from its compressed copy. The error wraps ErrLogNotFound when there is
// neither.
func ParseLog(path string) (ExcitedStateEnergy, error) {
	f, err := pipeline.OpenLog(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ExcitedStateEnergy{}, &Error{Kind: ErrLogNotFound, Path: path, Err: err}
		}
		return ExcitedStateEnergy{}, &Error{Kind: ErrUnreadable, Path: path, Err: err}
	}
	defer f.Close()
	E, err := ReadLog(f)
	if err != nil {
		return E, &Error{Kind: ErrUnreadable, Path: path, Err: err}
	}
	return E, nil
}

// ReadLog scans a TD-DFT log. The first singlet and the first triplet
// found are taken as S1 and T1, so the log is expected to list states in
// ascending energy, as Gaussian does. Reading stops once both are found.
// Energies missing from the log are left invalid; that is not an error.
func ReadLog(r io.Reader) (ExcitedStateEnergy, error) {
	var E ExcitedStateEnergy
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		line := s.Text()
		if !strings.Contains(line, "Excited State") {
			continue
		}
		m := stateRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		switch {
		case m[1] == "Singlet" && !E.S1.Valid:
			E.S1 = Energy{Value: v, Valid: true}
		case m[1] == "Triplet" && !E.T1.Valid:
			E.T1 = Energy{Value: v, Valid: true}
		}
		if E.Complete() {
			break
		}
	}
	return E, s.Err()
}
