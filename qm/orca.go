/*
 * orca.go, part of TADF-Design.
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
	"fmt"
	"os"
	"strconv"
	"strings"

	chem "github.com/junhkim1226/TADF-Design"
)

// Orca is the program name reported in errors and logs.
const Orca = "ORCA"

// OrcaHandle runs geometry optimizations with ORCA. The default method is
// the GFN2-xTB semiempirical Hamiltonian, which needs no basis set.
type OrcaHandle struct {
	defmethod string
	command   string
}

func NewOrcaHandle() *OrcaHandle {
	run := new(OrcaHandle)
	run.SetDefaults()
	return run
}

//OrcaHandle methods

/*Sets defaults for ORCA calculation. Default is a GFN2-xTB
optimization. The ORCA command is set to $ORCA_PATH/orca, or to
"orca" in the PATH if ORCA_PATH is not defined. ORCA needs to be
called with its full path for parallel runs.*/
func (O *OrcaHandle) SetDefaults() {
	O.defmethod = "XTB2"
	O.command = os.ExpandEnv("${ORCA_PATH}/orca")
	if O.command == "/orca" { //if ORCA_PATH was not defined
		O.command = "orca"
	}
}

func (O *OrcaHandle) SetCommand(name string) {
	O.command = name
}

func (O *OrcaHandle) Program() string { return Orca }

func (O *OrcaHandle) Requires() ArtifactKind { return Geometry }

func (O *OrcaHandle) InputName(name string) string { return name + ".inp" }

// BuildInput writes an optimization input with the coordinates of the
// XYZ file in.
func (O *OrcaHandle) BuildInput(in Artifact, name string, Q *Calc) (string, error) {
	if in.Kind != Geometry {
		return "", &Error{kind: ErrInput, message: ErrWrongArtifact, code: Orca, inputname: name, additional: in.Kind.String(), deco: []string{"BuildInput"}, critical: true}
	}
	mol, err := chem.XYZFileRead(in.Path)
	if err != nil {
		return "", &Error{kind: ErrInput, message: ErrCantInput, code: Orca, inputname: name, additional: err.Error(), deco: []string{"BuildInput"}, critical: true}
	}
	method := Q.Method
	if method == "" {
		method = O.defmethod
	}
	var b strings.Builder
	fmt.Fprintf(&b, "! %s Opt\n", method)
	if Q.NProcs > 1 {
		fmt.Fprintf(&b, "%%pal nprocs %d\n   end\n", Q.NProcs)
	}
	if Q.Memory > 0 && Q.NProcs > 0 {
		fmt.Fprintf(&b, "%%MaxCore %d\n", Q.Memory/Q.NProcs) //per core in ORCA
	}
	fmt.Fprintf(&b, "* xyz %d %d\n", Q.Charge, Q.multi())
	b.WriteString(mol.CoordBlock())
	b.WriteString("*\n")
	return b.String(), nil
}

func (O *OrcaHandle) Command(name string) Invocation {
	return Invocation{Path: O.command, Args: []string{O.InputName(name)}, Log: name + ".out"}
}

// Outputs are the optimized geometry, which ORCA writes as name.xyz, and
// the transcript.
func (O *OrcaHandle) Outputs(name string) []Artifact {
	return []Artifact{{Kind: Geometry, Path: name + ".xyz"}, {Kind: Log, Path: name + ".out"}}
}

// Harvest checks that ORCA terminated normally.
func (O *OrcaHandle) Harvest(dir, name string) error {
	line, err := searchLast("ORCA TERMINATED NORMALLY", logPath(dir, name+".out"))
	if err != nil || line == "" {
		return &Error{kind: ErrArtifactMissing, message: ErrProbableProb, code: Orca, inputname: name, deco: []string{"Harvest"}}
	}
	return nil
}

// Energy returns the final single point energy of the job.
func (O *OrcaHandle) Energy(dir, name string) (float64, error) {
	line, err := searchLast("FINAL SINGLE POINT ENERGY", logPath(dir, name+".out"))
	if err != nil || line == "" {
		return 0, &Error{kind: ErrArtifactMissing, message: ErrNoEnergy, code: Orca, inputname: name, deco: []string{"Energy"}}
	}
	fields := strings.Fields(line)
	e, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, &Error{kind: ErrArtifactMissing, message: ErrNoEnergy, code: Orca, inputname: name, additional: err.Error(), deco: []string{"strconv.ParseFloat", "Energy"}}
	}
	return e, nil
}
