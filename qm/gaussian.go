/*
 * gaussian.go, part of TADF-Design.
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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	chem "github.com/junhkim1226/TADF-Design"
	v3 "github.com/junhkim1226/TADF-Design/v3"
)

// Gaussian is the program name reported in errors and logs.
const Gaussian = "Gaussian"

// Job is the kind of Gaussian calculation.
type Job int

const (
	Opt Job = iota //ground state optimization, writes a checkpoint
	TD             //excited states from a previous checkpoint
)

func (J Job) String() string {
	if J == TD {
		return "TD"
	}
	return "Opt"
}

// GaussianHandle runs DFT optimizations and TD-DFT calculations with Gaussian 16.
//Note that the default methods and basis vary with each program, and even
//for a given program they are NOT considered part of the API, so they can always change.
type GaussianHandle struct {
	job        Job
	defmethod  string
	defbasis   string
	defnprocs  int
	defmemory  int
	defnstates int
	defscf     string
	command    string
}

func NewGaussianHandle(job Job) *GaussianHandle {
	run := &GaussianHandle{job: job}
	run.SetDefaults()
	return run
}

// SetDefaults sets B3LYP/6-31G*, 16 processors, 60 GB, 50 singlet and 50
// triplet states, SCF=XQC and the g16 command.
func (O *GaussianHandle) SetDefaults() {
	O.defmethod = "b3lyp"
	O.defbasis = "6-31g*"
	O.defnprocs = 16
	O.defmemory = 60 * 1024
	O.defnstates = 50
	O.defscf = "XQC"
	O.command = "g16"
}

func (O *GaussianHandle) SetCommand(name string) {
	O.command = name
}

func (O *GaussianHandle) Job() Job { return O.job }

func (O *GaussianHandle) Program() string { return Gaussian }

// Requires returns Geometry for optimizations and Checkpoint for TD
// calculations, which read geometry and guess from the checkpoint.
func (O *GaussianHandle) Requires() ArtifactKind {
	if O.job == TD {
		return Checkpoint
	}
	return Geometry
}

func (O *GaussianHandle) InputName(name string) string { return name + ".com" }

// BuildInput writes the Gaussian input. For TD jobs the checkpoint path is
// made absolute, as Gaussian runs in the job directory.
func (O *GaussianHandle) BuildInput(in Artifact, name string, Q *Calc) (string, error) {
	if in.Kind != O.Requires() {
		return "", &Error{kind: ErrInput, message: ErrWrongArtifact, code: Gaussian, inputname: name, additional: in.Kind.String(), deco: []string{"BuildInput"}, critical: true}
	}
	method, basis, nprocs, mem, nstates, scf := Q.Method, Q.Basis, Q.NProcs, Q.Memory, Q.NStates, Q.SCF
	if method == "" {
		method = O.defmethod
	}
	if basis == "" {
		basis = O.defbasis
	}
	if nprocs == 0 {
		nprocs = O.defnprocs
	}
	if mem == 0 {
		mem = O.defmemory
	}
	if nstates == 0 {
		nstates = O.defnstates
	}
	if scf == "" {
		scf = O.defscf
	}
	scfkw := ""
	if scf != "none" {
		scfkw = " SCF=" + scf
	}
	var b strings.Builder
	switch O.job {
	case Opt:
		mol, err := chem.XYZFileRead(in.Path)
		if err != nil {
			return "", &Error{kind: ErrInput, message: ErrCantInput, code: Gaussian, inputname: name, additional: err.Error(), deco: []string{"BuildInput"}, critical: true}
		}
		fmt.Fprintf(&b, "%%chk=%s.chk\n", name)
		fmt.Fprintf(&b, "%%nprocshared=%d\n%%mem=%s\n", nprocs, memory(mem))
		fmt.Fprintf(&b, "# %s/%s Opt%s\n\n", method, basis, scfkw)
		fmt.Fprintf(&b, "Ground state optimization\n\n")
		fmt.Fprintf(&b, "%d %d\n", Q.Charge, Q.multi())
		b.WriteString(mol.CoordBlock())
		b.WriteString("\n")
	case TD:
		chk, err := filepath.Abs(in.Path)
		if err != nil {
			return "", &Error{kind: ErrInput, message: ErrCantInput, code: Gaussian, inputname: name, additional: err.Error(), deco: []string{"filepath.Abs", "BuildInput"}, critical: true}
		}
		fmt.Fprintf(&b, "%%OldChk=%s\n", chk)
		fmt.Fprintf(&b, "%%nprocshared=%d\n%%mem=%s\n", nprocs, memory(mem))
		fmt.Fprintf(&b, "# %s/%s TD=(NStates=%d,50-50) Geom=Check Guess=Read%s\n\n", method, basis, nstates, scfkw)
		fmt.Fprintf(&b, "TD-DFT calculation\n\n")
		fmt.Fprintf(&b, "%d %d\n\n", Q.Charge, Q.multi())
	}
	return b.String(), nil
}

// Command runs g16 < name.com > name.log
func (O *GaussianHandle) Command(name string) Invocation {
	return Invocation{Path: O.command, Stdin: O.InputName(name), Log: name + ".log"}
}

// Outputs are, for optimizations, the log, the checkpoint and the
// optimized geometry extracted by Harvest; for TD jobs, only the log.
func (O *GaussianHandle) Outputs(name string) []Artifact {
	if O.job == TD {
		return []Artifact{{Kind: Log, Path: name + ".log"}}
	}
	return []Artifact{
		{Kind: Geometry, Path: name + ".xyz"},
		{Kind: Checkpoint, Path: name + ".chk"},
		{Kind: Log, Path: name + ".log"},
	}
}

// Harvest checks for normal termination and, for optimizations, writes the
// last geometry of the log to name.xyz.
func (O *GaussianHandle) Harvest(dir, name string) error {
	logname := logPath(dir, name+".log")
	var err error
	if line, _ := searchLast("Normal termination of Gaussian", logname); line == "" {
		err = &Error{kind: ErrArtifactMissing, message: ErrProbableProb, code: Gaussian, inputname: name, deco: []string{"Harvest"}}
	}
	if O.job == TD {
		return err
	}
	G, err2 := GaussianGeometry(logname)
	if err2 != nil {
		return &Error{kind: ErrArtifactMissing, message: ErrNoGeometry, code: Gaussian, inputname: name, additional: err2.Error(), deco: []string{"GaussianGeometry", "Harvest"}}
	}
	G.Comment = fmt.Sprintf("%s optimized with %s", name, Gaussian)
	if err2 := chem.XYZFileWrite(logPath(dir, name+".xyz"), G); err2 != nil {
		return &Error{kind: ErrArtifactMissing, message: ErrNoGeometry, code: Gaussian, inputname: name, additional: err2.Error(), deco: []string{"XYZFileWrite", "Harvest"}}
	}
	return err
}

// GaussianGeometry reads the last "Standard orientation" table of a
// Gaussian log, or the last "Input orientation" if there is none.
func GaussianGeometry(logname string) (*chem.Geometry, error) {
	f, err := os.Open(logname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var std, input []string
	var current *[]string
	var symbols []string
	var coords []float64
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	//the table starts after a header of 4 lines and ends with a dashed line.
	skip := 0
	for s.Scan() {
		line := s.Text()
		switch {
		case strings.Contains(line, "Standard orientation:"):
			std, current, skip = nil, &std, 4
			continue
		case strings.Contains(line, "Input orientation:"):
			input, current, skip = nil, &input, 4
			continue
		}
		if current == nil {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "---") {
			current = nil
			continue
		}
		*current = append(*current, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	table := std
	if table == nil {
		table = input
	}
	if table == nil {
		return nil, fmt.Errorf("no orientation table in %s", logname)
	}
	for _, line := range table {
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, fmt.Errorf("ill formatted orientation line %q", line)
		}
		z, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, err
		}
		sym, err := chem.SymbolFromNumber(z)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
		for _, c := range fields[3:] {
			v, err := strconv.ParseFloat(c, 64)
			if err != nil {
				return nil, err
			}
			coords = append(coords, v)
		}
	}
	M, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, err
	}
	return chem.NewGeometry(symbols, M)
}

// Energy returns the last SCF energy of the job.
func (O *GaussianHandle) Energy(dir, name string) (float64, error) {
	line, err := searchLast("SCF Done:", logPath(dir, name+".log"))
	if err != nil || line == "" {
		return 0, &Error{kind: ErrArtifactMissing, message: ErrNoEnergy, code: Gaussian, inputname: name, deco: []string{"Energy"}}
	}
	//SCF Done:  E(RB3LYP) =  -155.033521460     A.U. after   10 cycles
	_, after, _ := strings.Cut(line, "=")
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return 0, &Error{kind: ErrArtifactMissing, message: ErrNoEnergy, code: Gaussian, inputname: name, deco: []string{"Energy"}}
	}
	e, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, &Error{kind: ErrArtifactMissing, message: ErrNoEnergy, code: Gaussian, inputname: name, additional: err.Error(), deco: []string{"strconv.ParseFloat", "Energy"}}
	}
	return e, nil
}
