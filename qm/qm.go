/*
 * qm.go, part of TADF-Design.
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
	"strings"
)

// ArtifactKind is the type of file a stage consumes or produces.
type ArtifactKind int

const (
	Geometry   ArtifactKind = iota //XYZ coordinates
	Checkpoint                     //solver-native wavefunction and geometry
	Log                            //solver transcript
)

func (K ArtifactKind) String() string {
	switch K {
	case Geometry:
		return "geometry"
	case Checkpoint:
		return "checkpoint"
	case Log:
		return "log"
	}
	return fmt.Sprintf("ArtifactKind(%d)", int(K))
}

// Artifact is a file produced or consumed by a stage.
type Artifact struct {
	Kind ArtifactKind
	Path string
}

// Calc holds the settings of a calculation that do not depend on the
// program. Zero values mean "use the program default".
type Calc struct {
	Method       string
	Basis        string
	Charge       int
	Multiplicity int //0 is taken as a singlet
	NProcs       int
	Memory       int //MB
	NStates      int //excited states per spin multiplicity
	SCF          string
}

func (Q *Calc) multi() int {
	if Q.Multiplicity == 0 {
		return 1
	}
	return Q.Multiplicity
}

// Invocation is how a program is launched. Stdin and Log are file names
// relative to the working directory; an empty Stdin means no input stream.
type Invocation struct {
	Path  string
	Args  []string
	Stdin string
	Log   string
}

// Handle allows to set up calculations with different programs.
type Handle interface {
	//Program is the name of the program, for messages.
	Program() string

	//Requires is the kind of artifact the calculation starts from.
	Requires() ArtifactKind

	//InputName is the name of the input file for the job name.
	InputName(name string) string

	//BuildInput returns the text of the input file. It must not depend on
	//anything but its arguments and the files they point to.
	BuildInput(in Artifact, name string, Q *Calc) (string, error)

	//Command returns how to run the job.
	Command(name string) Invocation

	//Outputs lists the files a successful job leaves in its directory,
	//with paths relative to it.
	Outputs(name string) []Artifact

	//Harvest post-processes the output of a finished job in dir. An error
	//means the job probably did not end properly.
	Harvest(dir, name string) error

	//Energy returns the last energy, in Hartree, reported by the job in dir.
	Energy(dir, name string) (float64, error)
}

// memory formats a memory amount in MB the way the programs like it.
func memory(mb int) string {
	if mb%1024 == 0 {
		return fmt.Sprintf("%dGB", mb/1024)
	}
	return fmt.Sprintf("%dMB", mb)
}

// searchLast returns the last line of the file that contains str, or an
// empty string.
func searchLast(str, filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	var last string
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		if strings.Contains(s.Text(), str) {
			last = s.Text()
		}
	}
	return last, s.Err()
}
