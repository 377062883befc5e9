/*
 * scheduler.go, part of TADF-Design.
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

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// Resources are the scheduler requests shared by every job.
type Resources struct {
	Queue    string //partition in Slurm
	Nodes    int
	CPUs     int
	Walltime string
	Setup    []string //shell lines run before loading modules
	Modules  []string
}

// DefaultResources are the requests of the production cluster: a 16-core
// node with Gaussian 16 loaded.
func DefaultResources() Resources {
	return Resources{
		Queue:    "16core",
		Nodes:    1,
		CPUs:     16,
		Walltime: "1000:00:00",
		Setup:    []string{"source /etc/profile.d/modules.sh"},
		Modules:  []string{"software_module/g16_B.01_AVX"},
	}
}

// Scheduler is a batch system that accepts job scripts.
type Scheduler interface {
	//Kind is the name of the scheduler.
	Kind() string
	//Directives returns the header comment lines of the job script.
	Directives(job JobSpec, res Resources, workDir string) []string
	//Submit hands the script to the scheduler and returns the job ID. It
	//does not wait for the job.
	Submit(ctx context.Context, script string) (string, error)
}

// jobName is the scheduler name of a job.
func jobName(j JobSpec) string { return "TD_" + j.Name() }

func logFile(workDir string, j JobSpec, ext string) string {
	return filepath.Join(workDir, "logs", j.Name()+ext)
}

// submit runs binary with the script as only argument and returns the
// trimmed output.
func submit(ctx context.Context, binary, script string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, script)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", binary, filepath.Base(script), err, strings.TrimSpace(out.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

// Slurm submits with sbatch.
type Slurm struct {
	Binary string //defaults to sbatch
}

func (S Slurm) Kind() string { return "slurm" }

func (S Slurm) Directives(j JobSpec, res Resources, workDir string) []string {
	d := []string{"#SBATCH -J " + jobName(j)}
	if res.Queue != "" {
		d = append(d, "#SBATCH -p "+res.Queue)
	}
	if res.Nodes > 0 {
		d = append(d, fmt.Sprintf("#SBATCH --nodes=%d", res.Nodes))
	}
	if res.CPUs > 0 {
		d = append(d, fmt.Sprintf("#SBATCH --cpus-per-task=%d", res.CPUs))
	}
	if res.Walltime != "" {
		d = append(d, "#SBATCH --time="+res.Walltime)
	}
	return append(d, "#SBATCH -o "+logFile(workDir, j, ".out"), "#SBATCH -e "+logFile(workDir, j, ".err"))
}

var sbatchRE = regexp.MustCompile(`Submitted batch job (\d+)`)

// ParseSbatch extracts the job ID from the output of sbatch.
func ParseSbatch(out string) (string, error) {
	m := sbatchRE.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("no job ID in sbatch output %q", out)
	}
	return m[1], nil
}

func (S Slurm) Submit(ctx context.Context, script string) (string, error) {
	bin := S.Binary
	if bin == "" {
		bin = "sbatch"
	}
	out, err := submit(ctx, bin, script)
	if err != nil {
		return "", err
	}
	return ParseSbatch(out)
}

// PBS submits with qsub, which prints the job ID.
type PBS struct {
	Binary string //defaults to qsub
}

func (P PBS) Kind() string { return "pbs" }

func (P PBS) Directives(j JobSpec, res Resources, workDir string) []string {
	d := []string{"#PBS -N " + jobName(j)}
	if res.Queue != "" {
		d = append(d, "#PBS -q "+res.Queue)
	}
	nodes, cpus := max(res.Nodes, 1), max(res.CPUs, 1)
	d = append(d, fmt.Sprintf("#PBS -l nodes=%d:ppn=%d", nodes, cpus))
	if res.Walltime != "" {
		d = append(d, "#PBS -l walltime="+res.Walltime)
	}
	return append(d, "#PBS -o "+logFile(workDir, j, ".out"), "#PBS -e "+logFile(workDir, j, ".err"))
}

func (P PBS) Submit(ctx context.Context, script string) (string, error) {
	bin := P.Binary
	if bin == "" {
		bin = "qsub"
	}
	out, err := submit(ctx, bin, script)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("%s printed no job ID", bin)
	}
	return strings.Fields(out)[0], nil
}

// NewScheduler returns the scheduler called kind ("slurm" or "pbs"),
// submitting with binary, or the usual command if binary is empty.
func NewScheduler(kind, binary string) (Scheduler, error) {
	switch strings.ToLower(kind) {
	case "", "slurm":
		return Slurm{Binary: binary}, nil
	case "pbs", "torque":
		return PBS{Binary: binary}, nil
	}
	return nil, &Error{Kind: ErrSubmission, Msg: fmt.Sprintf("unknown scheduler %q", kind)}
}
