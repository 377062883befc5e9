/*
 * runner.go, part of TADF-Design.
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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
)

// Status is the outcome of running a stage.
type Status int

const (
	Success         Status = iota
	ProcessFailed          //nonzero exit or the program could not start
	ArtifactMissing        //the program exited normally but an output is missing
	InputFailed            //the input could not be prepared, nothing was run
)

func (S Status) String() string {
	switch S {
	case Success:
		return "success"
	case ProcessFailed:
		return "process failed"
	case ArtifactMissing:
		return "artifact missing"
	case InputFailed:
		return "input failed"
	}
	return fmt.Sprintf("Status(%d)", int(S))
}

// Result is the outcome of Runner.Run. On Success, Artifacts holds every
// declared output with its full path. ExitCode is -1 when the program
// could not be started. Err is nil only on Success.
type Result struct {
	Status    Status
	ExitCode  int
	Artifacts []Artifact
	Missing   []Artifact
	Energy    float64 //Hartree, NaN if the log has none
	Err       error
}

// OK reports whether the stage succeeded.
func (R Result) OK() bool { return R.Status == Success }

// Artifact returns the first output of the given kind.
func (R Result) Artifact(kind ArtifactKind) (Artifact, bool) {
	for _, a := range R.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return Artifact{}, false
}

// Runner runs Handles as subprocesses. Each run happens in its own
// directory, given explicitly; the working directory of the calling process
// is never changed.
type Runner struct {
	Logger *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r == nil || r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func logPath(dir, file string) string {
	return filepath.Join(dir, file)
}

// Run prepares the input of h from in, runs the program in outDir and
// checks its outputs. Solver problems are reported in the Result, never
// as a panic or error return.
func (r *Runner) Run(ctx context.Context, h Handle, Q *Calc, in Artifact, outDir, outName string) Result {
	log := r.logger().With("program", h.Program(), "job", outName, "dir", outDir)
	if Q == nil {
		Q = &Calc{}
	}
	fail := func(s Status, code int, err error) Result {
		log.Error("stage failed", "status", s.String(), "error", err)
		return Result{Status: s, ExitCode: code, Energy: math.NaN(), Err: err}
	}
	if in.Kind != h.Requires() {
		return fail(InputFailed, 0, &Error{kind: ErrInput, message: ErrWrongArtifact, code: h.Program(), inputname: outName, additional: fmt.Sprintf("got %s, need %s", in.Kind, h.Requires()), deco: []string{"Run"}, critical: true})
	}
	if _, err := os.Stat(in.Path); err != nil {
		return fail(InputFailed, 0, &Error{kind: ErrInput, message: ErrCantInput, code: h.Program(), inputname: outName, additional: err.Error(), deco: []string{"os.Stat", "Run"}, critical: true})
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fail(InputFailed, 0, &Error{kind: ErrInput, message: ErrCantInput, code: h.Program(), inputname: outName, additional: err.Error(), deco: []string{"os.MkdirAll", "Run"}, critical: true})
	}
	text, err := h.BuildInput(in, outName, Q)
	if err != nil {
		var qerr *Error
		if errors.As(err, &qerr) {
			qerr.Decorate("Run")
		}
		return fail(InputFailed, 0, err)
	}
	if err := os.WriteFile(logPath(outDir, h.InputName(outName)), []byte(text), 0o644); err != nil {
		return fail(InputFailed, 0, &Error{kind: ErrInput, message: ErrCantInput, code: h.Program(), inputname: outName, additional: err.Error(), deco: []string{"os.WriteFile", "Run"}, critical: true})
	}

	if err := clearOutputs(h, in, outDir, outName); err != nil {
		return fail(InputFailed, 0, &Error{kind: ErrInput, message: ErrCantInput, code: h.Program(), inputname: outName, additional: err.Error(), deco: []string{"os.Remove", "Run"}, critical: true})
	}

	inv := h.Command(outName)
	log.Info("running", "command", inv.Path, "input", h.InputName(outName))
	if code, err := execute(ctx, inv, outDir); err != nil {
		return fail(ProcessFailed, code, &Error{kind: ErrProcess, message: ErrNotRunning, code: h.Program(), inputname: outName, additional: err.Error(), deco: []string{"exec.Cmd.Run", "Run"}, critical: true})
	}
	if err := h.Harvest(outDir, outName); err != nil {
		log.Warn("output check", "error", err)
	}
	res := Result{Status: Success, Energy: math.NaN()}
	for _, a := range h.Outputs(outName) {
		a.Path = logPath(outDir, a.Path)
		if _, err := os.Stat(a.Path); err != nil {
			res.Missing = append(res.Missing, a)
			continue
		}
		res.Artifacts = append(res.Artifacts, a)
	}
	if len(res.Missing) > 0 {
		missing := res.Missing
		failed := fail(ArtifactMissing, 0, &Error{kind: ErrArtifactMissing, message: fmt.Sprintf("%d declared outputs not found", len(missing)), code: h.Program(), inputname: outName, additional: missing[0].Path, deco: []string{"Run"}, critical: true})
		failed.Artifacts, failed.Missing = res.Artifacts, missing
		return failed
	}
	if e, err := h.Energy(outDir, outName); err == nil {
		res.Energy = e
	}
	log.Info("stage done", "energy", res.Energy)
	return res
}

// clearOutputs removes the declared outputs left in outDir by an earlier
// run, so only files written by this run count as produced. The input
// artifact is never removed, even when it has an output's name.
func clearOutputs(h Handle, in Artifact, outDir, outName string) error {
	inAbs, _ := filepath.Abs(in.Path)
	for _, a := range h.Outputs(outName) {
		p := logPath(outDir, a.Path)
		if abs, _ := filepath.Abs(p); abs == inAbs {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// execute runs inv in dir with stdout and stderr going to the log file.
// It returns the exit code, -1 if the program did not run to completion.
func execute(ctx context.Context, inv Invocation, dir string) (int, error) {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = dir
	if inv.Stdin != "" {
		stdin, err := os.Open(logPath(dir, inv.Stdin))
		if err != nil {
			return -1, err
		}
		defer stdin.Close()
		cmd.Stdin = stdin
	}
	out, err := os.Create(logPath(dir, inv.Log))
	if err != nil {
		return -1, err
	}
	defer out.Close()
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return exit.ExitCode(), err
		}
		return -1, err
	}
	return 0, nil
}
