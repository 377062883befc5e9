/*
 * submit.go, part of TADF-Design.
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
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// Outcome is the result of submitting one job. JobID is empty when the
// script was only written.
type Outcome struct {
	Job    JobSpec
	Script string
	JobID  string
	Err    error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Submitter writes a job script per molecule and submits it.
type Submitter struct {
	Scheduler Scheduler
	Resources Resources
	Command   string //how job scripts call tadf
	Results   string //where the stages write; workDir/results if empty
	DryRun    bool   //write the scripts without submitting them
	Logger    *slog.Logger
}

func (S *Submitter) logger() *slog.Logger {
	if S.Logger == nil {
		return slog.Default()
	}
	return S.Logger
}

// SubmitAll writes workDir/jobs/<name>.sh for every job, overwriting old
// scripts, and submits each. A failed job does not stop the others; the
// outcomes follow the order of jobs.
func (S *Submitter) SubmitAll(ctx context.Context, jobs []JobSpec, workDir string) []Outcome {
	out := make([]Outcome, len(jobs))
	abs, err := filepath.Abs(workDir)
	if err == nil {
		workDir = abs
	}
	results := S.Results
	if results == "" {
		results = filepath.Join(workDir, "results")
	} else if abs, err := filepath.Abs(results); err == nil {
		results = abs
	}
	jobsDir := filepath.Join(workDir, "jobs")
	for _, d := range []string{jobsDir, filepath.Join(workDir, "logs")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			for i, j := range jobs {
				out[i] = Outcome{Job: j, Err: &Error{Kind: ErrSubmission, Name: j.Name(), Msg: "creating " + d, Err: err}}
			}
			return out
		}
	}
	log := S.logger().With("scheduler", S.Scheduler.Kind())
	for i, j := range jobs {
		out[i] = S.submit(ctx, j, jobsDir, workDir, results)
		if out[i].Err != nil {
			log.Error("submission failed", "molecule", j.Name(), "error", out[i].Err)
			continue
		}
		if S.DryRun {
			log.Info("written", "molecule", j.Name(), "script", out[i].Script)
			continue
		}
		log.Info("submitted", "molecule", j.Name(), "job", out[i].JobID)
	}
	return out
}

func (S *Submitter) submit(ctx context.Context, j JobSpec, jobsDir, workDir, results string) Outcome {
	o := Outcome{Job: j, Script: filepath.Join(jobsDir, j.Name()+".sh")}
	if err := ctx.Err(); err != nil {
		o.Err = &Error{Kind: ErrSubmission, Name: j.Name(), Msg: "not submitted", Err: err}
		return o
	}
	text, err := RenderScript(S.Scheduler, j, S.Resources, workDir, results, S.Command)
	if err != nil {
		o.Err = err
		return o
	}
	if err := os.WriteFile(o.Script, []byte(text), 0o755); err != nil {
		o.Err = &Error{Kind: ErrSubmission, Name: j.Name(), Msg: "writing job script", Err: err}
		return o
	}
	if S.DryRun {
		return o
	}
	id, err := S.Scheduler.Submit(ctx, o.Script)
	if err != nil {
		o.Err = &Error{Kind: ErrSubmission, Name: j.Name(), Msg: "scheduler rejected the job", Err: err}
		return o
	}
	o.JobID = id
	return o
}
