/*
 * script.go, part of TADF-Design.
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
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/junhkim1226/TADF-Design/pipeline"
	"github.com/junhkim1226/TADF-Design/smiles"
)

var scriptTmpl = template.Must(template.New("job").Funcs(template.FuncMap{"q": shellQuote}).Parse(`#!/bin/bash
{{range .Directives}}{{.}}
{{end}}
{{range .Setup}}{{.}}
{{end}}{{range .Modules}}module load {{.}}
{{end}}
set -euo pipefail

cd {{q .WorkDir}}

SMILES={{q .SMILES}}
NAME={{q .Name}}
OUT_DIR={{q .OutDir}}

mkdir -p "$OUT_DIR"

{{.Command}} embed "$SMILES" "$OUT_DIR/{{.Initial}}.xyz"
{{.Command}} preopt "$OUT_DIR/{{.Initial}}.xyz" --out_dir "$OUT_DIR" --out_name "{{.PreOpt}}" {{.Spin}}
{{.Command}} opt "$OUT_DIR/{{.PreOpt}}.xyz" --out_dir "$OUT_DIR" --out_name "{{.Opt}}" {{.Spin}}
{{.Command}} td "$OUT_DIR/{{.Opt}}.chk" --out_dir "$OUT_DIR" --out_name "{{.TD}}" {{.Spin}}
`))

type scriptData struct {
	Directives []string
	Setup      []string
	Modules    []string
	WorkDir    string
	SMILES     string
	Name       string
	OutDir     string
	Command    string
	Spin       string
	Initial    string
	PreOpt     string
	Opt        string
	TD         string
}

// shellQuote single-quotes s for bash.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// RenderScript returns the job script that runs every stage of j, one
// after the other, in resultsDir/<name>. The script stops at the first
// failed stage. An empty resultsDir means workDir/results. command is how
// the stages are invoked, for instance "tadf --config /path/tadf.yaml".
// The charge and multiplicity passed to the stages come from the SMILES.
func RenderScript(s Scheduler, j JobSpec, res Resources, workDir, resultsDir, command string) (string, error) {
	if command == "" {
		command = "tadf"
	}
	if resultsDir == "" {
		resultsDir = filepath.Join(workDir, "results")
	}
	mol, err := smiles.Parse(j.SMILES)
	if err != nil {
		return "", &Error{Kind: ErrSubmission, Name: j.Name(), Msg: "parsing SMILES", Err: err}
	}
	data := scriptData{
		Directives: s.Directives(j, res, workDir),
		Setup:      res.Setup,
		Modules:    res.Modules,
		WorkDir:    workDir,
		SMILES:     j.SMILES,
		Name:       j.Name(),
		OutDir:     pipeline.Layout{Root: resultsDir}.Dir(j.Name()),
		Command:    command,
		Spin:       fmt.Sprintf("--charge %d --multiplicity %d", mol.Charge(), mol.Multiplicity()),
		Initial:    pipeline.StemInitial,
		PreOpt:     pipeline.StemPreOpt,
		Opt:        pipeline.StemOpt,
		TD:         pipeline.StemTD,
	}
	var b strings.Builder
	if err := scriptTmpl.Execute(&b, data); err != nil {
		return "", &Error{Kind: ErrSubmission, Name: j.Name(), Msg: "rendering job script", Err: err}
	}
	return b.String(), nil
}
