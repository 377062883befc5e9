/*
 * schema.go, part of TADF-Design.
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

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// ErrInvalid means the configuration file does not follow the schema.
var ErrInvalid = errors.New("invalid configuration")

// SchemaError lists the problems found in a configuration file.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(e.Problems, "; "))
}

func (e *SchemaError) Unwrap() error { return ErrInvalid }

const calcSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"method":  {"type": "string"},
		"basis":   {"type": "string"},
		"nprocs":  {"type": "integer", "minimum": 1},
		"memory":  {"type": "integer", "minimum": 1},
		"nstates": {"type": "integer", "minimum": 1},
		"scf":     {"type": "string"}
	}
}`

// SchemaJSON is the JSON Schema of tadf.yaml.
var SchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"title": "tadf.yaml",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"paths": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"work":    {"type": "string"},
				"results": {"type": "string"}
			}
		},
		"conformer": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"count":          {"type": "integer", "minimum": 1},
				"seed":           {"type": "integer", "minimum": 0},
				"max_iterations": {"type": "integer", "minimum": 1},
				"attempts":       {"type": "integer", "minimum": 1}
			}
		},
		"solvers": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"orca":     {"type": "string"},
				"gaussian": {"type": "string"}
			}
		},
		"preopt": ` + calcSchema + `,
		"opt": ` + calcSchema + `,
		"td": ` + calcSchema + `,
		"scheduler": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"kind":     {"enum": ["slurm", "pbs", "torque"]},
				"binary":   {"type": "string"},
				"queue":    {"type": "string"},
				"nodes":    {"type": "integer", "minimum": 1},
				"cpus":     {"type": "integer", "minimum": 1},
				"walltime": {"type": "string"},
				"setup":    {"type": "array", "items": {"type": "string"}},
				"modules":  {"type": "array", "items": {"type": "string"}},
				"command":  {"type": "string"}
			}
		},
		"archive": {"type": "boolean"}
	}
}`

var (
	schema  = mustCompileSchema(SchemaJSON, "tadf.schema.json")
	printer = message.NewPrinter(language.English)
)

func mustCompileSchema(raw, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Validate checks raw YAML against the schema. Unknown keys are errors,
// so that typos do not silently fall back to defaults.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &SchemaError{Problems: []string{fmt.Sprintf("YAML parse error: %v", err)}}
	}
	if doc == nil {
		return nil
	}
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &SchemaError{Problems: []string{err.Error()}}
	}
	var problems []string
	collect(ve, &problems)
	return &SchemaError{Problems: problems}
}

func collect(ve *jsonschema.ValidationError, problems *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*problems = append(*problems, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(printer)))
		return
	}
	for _, c := range ve.Causes {
		collect(c, problems)
	}
}
