/*
 * config.go, part of TADF-Design.
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

// Package config provides the Config struct and loader for tadf.yaml
// files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/junhkim1226/TADF-Design/batch"
	"github.com/junhkim1226/TADF-Design/conformer"
	"github.com/junhkim1226/TADF-Design/pipeline"
	"github.com/junhkim1226/TADF-Design/qm"
)

// FileName is the configuration file looked for by Load.
const FileName = "tadf.yaml"

// maxLevels is how many directories Load climbs looking for FileName.
const maxLevels = 10

// Defaults. New references them and no other code should duplicate them.
const (
	DefaultWorkDir    = "."
	DefaultResultsDir = "results"

	DefaultConformers    = 50
	DefaultSeed          = 42
	DefaultMaxIterations = 500
	DefaultAttempts      = 5

	DefaultPreOptMethod = "XTB2"
	DefaultMethod       = "b3lyp"
	DefaultBasis        = "6-31g*"
	DefaultNProcs       = 16
	DefaultMemory       = 61440 //MB
	DefaultNStates      = 50
	DefaultSCF          = "XQC"

	DefaultScheduler = "slurm"
	DefaultCommand   = "tadf"
)

// PathsConfig holds the directories the pipeline works in.
type PathsConfig struct {
	Work    string `yaml:"work,omitempty"`
	Results string `yaml:"results,omitempty"` //relative to Work unless absolute
}

// ConformerConfig holds the conformer search settings.
type ConformerConfig struct {
	Count         int    `yaml:"count,omitempty"`
	Seed          uint64 `yaml:"seed,omitempty"`
	MaxIterations int    `yaml:"max_iterations,omitempty"`
	Attempts      int    `yaml:"attempts,omitempty"`
}

// SolversConfig holds the commands that run the external programs.
// Environment variables are expanded.
type SolversConfig struct {
	Orca     string `yaml:"orca,omitempty"`
	Gaussian string `yaml:"gaussian,omitempty"`
}

// CalcConfig holds the settings of one solver stage.
type CalcConfig struct {
	Method  string `yaml:"method,omitempty"`
	Basis   string `yaml:"basis,omitempty"`
	NProcs  int    `yaml:"nprocs,omitempty"`
	Memory  int    `yaml:"memory,omitempty"` //MB
	NStates int    `yaml:"nstates,omitempty"`
	SCF     string `yaml:"scf,omitempty"`
}

// SchedulerConfig holds the batch scheduler settings.
type SchedulerConfig struct {
	Kind     string   `yaml:"kind,omitempty"`
	Binary   string   `yaml:"binary,omitempty"`
	Queue    string   `yaml:"queue,omitempty"`
	Nodes    int      `yaml:"nodes,omitempty"`
	CPUs     int      `yaml:"cpus,omitempty"`
	Walltime string   `yaml:"walltime,omitempty"`
	Setup    []string `yaml:"setup,omitempty"`
	Modules  []string `yaml:"modules,omitempty"`
	Command  string   `yaml:"command,omitempty"` //how job scripts call tadf
}

// Config is the top-level configuration loaded from tadf.yaml.
type Config struct {
	Paths     PathsConfig     `yaml:"paths,omitempty"`
	Conformer ConformerConfig `yaml:"conformer,omitempty"`
	Solvers   SolversConfig   `yaml:"solvers,omitempty"`
	PreOpt    CalcConfig      `yaml:"preopt,omitempty"`
	Opt       CalcConfig      `yaml:"opt,omitempty"`
	TD        CalcConfig      `yaml:"td,omitempty"`
	Scheduler SchedulerConfig `yaml:"scheduler,omitempty"`
	Archive   *bool           `yaml:"archive,omitempty"`

	// Source is the file the configuration was read from, empty for
	// the defaults.
	Source string `yaml:"-"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	res := batch.DefaultResources()
	return &Config{
		Paths: PathsConfig{
			Work:    DefaultWorkDir,
			Results: DefaultResultsDir,
		},
		Conformer: ConformerConfig{
			Count:         DefaultConformers,
			Seed:          DefaultSeed,
			MaxIterations: DefaultMaxIterations,
			Attempts:      DefaultAttempts,
		},
		PreOpt: CalcConfig{
			Method: DefaultPreOptMethod,
		},
		Opt: CalcConfig{
			Method: DefaultMethod,
			Basis:  DefaultBasis,
			NProcs: DefaultNProcs,
			Memory: DefaultMemory,
			SCF:    DefaultSCF,
		},
		TD: CalcConfig{
			Method:  DefaultMethod,
			Basis:   DefaultBasis,
			NProcs:  DefaultNProcs,
			Memory:  DefaultMemory,
			NStates: DefaultNStates,
			SCF:     DefaultSCF,
		},
		Scheduler: SchedulerConfig{
			Kind:     DefaultScheduler,
			Queue:    res.Queue,
			Nodes:    res.Nodes,
			CPUs:     res.CPUs,
			Walltime: res.Walltime,
			Setup:    res.Setup,
			Modules:  res.Modules,
			Command:  DefaultCommand,
		},
		Archive: boolPtr(false),
	}
}

// Load finds tadf.yaml by walking up from startDir and reads it. If no
// file is found, it returns the defaults with a nil error. Real I/O
// errors are returned to the caller.
func Load(startDir string) (*Config, error) {
	path, err := find(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return LoadFile(path)
}

// LoadFile reads the configuration in path, which must exist, and merges
// it onto the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Parse checks data against the schema of the configuration file and
// merges it onto the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := New()
	if strings.TrimSpace(string(data)) == "" {
		return cfg, nil
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	merge(cfg, &fileCfg)
	cfg.expand()
	return cfg, nil
}

// find walks up from dir looking for FileName.
func find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = abs
	for i := 0; i < maxLevels; i++ {
		p := filepath.Join(dir, FileName)
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// merge overlays non-zero values from src onto dst.
func merge(dst, src *Config) {
	setString(&dst.Paths.Work, src.Paths.Work)
	setString(&dst.Paths.Results, src.Paths.Results)

	setInt(&dst.Conformer.Count, src.Conformer.Count)
	if src.Conformer.Seed != 0 {
		dst.Conformer.Seed = src.Conformer.Seed
	}
	setInt(&dst.Conformer.MaxIterations, src.Conformer.MaxIterations)
	setInt(&dst.Conformer.Attempts, src.Conformer.Attempts)

	setString(&dst.Solvers.Orca, src.Solvers.Orca)
	setString(&dst.Solvers.Gaussian, src.Solvers.Gaussian)

	mergeCalc(&dst.PreOpt, &src.PreOpt)
	mergeCalc(&dst.Opt, &src.Opt)
	mergeCalc(&dst.TD, &src.TD)

	setString(&dst.Scheduler.Kind, src.Scheduler.Kind)
	setString(&dst.Scheduler.Binary, src.Scheduler.Binary)
	setString(&dst.Scheduler.Queue, src.Scheduler.Queue)
	setInt(&dst.Scheduler.Nodes, src.Scheduler.Nodes)
	setInt(&dst.Scheduler.CPUs, src.Scheduler.CPUs)
	setString(&dst.Scheduler.Walltime, src.Scheduler.Walltime)
	if src.Scheduler.Setup != nil {
		dst.Scheduler.Setup = src.Scheduler.Setup
	}
	if src.Scheduler.Modules != nil {
		dst.Scheduler.Modules = src.Scheduler.Modules
	}
	setString(&dst.Scheduler.Command, src.Scheduler.Command)

	if src.Archive != nil {
		dst.Archive = src.Archive
	}
}

func mergeCalc(dst, src *CalcConfig) {
	setString(&dst.Method, src.Method)
	setString(&dst.Basis, src.Basis)
	setInt(&dst.NProcs, src.NProcs)
	setInt(&dst.Memory, src.Memory)
	setInt(&dst.NStates, src.NStates)
	setString(&dst.SCF, src.SCF)
}

func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func setInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// expand replaces environment variables in paths and commands.
func (C *Config) expand() {
	for _, s := range []*string{&C.Paths.Work, &C.Paths.Results, &C.Solvers.Orca, &C.Solvers.Gaussian, &C.Scheduler.Binary, &C.Scheduler.Command} {
		*s = os.ExpandEnv(*s)
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// ResultsDir is the directory with one subdirectory per molecule.
func (C *Config) ResultsDir() string {
	if filepath.IsAbs(C.Paths.Results) {
		return C.Paths.Results
	}
	return filepath.Join(C.Paths.Work, C.Paths.Results)
}

// ConformerOptions are the conformer search settings.
func (C *Config) ConformerOptions() conformer.Options {
	o := conformer.DefaultOptions()
	o.Count = C.Conformer.Count
	o.Seed = C.Conformer.Seed
	o.MaxIterations = C.Conformer.MaxIterations
	o.Attempts = C.Conformer.Attempts
	return o
}

// Calc converts the stage settings.
func (c CalcConfig) Calc() qm.Calc {
	return qm.Calc{Method: c.Method, Basis: c.Basis, NProcs: c.NProcs, Memory: c.Memory, NStates: c.NStates, SCF: c.SCF}
}

// Steps are the solver stages of the pipeline with the configured
// programs and settings.
func (C *Config) Steps() []pipeline.Step {
	steps := pipeline.DefaultSteps()
	if C.Solvers.Orca != "" {
		steps[0].Handle.(*qm.OrcaHandle).SetCommand(C.Solvers.Orca)
	}
	if C.Solvers.Gaussian != "" {
		steps[1].Handle.(*qm.GaussianHandle).SetCommand(C.Solvers.Gaussian)
		steps[2].Handle.(*qm.GaussianHandle).SetCommand(C.Solvers.Gaussian)
	}
	steps[0].Calc = C.PreOpt.Calc()
	steps[1].Calc = C.Opt.Calc()
	steps[2].Calc = C.TD.Calc()
	return steps
}

// Step returns the pipeline step with the given file stem.
func (C *Config) Step(stem string) (pipeline.Step, bool) {
	for _, s := range C.Steps() {
		if s.Stem == stem {
			return s, true
		}
	}
	return pipeline.Step{}, false
}

// Resources are the scheduler requests.
func (C *Config) Resources() batch.Resources {
	return batch.Resources{
		Queue:    C.Scheduler.Queue,
		Nodes:    C.Scheduler.Nodes,
		CPUs:     C.Scheduler.CPUs,
		Walltime: C.Scheduler.Walltime,
		Setup:    C.Scheduler.Setup,
		Modules:  C.Scheduler.Modules,
	}
}

// ArchiveLogs reports whether intermediate logs are compressed.
func (C *Config) ArchiveLogs() bool {
	return C.Archive != nil && *C.Archive
}
