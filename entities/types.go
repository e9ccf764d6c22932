package entities

import "path/filepath"

// SampleImports is the fixed block of Python imports fed to every probe.
const SampleImports = `import ast
import datetime
import logging
from time import sleep

import requests
from google.auth.transport.requests import Request
from google.oauth2 import id_token
from airflow.models import BaseOperator
from moloco.utils.datadog_timer import report_datadog_metric
from moloco.utils.env import Env, get_env
`

// ProbeCase is a single row of the probe matrix.
type ProbeCase struct {
	Name        string   // Short identifier, e.g. "no_context".
	Title       string   // Banner title.
	Dir         string   // Working directory for the sorter.
	ExtraArgs   []string // Appended after the fixed sorter arguments.
	Description string   // Printed before the output.
	Expectation string   // Printed after the output.
}

// ProbeResult is what one sorter invocation produced.
type ProbeResult struct {
	Case     string
	Dir      string
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int

	// ModuleSection is the 0-based section holding the watched module, -1 if absent.
	ModuleSection int
}

// ImportLine is a single import statement from sorter output.
type ImportLine struct {
	Text   string
	Module string // Top-level module name, e.g. "airflow".
}

// ImportSection is a run of import lines not separated by a blank line.
type ImportSection struct {
	Lines []ImportLine
}

// ProbeConfig holds the values the probe matrix is parameterized by.
type ProbeConfig struct {
	// Sorter binary, resolved on PATH unless absolute.
	Sorter string `yaml:"sorter" json:"sorter"`

	// Style profile passed with --profile.
	Profile string `yaml:"profile" json:"profile"`

	// Directory without any project markers (e.g. "/tmp").
	NeutralDir string `yaml:"neutral_dir" json:"neutral_dir"`

	// Base directory holding local checkouts.
	ReposBase string `yaml:"repos_base" json:"repos_base"`

	// Checkout name under ReposBase.
	ProjectName string `yaml:"project_name" json:"project_name"`

	// Full project path; overrides ReposBase/ProjectName when set.
	Project string `yaml:"project" json:"project"`

	// Module whose grouping position is reported.
	Module string `yaml:"module" json:"module"`

	// Directory scratch files are created in.
	TempDir string `yaml:"temp_dir" json:"temp_dir"`
}

// ProjectPath returns the project checkout the probes point at.
func (p *ProbeConfig) ProjectPath() string {
	if p.Project != "" {
		return p.Project
	}
	return filepath.Join(p.ReposBase, p.ProjectName)
}
