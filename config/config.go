package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"isortprobe/entities"
)

// Environment variables that override the config file.
const (
	EnvReposBase = "ISORT_PROBE_REPOS_BASE"
	EnvProject   = "ISORT_PROBE_PROJECT"
	EnvSorter    = "ISORT_PROBE_SORTER"
)

// Config holds the configuration for the probe run.
type Config struct {
	ConfigPath string
	Verbose    bool
	Probe      *entities.ProbeConfig

	// Flag values, applied only when the flag was set explicitly.
	flags entities.ProbeConfig
}

// DefaultProbeConfig creates the default probe configuration.
func DefaultProbeConfig() *entities.ProbeConfig {
	reposBase := "repos"
	home, err := os.UserHomeDir()
	if err == nil {
		reposBase = filepath.Join(home, "repos")
	}

	return &entities.ProbeConfig{
		Sorter:      "isort",
		Profile:     "black",
		NeutralDir:  "/tmp",
		ReposBase:   reposBase,
		ProjectName: "airflow",
		Module:      "airflow",
		TempDir:     os.TempDir(),
	}
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Probe: DefaultProbeConfig(),
	}
}

// BindFlags registers the override flags on cmd.
func (c *Config) BindFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.StringVar(&c.ConfigPath, "config", "", "Path to config file (YAML or JSON)")
	f.BoolVarP(&c.Verbose, "verbose", "v", false, "Enable debug logging")

	f.StringVar(&c.flags.Sorter, "sorter", "", "Sorter binary")
	f.StringVar(&c.flags.Profile, "profile", "", "Sorter style profile")
	f.StringVar(&c.flags.NeutralDir, "neutral-dir", "", "Directory without project markers")
	f.StringVar(&c.flags.ReposBase, "repos-base", "", "Base directory of local checkouts")
	f.StringVar(&c.flags.ProjectName, "project-name", "", "Checkout name under the repos base")
	f.StringVar(&c.flags.Project, "project", "", "Full project path (overrides repos base and name)")
	f.StringVar(&c.flags.Module, "module", "", "Module whose grouping is reported")
	f.StringVar(&c.flags.TempDir, "temp-dir", "", "Directory for scratch files")
}

// Resolve layers the config file, environment and explicit flags over the defaults.
func (c *Config) Resolve(cmd *cobra.Command) error {
	if c.ConfigPath != "" {
		err := c.loadConfigFile()
		if err != nil {
			return errors.Wrap(err, "loading config")
		}
	}

	c.applyEnvOverrides()

	if cmd != nil {
		c.applyFlagOverrides(cmd)
	}

	return c.Validate()
}

// Validate checks that the values needed to run a probe are present.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Probe.Sorter) == "":
		return errors.New("sorter must not be empty")
	case strings.TrimSpace(c.Probe.Profile) == "":
		return errors.New("profile must not be empty")
	case strings.TrimSpace(c.Probe.NeutralDir) == "":
		return errors.New("neutral dir must not be empty")
	case strings.TrimSpace(c.Probe.ProjectPath()) == "":
		return errors.New("project path must not be empty")
	}
	return nil
}

// loadConfigFile loads configuration from a YAML or JSON file.
func (c *Config) loadConfigFile() error {
	data, err := os.ReadFile(c.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "reading config file")
	}

	// Unset keys keep their current value.
	probe := *c.Probe
	err = yaml.Unmarshal(data, &probe)
	if err != nil {
		return errors.Wrap(err, "parsing config file")
	}

	c.Probe = &probe
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvReposBase); v != "" {
		c.Probe.ReposBase = v
	}
	if v := os.Getenv(EnvProject); v != "" {
		c.Probe.Project = v
	}
	if v := os.Getenv(EnvSorter); v != "" {
		c.Probe.Sorter = v
	}
}

func (c *Config) applyFlagOverrides(cmd *cobra.Command) {
	f := cmd.Flags()
	overrides := []struct {
		name string
		dst  *string
		src  string
	}{
		{"sorter", &c.Probe.Sorter, c.flags.Sorter},
		{"profile", &c.Probe.Profile, c.flags.Profile},
		{"neutral-dir", &c.Probe.NeutralDir, c.flags.NeutralDir},
		{"repos-base", &c.Probe.ReposBase, c.flags.ReposBase},
		{"project-name", &c.Probe.ProjectName, c.flags.ProjectName},
		{"project", &c.Probe.Project, c.flags.Project},
		{"module", &c.Probe.Module, c.flags.Module},
		{"temp-dir", &c.Probe.TempDir, c.flags.TempDir},
	}

	for _, o := range overrides {
		if f.Changed(o.name) {
			*o.dst = o.src
		}
	}
}
