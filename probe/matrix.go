// Package probe runs an external import sorter against a fixed block of
// Python imports under different working directories and reports how the
// detected project context changes the grouping.
//
// Probes run one at a time. Each probe owns a scratch file that is removed
// before the probe returns.
package probe

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"isortprobe/entities"
)

// DefaultMatrix returns the three probe cases: no context, project context
// and explicit --src.
func DefaultMatrix(cfg *entities.ProbeConfig) []entities.ProbeCase {
	project := cfg.ProjectPath()
	module := cfg.Module

	return []entities.ProbeCase{
		{
			Name:        "no_context",
			Title:       "NO PROJECT CONTEXT",
			Dir:         cfg.NeutralDir,
			Description: fmt.Sprintf("Running from %s (no config files, no project detection)", cfg.NeutralDir),
			Expectation: fmt.Sprintf("'%s' is sorted alphabetically with other THIRDPARTY imports", module),
		},
		{
			Name:        "with_context",
			Title:       "WITH PROJECT CONTEXT (from your project)",
			Dir:         project,
			Description: fmt.Sprintf("Running from %s (detects pyproject.toml)", project),
			Expectation: fmt.Sprintf("'%s' is separated after FIRSTPARTY imports", module),
		},
		{
			Name:        "explicit_src",
			Title:       "EXPLICIT src_paths (simulating project context)",
			Dir:         cfg.NeutralDir,
			ExtraArgs:   []string{"--src", project},
			Description: fmt.Sprintf("Running from %s but with --src flag pointing to your project", cfg.NeutralDir),
			Expectation: "Same behavior as Test 2 - src_paths is the key!",
		},
	}
}

// Matrix runs a list of probe cases and prints the report.
type Matrix struct {
	Cases  []entities.ProbeCase
	Runner *Runner
	Config *entities.ProbeConfig

	logger *zap.Logger
}

// NewMatrix creates a Matrix with the default cases for cfg.
func NewMatrix(cfg *entities.ProbeConfig, runner *Runner, logger *zap.Logger) *Matrix {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matrix{
		Cases:  DefaultMatrix(cfg),
		Runner: runner,
		Config: cfg,
		logger: logger,
	}
}

// Run executes every case in order, printing to w, and stops at the first fault.
func (m *Matrix) Run(ctx context.Context, w io.Writer) ([]entities.ProbeResult, error) {
	report := NewReporter(w)
	report.Header()

	results := make([]entities.ProbeResult, 0, len(m.Cases))
	for i, pc := range m.Cases {
		if err := ctx.Err(); err != nil {
			return results, errors.Wrapf(err, "probe %s", pc.Name)
		}

		m.logger.Info("running probe", zap.String("case", pc.Name), zap.String("dir", pc.Dir))

		res, err := m.Runner.Run(ctx, pc.Dir, pc.ExtraArgs)
		if err != nil {
			return results, errors.Wrapf(err, "probe %s", pc.Name)
		}
		res.Case = pc.Name

		if m.Config.Module != "" {
			sections, err := CollectSections(res.Stdout)
			if err != nil {
				return results, errors.Wrapf(err, "probe %s", pc.Name)
			}
			res.ModuleSection = FindModuleSection(sections, m.Config.Module)
		}

		m.logger.Debug("probe finished",
			zap.String("case", pc.Name),
			zap.Int("exit_code", res.ExitCode),
			zap.Int("module_section", res.ModuleSection),
		)

		report.Case(i, pc, res, m.Config.Module)
		results = append(results, *res)
	}

	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(err, "probe matrix")
	}

	report.Summary(m.Config.ProjectPath(), m.Config.Module)
	report.HowTo(m.Config.ProjectPath(), m.Config.Profile)

	return results, report.Err()
}
