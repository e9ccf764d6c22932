package probe

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"isortprobe/entities"
)

const (
	scratchPattern = "isort-probe-*.py"

	// How long to wait for the output pipes after the child is killed.
	killWaitDelay = time.Second
)

// Runner invokes the sorter against a scratch copy of the sample imports.
type Runner struct {
	Sorter  string
	Profile string
	TempDir string // Empty means os.TempDir().
	Source  string // Text written to the scratch file.

	logger *zap.Logger
}

// NewRunner creates a Runner from the probe configuration.
func NewRunner(cfg *entities.ProbeConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		Sorter:  cfg.Sorter,
		Profile: cfg.Profile,
		TempDir: cfg.TempDir,
		Source:  entities.SampleImports,
		logger:  logger,
	}
}

// RunProbe runs the sorter in dir and returns its standard output.
func (r *Runner) RunProbe(ctx context.Context, dir string, extraArgs []string) (string, error) {
	res, err := r.Run(ctx, dir, extraArgs)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Run runs the sorter in dir and returns everything the invocation produced.
// A non-zero exit status is recorded but not treated as an error.
func (r *Runner) Run(ctx context.Context, dir string, extraArgs []string) (*entities.ProbeResult, error) {
	path, err := r.writeScratch()
	if err != nil {
		return nil, err
	}
	defer r.removeScratch(path)

	args := BuildArgs(path, r.Profile, extraArgs)

	cmd := exec.CommandContext(ctx, r.Sorter, args...)
	cmd.Dir = dir
	cmd.WaitDelay = killWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running sorter",
		zap.String("sorter", r.Sorter),
		zap.Strings("args", args),
		zap.String("dir", dir),
	)

	exitCode := 0
	err = cmd.Run()
	if err != nil {
		// A killed child also reports an ExitError; cancellation takes precedence.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, "running sorter")
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, errors.Wrapf(err, "running sorter %q", r.Sorter)
		}
		exitCode = exitErr.ExitCode()
		r.logger.Debug("sorter exited non-zero",
			zap.Int("exit_code", exitCode),
			zap.String("stderr", stderr.String()),
		)
	}

	return &entities.ProbeResult{
		Dir:           dir,
		Args:          args,
		Stdout:        stdout.String(),
		Stderr:        stderr.String(),
		ExitCode:      exitCode,
		ModuleSection: -1,
	}, nil
}

// BuildArgs returns the sorter arguments for file.
func BuildArgs(file, profile string, extraArgs []string) []string {
	args := []string{"--stdout", file, "--profile", profile}
	return append(args, extraArgs...)
}

// writeScratch creates the scratch file and fills it with the source text.
func (r *Runner) writeScratch() (string, error) {
	f, err := os.CreateTemp(r.TempDir, scratchPattern)
	if err != nil {
		return "", errors.Wrap(err, "creating scratch file")
	}

	_, err = f.WriteString(r.Source)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		r.removeScratch(f.Name())
		return "", errors.Wrap(err, "writing scratch file")
	}

	return f.Name(), nil
}

func (r *Runner) removeScratch(path string) {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		r.logger.Warn("removing scratch file", zap.String("path", path), zap.Error(err))
	}
}
