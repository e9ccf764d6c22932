package probe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"isortprobe/entities"
)

// writeSorter writes an executable shell script standing in for the sorter.
func writeSorter(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake sorter needs /bin/sh")
	}

	path := filepath.Join(t.TempDir(), "fake-isort")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func newTestRunner(t *testing.T, sorter string) (*Runner, string) {
	t.Helper()
	scratchDir := t.TempDir()
	cfg := &entities.ProbeConfig{
		Sorter:  sorter,
		Profile: "black",
		TempDir: scratchDir,
	}
	return NewRunner(cfg, zap.NewNop()), scratchDir
}

func assertNoScratchLeft(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch files left behind")
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name      string
		extraArgs []string
		want      []string
	}{
		{
			name: "no extra args",
			want: []string{"--stdout", "/tmp/x.py", "--profile", "black"},
		},
		{
			name:      "src override",
			extraArgs: []string{"--src", "/repos/airflow"},
			want:      []string{"--stdout", "/tmp/x.py", "--profile", "black", "--src", "/repos/airflow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildArgs("/tmp/x.py", "black", tt.extraArgs))
		})
	}
}

func TestRunProbeReturnsStdout(t *testing.T) {
	sorter := writeSorter(t, `cat "$2"; echo "ignored" >&2`)
	runner, scratchDir := newTestRunner(t, sorter)

	out, err := runner.RunProbe(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, entities.SampleImports, out)
	assertNoScratchLeft(t, scratchDir)
}

func TestRunScratchContentAndArgs(t *testing.T) {
	record := filepath.Join(t.TempDir(), "record")
	copyPath := filepath.Join(t.TempDir(), "copy.py")
	sorter := writeSorter(t, `
pwd -P > "`+record+`"
for a in "$@"; do printf '%s\n' "$a" >> "`+record+`"; done
cat "$2" > "`+copyPath+`"`)
	runner, scratchDir := newTestRunner(t, sorter)

	workDir := t.TempDir()
	res, err := runner.Run(context.Background(), workDir, []string{"--src", "/repos/airflow"})
	require.NoError(t, err)

	copied, err := os.ReadFile(copyPath)
	require.NoError(t, err)
	assert.Equal(t, entities.SampleImports, string(copied))

	recorded, err := os.ReadFile(record)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(recorded), "\n"), "\n")
	require.Len(t, lines, 7)

	wantDir, err := filepath.EvalSymlinks(workDir)
	require.NoError(t, err)
	assert.Equal(t, wantDir, lines[0])

	assert.Equal(t, res.Args, lines[1:])
	assert.Equal(t, "--stdout", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ".py"))
	assert.Equal(t, scratchDir, filepath.Dir(lines[2]))
	assert.Equal(t, []string{"--profile", "black", "--src", "/repos/airflow"}, lines[3:])

	assert.Equal(t, workDir, res.Dir)
	assert.Equal(t, 0, res.ExitCode)
	assertNoScratchLeft(t, scratchDir)
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	sorter := writeSorter(t, `echo "partial"; echo "boom" >&2; exit 3`)
	runner, scratchDir := newTestRunner(t, sorter)

	res, err := runner.Run(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, "partial\n", res.Stdout)
	assert.Equal(t, "boom\n", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
	assertNoScratchLeft(t, scratchDir)
}

func TestRunMissingSorter(t *testing.T) {
	runner, scratchDir := newTestRunner(t, filepath.Join(t.TempDir(), "no-such-isort"))

	out, err := runner.RunProbe(context.Background(), t.TempDir(), nil)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), "running sorter")
	assertNoScratchLeft(t, scratchDir)
}

func TestRunMissingSorterOnPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	runner, scratchDir := newTestRunner(t, "isort")

	_, err := runner.Run(context.Background(), t.TempDir(), nil)
	require.Error(t, err)
	assertNoScratchLeft(t, scratchDir)
}

func TestRunScratchDirMissing(t *testing.T) {
	sorter := writeSorter(t, `cat "$2"`)
	runner, _ := newTestRunner(t, sorter)
	runner.TempDir = filepath.Join(t.TempDir(), "gone")

	_, err := runner.Run(context.Background(), t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating scratch file")
}

func TestRunCancelledContext(t *testing.T) {
	sorter := writeSorter(t, `cat "$2"`)
	runner, scratchDir := newTestRunner(t, sorter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, t.TempDir(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assertNoScratchLeft(t, scratchDir)
}

// cancelWhenExists cancels once the sorter signals it has started by creating path.
func cancelWhenExists(t *testing.T, path string, cancel context.CancelFunc) {
	t.Helper()
	go func() {
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			if _, err := os.Stat(path); err == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		cancel()
	}()
}

func TestRunCancelledWhileSorterRuns(t *testing.T) {
	started := filepath.Join(t.TempDir(), "started")
	// The backgrounded sleep keeps the output pipes open after the shell is killed.
	sorter := writeSorter(t, `touch "`+started+`"; sleep 30 & wait; cat "$2"`)
	runner, scratchDir := newTestRunner(t, sorter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelWhenExists(t, started, cancel)

	begin := time.Now()
	res, err := runner.Run(ctx, t.TempDir(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
	assert.Less(t, time.Since(begin), 15*time.Second)
	assertNoScratchLeft(t, scratchDir)
}

func TestRunDeadlineWhileSorterRuns(t *testing.T) {
	sorter := writeSorter(t, `sleep 30; cat "$2"`)
	runner, scratchDir := newTestRunner(t, sorter)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out, err := runner.RunProbe(ctx, t.TempDir(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "running sorter")
	assert.Empty(t, out)
	assertNoScratchLeft(t, scratchDir)
}
