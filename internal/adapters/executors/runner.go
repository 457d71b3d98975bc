// Package executors implements the task executors for each build target kind
// over a shared scoped subprocess runner.
package executors

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/farm-framework/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CommandRunner = (*Runner)(nil)

// Runner executes external tooling as a scoped resource. The spawned process
// is placed in its own process group and the whole group is terminated when
// the context is cancelled, so cancelled stages do not leave orphans behind.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes command in dir. The extra environment entries override the
// inherited process environment.
func (r *Runner) Run(ctx context.Context, dir string, env []string, command []string) error {
	if len(command) == 0 {
		return nil
	}

	name := command[0]
	args := command[1:]

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // tool invocation from project config
	cmd.Dir = dir
	cmd.Env = mergeEnvironment(os.Environ(), env)

	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	cmd.Stdout = &logWriter{logger: r.logger, level: "info"}
	cmd.Stderr = &logWriter{logger: r.logger, level: "error"}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		wrapped := zerr.With(zerr.Wrap(err, "command failed"), "command", name)
		return zerr.With(wrapped, "exit_code", exitCode)
	}

	return nil
}

type logWriter struct {
	logger ports.Logger
	level  string
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for _, line := range lines {
		if w.level == "info" {
			w.logger.Info(line)
		} else {
			w.logger.Error(zerr.New(line))
		}
	}
	return len(p), nil
}

// mergeEnvironment overlays extra entries onto the base environment.
func mergeEnvironment(base, extra []string) []string {
	envMap := make(map[string]string, len(base)+len(extra))
	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for _, entry := range extra {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}
