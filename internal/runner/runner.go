// Package runner executes external tools and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Result is the captured outcome of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner starts a command in dir and waits for it to exit.
//
// A process that runs and exits non-zero is not an error: its exit code is
// reported in Result and callers classify the outcome from the output.
// Errors are reserved for processes that could not be started or were
// cancelled through ctx.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// Exec runs commands with os/exec.
type Exec struct{}

// Run implements Runner.
func (Exec) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("dir", dir).Str("cmd", CommandLine(name, args...)).Msg("running")

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			res.ExitCode = exitErr.ExitCode()
			log.Debug().Int("exit", res.ExitCode).Str("cmd", name).Msg("exited non-zero")
			return res, nil
		}
		return res, fmt.Errorf("%s: %w", CommandLine(name, args...), err)
	}
	return res, nil
}

// CommandLine joins a command and its arguments for display.
func CommandLine(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// SplitLines trims s and splits it on newlines. An empty or blank s yields
// a single empty line.
func SplitLines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

// LastLine returns the last line of s after trimming surrounding whitespace.
func LastLine(s string) string {
	lines := SplitLines(s)
	return strings.TrimSpace(lines[len(lines)-1])
}
