// pkg/runner/runner.go - executes external commands and reports how they ended.
//
// A Runner separates two outcomes that callers must not conflate: the command
// could not be started at all (an invocation fault, returned as an error that
// wraps ErrInvocation), and the command ran but exited non-zero (reported in
// Result.ExitCode with a nil error).

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrInvocation marks failures to start or supervise a command.
var ErrInvocation = errors.New("command invocation failed")

// Result describes a finished command.
type Result struct {
	Command  string
	ExitCode int
	Output   string
	Duration time.Duration
}

// Succeeded reports whether the command exited with status 0.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// HexCode formats the exit code the way Windows tools document them.
func (r Result) HexCode() string {
	return fmt.Sprintf("0x%08X", uint32(r.ExitCode))
}

// Lines returns the non-empty output lines with BOMs and colour resets removed.
func (r Result) Lines() []string {
	var lines []string
	for _, line := range strings.Split(r.Output, "\n") {
		txt := strings.TrimSpace(line)
		txt = strings.TrimPrefix(txt, "\ufeff")
		txt = strings.ReplaceAll(txt, "\u001b[0m", "")
		if txt == "" {
			continue
		}
		lines = append(lines, txt)
	}
	return lines
}

// LastLine returns the final non-empty output line, or "".
func (r Result) LastLine() string {
	lines := r.Lines()
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

// Runner runs an external command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Func adapts a plain function to the Runner interface.
type Func func(ctx context.Context, name string, args ...string) (Result, error)

// Run calls f.
func (f Func) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return f(ctx, name, args...)
}

// Exec runs commands with os/exec, capturing stdout and stderr together.
type Exec struct{}

// New returns the os/exec backed Runner.
func New() Runner {
	return Exec{}
}

// Run executes name with args. No timeout is applied; only ctx cancellation
// stops a running command.
func (Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	hideWindow(cmd)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Command:  CommandLine(name, args...),
		Output:   out.String(),
		Duration: time.Since(start),
	}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, fmt.Errorf("%w: %s: %v", ErrInvocation, name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	res.ExitCode = -1
	return res, fmt.Errorf("%w: %s: %v", ErrInvocation, name, err)
}

// CommandLine renders a command for log messages, quoting arguments with spaces.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
