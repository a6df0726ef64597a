// pkg/scripts/powershell.go - runs PowerShell commands for the setup steps.

package scripts

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/windowsadmins/pcsetup/pkg/runner"
)

// ErrNoPowerShell is returned when none of the candidate executables exist.
var ErrNoPowerShell = errors.New("no PowerShell executable found")

// LookPath returns the first candidate found on PATH.
func LookPath(candidates []string) (string, error) {
	for _, c := range candidates {
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrNoPowerShell, strings.Join(candidates, ", "))
}

// PowerShell executes inline commands through a PowerShell host.
type PowerShell struct {
	runner runner.Runner
	exe    string
}

// New returns a PowerShell bound to the executable exe.
func New(r runner.Runner, exe string) *PowerShell {
	return &PowerShell{runner: r, exe: exe}
}

// Executable returns the host the commands run under.
func (p *PowerShell) Executable() string {
	return p.exe
}

// Run executes command non-interactively, without profiles or execution policy prompts.
func (p *PowerShell) Run(ctx context.Context, command string) (runner.Result, error) {
	return p.runner.Run(ctx, p.exe,
		"-NoLogo",
		"-NoProfile",
		"-NonInteractive",
		"-ExecutionPolicy", "Bypass",
		"-Command", command,
	)
}

// Version reports the host's $PSVersionTable version.
func (p *PowerShell) Version(ctx context.Context) (string, error) {
	res, err := p.Run(ctx, "$PSVersionTable.PSVersion.ToString()")
	if err != nil {
		return "", err
	}
	if !res.Succeeded() {
		return "", fmt.Errorf("version query exited with %s", res.HexCode())
	}
	v := res.LastLine()
	if v == "" {
		return "", errors.New("version query returned no output")
	}
	return v, nil
}

// Quote wraps s in single quotes for use as a PowerShell string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
