// pkg/installer/installer.go - installs catalog packages through the package manager.

package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/windowsadmins/pcsetup/pkg/catalog"
	"github.com/windowsadmins/pcsetup/pkg/logging"
	"github.com/windowsadmins/pcsetup/pkg/runner"
	"github.com/windowsadmins/pcsetup/pkg/winget"
)

// ErrInstallFailed marks installs that ran but exited with a failure code.
var ErrInstallFailed = errors.New("install failed")

// Outcome is the classification of one install attempt.
type Outcome int

const (
	Succeeded Outcome = iota
	Failed
)

func (o Outcome) String() string {
	if o == Succeeded {
		return "Succeeded"
	}
	return "Failed"
}

// Result records one package install. It is produced once per package.
type Result struct {
	Item     catalog.Item
	Outcome  Outcome
	ExitCode int
	Err      error
}

// Batch totals a pass over the package list.
type Batch struct {
	Installed int
	Failed    int
	Results   []Result
}

// PackageManager performs the actual install invocation.
type PackageManager interface {
	Install(ctx context.Context, ids ...string) (runner.Result, error)
}

// Installer installs packages in order, pausing between them.
type Installer struct {
	pm    PackageManager
	log   *logging.Logger
	delay time.Duration

	// Sleep performs the pause between packages.
	Sleep func(time.Duration)
}

// New returns an Installer that waits delay after every package.
func New(pm PackageManager, log *logging.Logger, delay time.Duration) *Installer {
	return &Installer{
		pm:    pm,
		log:   log,
		delay: delay,
		Sleep: time.Sleep,
	}
}

// InstallOne installs a single package. Success requires the package manager
// to exit 0 or report the package as already present.
func (i *Installer) InstallOne(ctx context.Context, item catalog.Item) Result {
	i.log.Info("Installing: %s", item.DisplayName)

	res, err := i.pm.Install(ctx, item.Identifier)
	if err != nil {
		i.log.Error("Failed to install %s: %v", item.DisplayName, err)
		return Result{Item: item, Outcome: Failed, ExitCode: res.ExitCode, Err: err}
	}

	if !winget.Installed(res) {
		err = fmt.Errorf("%w: %s exited with %s", ErrInstallFailed, item.Identifier, res.HexCode())
		if last := res.LastLine(); last != "" {
			i.log.Error("Failed to install %s (exit code %s): %s", item.DisplayName, res.HexCode(), last)
		} else {
			i.log.Error("Failed to install %s (exit code %s)", item.DisplayName, res.HexCode())
		}
		return Result{Item: item, Outcome: Failed, ExitCode: res.ExitCode, Err: err}
	}

	if res.ExitCode != 0 {
		i.log.Success("Already installed: %s", item.DisplayName)
	} else {
		i.log.Success("Installed: %s", item.DisplayName)
	}
	return Result{Item: item, Outcome: Succeeded, ExitCode: res.ExitCode}
}

// InstallAll installs items strictly in order. A failure never skips later
// items, and the pause follows every item including the last.
func (i *Installer) InstallAll(ctx context.Context, items []catalog.Item) Batch {
	i.log.Banner(fmt.Sprintf("Installing %d packages", len(items)))

	b := Batch{Results: make([]Result, 0, len(items))}
	for _, item := range items {
		r := i.InstallOne(ctx, item)
		b.Results = append(b.Results, r)
		if r.Outcome == Succeeded {
			b.Installed++
		} else {
			b.Failed++
		}
		i.pause()
	}

	i.log.Banner(fmt.Sprintf("Package installation complete: %d installed, %d failed", b.Installed, b.Failed))
	return b
}

func (i *Installer) pause() {
	if i.Sleep == nil {
		time.Sleep(i.delay)
		return
	}
	i.Sleep(i.delay)
}

// InstallRedistributables installs every runtime library in one package
// manager call. Its outcome is kept out of the batch counters.
func (i *Installer) InstallRedistributables(ctx context.Context, ids []string) bool {
	i.log.Banner("Installing runtime redistributables")

	if len(ids) == 0 {
		i.log.Warning("No redistributables configured")
		return false
	}
	i.log.Info("Installing %d redistributables: %s", len(ids), strings.Join(ids, ", "))

	res, err := i.pm.Install(ctx, ids...)
	if err != nil {
		i.log.Error("Failed to install redistributables: %v", err)
		return false
	}
	if !winget.Installed(res) {
		i.log.Error("Redistributable installation failed (exit code %s)", res.HexCode())
		return false
	}
	i.log.Success("Runtime redistributables installed")
	return true
}
