// pkg/winget/winget.go - drives the winget command-line client.

package winget

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	version "github.com/hashicorp/go-version"

	"github.com/windowsadmins/pcsetup/pkg/config"
	"github.com/windowsadmins/pcsetup/pkg/logging"
	"github.com/windowsadmins/pcsetup/pkg/runner"
	"github.com/windowsadmins/pcsetup/pkg/scripts"
)

// winget reports these HRESULTs when there is nothing left to install.
const (
	ExitUpdateNotApplicable     uint32 = 0x8A15002B
	ExitPackageAlreadyInstalled uint32 = 0x8A150061
)

// bundleName is the file the App Installer download is saved as.
const bundleName = "Microsoft.DesktopAppInstaller.msixbundle"

// Installed reports whether an install invocation left the package in place.
func Installed(res runner.Result) bool {
	switch uint32(res.ExitCode) {
	case 0, ExitUpdateNotApplicable, ExitPackageAlreadyInstalled:
		return true
	}
	return false
}

// Downloader fetches the App Installer bundle.
type Downloader interface {
	File(ctx context.Context, url, dest string) (int64, error)
}

// ScriptHost runs the Add-AppxPackage command.
type ScriptHost interface {
	Run(ctx context.Context, command string) (runner.Result, error)
}

// Client wraps the winget executable.
type Client struct {
	runner       runner.Runner
	log          *logging.Logger
	exe          string
	installerURL string
	minVersion   string
	downloadDir  string
	downloader   Downloader
	ps           ScriptHost
}

// New returns a Client configured from cfg. ps may be nil when no PowerShell
// host exists, in which case winget cannot be self-installed.
func New(r runner.Runner, log *logging.Logger, cfg *config.Configuration, d Downloader, ps ScriptHost) *Client {
	return &Client{
		runner:       r,
		log:          log,
		exe:          cfg.WingetPath,
		installerURL: cfg.WingetInstallerURL,
		minVersion:   cfg.MinWingetVersion,
		downloadDir:  cfg.DownloadDir,
		downloader:   d,
		ps:           ps,
	}
}

// Version returns the string printed by `winget --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := c.runner.Run(ctx, c.exe, "--version")
	if err != nil {
		return "", err
	}
	if !res.Succeeded() {
		return "", fmt.Errorf("winget --version exited with %s", res.HexCode())
	}
	v := res.LastLine()
	if v == "" {
		return "", errors.New("winget --version printed nothing")
	}
	return v, nil
}

// CheckAvailable confirms winget runs, installing App Installer once if it does not.
func (c *Client) CheckAvailable(ctx context.Context) bool {
	c.log.Info("Checking for winget...")

	v, err := c.Version(ctx)
	if err == nil {
		c.log.Success("winget is available (version %s)", v)
		c.checkMinimum(v)
		return true
	}

	c.log.Warning("winget is not available (%v); attempting to install App Installer", err)
	if err := c.selfInstall(ctx); err != nil {
		c.log.Error("Failed to install winget: %v", err)
		return false
	}
	c.log.Success("winget installed successfully")
	return true
}

func (c *Client) checkMinimum(v string) {
	have, err := version.NewVersion(v)
	if err != nil {
		c.log.Warning("Unable to parse winget version %q: %v", v, err)
		return
	}
	want, err := version.NewVersion(c.minVersion)
	if err != nil {
		return
	}
	if have.LessThan(want) {
		c.log.Warning("winget %s is older than %s; some install options may be rejected", v, c.minVersion)
	}
}

func (c *Client) selfInstall(ctx context.Context) error {
	if c.downloader == nil {
		return errors.New("no downloader configured")
	}
	if c.ps == nil {
		return fmt.Errorf("Add-AppxPackage needs PowerShell: %w", scripts.ErrNoPowerShell)
	}

	dest := filepath.Join(c.downloadDir, bundleName)
	c.log.Info("Downloading App Installer from %s", c.installerURL)
	n, err := c.downloader.File(ctx, c.installerURL, dest)
	if err != nil {
		return fmt.Errorf("download App Installer: %w", err)
	}
	defer os.Remove(dest)
	c.log.Info("Downloaded %d bytes to %s", n, dest)

	res, err := c.ps.Run(ctx, "Add-AppxPackage -Path "+scripts.Quote(dest))
	if err != nil {
		return fmt.Errorf("Add-AppxPackage: %w", err)
	}
	if !res.Succeeded() {
		return fmt.Errorf("Add-AppxPackage exited with %s: %s", res.HexCode(), res.LastLine())
	}
	return nil
}

// RefreshSources runs `winget source update`. Failures are logged as warnings only.
func (c *Client) RefreshSources(ctx context.Context) bool {
	c.log.Info("Updating winget sources...")

	res, err := c.runner.Run(ctx, c.exe, "source", "update")
	if err != nil {
		c.log.Warning("Failed to update winget sources: %v", err)
		return false
	}
	if !res.Succeeded() {
		c.log.Warning("winget source update exited with %s; continuing", res.HexCode())
		return false
	}
	c.log.Success("winget sources updated")
	return true
}

// InstallArgs builds the install command line. A single identifier is
// matched with --id; several are passed as positional queries in one call.
func InstallArgs(ids ...string) []string {
	args := []string{"install"}
	if len(ids) == 1 {
		args = append(args, "--id", ids[0])
	} else {
		args = append(args, ids...)
	}
	return append(args,
		"--exact",
		"--silent",
		"--accept-package-agreements",
		"--accept-source-agreements",
	)
}

// Install runs one winget install for ids. The error is non-nil only when
// winget could not be invoked; exit codes are left to the caller.
func (c *Client) Install(ctx context.Context, ids ...string) (runner.Result, error) {
	if len(ids) == 0 {
		return runner.Result{}, errors.New("no package identifiers given")
	}
	return c.runner.Run(ctx, c.exe, InstallArgs(ids...)...)
}
