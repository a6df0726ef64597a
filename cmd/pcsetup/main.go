// cmd/pcsetup/main.go - provisions a fresh Windows PC: applications,
// runtime redistributables and Hyper-V, installed through winget.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/pcsetup/pkg/catalog"
	"github.com/windowsadmins/pcsetup/pkg/config"
	"github.com/windowsadmins/pcsetup/pkg/download"
	"github.com/windowsadmins/pcsetup/pkg/features"
	"github.com/windowsadmins/pcsetup/pkg/installer"
	"github.com/windowsadmins/pcsetup/pkg/logging"
	"github.com/windowsadmins/pcsetup/pkg/preflight"
	"github.com/windowsadmins/pcsetup/pkg/reporting"
	"github.com/windowsadmins/pcsetup/pkg/runner"
	"github.com/windowsadmins/pcsetup/pkg/scripts"
	"github.com/windowsadmins/pcsetup/pkg/setup"
	"github.com/windowsadmins/pcsetup/pkg/version"
	"github.com/windowsadmins/pcsetup/pkg/winget"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.GetDefaultConfig()

	logPath := pflag.StringP("log-path", "l", cfg.LogPath, "Path of the setup log file.")
	showConfig := pflag.Bool("show-config", false, "Display the effective configuration and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")
	pflag.Usage = func() {
		version.Fprint(os.Stderr)
		fmt.Fprintf(os.Stderr, "Usage: %s [--log-path PATH | PATH]\n\n", version.AppName)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	// A bare argument is accepted as the log path.
	if pflag.NArg() > 0 && !pflag.CommandLine.Changed("log-path") {
		*logPath = pflag.Arg(0)
	}
	cfg.LogPath = *logPath

	if *versionFlag {
		version.FprintFull(os.Stdout)
		return 0
	}
	if *showConfig {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode configuration: %v\n", err)
			return 1
		}
		fmt.Print(string(out))
		return 0
	}

	cat, err := catalog.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load package catalog: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := runner.New()
	ps := powerShell(r, cfg)

	var versionQuery preflight.VersionQuery
	if ps != nil {
		versionQuery = ps
	}
	facts := preflight.GatherFacts(ctx, versionQuery)

	logger := logging.New(os.Stdout)
	if err := logger.Initialize(cfg.LogPath, facts.Header()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	defer logger.Close()

	// Handle system signals for graceful shutdown.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		interrupt(logger, cancel, <-signalChan)
		os.Exit(1)
	}()

	var (
		host       winget.ScriptHost
		featureRun features.ScriptHost
	)
	if ps != nil {
		host, featureRun = ps, ps
	} else {
		logger.Warning("No PowerShell host found (tried %v); App Installer and feature steps will fail", cfg.PowerShellCandidates)
	}

	client := winget.New(r, logger, cfg, download.New(), host)
	inst := installer.New(client, logger, cfg.InstallDelay)
	enabler := features.New(featureRun, logger)

	session := setup.NewSession(logger, cfg, facts)
	sum, err := setup.New(session, cat, preflight.IsElevated, client, inst, enabler).Run(ctx)

	writeReport(logger, cfg, facts, sum, err)

	if err != nil && !isFatalStep(err) {
		logger.Error("Setup failed: %v", err)
	}
	return exitCode(err)
}

// isFatalStep reports whether err is one of the aborts setup already logged.
func isFatalStep(err error) bool {
	return errors.Is(err, setup.ErrNotElevated) || errors.Is(err, setup.ErrPackageManagerUnavailable)
}

// exitCode maps the result of a run to the process status. Package failures
// are not errors, so a completed run always exits 0.
func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

// interrupt records sig before cancelling the run, so the log shows the
// interruption ahead of any install the cancellation aborts.
func interrupt(logger *logging.Logger, cancel context.CancelFunc, sig os.Signal) {
	logger.Warning("Signal received, setup interrupted: %s", sig.String())
	cancel()
	logger.Close()
}

// powerShell returns the first available PowerShell host, or nil.
func powerShell(r runner.Runner, cfg *config.Configuration) *scripts.PowerShell {
	exe, err := scripts.LookPath(cfg.PowerShellCandidates)
	if err != nil {
		return nil
	}
	return scripts.New(r, exe)
}

// writeReport stores the run summary next to the log. Failures only warn.
func writeReport(logger *logging.Logger, cfg *config.Configuration, facts preflight.Facts, sum setup.Summary, runErr error) {
	session := reporting.NewSession(sum.Start, sum.Elapsed)
	if runErr != nil {
		session.Status = reporting.StatusAborted
		session.Error = runErr.Error()
	}
	session.Hostname = facts.Computer
	session.User = facts.User
	session.Platform = facts.Platform
	session.PowerShellVersion = facts.PowerShellVersion
	session.LogPath = logger.Path()
	session.Installed = sum.Installed
	session.Failed = sum.Failed
	session.RedistributablesOK = sum.RedistributablesOK
	session.FeatureOK = sum.FeatureOK
	session.RestartRequired = sum.RestartRequired

	report := reporting.Report{
		Build:   version.Version(),
		Session: session,
		Items:   reporting.ItemsFromResults(sum.Results),
		Config:  cfg,
	}
	path := reporting.SidecarPath(logger.Path())
	if err := reporting.Write(path, report); err != nil {
		logger.Warning("Failed to write run report: %v", err)
		return
	}
	logger.LogFileOnly(logging.LevelInfo, fmt.Sprintf("Run report written to %s", path))
}
