// pkg/setup/setup.go - runs the provisioning steps in order.
//
// A run checks for administrator rights, makes sure winget is usable, refreshes
// its sources, installs the package catalog one package at a time, installs
// the runtime redistributables and enables the virtualization feature. Only
// the first two steps can abort the run.

package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/windowsadmins/pcsetup/pkg/catalog"
	"github.com/windowsadmins/pcsetup/pkg/config"
	"github.com/windowsadmins/pcsetup/pkg/features"
	"github.com/windowsadmins/pcsetup/pkg/installer"
	"github.com/windowsadmins/pcsetup/pkg/logging"
	"github.com/windowsadmins/pcsetup/pkg/preflight"
	"github.com/windowsadmins/pcsetup/pkg/version"
)

var (
	// ErrNotElevated is returned when the process lacks administrator rights.
	ErrNotElevated = errors.New("administrator privileges required")

	// ErrPackageManagerUnavailable is returned when winget is missing and could not be installed.
	ErrPackageManagerUnavailable = errors.New("package manager unavailable")
)

// PrivilegeCheck reports whether the process runs elevated.
type PrivilegeCheck func() (bool, error)

// PackageManager is the winget gateway as seen by a run.
type PackageManager interface {
	CheckAvailable(ctx context.Context) bool
	RefreshSources(ctx context.Context) bool
}

// BatchInstaller installs the package list and the redistributables.
type BatchInstaller interface {
	InstallAll(ctx context.Context, items []catalog.Item) installer.Batch
	InstallRedistributables(ctx context.Context, ids []string) bool
}

// FeatureEnabler turns on a Windows optional feature.
type FeatureEnabler interface {
	Enable(ctx context.Context, name string) (features.Outcome, error)
}

// Session is the state shared by every step of one run.
type Session struct {
	Log    *logging.Logger
	Config *config.Configuration
	Facts  preflight.Facts
	Start  time.Time
}

// NewSession starts a session at the logger's start time.
func NewSession(log *logging.Logger, cfg *config.Configuration, facts preflight.Facts) *Session {
	return &Session{Log: log, Config: cfg, Facts: facts, Start: log.Start()}
}

// Summary is the outcome of a run. Installed and Failed count catalog
// packages only; the auxiliary steps are reported separately.
type Summary struct {
	Installed          int
	Failed             int
	Start              time.Time
	Elapsed            time.Duration
	RedistributablesOK bool
	FeatureOK          bool
	RestartRequired    bool
	Results            []installer.Result
}

// Setup wires the steps of a run together.
type Setup struct {
	session    *Session
	catalog    *catalog.Catalog
	privileged PrivilegeCheck
	pm         PackageManager
	batch      BatchInstaller
	feature    FeatureEnabler

	// Console receives the log path notice printed when Run returns.
	Console io.Writer
}

// New returns a Setup for session. The feature step is skipped when feature is nil.
func New(session *Session, cat *catalog.Catalog, privileged PrivilegeCheck, pm PackageManager, batch BatchInstaller, feature FeatureEnabler) *Setup {
	return &Setup{
		session:    session,
		catalog:    cat,
		privileged: privileged,
		pm:         pm,
		batch:      batch,
		feature:    feature,
		Console:    os.Stdout,
	}
}

// Run performs every step. It returns ErrNotElevated or
// ErrPackageManagerUnavailable when the run aborts; package failures are
// reported in the Summary and never returned as an error.
func (s *Setup) Run(ctx context.Context) (Summary, error) {
	log := s.session.Log
	sum := Summary{Start: s.session.Start}
	defer s.printLogPath()

	log.Info("Starting %s", version.Version())
	if s.session.Facts.Platform != "" {
		log.Info("Platform: %s", s.session.Facts.Platform)
	}

	if err := s.checkPrivilege(); err != nil {
		sum.Elapsed = time.Since(sum.Start)
		return sum, err
	}

	if !s.pm.CheckAvailable(ctx) {
		log.Error("winget is required to continue; setup aborted")
		sum.Elapsed = time.Since(sum.Start)
		return sum, ErrPackageManagerUnavailable
	}
	s.pm.RefreshSources(ctx)

	b := s.batch.InstallAll(ctx, s.catalog.Packages)
	sum.Installed = b.Installed
	sum.Failed = b.Failed
	sum.Results = b.Results

	sum.RedistributablesOK = s.batch.InstallRedistributables(ctx, s.catalog.Redistributables)

	if s.feature != nil {
		out, err := s.feature.Enable(ctx, s.session.Config.FeatureName)
		sum.FeatureOK = err == nil && out.Enabled
		sum.RestartRequired = out.RestartNeeded
	}

	sum.Elapsed = time.Since(sum.Start)
	s.finish(sum)
	return sum, nil
}

func (s *Setup) checkPrivilege() error {
	log := s.session.Log

	ok, err := s.privileged()
	if err != nil {
		log.Error("Unable to determine administrator privileges: %v", err)
		return fmt.Errorf("%w: %v", ErrNotElevated, err)
	}
	if !ok {
		log.Error("pcsetup must be run as Administrator. Right-click the terminal and choose 'Run as administrator'.")
		return ErrNotElevated
	}
	log.Success("Running with administrator privileges")
	return nil
}

func (s *Setup) finish(sum Summary) {
	log := s.session.Log

	log.Banner("Setup complete")
	log.Info("Packages installed: %d", sum.Installed)
	if sum.Failed > 0 {
		log.Warning("Packages failed: %d", sum.Failed)
	} else {
		log.Info("Packages failed: 0")
	}
	log.Info("Log file: %s", log.Path())
	log.Info("Elapsed time: %s", FormatElapsed(sum.Elapsed))
	if sum.RestartRequired {
		log.Warning("Restart the computer to finish setup")
	}
}

// printLogPath tells the operator where the log is, whatever the outcome.
func (s *Setup) printLogPath() {
	if s.Console != nil {
		fmt.Fprintf(s.Console, "\nLog saved to: %s\n", s.session.Log.Path())
	}
}

// FormatElapsed renders d as hh:mm:ss.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
