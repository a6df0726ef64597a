// pkg/features/features.go - enables Windows optional features such as Hyper-V.

package features

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/windowsadmins/pcsetup/pkg/logging"
	"github.com/windowsadmins/pcsetup/pkg/runner"
	"github.com/windowsadmins/pcsetup/pkg/scripts"
)

var (
	// ErrEnableFailed is returned when the enable command exits non-zero.
	ErrEnableFailed = errors.New("feature enable failed")

	// ErrStateUnavailable is returned where optional feature state cannot be queried.
	ErrStateUnavailable = errors.New("feature state unavailable")

	// ErrUnknownFeature is returned when no optional feature has the requested name.
	ErrUnknownFeature = errors.New("unknown optional feature")
)

// State mirrors the InstallState values of Win32_OptionalFeature.
type State uint32

const (
	StateEnabled  State = 1
	StateDisabled State = 2
	StateAbsent   State = 3
	StateUnknown  State = 4
)

func (s State) String() string {
	switch s {
	case StateEnabled:
		return "Enabled"
	case StateDisabled:
		return "Disabled"
	case StateAbsent:
		return "Absent"
	default:
		return "Unknown"
	}
}

// Outcome is the result of an enable attempt.
type Outcome struct {
	Enabled       bool
	RestartNeeded bool
}

// ScriptHost runs PowerShell commands.
type ScriptHost interface {
	Run(ctx context.Context, command string) (runner.Result, error)
}

// Enabler turns on optional features through DISM's PowerShell cmdlets.
type Enabler struct {
	host ScriptHost
	log  *logging.Logger

	// State reads the current install state before enabling.
	State func(name string) (State, error)
}

// New returns an Enabler that queries feature state through WMI.
func New(host ScriptHost, log *logging.Logger) *Enabler {
	return &Enabler{host: host, log: log, State: QueryState}
}

// EnableCommand builds the PowerShell command that enables name with all its
// parent features and prints whether a restart is needed.
func EnableCommand(name string) string {
	return fmt.Sprintf(
		"$r = Enable-WindowsOptionalFeature -Online -FeatureName %s -All -NoRestart -ErrorAction Stop; $r.RestartNeeded",
		scripts.Quote(name))
}

// Enable enables the feature name. Failures are logged and returned; callers
// treat them as recoverable.
func (e *Enabler) Enable(ctx context.Context, name string) (Outcome, error) {
	e.log.Banner(fmt.Sprintf("Enabling Windows feature %s", name))

	if e.State != nil {
		if st, err := e.State(name); err == nil {
			e.log.Info("Current state of %s: %s", name, st)
		} else if !errors.Is(err, ErrStateUnavailable) {
			e.log.Info("Could not read state of %s: %v", name, err)
		}
	}

	if e.host == nil {
		err := fmt.Errorf("enable %s: %w", name, scripts.ErrNoPowerShell)
		e.log.Error("Failed to enable %s: %v", name, err)
		return Outcome{}, err
	}

	res, err := e.host.Run(ctx, EnableCommand(name))
	if err != nil {
		e.log.Error("Failed to enable %s: %v", name, err)
		return Outcome{}, fmt.Errorf("enable %s: %w", name, err)
	}
	if !res.Succeeded() {
		if last := res.LastLine(); last != "" {
			e.log.Error("Failed to enable %s (exit code %s): %s", name, res.HexCode(), last)
		} else {
			e.log.Error("Failed to enable %s (exit code %s)", name, res.HexCode())
		}
		return Outcome{}, fmt.Errorf("%w: %s exited with %s", ErrEnableFailed, name, res.HexCode())
	}

	out := Outcome{Enabled: true, RestartNeeded: restartNeeded(res)}
	e.log.Success("%s enabled", name)
	if out.RestartNeeded {
		e.log.Warning("A restart is required to finish enabling %s", name)
	}
	return out, nil
}

// restartNeeded reads the RestartNeeded value printed last by EnableCommand.
func restartNeeded(res runner.Result) bool {
	v, err := strconv.ParseBool(res.LastLine())
	return err == nil && v
}
