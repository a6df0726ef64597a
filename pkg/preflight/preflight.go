// pkg/preflight/preflight.go - checks made before anything is installed.

package preflight

import (
	"context"
	"os"
	"os/user"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/windowsadmins/pcsetup/pkg/logging"
)

// VersionQuery reports the version of the PowerShell host used by the run.
type VersionQuery interface {
	Version(ctx context.Context) (string, error)
}

// Facts describe the machine being provisioned.
type Facts struct {
	User              string
	Computer          string
	PowerShellVersion string
	Platform          string
}

// Header returns the subset of facts written at the top of the log.
func (f Facts) Header() logging.Header {
	return logging.Header{
		User:              f.User,
		Computer:          f.Computer,
		PowerShellVersion: f.PowerShellVersion,
	}
}

// GatherFacts collects the invoking user, host name, platform and PowerShell
// version. Missing values are left empty; ps may be nil.
func GatherFacts(ctx context.Context, ps VersionQuery) Facts {
	var f Facts

	f.User = os.Getenv("USERNAME")
	if f.User == "" {
		if u, err := user.Current(); err == nil {
			f.User = u.Username
		}
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		f.Computer = info.Hostname
		f.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
	}
	if f.Computer == "" {
		f.Computer, _ = os.Hostname()
	}

	if ps != nil {
		if v, err := ps.Version(ctx); err == nil {
			f.PowerShellVersion = v
		}
	}
	return f
}
