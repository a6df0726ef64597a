// pkg/version/version.go - build information stamped in with -ldflags.
//
//	go build -ldflags "-X github.com/windowsadmins/pcsetup/pkg/version.version=2025.10.1 \
//	  -X github.com/windowsadmins/pcsetup/pkg/version.revision=$(git rev-parse --short HEAD)"

package version

import (
	"fmt"
	"io"
	"runtime"
)

// These values are private which ensures they can only be set with the build flags.
var (
	version   = "dev"
	branch    = "unknown"
	revision  = "unknown"
	buildDate = "unknown"
)

// AppName is the program name shown in version output and the run report.
const AppName = "pcsetup"

// Info is the build information of the running binary.
type Info struct {
	Version   string `yaml:"version"`
	Branch    string `yaml:"branch"`
	Revision  string `yaml:"revision"`
	GoVersion string `yaml:"go_version"`
	BuildDate string `yaml:"build_date"`
}

// Version returns the build information of the running binary.
func Version() Info {
	return Info{
		Version:   version,
		Branch:    branch,
		Revision:  revision,
		GoVersion: runtime.Version(),
		BuildDate: buildDate,
	}
}

// String returns "pcsetup <version>".
func (i Info) String() string {
	return fmt.Sprintf("%s %s", AppName, i.Version)
}

// Fprint writes the short version line to w.
func Fprint(w io.Writer) {
	fmt.Fprintln(w, Version())
}

// FprintFull writes the version line followed by the build details.
func FprintFull(w io.Writer) {
	v := Version()
	fmt.Fprintln(w, v)
	fmt.Fprintf(w, "  branch: \t%s\n", v.Branch)
	fmt.Fprintf(w, "  revision: \t%s\n", v.Revision)
	fmt.Fprintf(w, "  build date: \t%s\n", v.BuildDate)
	fmt.Fprintf(w, "  go version: \t%s\n", v.GoVersion)
}
