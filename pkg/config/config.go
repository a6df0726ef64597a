// pkg/config/config.go - configuration settings for pcsetup.
//
// All values are compiled in. The only runtime override is the log path
// given on the command line.

package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultLogFileName is created on the invoking user's desktop.
	DefaultLogFileName = "PC-Setup-Log.txt"

	// WingetInstallerURL serves the App Installer bundle that ships winget.
	WingetInstallerURL = "https://aka.ms/getwinget"

	// MinWingetVersion is the oldest winget known to accept every install flag we pass.
	MinWingetVersion = "1.6.0"

	// DefaultFeature is the Windows optional feature enabled after installs.
	DefaultFeature = "Microsoft-Hyper-V"

	// DefaultInstallDelay paces consecutive package installs.
	DefaultInstallDelay = 500 * time.Millisecond
)

// Configuration holds the settings for one provisioning run.
type Configuration struct {
	LogPath              string        `yaml:"LogPath"`
	WingetPath           string        `yaml:"WingetPath"`
	WingetInstallerURL   string        `yaml:"WingetInstallerURL"`
	MinWingetVersion     string        `yaml:"MinWingetVersion"`
	PowerShellCandidates []string      `yaml:"PowerShellCandidates"`
	FeatureName          string        `yaml:"FeatureName"`
	InstallDelay         time.Duration `yaml:"InstallDelay"`
	DownloadDir          string        `yaml:"DownloadDir"`
}

// GetDefaultConfig provides the compiled-in configuration.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		LogPath:              DefaultLogPath(),
		WingetPath:           "winget",
		WingetInstallerURL:   WingetInstallerURL,
		MinWingetVersion:     MinWingetVersion,
		PowerShellCandidates: []string{"powershell.exe", "pwsh.exe"},
		FeatureName:          DefaultFeature,
		InstallDelay:         DefaultInstallDelay,
		DownloadDir:          os.TempDir(),
	}
}

// DefaultLogPath returns <home>\Desktop\PC-Setup-Log.txt, falling back to the
// working directory when no home directory is known.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultLogFileName
	}
	return filepath.Join(home, "Desktop", DefaultLogFileName)
}
