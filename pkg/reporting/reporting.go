// pkg/reporting/reporting.go - YAML run report written next to the setup log
//
// The report carries the same facts as the text log in a form that inventory
// and monitoring tools can read without scraping log lines.

package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/pcsetup/pkg/config"
	"github.com/windowsadmins/pcsetup/pkg/installer"
	"github.com/windowsadmins/pcsetup/pkg/version"
)

// Status values recorded for a run.
const (
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
)

// Item status values.
const (
	ItemInstalled = "installed"
	ItemFailed    = "failed"
)

const reportSuffix = ".report.yaml"

// SessionRecord summarizes one run.
type SessionRecord struct {
	StartTime          string `yaml:"start_time"`
	EndTime            string `yaml:"end_time"`
	Duration           int64  `yaml:"duration_seconds"`
	Status             string `yaml:"status"`
	Error              string `yaml:"error,omitempty"`
	Hostname           string `yaml:"hostname"`
	User               string `yaml:"user"`
	Platform           string `yaml:"platform,omitempty"`
	PowerShellVersion  string `yaml:"powershell_version"`
	LogPath            string `yaml:"log_path"`
	Installed          int    `yaml:"installed"`
	Failed             int    `yaml:"failed"`
	RedistributablesOK bool   `yaml:"redistributables_ok"`
	FeatureOK          bool   `yaml:"feature_ok"`
	RestartRequired    bool   `yaml:"restart_required"`
}

// ItemRecord is the outcome of one package.
type ItemRecord struct {
	Identifier  string `yaml:"identifier"`
	DisplayName string `yaml:"display_name"`
	Status      string `yaml:"status"`
	ExitCode    string `yaml:"exit_code,omitempty"`
	Error       string `yaml:"error,omitempty"`
}

// Report is the document written by Write.
type Report struct {
	Build   version.Info          `yaml:"build"`
	Session SessionRecord         `yaml:"session"`
	Items   []ItemRecord          `yaml:"items"`
	Config  *config.Configuration `yaml:"config,omitempty"`
}

// NewSession fills the timing fields of a session record.
func NewSession(start time.Time, elapsed time.Duration) SessionRecord {
	return SessionRecord{
		StartTime: start.Format(time.RFC3339),
		EndTime:   start.Add(elapsed).Format(time.RFC3339),
		Duration:  int64(elapsed.Round(time.Second) / time.Second),
		Status:    StatusCompleted,
	}
}

// ItemsFromResults converts install results in their original order.
func ItemsFromResults(results []installer.Result) []ItemRecord {
	items := make([]ItemRecord, 0, len(results))
	for _, r := range results {
		rec := ItemRecord{
			Identifier:  r.Item.Identifier,
			DisplayName: r.Item.DisplayName,
			Status:      ItemInstalled,
		}
		if r.Outcome == installer.Failed {
			rec.Status = ItemFailed
		}
		if r.ExitCode != 0 {
			rec.ExitCode = fmt.Sprintf("0x%08X", uint32(r.ExitCode))
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		items = append(items, rec)
	}
	return items
}

// SidecarPath returns the report path for a log file: the log's extension is
// replaced with ".report.yaml".
func SidecarPath(logPath string) string {
	return strings.TrimSuffix(logPath, filepath.Ext(logPath)) + reportSuffix
}

// Write stores r at path, replacing any previous report.
func Write(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return encoder.Close()
}

// Read loads a report written by Write.
func Read(path string) (Report, error) {
	var r Report
	data, err := os.ReadFile(path)
	if err != nil {
		return r, err
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return r, nil
}
