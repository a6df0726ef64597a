package features

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/windowsadmins/pcsetup/pkg/logging"
	"github.com/windowsadmins/pcsetup/pkg/runner"
)

type fakeHost struct {
	commands []string
	res      runner.Result
	err      error
}

func (f *fakeHost) Run(_ context.Context, command string) (runner.Result, error) {
	f.commands = append(f.commands, command)
	return f.res, f.err
}

func newLog(t *testing.T) (*logging.Logger, func() string) {
	t.Helper()
	l := logging.New(nil)
	path := filepath.Join(t.TempDir(), "setup.log")
	if err := l.Initialize(path, logging.Header{}); err != nil {
		t.Fatalf("initialize log: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		return string(data)
	}
}

func TestEnableCommand(t *testing.T) {
	cmd := EnableCommand("Microsoft-Hyper-V")
	for _, want := range []string{
		"Enable-WindowsOptionalFeature -Online -FeatureName 'Microsoft-Hyper-V' -All -NoRestart",
		"$r.RestartNeeded",
	} {
		if !strings.Contains(cmd, want) {
			t.Fatalf("command %q missing %q", cmd, want)
		}
	}
}

func TestEnableRestartNeeded(t *testing.T) {
	log, read := newLog(t)
	host := &fakeHost{res: runner.Result{Output: "True\r\n"}}
	e := New(host, log)
	e.State = func(string) (State, error) { return StateDisabled, nil }

	out, err := e.Enable(context.Background(), "Microsoft-Hyper-V")
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if !out.Enabled || !out.RestartNeeded {
		t.Fatalf("outcome = %+v", out)
	}

	content := read()
	state := strings.Index(content, "[INFO] Current state of Microsoft-Hyper-V: Disabled")
	ok := strings.Index(content, "[SUCCESS] Microsoft-Hyper-V enabled")
	warn := strings.Index(content, "[WARNING] A restart is required")
	if state < 0 || ok < state || warn < ok {
		t.Fatalf("expected INFO, SUCCESS, WARNING in order:\n%s", content)
	}
}

func TestEnableNoRestart(t *testing.T) {
	log, read := newLog(t)
	e := New(&fakeHost{res: runner.Result{Output: "False"}}, log)
	e.State = nil

	out, err := e.Enable(context.Background(), "Microsoft-Hyper-V")
	if err != nil || out.RestartNeeded {
		t.Fatalf("out = %+v, err = %v", out, err)
	}
	if strings.Contains(read(), "[WARNING]") {
		t.Fatalf("no warning expected without a restart")
	}
}

func TestEnableFailures(t *testing.T) {
	cases := map[string]struct {
		host *fakeHost
		want error
	}{
		"exit":  {host: &fakeHost{res: runner.Result{ExitCode: 1, Output: "Feature name is unknown."}}, want: ErrEnableFailed},
		"fault": {host: &fakeHost{res: runner.Result{ExitCode: -1}, err: runner.ErrInvocation}, want: runner.ErrInvocation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			log, read := newLog(t)
			e := New(tc.host, log)
			e.State = func(string) (State, error) { return StateUnknown, ErrStateUnavailable }

			out, err := e.Enable(context.Background(), "Bogus")
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if out.Enabled {
				t.Fatalf("feature reported enabled")
			}
			content := read()
			if !strings.Contains(content, "[ERROR] Failed to enable Bogus") {
				t.Fatalf("missing error line:\n%s", content)
			}
			if strings.Contains(content, "Current state") || strings.Contains(content, "Could not read state") {
				t.Fatalf("unavailable state should not be logged:\n%s", content)
			}
		})
	}
}

func TestEnableWithoutHost(t *testing.T) {
	log, _ := newLog(t)
	e := New(nil, log)
	e.State = nil
	if _, err := e.Enable(context.Background(), "Microsoft-Hyper-V"); err == nil {
		t.Fatalf("expected an error without a PowerShell host")
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateEnabled:  "Enabled",
		StateDisabled: "Disabled",
		StateAbsent:   "Absent",
		StateUnknown:  "Unknown",
		State(99):     "Unknown",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("State(%d) = %q, want %q", uint32(s), s.String(), want)
		}
	}
}
