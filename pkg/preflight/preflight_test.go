package preflight

import (
	"context"
	"errors"
	"testing"
)

type fakeVersion struct {
	v   string
	err error
}

func (f fakeVersion) Version(context.Context) (string, error) { return f.v, f.err }

func TestGatherFactsUsesEnvironmentUser(t *testing.T) {
	t.Setenv("USERNAME", "setup-admin")
	f := GatherFacts(context.Background(), fakeVersion{v: "7.4.2"})
	if f.User != "setup-admin" {
		t.Fatalf("user = %q", f.User)
	}
	if f.PowerShellVersion != "7.4.2" {
		t.Fatalf("powershell = %q", f.PowerShellVersion)
	}
	if f.Computer == "" {
		t.Fatalf("computer name not gathered")
	}
}

func TestGatherFactsToleratesMissingPowerShell(t *testing.T) {
	f := GatherFacts(context.Background(), fakeVersion{err: errors.New("not found")})
	if f.PowerShellVersion != "" {
		t.Fatalf("powershell = %q, want empty", f.PowerShellVersion)
	}
	f = GatherFacts(context.Background(), nil)
	if f.PowerShellVersion != "" {
		t.Fatalf("powershell = %q, want empty", f.PowerShellVersion)
	}
}

func TestFactsHeader(t *testing.T) {
	h := Facts{User: "u", Computer: "c", PowerShellVersion: "5.1", Platform: "p"}.Header()
	if h.User != "u" || h.Computer != "c" || h.PowerShellVersion != "5.1" {
		t.Fatalf("header = %+v", h)
	}
}

func TestIsElevatedDoesNotError(t *testing.T) {
	if _, err := IsElevated(); err != nil {
		t.Fatalf("IsElevated: %v", err)
	}
}
