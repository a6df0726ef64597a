package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestVersionDefaults(t *testing.T) {
	v := Version()
	if v.Version != "dev" {
		t.Fatalf("Version = %q, want dev", v.Version)
	}
	if v.GoVersion != runtime.Version() {
		t.Fatalf("GoVersion = %q", v.GoVersion)
	}
	if v.String() != "pcsetup dev" {
		t.Fatalf("String = %q", v.String())
	}
}

func TestFprintFull(t *testing.T) {
	var buf bytes.Buffer
	FprintFull(&buf)
	out := buf.String()
	for _, want := range []string{"pcsetup dev\n", "branch:", "revision:", "build date:", "go version:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	Fprint(&buf)
	if buf.String() != "pcsetup dev\n" {
		t.Fatalf("output = %q", buf.String())
	}
}
