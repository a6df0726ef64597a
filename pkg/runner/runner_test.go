package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"
)

// TestHelperProcess is re-executed by the tests below as a stand-in command.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("PCSETUP_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Println("helper output")
	code, _ := strconv.Atoi(os.Getenv("PCSETUP_HELPER_EXIT"))
	os.Exit(code)
}

func helperEnv(t *testing.T, exitCode int) {
	t.Helper()
	t.Setenv("PCSETUP_HELPER_PROCESS", "1")
	t.Setenv("PCSETUP_HELPER_EXIT", strconv.Itoa(exitCode))
}

func TestExecReportsExitCodeWithoutError(t *testing.T) {
	helperEnv(t, 3)
	res, err := New().Run(context.Background(), os.Args[0], "-test.run=TestHelperProcess")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", res.ExitCode)
	}
	if res.Succeeded() {
		t.Fatalf("non-zero exit reported as success")
	}
	if res.LastLine() != "helper output" {
		t.Fatalf("last line = %q", res.LastLine())
	}
}

func TestExecSuccess(t *testing.T) {
	helperEnv(t, 0)
	res, err := New().Run(context.Background(), os.Args[0], "-test.run=TestHelperProcess")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Succeeded() {
		t.Fatalf("exit code = %d, want 0", res.ExitCode)
	}
}

func TestExecMissingBinaryIsInvocationFault(t *testing.T) {
	_, err := New().Run(context.Background(), "pcsetup-definitely-not-a-real-binary")
	if !errors.Is(err, ErrInvocation) {
		t.Fatalf("err = %v, want ErrInvocation", err)
	}
}

func TestResultLinesStripsNoise(t *testing.T) {
	res := Result{Output: "\ufefffirst\r\n\n  \u001b[0msecond  \n"}
	lines := res.Lines()
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestHexCode(t *testing.T) {
	res := Result{ExitCode: -1978335135}
	if got := res.HexCode(); got != "0x8A150061" {
		t.Fatalf("hex = %s", got)
	}
}

func TestCommandLineQuotesSpaces(t *testing.T) {
	got := CommandLine("winget", "install", "--id", "Some Thing")
	if got != `winget install --id "Some Thing"` {
		t.Fatalf("command line = %s", got)
	}
}
