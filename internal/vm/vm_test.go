package vm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func run(t *testing.T, code string) (string, string, *VM, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	m := New(Options{Stdout: &stdout, Stderr: &stderr, Argv: []string{"x"}})
	err := m.Run(context.Background(), "test.js", code)
	return stdout.String(), stderr.String(), m, err
}

func TestConsole(t *testing.T) {
	tests := []struct {
		code   string
		stdout string
		stderr string
	}{
		{`console.log(42)`, "42\n", ""},
		{`console.log("a", 1, true, null, undefined)`, "a 1 true null undefined\n", ""},
		{`console.log({a: 1}, [1, 2])`, "{\"a\":1} [1,2]\n", ""},
		{`console.error("bad"); console.info("ok")`, "ok\n", "bad\n"},
		{`console.log(process.argv.slice(2).join(","))`, "x\n", ""},
	}
	for _, tt := range tests {
		stdout, stderr, _, err := run(t, tt.code)
		if err != nil {
			t.Fatalf("%s: %v", tt.code, err)
		}
		if stdout != tt.stdout || stderr != tt.stderr {
			t.Fatalf("%s: stdout %q stderr %q", tt.code, stdout, stderr)
		}
	}
}

func TestThrow(t *testing.T) {
	_, _, _, err := run(t, `throw new Error("boom")`)
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Kind != ErrorThrown {
		t.Fatalf("want thrown RuntimeError, got %v", err)
	}
	if !strings.Contains(rerr.Message, "boom") {
		t.Fatalf("message = %q", rerr.Message)
	}
}

func TestSyntaxError(t *testing.T) {
	_, _, _, err := run(t, `var = ;`)
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Kind != ErrorSyntax {
		t.Fatalf("want syntax RuntimeError, got %v", err)
	}
}

func TestExit(t *testing.T) {
	stdout, _, m, err := run(t, `console.log("before"); process.exit(3); console.log("after")`)
	if err != nil {
		t.Fatalf("exit is not an error: %v", err)
	}
	if stdout != "before\n" || !m.Exited || m.ExitCode != 3 {
		t.Fatalf("stdout %q exited %v code %d", stdout, m.Exited, m.ExitCode)
	}
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := New(Options{}).Run(ctx, "loop.js", `for (;;) {}`)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline error, got %v", err)
	}
}
