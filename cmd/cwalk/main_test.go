package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if version == "" {
		t.Error("version should not be empty")
	}
}

func TestDastFlagExists(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	if cmd.Flags().Lookup("dast") == nil {
		t.Error("expected flag --dast to exist")
	}
}

func writeTempC(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestRunReportsExitStatus(t *testing.T) {
	path := writeTempC(t, "test.c", `int main() { return 42; }`)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(out.String(), "Process terminated with status 42") {
		t.Errorf("expected status line in output, got %q", out.String())
	}
}

func TestRunReportsParseErrors(t *testing.T) {
	path := writeTempC(t, "bad.c", `int main( { return 0; }`)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for malformed source")
	}
	if !strings.Contains(errOut.String(), "cwalk:") {
		t.Errorf("expected error output to be prefixed, got %q", errOut.String())
	}
}

func TestRunReportsSemaErrors(t *testing.T) {
	path := writeTempC(t, "undeclared.c", `int main() { return y; }`)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for an undeclared identifier")
	}
}

func TestFileNotFound(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"nonexistent.c"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestDastFlagDumpsProgram(t *testing.T) {
	path := writeTempC(t, "test.c", `int main() { return 42; }`)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--dast", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error for --dast, got %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "int main()") {
		t.Errorf("expected AST dump to contain 'int main()', got %q", output)
	}
	if !strings.Contains(output, "return 42") {
		t.Errorf("expected AST dump to contain 'return 42', got %q", output)
	}
	_ = errOut
}

func TestNoArgsShowsHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Errorf("expected no error with no args, got %v", err)
	}
}
