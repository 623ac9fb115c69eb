package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// IntegrationTestSpec is one end-to-end case: a complete C source unit and
// the exit status main() should produce after lex/parse/sema/eval.
type IntegrationTestSpec struct {
	Name       string `yaml:"name"`
	Input      string `yaml:"input"`
	WantStatus int    `yaml:"want_status"`
}

type IntegrationTestFile struct {
	Tests []IntegrationTestSpec `yaml:"tests"`
}

func loadIntegrationTests(t *testing.T) []IntegrationTestSpec {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "integration.yaml"))
	require.NoError(t, err)

	var file IntegrationTestFile
	require.NoError(t, yaml.Unmarshal(data, &file))
	require.NotEmpty(t, file.Tests)
	return file.Tests
}

// runSource writes src to a temp file and drives it through run(), the
// same entry point the CLI itself calls.
func runSource(t *testing.T, src string) (int, error) {
	t.Helper()
	path := writeTempC(t, "case.c", src)
	return run(path)
}

func TestIntegrationEndToEnd(t *testing.T) {
	for _, tc := range loadIntegrationTests(t) {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			status, err := runSource(t, tc.Input)
			require.NoError(t, err)
			require.Equal(t, tc.WantStatus, status)
		})
	}
}
