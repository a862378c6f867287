package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv provides an isolated environment with its own config directory,
// env file and working files.
type testEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	EnvFile string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, "config")
	for _, key := range []string{"KLADIA_BACKEND", "KLADIA_LOG_LEVEL", "KLADIA_LOG_FORMAT", "KLADIA_CONFIG_DIR", "KLADIA_ENV_FILE"} {
		t.Setenv(key, "")
	}

	return &testEnv{
		t:       t,
		TempDir: tempDir,
		Config:  configDir,
		EnvFile: filepath.Join(tempDir, ".env"),
	}
}

// writeFile writes content under the env's temp dir and returns its path.
func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.TempDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// cmdResult holds the result of a kladia command execution.
type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// run executes the kladia root command in-process.
func (e *testEnv) run(stdin string, args ...string) cmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.Config, "--env-file", e.EnvFile}, args...)
	root := NewRootCmd()
	root.SetArgs(allArgs)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))

	code := execute(context.Background(), root, &stderr)
	return cmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: code,
	}
}

func (e *testEnv) runKladia(args ...string) cmdResult {
	e.t.Helper()
	return e.run("", args...)
}

// mustRunKladia fails the test if the command returns non-zero.
func (e *testEnv) mustRunKladia(args ...string) cmdResult {
	e.t.Helper()
	result := e.runKladia(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("kladia %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// parseJSON parses JSON output into the target type.
func parseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}
