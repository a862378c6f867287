package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kladia/internal/script"
	"github.com/mesh-intelligence/kladia/pkg/types"
)

const graphScript = `name: graph
steps:
  - {op: create, kind: graph, id: g}
  - {op: create, kind: node, id: A}
  - {op: create, kind: node, id: B}
  - {op: create, kind: arrow, id: [A, B]}
  - {op: assign, kind: graph, id: g, attrs: {A: {[A, B]: ~}, B: ~}}
  - {op: read, kind: graph, id: g}
  - {op: expect, kind: arrow, id: [B, A], absent: true}
`

type selfTestReport struct {
	Status   string `json:"status"`
	Steps    int    `json:"steps"`
	Backend  string `json:"backend"`
	Registry string `json:"registry"`
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	result := env.mustRunKladia("version")
	assert.Equal(t, "kladia v"+Version+"\nmodule: "+modulePath+"\n", result.Stdout)

	result = env.mustRunKladia("--json", "version")
	got := parseJSON[map[string]string](t, result.Stdout)
	assert.Equal(t, Version, got["version"])
	assert.Equal(t, modulePath, got["module"])
}

func TestKinds(t *testing.T) {
	env := newTestEnv(t)

	result := env.mustRunKladia("kinds")
	assert.Equal(t, "table\ngraph\nnode\narrow\nlink\n", result.Stdout)

	result = env.mustRunKladia("kinds", "--json")
	assert.Equal(t, types.KindNames(), parseJSON[[]string](t, result.Stdout))
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.Config, "config.yaml")

	result := env.mustRunKladia("init", "--backend", "sqlite")
	assert.Contains(t, result.Stdout, "Configuration written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg types.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, types.Config{Backend: "sqlite", LogLevel: "info", LogFormat: "text"}, cfg)

	result = env.mustRunKladia("init")
	assert.Contains(t, result.Stdout, "already exists")

	result = env.mustRunKladia("--json", "init", "--force")
	got := parseJSON[map[string]any](t, result.Stdout)
	assert.Equal(t, true, got["written"])
	assert.Equal(t, path, got["config"])

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, types.BackendSQLite, cfg.Backend, "config.yaml is read back before --force rewrites it")
}

func TestSelfTest(t *testing.T) {
	for _, backend := range []string{types.BackendMemory, types.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			env := newTestEnv(t)

			result := env.mustRunKladia("selftest", "--backend", backend)
			assert.Equal(t, script.SelfTestPassed+"\n", result.Stdout)

			result = env.mustRunKladia("selftest", "--backend", backend, "--json")
			report := parseJSON[selfTestReport](t, result.Stdout)
			assert.Equal(t, "pass", report.Status)
			assert.Equal(t, backend, report.Backend)
			assert.Equal(t, len(script.SelfTest().Steps), report.Steps)
			assert.NotEmpty(t, report.Registry)
		})
	}
}

func TestConfigPrecedence(t *testing.T) {
	backendOf := func(t *testing.T, env *testEnv, args ...string) string {
		t.Helper()
		result := env.mustRunKladia(append([]string{"selftest", "--json"}, args...)...)
		return parseJSON[selfTestReport](t, result.Stdout).Backend
	}

	t.Run("default", func(t *testing.T) {
		env := newTestEnv(t)
		assert.Equal(t, types.BackendMemory, backendOf(t, env))
	})

	t.Run("config file", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile("config/config.yaml", "backend: sqlite\n")
		assert.Equal(t, types.BackendSQLite, backendOf(t, env))
	})

	t.Run("env over config file", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeFile("config/config.yaml", "backend: sqlite\n")
		t.Setenv("KLADIA_BACKEND", "memory")
		assert.Equal(t, types.BackendMemory, backendOf(t, env))
	})

	t.Run("flag over env", func(t *testing.T) {
		env := newTestEnv(t)
		t.Setenv("KLADIA_BACKEND", "memory")
		assert.Equal(t, types.BackendSQLite, backendOf(t, env, "--backend", "sqlite"))
	})

	t.Run("dotenv file", func(t *testing.T) {
		env := newTestEnv(t)
		os.Unsetenv("KLADIA_BACKEND")
		env.writeFile(".env", "KLADIA_BACKEND=sqlite\n")
		assert.Equal(t, types.BackendSQLite, backendOf(t, env))
	})
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)

	result := env.runKladia("selftest", "--backend", "postgres")
	assert.Equal(t, exitUserError, result.ExitCode)
	assert.Contains(t, result.Stderr, "unknown backend")

	result = env.runKladia("selftest", "--log-level", "loud")
	assert.Equal(t, exitUserError, result.ExitCode)
	assert.Contains(t, result.Stderr, "unknown log level")
}

func TestRun(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile("graph.yaml", graphScript)

	result := env.mustRunKladia("run", path)
	assert.Equal(t, "graph 'g' = {'A': {('A', 'B'): None}, 'B': None}\n", result.Stdout)
}

func TestRun_Dump(t *testing.T) {
	for _, backend := range []string{types.BackendMemory, types.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			env := newTestEnv(t)
			path := env.writeFile("graph.yaml", graphScript)

			result := env.mustRunKladia("run", path, "--dump", "--backend", backend)
			want := strings.Join([]string{
				"graph 'g' = {'A': {('A', 'B'): None}, 'B': None}",
				"graph 'g' = {'A': {('A', 'B'): None}, 'B': None}",
				"node 'A' = {}",
				"node 'B' = {}",
				"arrow ('A', 'B') = {}",
			}, "\n") + "\n"
			assert.Equal(t, want, result.Stdout)
		})
	}
}

func TestRun_JSON(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile("graph.yaml", graphScript)

	type entry struct {
		ID    map[string]any `json:"id"`
		Attrs []any          `json:"attrs"`
	}
	type report struct {
		Scripts []scriptResult     `json:"scripts"`
		Reads   []string           `json:"reads"`
		Reg     map[string][]entry `json:"registry"`
	}

	result := env.mustRunKladia("--json", "run", path, "--dump")
	got := parseJSON[report](t, result.Stdout)

	assert.Equal(t, []scriptResult{{Name: "graph", Steps: 7}}, got.Scripts)
	assert.Equal(t, []string{"graph 'g' = {'A': {('A', 'B'): None}, 'B': None}"}, got.Reads)
	require.Len(t, got.Reg, len(types.AllKinds))
	assert.Empty(t, got.Reg["table"])
	assert.Len(t, got.Reg["node"], 2)
	require.Len(t, got.Reg["arrow"], 1)
	assert.Contains(t, got.Reg["arrow"][0].ID, "p")
}

func TestRun_SharedRegistry(t *testing.T) {
	env := newTestEnv(t)
	first := env.writeFile("first.yaml", "steps: [{op: create, kind: link, id: X}]\n")
	second := env.writeFile("second.yaml", "steps: [{op: expect, kind: link, id: X, attrs: {}}]\n")

	env.mustRunKladia("run", first, second)

	result := env.runKladia("run", second)
	assert.Equal(t, exitUserError, result.ExitCode, "each invocation starts from an empty registry")
	assert.Contains(t, result.Stderr, "expectation failed")
}

func TestRun_Stdin(t *testing.T) {
	env := newTestEnv(t)

	result := env.run("steps: [{op: assign, kind: table, id: 1, attrs: {-1: {}}}, {op: read, kind: table, id: 1}]\n", "run", "-")
	require.Equal(t, exitSuccess, result.ExitCode, result.Stderr)
	assert.Equal(t, "table 1 = {-1: {}}\n", result.Stdout)
}

func TestRun_Errors(t *testing.T) {
	env := newTestEnv(t)
	failing := env.writeFile("failing.yaml", `name: failing
steps:
  - {op: create, kind: node, id: A}
  - {op: expect, kind: node, id: A, absent: true}
`)
	malformed := env.writeFile("malformed.yaml", "steps: [{op: create, kind: tree, id: A}]\n")
	badArrow := env.writeFile("arrow.yaml", "steps: [{op: create, kind: arrow, id: [A, B, C]}]\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"expectation", []string{"run", failing}, "failing: step 2"},
		{"unknown kind", []string{"run", malformed}, "unknown entity kind"},
		{"bad arrow", []string{"run", badArrow}, "invalid script"},
		{"missing file", []string{"run", filepath.Join(env.TempDir, "nope.yaml")}, "read script"},
		{"no args", []string{"run"}, "requires at least 1 arg"},
		{"unknown command", []string{"frobnicate"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.runKladia(tt.args...)
			assert.Equal(t, exitUserError, result.ExitCode)
			assert.Contains(t, result.Stderr, tt.wantErr)
		})
	}
}

func TestLogging(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile("graph.yaml", graphScript)

	result := env.mustRunKladia("run", path, "--log-level", "debug", "--log-format", "json")
	assert.Contains(t, result.Stderr, `"msg":"create"`)
	assert.Contains(t, result.Stderr, `"kind":"arrow"`)
	assert.Contains(t, result.Stderr, `"registry_id":`)
	assert.Contains(t, result.Stderr, `"msg":"script passed"`)
	assert.Contains(t, result.Stderr, `"app":"kladia"`)

	result = env.mustRunKladia("run", path, "--log-level", "info")
	assert.Contains(t, result.Stderr, "level=INFO msg=\"script passed\"")
	assert.NotContains(t, result.Stderr, "msg=create")

	result = env.mustRunKladia("run", path, "--log-level", "warn")
	assert.Empty(t, result.Stderr)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSysError, exitCode(sysError(errors.New("disk on fire"))))
	assert.Equal(t, exitSysError, exitCode(fmt.Errorf("wrapped: %w", types.ErrRegistryDetached)))
	assert.Equal(t, exitUserError, exitCode(types.ErrUnknownKind))
	assert.Equal(t, exitUserError, exitCode(script.ErrExpectation))
	assert.Nil(t, sysError(nil))
}
