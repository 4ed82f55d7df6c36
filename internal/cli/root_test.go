package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/cfgpipe/internal/cli"
	cerrors "github.com/randalmurphal/cfgpipe/pkg/cfgpipe/errors"
)

const doublePipeline = `
name: double
transforms:
  - insert: {path: a.b, value: 5}
  - formula:
      function: product_by_num
      params: {n: 2}
      output: a.c
      inputs: [a.b]
`

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	tc := cli.NewRootCmd("test_cfgpipe")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	tc.SetArgs(args)
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCmd(t *testing.T) {
	stdout, stderr, err := execute(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `\d+\.\d+\.\d+`, stdout)
	assert.Empty(t, stderr)
}

func TestFunctionsCmd(t *testing.T) {
	stdout, _, err := execute(t, "functions")
	require.NoError(t, err)
	assert.Contains(t, stdout, "division\n")
	assert.Contains(t, stdout, "search_divisor\n")

	stdout, _, err = execute(t, "functions", "--kinds")
	require.NoError(t, err)
	assert.Contains(t, stdout, "insert\n")
	assert.Contains(t, stdout, "when\n")
}

func TestRunCmd(t *testing.T) {
	dir := t.TempDir()
	pipe := writeFile(t, dir, "double.yaml", doublePipeline)

	stdout, stderr, err := execute(t, "run", "--pipeline", pipe, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "a:\n  b: 5\n  c: 10\n", stdout)
	assert.Empty(t, stderr)

	stdout, _, err = execute(t, "run", "--pipeline", pipe, "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"b":5,"c":10}}`, stdout)

	input := writeFile(t, dir, "in.json", `{"keep": true}`)
	out := filepath.Join(dir, "out.json")
	stdout, _, err = execute(t, "run", "--pipeline", pipe, "--input", input, "--output", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"keep":true,"a":{"b":5,"c":10}}`, string(data))
}

func TestRunCmd_Logging(t *testing.T) {
	pipe := writeFile(t, t.TempDir(), "double.yaml", doublePipeline)

	_, stderr, err := execute(t, "run", "--pipeline", pipe,
		"--log-level", "info", "--log-format", "json", "--run-id", "cli-1")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"pipeline run completed"`)
	assert.Contains(t, stderr, `"run_id":"cli-1"`)
	assert.Contains(t, stderr, `"pipeline":"double"`)
}

func TestRunCmd_CheckpointAndResume(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	pipe := writeFile(t, dir, "save.yaml", `
name: save
transforms:
  - insert: {path: a, value: 1}
  - save: {dir: `+outDir+`, filename: result.yaml}
`)
	db := filepath.Join(dir, "runs.db")

	_, _, err := execute(t, "run", "--pipeline", pipe, "--checkpoint-db", db,
		"--run-id", "r1", "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrIO)
	assert.Contains(t, err.Error(), "resume with --run-id r1")

	require.NoError(t, os.Mkdir(outDir, 0o750))

	stdout, _, err := execute(t, "resume", "--pipeline", pipe, "--checkpoint-db", db,
		"--run-id", "r1", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", stdout)

	data, err := os.ReadFile(filepath.Join(outDir, "result.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))
}

func TestRunCmd_InvalidArguments(t *testing.T) {
	pipe := writeFile(t, t.TempDir(), "double.yaml", doublePipeline)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bad log format", []string{"run", "--pipeline", pipe, "--log-format", "xml"}, cli.ErrInvalidArgument},
		{"bad log level", []string{"run", "--pipeline", pipe, "--log-level", "loud"}, cli.ErrInvalidArgument},
		{"bad output format", []string{"run", "--pipeline", pipe, "--format", "toml"}, cli.ErrInvalidArgument},
		{"missing pipeline file", []string{"run", "--pipeline", pipe + ".missing.yaml"}, cerrors.ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, _, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"pipeline" not set`)

	_, _, err = execute(t, "resume", "--pipeline", pipe)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not set")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"debug", "DEBUG", false},
		{"INFO", "INFO", false},
		{"warning", "WARN", false},
		{"error", "ERROR", false},
		{"", "INFO", false},
		{"verbose", "INFO", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := cli.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level.String())
		})
	}
}
