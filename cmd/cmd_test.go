package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/mathsim/internal/llm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const problemJSON = `{"problem":"Sam has 3 bags of 8 apples. How many apples?","answer":"24"}`

// useMock swaps the model provider for a mock that answers every
// request with a problem payload. Calls are still recorded in the event
// store.
func useMock(t *testing.T) *llm.MockProvider {
	t.Helper()
	mock := llm.NewMockProvider()
	mock.Fallback = func(llm.Request) (json.RawMessage, error) {
		return json.RawMessage(problemJSON), nil
	}
	orig := newProvider
	newProvider = func(_ context.Context, _ llm.Config, deps llm.Deps) (llm.Provider, error) {
		return llm.WithLogging(mock, deps.EventRepo, llm.WithObserver(deps.Observer)), nil
	}
	t.Cleanup(func() { newProvider = orig })
	return mock
}

// isolate keeps commands away from the developer's environment and
// database.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"MATHSIM_CACHE_ENABLED", "MATHSIM_CACHE_SIZE", "MATHSIM_CACHE_TTL", "MATHSIM_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("MATHSIM_DB", filepath.Join(dir, "events.db"))
	t.Setenv("MATHSIM_LOG_LEVEL", "error")
	return dir
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args. Flags are package globals, so
// each run starts from their defaults.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunProblemOnly(t *testing.T) {
	isolate(t)
	mock := useMock(t)

	out, err := execute(t, `{"grade_level":"3rd"}`, "run", "--payload", "-", "--type", "problem_only")
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	assert.Equal(t, "problem_only", env["workflow_type"])
	assert.Equal(t, "3rd", env["metadata"].(map[string]any)["grade_level"])
	assert.Equal(t, 1, mock.CallCount())
}

func TestRunRecordsEvents(t *testing.T) {
	isolate(t)
	useMock(t)

	_, err := execute(t, "", "run", "--type", "problem_only")
	require.NoError(t, err)

	out, err := execute(t, "", "llm", "list", "--purpose", "generate_problem")
	require.NoError(t, err)
	assert.Contains(t, out, "generate_problem")
	assert.Contains(t, out, "mock")

	out, err = execute(t, "", "llm", "list", "--purpose", "tutor")
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM events found")
}

func TestBatchSharesCacheAndReportsFailures(t *testing.T) {
	dir := isolate(t)
	mock := useMock(t)

	payloads := filepath.Join(dir, "payloads")
	results := filepath.Join(dir, "results")
	require.NoError(t, os.Mkdir(payloads, 0o755))
	writeFile(t, filepath.Join(payloads, "a.json"), `{"workflow_type":"problem_only"}`)
	writeFile(t, filepath.Join(payloads, "b.json"), `{"workflow_type":"problem_only"}`)
	writeFile(t, filepath.Join(payloads, "c.json"), `{"workflow_type":`)

	out, err := execute(t, "", "batch", "--dir", payloads, "--out", results, "--concurrency", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.json")
	assert.Contains(t, out, "3 files, 1 failed, cache 1 hits / 1 misses")
	assert.Equal(t, 1, mock.CallCount(), "the second payload is served from the cache")

	_, err = os.Stat(filepath.Join(results, "a.result.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(results, "c.result.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestBatchRejectsZeroConcurrency(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "batch", "--concurrency", "0")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)

	in := `{"problem":"What is 12 x 5?","disability":"Dyscalculia","expected_answer":"60",` +
		`"student_attempt":{"thoughtprocess":"I mixed up the numbers","steps_to_solve":["12 + 5 = 17"],"final_answer":"17"}}`
	out, err := execute(t, in, "validate", "--json")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Contains(t, report, "overall_consistency_score")

	_, err = execute(t, `{"problem":"What is 12 x 5?"}`, "validate")
	assert.ErrorContains(t, err, "disability")
}

func TestAdapt(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "adapt", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"recommended_difficulty": "medium"`)

	out, err = execute(t, `[{"consistency_score":0.9,"is_correct":true}]`, "adapt", "--history", "-", "--current", "easy")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = execute(t, `{"not":"a list"}`, "adapt", "--history", "-")
	assert.Error(t, err)
}

func TestImproveRejectsEmptyInput(t *testing.T) {
	isolate(t)
	mock := useMock(t)

	_, err := execute(t, "  \n", "improve")
	assert.Error(t, err)
	assert.Equal(t, 0, mock.CallCount())
}

func TestLLMPrune(t *testing.T) {
	isolate(t)
	useMock(t)

	for range 3 {
		_, err := execute(t, "", "run", "--type", "problem_only")
		require.NoError(t, err)
	}
	out, err := execute(t, "", "llm", "prune", "--keep", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 events")

	_, err = execute(t, "", "llm", "prune", "--keep", "0")
	require.NoError(t, err)

	out, err = execute(t, "", "llm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM events found")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "mathsim "))
}
