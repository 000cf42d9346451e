package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

const cliSARIF = `{
  "version": "2.1.0",
  "runs": [{
    "tool": {"driver": {"name": "analyzer"}},
    "results": [{
      "ruleId": "core.DivideZero",
      "message": {"text": "Division by zero"},
      "locations": [{"physicalLocation": {"artifactLocation": {"uri": "lib/math.c"}, "region": {"startLine": 12}}}],
      "partialFingerprints": {"primaryLocationLineHash": "abc123"}
    }]
  }]
}`

// runCLI executes reviewctl with args against dbPath and returns stdout.
func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupCLI(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "reviewledger.db")
	reportPath := filepath.Join(dir, "report.sarif")
	require.NoError(t, os.WriteFile(reportPath, []byte(cliSARIF), 0o600))

	out, err := runCLI(t, dbPath, "import", "nightly", reportPath)
	require.NoError(t, err)
	assert.Equal(t, "run nightly: 1 imported, 0 skipped\n", out)

	return dbPath
}

func TestCLI_SetShowComments(t *testing.T) {
	dbPath := setupCLI(t)

	out, err := runCLI(t, dbPath, "set", "abc123", "confirmed", "Divisor comes from user input", "--author", "bob")
	require.NoError(t, err)
	assert.Equal(t, "abc123: Confirmed bug\n", out)

	out, err = runCLI(t, dbPath, "set", "abc123", "CONFIRMED", "Divisor comes from user input", "--author", "bob")
	require.NoError(t, err)
	assert.Equal(t, "abc123: unchanged\n", out)

	out, err = runCLI(t, dbPath, "show", "abc123")
	require.NoError(t, err)
	assert.Contains(t, out, "core.DivideZero")
	assert.Contains(t, out, "lib/math.c:12")
	assert.Contains(t, out, "Confirmed bug")
	assert.Contains(t, out, "Divisor comes from user input")
	assert.Contains(t, out, "by bob")

	out, err = runCLI(t, dbPath, "comments", "abc123", "--kind", "system")
	require.NoError(t, err)
	assert.Contains(t, out, "SYSTEM")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, `Review status changed from 'Unreviewed' to 'Confirmed bug' with comment: "Divisor comes from user input"`)
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("\n")), "header plus one audit entry")
}

func TestCLI_Errors(t *testing.T) {
	dbPath := setupCLI(t)

	_, err := runCLI(t, dbPath, "set", "abc123", "wontfix")
	assert.ErrorIs(t, err, model.ErrInvalidStatus)

	_, err = runCLI(t, dbPath, "show", "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = runCLI(t, dbPath, "comments", "abc123", "--kind", "bogus")
	assert.Error(t, err)

	_, err = runCLI(t, dbPath, "import", "nightly", filepath.Join(t.TempDir(), "absent.sarif"))
	assert.ErrorContains(t, err, "open report")
}
