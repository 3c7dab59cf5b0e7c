package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// setup copies the fixtures into a fresh folder and points the database
// at it.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"grades_report.html", "courseid_42_participants.csv"} {
		b, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
	}
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:"+filepath.Join(dir, "cli.db")+"?mode=rwc")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompute(t *testing.T) {
	dir := setup(t)
	reportPath := filepath.Join(dir, "grades_report.html")

	out, err := execute(t, "compute", reportPath, "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "Workshop: Carbonate Content Analysis")
	assert.Contains(t, out, "groups: Group A, Group B")
	assert.Contains(t, out, "Ángel Peña")
	assert.Contains(t, out, "saved run ")

	csv, err := os.ReadFile(filepath.Join(dir, "grades_report.csv"))
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"ID number,Name,Submission,Assessment,Overall",
		"1002,Zoe Alba,0.00,0.00,0.00",
		"1003,John Doe,65.00,20.00,85.00",
		"1001,Ángel Peña,85.00,18.50,103.50",
		"1004,Jane Roe,0.00,15.00,15.00",
	}, "\n")+"\n", string(csv))

	listed, err := execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, listed, "Workshop: Carbonate Content Analysis")
}

func TestCompute_OutAndDataDir(t *testing.T) {
	dir := setup(t)
	other := t.TempDir()
	b, err := os.ReadFile(filepath.Join(dir, "grades_report.html"))
	require.NoError(t, err)
	reportPath := filepath.Join(other, "report.htm")
	require.NoError(t, os.WriteFile(reportPath, b, 0o644))

	out := filepath.Join(other, "grades.csv")
	_, err = execute(t, "compute", reportPath, "--data-dir", dir, "--out", out, "-q")
	require.NoError(t, err)
	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestCompute_NoRoster(t *testing.T) {
	dir := setup(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "courseid_42_participants.csv")))
	_, err := execute(t, "compute", filepath.Join(dir, "grades_report.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "course 42")
}

func TestInspect(t *testing.T) {
	dir := setup(t)
	out, err := execute(t, "inspect", filepath.Join(dir, "grades_report.html"))
	require.NoError(t, err)
	assert.Contains(t, out, "course id: 42")
	assert.Contains(t, out, "rows:     5")
	assert.Contains(t, out, "participants: Ángel Peña, Jane Roe, John Doe, Zoe Alba")
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, "hash-password", "hunter2")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("hunter2")))
}
