package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnis-dev/omnis/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "omnis-test-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmpDir, "omnis")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/omnis")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmpDir)
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func runOmnis(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runOmnis(t, dir, "init", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Initialized omnis project")

	for _, f := range []string{config.FileName, ".env.example", ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "%s should exist", f)
	}
	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInit_ConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	_, err := runOmnis(t, dir, "init")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	data, err := os.ReadFile(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "user_id: USR001")
	assert.Contains(t, string(data), "initial_delay: 3s")
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runOmnis(t, dir, "init")
	require.NoError(t, err)

	out, err := runOmnis(t, dir, "init")
	assert.Error(t, err)
	assert.Contains(t, out, "already exists")

	_, err = runOmnis(t, dir, "init", "--force")
	assert.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runOmnis(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none")
}
