package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCorpusCommand_MissingSource(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "build-corpus", "--openai-key", "x")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "--source is required")
}

func TestBuildCorpusCommand_MissingAPIKey(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "build-corpus", "--source", "careers.json")
	cmd.Env = append(os.Environ(), "OPENAI_API_KEY=")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "OPENAI_API_KEY")
}

func TestBuildCorpusCommand_BadSourceFile(t *testing.T) {
	binaryPath := getBinaryPath(t)

	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "careers.json")
	require.NoError(t, os.WriteFile(sourcePath, []byte(`{"not": "an array"}`), 0644))

	cmd := exec.Command(binaryPath, "build-corpus", "--source", sourcePath, "--openai-key", "x")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "failed to load sources")
}
