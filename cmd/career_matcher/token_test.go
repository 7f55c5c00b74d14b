package main

import (
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCommand_MissingSecret(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "token")
	cmd.Env = append(os.Environ(), "JWT_SECRET=")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "JWT_SECRET")
}

func TestTokenCommand_MintsToken(t *testing.T) {
	binaryPath := getBinaryPath(t)

	clientID := "061ce965-46cf-4013-8f2e-c2a47e17eb9c"
	cmd := exec.Command(binaryPath, "token", "--client-id", clientID)
	cmd.Env = append(os.Environ(), "JWT_SECRET=test-secret-for-token-tests")
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, string(output), clientID)

	// The printed token is a JWT: three dot-separated segments
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	tokenLine := lines[len(lines)-1]
	parts := strings.Fields(tokenLine)
	require.NotEmpty(t, parts)
	assert.Len(t, strings.Split(parts[len(parts)-1], "."), 3)
}

func TestTokenCommand_InvalidClientID(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "token", "--client-id", "not-a-uuid")
	cmd.Env = append(os.Environ(), "JWT_SECRET=test-secret-for-token-tests")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "invalid client-id")
}
