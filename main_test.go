package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/socialquest/utils"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LOG_PATH", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.json")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScoreCommandLocal(t *testing.T) {
	out, err := execute(t, "score", "--type", "hangout", "--duration", "2", "--quality", "positive")
	require.NoError(t, err)
	assert.Equal(t, "48 RXP (local)\n", out)

	out, err = execute(t, "score", "--type", "call", "--duration", "0", "--quality", "negative")
	require.NoError(t, err)
	assert.Equal(t, "-7 RXP (local)\n", out)
}

func TestScoreCommandRejectsUnknownType(t *testing.T) {
	_, err := execute(t, "score", "--type", "telepathy", "--duration", "1", "--quality", "positive")
	assert.ErrorContains(t, err, "invalid interaction")
}

func TestTokenCommand(t *testing.T) {
	out, err := execute(t, "token", "--player", "alice", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := utils.ParseToken("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.PlayerID)
}
