package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInit(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, runInit(initCmd, nil))

	for _, name := range []string{"example.txt", "notes.md"} {
		data, err := os.ReadFile(filepath.Join("input", name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data)
	}

	tmpl, err := os.ReadFile(".env.template")
	require.NoError(t, err)
	assert.Contains(t, string(tmpl), "LLM_PROVIDER=openai")
	assert.Contains(t, string(tmpl), "INPUT_DIRECTORY=./input")
}

func TestRunInit_DoesNotOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, os.MkdirAll("input", 0o755))
	custom := "my own notes"
	require.NoError(t, os.WriteFile(filepath.Join("input", "example.txt"), []byte(custom), 0o644))

	require.NoError(t, runInit(initCmd, nil))

	data, err := os.ReadFile(filepath.Join("input", "example.txt"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))

	tmpl, err := os.ReadFile(".env.template")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(tmpl), "# Fileprompt configuration template"))
}
